package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"vidresolve/internal/testsupport"
)

const testVideoID = testsupport.VideoID

func testPlayerResponse(captionURL string) string {
	return testsupport.DemoPlayer(captionURL).JSON()
}

type testEnv struct {
	dir        string
	outputDir  string
	configPath string
}

func newTestEnv(t *testing.T, opts ...testsupport.ConfigOption) testEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	path := testsupport.WriteConfig(t, cfg)
	return testEnv{
		dir:        filepath.Dir(path),
		outputDir:  cfg.Paths.OutputDir,
		configPath: path,
	}
}

func (e testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(e.dir, name), content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
