package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"vidresolve/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const statusLabelWidth = 20

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, cache backend and player endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			results := preflight.RunAll(cmd.Context(), a.cfg, preflight.Options{
				Cache:      a.cache,
				HTTPClient: &http.Client{Timeout: 5 * time.Second},
			})
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := isTerminal(out)
				for _, r := range results {
					fmt.Fprintln(out, renderCheckLine(r, colorize))
				}
			}
			if preflight.AnyFailed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func renderCheckLine(r preflight.Result, colorize bool) string {
	label, color := "OK", ansiGreen
	switch {
	case r.Passed:
	case r.Advisory:
		label, color = "WARN", ansiYellow
	default:
		label, color = "ERROR", ansiRed
	}
	line := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, r.Name+":", label, r.Detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}
