package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vidresolve/internal/fileutil"
	"vidresolve/internal/media"
	"vidresolve/internal/subtitles"
	"vidresolve/internal/timedtext"
)

type subtitleOutput struct {
	Path         string   `json:"path,omitempty"`
	FileName     string   `json:"fileName"`
	Format       string   `json:"format"`
	LanguageCode string   `json:"languageCode"`
	Bytes        int      `json:"bytes"`
	Warnings     []string `json:"warnings,omitempty"`
}

func newSubtitleCommand(ctx *commandContext) *cobra.Command {
	var inputs pageInputs
	var lang string
	var formatFlag string
	var outPath string

	cmd := &cobra.Command{
		Use:   "subtitle <id|url>",
		Short: "Download a caption track as SRT or WebVTT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := media.ParseVideoID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.buildApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if strings.TrimSpace(formatFlag) == "" {
				formatFlag = a.cfg.Subtitles.DefaultFormat
			}
			format, err := timedtext.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			video, err := resolveOne(cmd, a, id, inputs)
			if err != nil {
				return err
			}
			req, err := subtitles.RequestFor(video, lang, format)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, captionLanguages(video))
			}
			artifact, err := a.subtitles.Fetch(cmd.Context(), req)
			if err != nil {
				return err
			}

			result := subtitleOutput{
				FileName:     artifact.FileName,
				Format:       string(artifact.Format),
				LanguageCode: artifact.LanguageCode,
				Bytes:        len(artifact.Content),
				Warnings:     artifact.Warnings,
			}
			if outPath == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), artifact.Content)
				return err
			}
			target, err := subtitleTarget(outPath, a.cfg.Paths.OutputDir, artifact.FileName)
			if err != nil {
				return err
			}
			if err := fileutil.WriteFileAtomic(target, []byte(artifact.Content), 0o644); err != nil {
				return fmt.Errorf("write subtitle: %w", err)
			}
			result.Path = target

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d bytes)\n", target, result.Bytes)
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			return nil
		},
	}

	addPageFlags(cmd, &inputs)
	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "Caption language code")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: srt or vtt (default from config)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file or directory (- for stdout; default: output_dir)")
	return cmd
}

// subtitleTarget picks the file to write: an explicit file, a file inside an
// explicit directory, or the artifact name inside the configured output dir.
func subtitleTarget(outPath, outputDir, fileName string) (string, error) {
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return filepath.Join(outputDir, fileName), nil
	}
	if info, err := os.Stat(outPath); err == nil && info.IsDir() {
		return filepath.Join(outPath, fileName), nil
	}
	return outPath, nil
}

func captionLanguages(video *media.ResolvedVideo) string {
	if len(video.Captions) == 0 {
		return "none"
	}
	codes := make([]string, 0, len(video.Captions))
	for _, c := range video.Captions {
		codes = append(codes, c.LanguageCode)
	}
	return strings.Join(codes, ", ")
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var validate bool
	var durationSeconds float64

	cmd := &cobra.Command{
		Use:         "convert <file.xml>",
		Short:       "Convert a saved timed-text XML file to SRT",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read timed text: %w", err)
			}
			srt, err := timedtext.ToSRT(string(payload))
			if err != nil {
				return err
			}
			var warnings []string
			if validate {
				warnings = timedtext.ValidateSRT(srt, durationSeconds)
			}

			if outPath == "" || outPath == "-" {
				fmt.Fprint(cmd.OutOrStdout(), srt)
			} else if err := fileutil.WriteFileAtomic(outPath, []byte(srt), 0o644); err != nil {
				return fmt.Errorf("write srt: %w", err)
			} else if ctx.jsonOutput() {
				return writeJSON(cmd, subtitleOutput{
					Path:     outPath,
					FileName: filepath.Base(outPath),
					Format:   string(timedtext.FormatSRT),
					Bytes:    len(srt),
					Warnings: warnings,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", outPath, len(srt))
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Report SRT format issues on stderr")
	cmd.Flags().Float64Var(&durationSeconds, "duration", 0, "Video length in seconds for the validation overrun check")
	return cmd
}
