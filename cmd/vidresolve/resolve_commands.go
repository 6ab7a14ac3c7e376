package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidresolve/internal/extraction"
	"vidresolve/internal/media"
	"vidresolve/internal/resolver"
)

const defaultResolveConcurrency = 4

type resolveOutput struct {
	VideoID  string               `json:"videoId"`
	Video    *media.ResolvedVideo `json:"video,omitempty"`
	Error    string               `json:"error,omitempty"`
	Attempts []attemptOutput      `json:"attempts,omitempty"`
}

type attemptOutput struct {
	Strategy string `json:"strategy"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

func addPageFlags(cmd *cobra.Command, in *pageInputs) {
	cmd.Flags().StringVar(&in.playerResponse, "player-response", "", "Captured player response JSON file (- for stdin)")
	cmd.Flags().StringVar(&in.elementResponse, "element-response", "", "Captured player element accessor response file")
	cmd.Flags().StringVar(&in.html, "html", "", "Saved watch page HTML to scan for an embedded player response")
}

func parseVideoIDs(args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	seen := make(map[string]struct{}, len(args))
	for _, arg := range args {
		id, err := media.ParseVideoID(arg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var inputs pageInputs
	var concurrency int

	cmd := &cobra.Command{
		Use:   "resolve <id|url>...",
		Short: "Resolve video metadata, formats and captions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseVideoIDs(args)
			if err != nil {
				return err
			}
			a, err := ctx.buildApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			pages, err := a.pageSource(inputs)
			if err != nil {
				return err
			}
			results := a.pipeline.ResolveAll(cmd.Context(), ids, pages, concurrency)

			outputs := make([]resolveOutput, 0, len(results))
			failed := 0
			for _, r := range results {
				outputs = append(outputs, toResolveOutput(r))
				if r.Err != nil {
					failed++
				}
			}

			if ctx.jsonOutput() {
				var payload any = outputs
				if len(outputs) == 1 {
					payload = outputs[0]
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
			} else {
				printResolveResults(cmd, outputs)
			}
			if failed > 0 {
				if len(results) == 1 {
					return results[0].Err
				}
				return fmt.Errorf("%d of %d videos failed to resolve", failed, len(results))
			}
			return nil
		},
	}

	addPageFlags(cmd, &inputs)
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultResolveConcurrency, "Maximum videos resolved at once")
	return cmd
}

func toResolveOutput(r resolver.BatchResult) resolveOutput {
	out := resolveOutput{VideoID: r.VideoID, Video: r.Video}
	if r.Err == nil {
		return out
	}
	out.Error = r.Err.Error()
	var exhausted *extraction.ExhaustedError
	if errors.As(r.Err, &exhausted) {
		for _, attempt := range exhausted.Attempts {
			out.Attempts = append(out.Attempts, attemptOutput{
				Strategy: attempt.Strategy,
				Outcome:  string(attempt.Outcome),
				Error:    attempt.ErrorText(),
			})
		}
	}
	return out
}

func printResolveResults(cmd *cobra.Command, outputs []resolveOutput) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(outputs))
	for _, o := range outputs {
		if o.Video == nil {
			rows = append(rows, []string{o.VideoID, "-", "-", "-", "-", "-", "-", "-", "failed"})
			continue
		}
		v := o.Video
		rows = append(rows, []string{
			v.VideoID,
			orDash(v.Title),
			orDash(v.Author),
			media.DurationLabel(v.DurationSeconds),
			viewsLabel(v.ViewCount),
			strconv.Itoa(len(v.Formats)),
			strconv.Itoa(len(v.Captions)),
			v.Strategy,
			"resolved",
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"ID", "Title", "Author", "Duration", "Views", "Formats", "Captions", "Strategy", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))

	for _, o := range outputs {
		if o.Error == "" {
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", o.VideoID, o.Error)
		for _, a := range o.Attempts {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %-8s %-12s %s\n", a.Strategy, a.Outcome, a.Error)
		}
	}

	if len(outputs) == 1 && outputs[0].Video != nil {
		v := outputs[0].Video
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderFormats(out, v.Formats))
		if len(v.Captions) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderCaptions(out, v.Captions))
		}
	}
}

func viewsLabel(count *int64) string {
	if count == nil {
		return "-"
	}
	return strconv.FormatInt(*count, 10)
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var inputs pageInputs
	var kind string

	cmd := &cobra.Command{
		Use:   "formats <id|url>",
		Short: "List the downloadable formats of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := media.ParseVideoID(args[0])
			if err != nil {
				return err
			}
			filter, err := formatFilter(kind)
			if err != nil {
				return err
			}
			a, err := ctx.buildApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			video, err := resolveOne(cmd, a, id, inputs)
			if err != nil {
				return err
			}
			formats := filter(video)
			if ctx.jsonOutput() {
				return writeJSON(cmd, formats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderFormats(out, formats))
			return nil
		},
	}

	addPageFlags(cmd, &inputs)
	cmd.Flags().StringVar(&kind, "kind", "all", "Formats to list: all, video, audio, or combined")
	return cmd
}

func formatFilter(kind string) (func(*media.ResolvedVideo) []media.MediaFormat, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "all":
		return func(v *media.ResolvedVideo) []media.MediaFormat { return v.Formats }, nil
	case "video":
		return (*media.ResolvedVideo).VideoFormats, nil
	case "audio":
		return (*media.ResolvedVideo).AudioFormats, nil
	case "combined":
		return (*media.ResolvedVideo).CombinedFormats, nil
	default:
		return nil, fmt.Errorf("unknown --kind %q (expected all, video, audio, or combined)", kind)
	}
}

// resolveOne resolves a single id with the command's page inputs.
func resolveOne(cmd *cobra.Command, a *app, id string, inputs pageInputs) (*media.ResolvedVideo, error) {
	pages, err := a.pageSource(inputs)
	if err != nil {
		return nil, err
	}
	return a.pipeline.ResolveFrom(cmd.Context(), id, pages)
}

func renderFormats(out io.Writer, formats []media.MediaFormat) string {
	rows := make([][]string, 0, len(formats))
	for _, f := range formats {
		quality := f.QualityLabel
		if badge := media.QualityBadge(f.Height); badge != "" {
			quality += " " + badge
		}
		rows = append(rows, []string{
			f.ID,
			string(f.Kind),
			orDash(strings.TrimSpace(quality)),
			orDash(f.CodecFamily()),
			string(f.Container),
			strconv.FormatInt(f.BitrateBps/1000, 10) + " kbps",
			media.HumanSize(f.SizeBytes),
			yesNo(f.Kind == media.KindAudio || f.HasEmbeddedAudio),
		})
	}
	return renderTable(out,
		[]string{"ID", "Kind", "Quality", "Codec", "Container", "Bitrate", "Size", "Audio"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func renderCaptions(out io.Writer, tracks []media.CaptionTrack) string {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{t.LanguageCode, orDash(t.DisplayName), yesNo(t.IsAutoGenerated)})
	}
	return renderTable(out, []string{"Language", "Name", "Auto"}, rows, nil)
}
