package timedtext

import (
	"fmt"
	"strings"
)

// Format is a subtitle output format.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat accepts "srt" or "vtt" in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatSRT:
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("timedtext: unsupported format %q (expected srt or vtt)", value)
	}
}

// FetchParam is the fmt query value requested from the subtitle endpoint.
func (f Format) FetchParam() string {
	if f == FormatVTT {
		return "vtt"
	}
	return "srv3"
}

// Extension is the file extension without a dot.
func (f Format) Extension() string {
	return string(f)
}

// NeedsConversion reports whether the fetched payload must go through ToSRT.
func (f Format) NeedsConversion() bool {
	return f == FormatSRT
}
