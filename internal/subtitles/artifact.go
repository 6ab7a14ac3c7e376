package subtitles

import (
	"strings"

	"vidresolve/internal/textutil"
	"vidresolve/internal/timedtext"
)

// Artifact is a finished subtitle file held in memory.
type Artifact struct {
	FileName     string           `json:"fileName"`
	Content      string           `json:"content"`
	Format       timedtext.Format `json:"format"`
	LanguageCode string           `json:"languageCode"`
	// Warnings lists SRT validation findings. They never block the download.
	Warnings []string `json:"warnings,omitempty"`
}

// FileName is "<sanitized title>.<lang>.<ext>".
func FileName(title, lang string, format timedtext.Format) string {
	name := textutil.SanitizeFileName(title)
	if name == "" {
		name = "subtitle"
	}
	return name + "." + textutil.SanitizeFileName(strings.TrimSpace(lang)) + "." + format.Extension()
}

// MIMEType returns the content type to serve the artifact with.
func (a Artifact) MIMEType() string {
	if a.Format == timedtext.FormatVTT {
		return "text/vtt; charset=utf-8"
	}
	return "application/x-subrip; charset=utf-8"
}
