package media

import (
	"fmt"

	"vidresolve/internal/textutil"
)

// QualityBadge labels high-resolution video: 8K, 4K, HD, or "".
func QualityBadge(height int) string {
	switch {
	case height >= 4320:
		return "8K"
	case height >= 2160:
		return "4K"
	case height >= 720:
		return "HD"
	default:
		return ""
	}
}

// HumanSize renders a byte count with B/KB/MB/GB units. Unknown sizes render
// as "unknown".
func HumanSize(size *int64) string {
	if size == nil {
		return "unknown"
	}
	b := float64(*size)
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GB", b/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", b/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", b/(1<<10))
	default:
		return fmt.Sprintf("%d B", *size)
	}
}

// DownloadName suggests a file name for saving f: the sanitized title, the
// quality label, and an m4a or mp4 extension.
func DownloadName(title string, f MediaFormat) string {
	ext := ".mp4"
	if f.Kind == KindAudio {
		ext = ".m4a"
	}
	return textutil.SanitizeFileName(title) + "_" + f.QualityLabel + ext
}

// DurationLabel renders seconds as H:MM:SS or M:SS.
func DurationLabel(seconds int64) string {
	if seconds <= 0 {
		return "0:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
