package timedtext

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp reads an SRT (comma) or VTT (period) timestamp into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) == 2 {
		hms = append([]string{"0"}, hms...)
	}
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// ValidateSRT checks SRT content for format issues and returns them as short
// tagged strings. An empty result means the content passed. When
// videoSeconds is positive, cues ending well past the video are flagged.
func ValidateSRT(content string, videoSeconds float64) []string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return []string{"empty_subtitle_file"}
	}

	var issues []string
	var last float64
	expected := 1
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			issues = append(issues, fmt.Sprintf("short_block: cue %d", expected))
			expected++
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil || n != expected {
			issues = append(issues, fmt.Sprintf("index_mismatch: want %d got %q", expected, lines[0]))
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			issues = append(issues, fmt.Sprintf("missing_arrow: cue %d", expected))
			expected++
			continue
		}
		start, errStart := ParseTimestamp(parts[0])
		end, errEnd := ParseTimestamp(parts[1])
		switch {
		case errStart != nil || errEnd != nil:
			issues = append(issues, fmt.Sprintf("timestamp_parse_error: cue %d", expected))
		case end < start:
			issues = append(issues, fmt.Sprintf("negative_duration: cue %d", expected))
		default:
			if end > last {
				last = end
			}
		}
		expected++
	}

	if videoSeconds > 0 && last > videoSeconds+5 {
		issues = append(issues, fmt.Sprintf("duration_mismatch: last cue %.1fs past %.1fs video", last, videoSeconds))
	}
	return issues
}
