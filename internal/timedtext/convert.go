package timedtext

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotTimedText is returned when the payload is not XML at all.
	ErrNotTimedText = errors.New("timedtext: payload is not XML")

	markupPattern = regexp.MustCompile(`<[^>]+>`)
	entityDecoder = strings.NewReplacer("&amp;", "&")
	angleDecoder  = strings.NewReplacer("&lt;", "<", "&gt;", ">")
)

// Cue is one timed caption.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// Parse reads every cue element of payload in document order.
func Parse(payload string) ([]Cue, error) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "<") {
		return nil, ErrNotTimedText
	}

	dec := xml.NewDecoder(strings.NewReader(trimmed))
	dec.Entity = xml.HTMLEntity

	var (
		cues   []Cue
		active *Cue
		depth  int
		text   strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("timedtext: parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if active != nil {
				depth++
				if t.Name.Local == "br" {
					text.WriteByte('\n')
				}
				continue
			}
			if cue, ok := cueFromElement(t); ok {
				active = &cue
				depth = 0
				text.Reset()
			}
		case xml.EndElement:
			if active == nil {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			active.Text = cleanText(text.String())
			cues = append(cues, *active)
			active = nil
		case xml.CharData:
			if active != nil {
				text.Write(t)
			}
		}
	}
	return cues, nil
}

func cueFromElement(el xml.StartElement) (Cue, bool) {
	switch el.Name.Local {
	case "text":
		start := floatAttr(el, "start")
		return Cue{Start: start, End: start + floatAttr(el, "dur")}, true
	case "p":
		start := floatAttr(el, "t") / 1000
		return Cue{Start: start, End: start + floatAttr(el, "d")/1000}, true
	default:
		return Cue{}, false
	}
}

func floatAttr(el xml.StartElement, name string) float64 {
	for _, attr := range el.Attr {
		if attr.Name.Local != name {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0
		}
		return v
	}
	return 0
}

// cleanText decodes the entities that survive one round of XML decoding in
// double-escaped payloads and strips inline markup.
func cleanText(s string) string {
	s = entityDecoder.Replace(s)
	s = angleDecoder.Replace(s)
	s = markupPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ToSRT converts a timed-text XML payload to SRT. Every cue produces one
// block, numbered from 1. The returned text has no trailing blank line.
func ToSRT(payload string) (string, error) {
	cues, err := Parse(payload)
	if err != nil {
		return "", err
	}
	return RenderSRT(cues), nil
}

// RenderSRT formats cues as SRT blocks.
func RenderSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. The value is rounded to
// the nearest millisecond before splitting, so the millisecond field never
// reads 1000.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	ms := total % 1000
	s := total / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", s/3600, (s%3600)/60, s%60, ms)
}
