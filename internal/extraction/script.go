package extraction

import (
	"context"
	"regexp"
	"strings"

	"vidresolve/internal/playerdata"
)

// DefaultScanBudget bounds how many characters after a marker the brace scan
// will inspect.
const DefaultScanBudget = 500_000

// DefaultMarkers are the assignment tokens that precede an inline player
// response.
var DefaultMarkers = []string{"ytInitialPlayerResponse", "raw_player_response"}

// ScriptStrategy scans inline script bodies for a marker followed by a JSON
// object literal.
type ScriptStrategy struct {
	Markers []string
	Budget  int

	fastPaths []*regexp.Regexp
}

// NewScriptStrategy compiles the fast-path patterns for markers. Empty
// markers fall back to DefaultMarkers and a non-positive budget to
// DefaultScanBudget.
func NewScriptStrategy(markers []string, budget int) *ScriptStrategy {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	if budget <= 0 {
		budget = DefaultScanBudget
	}
	s := &ScriptStrategy{Markers: markers, Budget: budget}
	for _, marker := range markers {
		s.fastPaths = append(s.fastPaths,
			regexp.MustCompile(`(?s)(?:var\s+)?`+regexp.QuoteMeta(marker)+`\s*=\s*(\{.+?\});`))
	}
	return s
}

func (s *ScriptStrategy) Name() string { return NameScript }

func (s *ScriptStrategy) Extract(ctx context.Context, _ string, page Page) (*playerdata.Document, error) {
	if page.Scripts == nil {
		return nil, unavailable(NameScript, "host exposes no script elements")
	}
	cfg := s
	if len(cfg.Markers) == 0 || len(cfg.fastPaths) != len(cfg.Markers) || cfg.Budget <= 0 {
		cfg = NewScriptStrategy(s.Markers, s.Budget)
	}

	sawMarker := false
	for _, body := range page.Scripts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, marker := range cfg.Markers {
			if !strings.Contains(body, marker) {
				continue
			}
			sawMarker = true
			if doc := fastPath(cfg.fastPaths[i], body); doc != nil {
				return doc, nil
			}
			if doc := cfg.scan(body, marker); doc != nil {
				return doc, nil
			}
		}
	}
	if !sawMarker {
		return nil, invalid(NameScript, "scan", ErrNoMarker)
	}
	return nil, invalid(NameScript, "marker found but no usable player response", nil)
}

// fastPath tries the non-greedy regex. The shortest match frequently stops
// at an inner "};", so a failed parse is expected and simply falls through.
func fastPath(re *regexp.Regexp, body string) *playerdata.Document {
	m := re.FindStringSubmatch(body)
	if len(m) < 2 {
		return nil
	}
	return acceptScript(m[1])
}

// scan tries every occurrence of marker, brace-matching from the first "{"
// after each one.
func (s *ScriptStrategy) scan(body, marker string) *playerdata.Document {
	offset := 0
	for {
		idx := strings.Index(body[offset:], marker)
		if idx < 0 {
			return nil
		}
		start := offset + idx + len(marker)
		if candidate, ok := MatchObject(body[start:], s.Budget); ok {
			if doc := acceptScript(candidate); doc != nil {
				return doc
			}
		}
		offset = start
	}
}

func acceptScript(candidate string) *playerdata.Document {
	doc, err := playerdata.Parse([]byte(candidate))
	if err != nil || !doc.HasPlayerFields() {
		return nil
	}
	return doc
}

// MatchObject finds the first "{" in text and returns the substring up to its
// matching "}". Braces inside string literals are ignored. The scan gives up
// after budget characters past the opening brace.
func MatchObject(text string, budget int) (string, bool) {
	open := strings.IndexByte(text, '{')
	if open < 0 {
		return "", false
	}
	limit := len(text)
	if budget > 0 && open+budget < limit {
		limit = open + budget
	}

	depth := 0
	inString := false
	escaped := false
	for i := open; i < limit; i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[open : i+1], true
			}
		}
	}
	return "", false
}

