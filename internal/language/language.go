package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var namer = display.English.Tags()

func parse(code string) (language.Tag, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return language.Und, false
	}
	// Provider auto-caption ids look like "a.en".
	code = strings.TrimPrefix(code, "a.")
	code = strings.ReplaceAll(code, "_", "-")
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// DisplayName returns an English name for a caption language code, such as
// "English (United States)" for "en-US". Unrecognized codes come back as-is,
// and empty input yields "Unknown".
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	tag, ok := parse(code)
	if !ok {
		return strings.TrimSpace(code)
	}
	if name := namer.Name(tag); name != "" {
		return name
	}
	return strings.TrimSpace(code)
}

// Base returns the ISO 639 base language of code ("zh" for "zh-Hans").
// Returns an empty string when code cannot be parsed.
func Base(code string) string {
	tag, ok := parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// Matches reports whether a track language satisfies a requested one. An exact
// tag match always wins; a bare base language request ("en") also matches
// regional variants ("en-GB").
func Matches(trackCode, wanted string) bool {
	trackTag, ok := parse(trackCode)
	if !ok {
		return false
	}
	wantTag, ok := parse(wanted)
	if !ok {
		return false
	}
	if trackTag == wantTag {
		return true
	}
	wantBase, conf := wantTag.Base()
	if conf == language.No {
		return false
	}
	if wantTag.String() != wantBase.String() {
		return false
	}
	trackBase, _ := trackTag.Base()
	return trackBase == wantBase
}
