package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxFileNameRunes bounds sanitized file names.
const MaxFileNameRunes = 200

var fileNameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeFileName replaces each of <>:"/\|?* with an underscore and
// truncates the result to MaxFileNameRunes characters. Input is normalized to
// NFC first so composed and decomposed titles produce the same name.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = fileNameReplacer.Replace(name)
	runes := []rune(name)
	if len(runes) > MaxFileNameRunes {
		name = string(runes[:MaxFileNameRunes])
	}
	return name
}
