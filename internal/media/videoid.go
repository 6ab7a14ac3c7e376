package media

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidVideoID is returned when no video identifier can be found.
var ErrInvalidVideoID = errors.New("media: invalid video id")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/", "/e/"}

// ValidVideoID reports whether id has the provider's 11-character shape.
func ValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// ParseVideoID extracts a video identifier from a bare id or from watch,
// youtu.be, shorts, embed, and live URLs.
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrInvalidVideoID
	}
	if ValidVideoID(input) {
		return input, nil
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", ErrInvalidVideoID
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var candidate string
	switch {
	case host == "youtu.be":
		candidate = strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com") || strings.HasSuffix(host, "youtube-nocookie.com"):
		if v := u.Query().Get("v"); v != "" {
			candidate = v
			break
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				candidate = strings.TrimPrefix(u.Path, prefix)
				break
			}
		}
	}
	if i := strings.IndexByte(candidate, '/'); i >= 0 {
		candidate = candidate[:i]
	}
	if !ValidVideoID(candidate) {
		return "", ErrInvalidVideoID
	}
	return candidate, nil
}

// WatchURL returns the canonical watch page for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}
