package testsupport

import (
	"encoding/json"
	"strconv"
)

// VideoID is a well-formed id used across fixtures.
const VideoID = "dQw4w9WgXcQ"

// Player describes a player response fixture.
type Player struct {
	VideoID       string
	Title         string
	Author        string
	LengthSeconds int
	ViewCount     int
	// CaptionURL adds one English track when set.
	CaptionURL string
	// NoStreams omits streamingData.
	NoStreams bool
}

// DemoPlayer is a 95 second clip with one combined 360p format, one audio
// format of 1 MiB and, when captionURL is set, an English caption track.
func DemoPlayer(captionURL string) Player {
	return Player{
		VideoID:       VideoID,
		Title:         "Demo Clip",
		Author:        "Someone",
		LengthSeconds: 95,
		ViewCount:     1234,
		CaptionURL:    captionURL,
	}
}

// JSON renders the fixture in the provider's player response shape.
func (p Player) JSON() string {
	doc := map[string]any{
		"videoDetails": map[string]any{
			"videoId":       p.VideoID,
			"title":         p.Title,
			"author":        p.Author,
			"lengthSeconds": strconv.Itoa(p.LengthSeconds),
			"viewCount":     strconv.Itoa(p.ViewCount),
		},
	}
	if !p.NoStreams {
		doc["streamingData"] = map[string]any{
			"formats": []any{map[string]any{
				"itag":         18,
				"url":          "https://cdn.example/18",
				"mimeType":     `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
				"height":       360,
				"qualityLabel": "360p",
				"bitrate":      500000,
			}},
			"adaptiveFormats": []any{map[string]any{
				"itag":          140,
				"url":           "https://cdn.example/140",
				"mimeType":      `audio/mp4; codecs="mp4a.40.2"`,
				"bitrate":       128000,
				"contentLength": "1048576",
			}},
		}
	}
	if p.CaptionURL != "" {
		doc["captions"] = map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks": []any{map[string]any{
					"baseUrl":      p.CaptionURL,
					"languageCode": "en",
					"name":         map[string]any{"simpleText": "English"},
				}},
			},
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(data)
}
