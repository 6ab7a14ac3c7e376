package resolver

import (
	"vidresolve/internal/captions"
	"vidresolve/internal/media"
	"vidresolve/internal/playerdata"
	"vidresolve/internal/streams"
)

// Build assembles the aggregate for videoID from an extracted document.
func Build(videoID string, doc *playerdata.Document, strategy string) *media.ResolvedVideo {
	video := &media.ResolvedVideo{
		VideoID:  videoID,
		Formats:  streams.Classify(doc),
		Captions: captions.Normalize(doc),
		Strategy: strategy,
	}
	if video.Formats == nil {
		video.Formats = []media.MediaFormat{}
	}
	if doc == nil || doc.VideoDetails == nil {
		return video
	}
	details := doc.VideoDetails
	video.Title = details.Title
	video.Author = details.Author
	video.DurationSeconds = details.LengthSeconds.Or(0)
	if details.ViewCount.Valid {
		views := details.ViewCount.Value
		video.ViewCount = &views
	}
	video.ThumbnailURL = largestThumbnail(details.Thumbnail)
	return video
}

func largestThumbnail(t *playerdata.Thumbnail) string {
	if t == nil {
		return ""
	}
	best := ""
	bestArea := -1
	for _, img := range t.Thumbnails {
		if img.URL == "" {
			continue
		}
		if area := img.Width * img.Height; area > bestArea {
			best, bestArea = img.URL, area
		}
	}
	return best
}
