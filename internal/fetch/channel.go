package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"ai-news-digest/internal/model"
	"ai-news-digest/internal/youtube"
)

// ChannelFetcher lists recent channel uploads and stores them as videos.
type ChannelFetcher struct {
	store      Inserter
	client     *youtube.Client
	maxResults int
}

// NewChannelFetcher wires the fetcher around a YouTube client.
func NewChannelFetcher(store Inserter, client *youtube.Client, maxResults int) *ChannelFetcher {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &ChannelFetcher{store: store, client: client, maxResults: maxResults}
}

// CollectAll polls every configured channel. A failing channel logs and
// yields nothing; sibling channels still run. Returns the number of newly
// stored items.
func (f *ChannelFetcher) CollectAll(ctx context.Context, channels []ChannelSource) int {
	total := 0
	for _, ch := range channels {
		select {
		case <-ctx.Done():
			return total
		default:
		}
		total += f.collectChannel(ctx, ch)
	}
	slog.Info("channel: collection complete", "channels", len(channels), "new_items", total)
	return total
}

func (f *ChannelFetcher) collectChannel(ctx context.Context, src ChannelSource) int {
	slog.Info("channel: collecting", "channel", src.Name, "channel_id", src.ChannelID)

	uploads, err := f.client.ChannelUploads(ctx, src.ChannelID, f.maxResults)
	if err != nil {
		slog.Error("channel: list uploads failed", "channel", src.Name, "error", err)
		return 0
	}

	stored := 0
	for _, up := range uploads {
		if up.VideoID == "" {
			continue
		}

		duration := 0
		if details, err := f.client.Video(ctx, up.VideoID); err == nil {
			duration = ParseISODuration(details.Duration)
		} else {
			slog.Warn("channel: video details failed", "video_id", up.VideoID, "error", err)
		}

		publishedAt := up.PublishedAt
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}

		item := model.ContentItem{
			SourceName:      src.Name,
			SourceURL:       fmt.Sprintf("https://www.youtube.com/watch?v=%s", up.VideoID),
			ContentType:     model.TypeVideo,
			Title:           upTitle(up),
			Author:          up.ChannelTitle,
			PublishDate:     publishedAt,
			RawContent:      up.Description,
			DurationSeconds: duration,
			Entities: map[string]any{
				"video_id":   up.VideoID,
				"channel_id": src.ChannelID,
				"thumbnail":  up.Thumbnail,
			},
		}

		_, wasNew, err := f.store.InsertIfAbsent(ctx, item)
		if err != nil {
			slog.Error("channel: store failed", "video_id", up.VideoID, "error", err)
			continue
		}
		if !wasNew {
			continue
		}
		stored++
		slog.Info("channel: video collected", "channel", src.Name, "title", item.Title)
	}
	return stored
}

func upTitle(up youtube.Upload) string {
	if up.Title == "" {
		return "Untitled"
	}
	return up.Title
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts an ISO-8601 style duration ("PT1H30M45S") into
// total seconds. Each component is optional; anything unparseable yields 0.
func ParseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])
	return hours*3600 + minutes*60 + seconds
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
