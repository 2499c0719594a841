package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ai-news-digest/internal/model"
)

// podcastNameKeywords mark feeds whose titles identify them as podcasts even
// when entries carry no audio enclosure.
var podcastNameKeywords = []string{"podcast", "20vc", "a16z"}

// FeedFetcher polls RSS/Atom feeds and stores new entries as articles or
// podcasts.
type FeedFetcher struct {
	store  Inserter
	client *http.Client
	parser *gofeed.Parser
}

// NewFeedFetcher wires a fetcher with its own HTTP client.
func NewFeedFetcher(store Inserter) *FeedFetcher {
	return &FeedFetcher{
		store:  store,
		client: newHTTPClient(30 * time.Second),
		parser: gofeed.NewParser(),
	}
}

// CollectAll polls every configured feed. A failing feed logs and yields
// nothing; sibling feeds still run. Returns the number of newly stored items.
func (f *FeedFetcher) CollectAll(ctx context.Context, feeds []FeedSource) int {
	total := 0
	for _, feed := range feeds {
		select {
		case <-ctx.Done():
			return total
		default:
		}
		total += f.collectFeed(ctx, feed)
	}
	slog.Info("feed: collection complete", "feeds", len(feeds), "new_items", total)
	return total
}

func (f *FeedFetcher) collectFeed(ctx context.Context, src FeedSource) int {
	slog.Info("feed: collecting", "feed", src.Name, "url", src.URL)

	body, err := getWithRetry(ctx, f.client, src.URL)
	if err != nil {
		slog.Error("feed: fetch failed", "feed", src.Name, "url", src.URL, "error", err)
		return 0
	}
	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		slog.Error("feed: parse failed", "feed", src.Name, "url", src.URL, "error", err)
		return 0
	}

	feedTitle := parsed.Title
	if strings.TrimSpace(feedTitle) == "" {
		feedTitle = src.Name
	}

	stored := 0
	for _, entry := range parsed.Items {
		if entry == nil || strings.TrimSpace(entry.Link) == "" {
			continue
		}

		item := model.ContentItem{
			SourceName:  src.Name,
			SourceURL:   entry.Link,
			ContentType: ClassifyEntry(feedTitle, entry),
			Title:       entryTitle(entry),
			Author:      entryAuthor(entry),
			PublishDate: resolvePublishDate(entry, time.Now()),
			RawContent:  extractBody(entry),
		}
		if item.ContentType == model.TypePodcast {
			if audio := audioURL(entry); audio != "" {
				item.Entities = map[string]any{"audio_url": audio}
			}
		}

		_, wasNew, err := f.store.InsertIfAbsent(ctx, item)
		if err != nil {
			slog.Error("feed: store failed", "feed", src.Name, "url", entry.Link, "error", err)
			continue
		}
		if !wasNew {
			continue
		}
		stored++
		slog.Info("feed: content collected",
			"feed", src.Name, "title", item.Title, "type", item.ContentType)
	}
	return stored
}

// ClassifyEntry decides podcast vs article. Two heuristics in order: the
// feed title keyword list, then an audio-typed enclosure on the entry.
// First match wins; neither matching means article.
func ClassifyEntry(feedTitle string, entry *gofeed.Item) model.ContentType {
	lower := strings.ToLower(feedTitle)
	for _, kw := range podcastNameKeywords {
		if strings.Contains(lower, kw) {
			return model.TypePodcast
		}
	}
	if audioURL(entry) != "" {
		return model.TypePodcast
	}
	return model.TypeArticle
}

// resolvePublishDate prefers the published time, then the updated time, and
// never rejects an entry for a missing date.
func resolvePublishDate(entry *gofeed.Item, now time.Time) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return now.UTC()
}

// extractBody prefers the structured content field, then the summary-like
// description.
func extractBody(entry *gofeed.Item) string {
	if strings.TrimSpace(entry.Content) != "" {
		return entry.Content
	}
	return entry.Description
}

// audioURL returns the entry's first audio-typed enclosure URL. gofeed folds
// Atom rel=enclosure links into Enclosures, so that list covers both formats.
func audioURL(entry *gofeed.Item) string {
	if entry == nil {
		return ""
	}
	for _, enc := range entry.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
	}
	return ""
}

func entryTitle(entry *gofeed.Item) string {
	if strings.TrimSpace(entry.Title) == "" {
		return "Untitled"
	}
	return entry.Title
}

func entryAuthor(entry *gofeed.Item) string {
	for _, a := range entry.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return a.Name
		}
	}
	if entry.Author != nil {
		return entry.Author.Name
	}
	return ""
}
