package fetch

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ai-news-digest/internal/model"
)

// maxBodyRunes bounds scraped article text so downstream enrichment cost
// stays bounded.
const maxBodyRunes = 50000

// ScrapeFetcher pulls individual article pages and extracts readable text.
type ScrapeFetcher struct {
	store  Inserter
	client *http.Client
}

// NewScrapeFetcher wires a scraper with its own HTTP client.
func NewScrapeFetcher(store Inserter) *ScrapeFetcher {
	return &ScrapeFetcher{
		store:  store,
		client: newHTTPClient(30 * time.Second),
	}
}

// CollectAll scrapes every configured URL; a failing page logs and is
// skipped. Returns the number of newly stored items.
func (f *ScrapeFetcher) CollectAll(ctx context.Context, sources []ScrapeSource) int {
	total := 0
	for _, src := range sources {
		select {
		case <-ctx.Done():
			return total
		default:
		}
		if _, wasNew := f.Scrape(ctx, src.URL, src.Name); wasNew {
			total++
		}
	}
	return total
}

// Scrape fetches one page and stores it as an article. Returns the stored
// item and whether it was new; a fetch or parse failure returns a zero item.
func (f *ScrapeFetcher) Scrape(ctx context.Context, url, sourceName string) (model.ContentItem, bool) {
	slog.Info("scrape: fetching", "url", url, "source", sourceName)

	html, err := getWithRetry(ctx, f.client, url)
	if err != nil {
		slog.Error("scrape: fetch failed", "url", url, "error", err)
		return model.ContentItem{}, false
	}

	extracted, err := ExtractArticle(html, time.Now())
	if err != nil {
		slog.Error("scrape: parse failed", "url", url, "error", err)
		return model.ContentItem{}, false
	}

	item := model.ContentItem{
		SourceName:  sourceName,
		SourceURL:   url,
		ContentType: model.TypeArticle,
		Title:       extracted.Title,
		Author:      extracted.Author,
		PublishDate: extracted.PublishDate,
		RawContent:  extracted.Body,
	}

	stored, wasNew, err := f.store.InsertIfAbsent(ctx, item)
	if err != nil {
		slog.Error("scrape: store failed", "url", url, "error", err)
		return model.ContentItem{}, false
	}
	if !wasNew {
		slog.Info("scrape: article exists", "url", url)
		return stored, false
	}
	slog.Info("scrape: article scraped", "title", stored.Title, "url", url)
	return stored, true
}

// Extracted carries the readable parts of one scraped page.
type Extracted struct {
	Title       string
	Author      string
	PublishDate time.Time
	Body        string
}

// ExtractArticle pulls title, author, publish date, and body text out of a
// page. Preference order: og:title over <title>; author meta over an
// author-classed element; <time datetime> over now; <article> over main or
// content landmarks over concatenated paragraphs.
func ExtractArticle(html []byte, now time.Time) (Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Extracted{}, err
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}

	author := ""
	if meta, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		author = strings.TrimSpace(meta)
	}
	if author == "" {
		author = strings.TrimSpace(doc.Find(`[class*="author"]`).First().Text())
	}

	publishDate := now.UTC()
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if parsed, ok := parseDatetime(dt); ok {
			publishDate = parsed
		}
	}

	body := landmarkText(doc)
	if runes := []rune(body); len(runes) > maxBodyRunes {
		body = string(runes[:maxBodyRunes])
	}

	return Extracted{
		Title:       title,
		Author:      author,
		PublishDate: publishDate,
		Body:        body,
	}, nil
}

func landmarkText(doc *goquery.Document) string {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return blockText(article)
	}
	for _, sel := range []string{"main", ".content", "#content"} {
		if region := doc.Find(sel).First(); region.Length() > 0 {
			return blockText(region)
		}
	}
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// blockText joins the region's text with per-line trimming, dropping blanks.
func blockText(sel *goquery.Selection) string {
	var parts []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func parseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
