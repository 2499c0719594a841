// Package digest turns the last day's processed content into a sectioned
// HTML briefing and persists it as the day's digest document.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ai-news-digest/internal/model"
)

// Section caps keep the email scannable regardless of how busy the window was.
const (
	maxInvestmentItems = 10
	maxMarketItems     = 8
	maxTechnicalItems  = 5
	maxDeepDives       = 3
	maxEvents          = 5
)

// highRelevance promotes an item into the investment section regardless of
// its categories; topSignalFloor gates the headline pick; deepDiveFloor gates
// long-form content.
const (
	topSignalFloor = 7
	highRelevance  = 8
	deepDiveFloor  = 6
)

// Store is the slice of the content store the assembler needs.
type Store interface {
	ListProcessedBetween(ctx context.Context, from, to time.Time) ([]model.ContentItem, error)
	ListUpcomingEvents(ctx context.Context, now time.Time, windowDays, limit int) ([]model.Event, error)
	SaveDigest(ctx context.Context, d model.DigestDocument) (model.DigestDocument, error)
}

// Counts summarizes the window's intake by content type.
type Counts struct {
	Articles int
	Podcasts int
	Videos   int
	Total    int
}

// Sections holds the categorized digest body. An item lands in at most one of
// the first three sections; deep dives can additionally repeat long-form items.
type Sections struct {
	InvestmentSignals  []model.ContentItem
	MarketIntelligence []model.ContentItem
	Technical          []model.ContentItem
	DeepDives          []model.ContentItem
}

// Digest is the assembled briefing before rendering and persistence.
type Digest struct {
	Date      time.Time
	Counts    Counts
	TopSignal *model.ContentItem
	Sections  Sections
	Events    []model.Event
}

// Assembler builds digests from stored content.
type Assembler struct {
	store            Store
	windowHours      int
	eventsWindowDays int
}

// NewAssembler wires an assembler. Zero windows fall back to one day of
// content and one quarter of events.
func NewAssembler(store Store, windowHours, eventsWindowDays int) *Assembler {
	if windowHours <= 0 {
		windowHours = 24
	}
	if eventsWindowDays <= 0 {
		eventsWindowDays = 90
	}
	return &Assembler{store: store, windowHours: windowHours, eventsWindowDays: eventsWindowDays}
}

// Assemble gathers processed content published inside the window ending at
// now and categorizes it into sections.
func (a *Assembler) Assemble(ctx context.Context, now time.Time) (Digest, error) {
	now = now.UTC()
	from := now.Add(-time.Duration(a.windowHours) * time.Hour)

	items, err := a.store.ListProcessedBetween(ctx, from, now)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: list content: %w", err)
	}
	events, err := a.store.ListUpcomingEvents(ctx, now, a.eventsWindowDays, maxEvents)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: list events: %w", err)
	}

	d := Digest{
		Date:      now,
		Counts:    countByType(items),
		TopSignal: topSignal(items),
		Sections:  categorize(items),
		Events:    events,
	}
	return d, nil
}

// CreateAndSave assembles, renders, and persists the digest for now's
// calendar day, flagging every included item. Regenerating a day whose
// digest was already sent fails; an unsent one is replaced.
func (a *Assembler) CreateAndSave(ctx context.Context, now time.Time) (model.DigestDocument, error) {
	d, err := a.Assemble(ctx, now)
	if err != nil {
		return model.DigestDocument{}, err
	}
	html, err := RenderHTML(d)
	if err != nil {
		return model.DigestDocument{}, fmt.Errorf("digest: render: %w", err)
	}

	doc := model.DigestDocument{
		Date:        d.Date,
		ContentIDs:  collectIDs(d.Sections),
		HTMLContent: html,
	}
	if d.TopSignal != nil {
		doc.TopSignal = &model.TopSignal{
			ContentID: d.TopSignal.ID,
			Title:     d.TopSignal.Title,
			Summary:   d.TopSignal.Summary,
		}
	}

	saved, err := a.store.SaveDigest(ctx, doc)
	if err != nil {
		return model.DigestDocument{}, err
	}
	slog.Info("digest: created", "digest_id", saved.ID, "items", len(saved.ContentIDs))
	return saved, nil
}

func countByType(items []model.ContentItem) Counts {
	c := Counts{Total: len(items)}
	for _, it := range items {
		switch it.ContentType {
		case model.TypeArticle:
			c.Articles++
		case model.TypePodcast:
			c.Podcasts++
		case model.TypeVideo:
			c.Videos++
		}
	}
	return c
}

// topSignal picks the highest-scoring item at or above the floor. The input
// is ordered newest first, so on a score tie the most recent item wins.
func topSignal(items []model.ContentItem) *model.ContentItem {
	var best *model.ContentItem
	for i := range items {
		it := &items[i]
		if it.RelevanceScore < topSignalFloor {
			continue
		}
		if best == nil || it.RelevanceScore > best.RelevanceScore {
			best = it
		}
	}
	if best == nil {
		return nil
	}
	copied := *best
	return &copied
}

// categorize routes items into sections. The first three sections are
// mutually exclusive and checked in priority order; deep dives are an
// independent pass over long-form content.
func categorize(items []model.ContentItem) Sections {
	var s Sections
	for _, it := range items {
		switch {
		case it.HasCategory(model.CategoryFunding) ||
			it.HasCategory(model.CategoryProductLaunch) ||
			it.HasCategory(model.CategoryMA) ||
			it.RelevanceScore >= highRelevance:
			s.InvestmentSignals = append(s.InvestmentSignals, it)
		case it.HasCategory(model.CategoryTrend) ||
			it.HasCategory(model.CategoryRegulatory) ||
			it.HasCategory(model.CategoryTalent):
			s.MarketIntelligence = append(s.MarketIntelligence, it)
		case it.HasCategory(model.CategoryTechnical):
			s.Technical = append(s.Technical, it)
		}

		if (it.ContentType == model.TypePodcast || it.ContentType == model.TypeVideo) &&
			it.RelevanceScore >= deepDiveFloor {
			s.DeepDives = append(s.DeepDives, it)
		}
	}
	s.InvestmentSignals = capSection(s.InvestmentSignals, maxInvestmentItems)
	s.MarketIntelligence = capSection(s.MarketIntelligence, maxMarketItems)
	s.Technical = capSection(s.Technical, maxTechnicalItems)
	s.DeepDives = capSection(s.DeepDives, maxDeepDives)
	return s
}

// capSection orders a bucket by relevance, keeping the input's recency order
// within equal scores, then truncates to the cap.
func capSection(items []model.ContentItem, max int) []model.ContentItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
	if len(items) > max {
		return items[:max]
	}
	return items
}

// collectIDs flattens the sections into a deduplicated ID list in section
// order. Deep dives can repeat an item already placed elsewhere.
func collectIDs(s Sections) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, section := range [][]model.ContentItem{
		s.InvestmentSignals, s.MarketIntelligence, s.Technical, s.DeepDives,
	} {
		for _, it := range section {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			ids = append(ids, it.ID)
		}
	}
	return ids
}
