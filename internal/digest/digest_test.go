package digest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai-news-digest/internal/model"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, ""},
		{-5, ""},
		{300, "5 min"},
		{1800, "30 min"},
		{3600, "1h 0m"},
		{5400, "1h 30m"},
		{7265, "2h 1m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// fakeDigestStore serves canned content and records the saved document.
type fakeDigestStore struct {
	items  []model.ContentItem
	events []model.Event
	saved  *model.DigestDocument
}

func (f *fakeDigestStore) ListProcessedBetween(ctx context.Context, from, to time.Time) ([]model.ContentItem, error) {
	return f.items, nil
}

func (f *fakeDigestStore) ListUpcomingEvents(ctx context.Context, now time.Time, windowDays, limit int) ([]model.Event, error) {
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeDigestStore) SaveDigest(ctx context.Context, d model.DigestDocument) (model.DigestDocument, error) {
	d.ID = 1
	f.saved = &d
	return d, nil
}

func item(id int64, score int, ct model.ContentType, cats ...model.Category) model.ContentItem {
	return model.ContentItem{
		ID:             id,
		SourceName:     "src",
		SourceURL:      fmt.Sprintf("https://example.com/%d", id),
		ContentType:    ct,
		Title:          fmt.Sprintf("Item %d", id),
		Summary:        "summary",
		Categories:     cats,
		RelevanceScore: score,
		Processed:      true,
	}
}

func TestAssembleSections(t *testing.T) {
	// Newest first, matching the store's ordering.
	st := &fakeDigestStore{items: []model.ContentItem{
		item(1, 5, model.TypeArticle),
		item(2, 9, model.TypeArticle, model.CategoryFunding),
		item(3, 7, model.TypeArticle, model.CategoryTrend),
	}}
	a := NewAssembler(st, 24, 90)

	d, err := a.Assemble(context.Background(), time.Date(2026, 8, 29, 6, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if d.TopSignal == nil || d.TopSignal.ID != 2 {
		t.Fatalf("top signal should be item 2, got %+v", d.TopSignal)
	}
	if len(d.Sections.InvestmentSignals) != 1 || d.Sections.InvestmentSignals[0].ID != 2 {
		t.Fatalf("investment section = %+v", d.Sections.InvestmentSignals)
	}
	if len(d.Sections.MarketIntelligence) != 1 || d.Sections.MarketIntelligence[0].ID != 3 {
		t.Fatalf("market section = %+v", d.Sections.MarketIntelligence)
	}
	if len(d.Sections.Technical) != 0 || len(d.Sections.DeepDives) != 0 {
		t.Fatalf("unexpected extra sections: %+v", d.Sections)
	}
	// The unremarkable item appears only in the counts.
	if d.Counts.Total != 3 || d.Counts.Articles != 3 {
		t.Fatalf("counts = %+v", d.Counts)
	}
}

func TestTopSignalTieBreaksTowardRecent(t *testing.T) {
	items := []model.ContentItem{
		item(10, 8, model.TypeArticle), // newest
		item(11, 8, model.TypeArticle),
		item(12, 6, model.TypeArticle),
	}
	got := topSignal(items)
	if got == nil || got.ID != 10 {
		t.Fatalf("expected newest of tied scores, got %+v", got)
	}

	if got := topSignal([]model.ContentItem{item(1, 6, model.TypeArticle)}); got != nil {
		t.Fatalf("scores below the floor must yield no top signal, got %+v", got)
	}
}

func TestCategorizeHighScoreWithoutCategories(t *testing.T) {
	s := categorize([]model.ContentItem{item(1, 8, model.TypeArticle)})
	if len(s.InvestmentSignals) != 1 {
		t.Fatalf("score >= 8 should reach the investment section: %+v", s)
	}
}

func TestCategorizeDeepDivesOverlap(t *testing.T) {
	// A high-scoring podcast lands in investment signals and deep dives.
	s := categorize([]model.ContentItem{item(1, 8, model.TypePodcast, model.CategoryFunding)})
	if len(s.InvestmentSignals) != 1 || len(s.DeepDives) != 1 {
		t.Fatalf("expected overlap, got %+v", s)
	}

	// A mid-scoring article never reaches deep dives.
	s = categorize([]model.ContentItem{item(2, 7, model.TypeArticle, model.CategoryTechnical)})
	if len(s.DeepDives) != 0 {
		t.Fatalf("articles are not deep dives: %+v", s)
	}
}

func TestCategorizeOrdersByRelevance(t *testing.T) {
	s := categorize([]model.ContentItem{
		item(1, 4, model.TypeArticle, model.CategoryFunding), // newest
		item(2, 9, model.TypeArticle, model.CategoryFunding),
		item(3, 9, model.TypeArticle, model.CategoryFunding), // oldest
	})
	got := s.InvestmentSignals
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Fatalf("expected relevance order with recency tie-break, got %v %v %v",
			got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestCategorizeCaps(t *testing.T) {
	var items []model.ContentItem
	for i := int64(1); i <= 15; i++ {
		items = append(items, item(i, 3, model.TypeArticle, model.CategoryFunding))
	}
	s := categorize(items)
	if len(s.InvestmentSignals) != maxInvestmentItems {
		t.Fatalf("investment cap = %d, got %d", maxInvestmentItems, len(s.InvestmentSignals))
	}
}

func TestCreateAndSave(t *testing.T) {
	st := &fakeDigestStore{
		items: []model.ContentItem{
			item(2, 9, model.TypePodcast, model.CategoryFunding),
			item(3, 7, model.TypeArticle, model.CategoryTrend),
		},
		events: []model.Event{
			{Name: "DevConf", StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), Location: "Austin, TX"},
		},
	}
	a := NewAssembler(st, 24, 90)

	doc, err := a.CreateAndSave(context.Background(), time.Date(2026, 8, 29, 6, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.saved == nil {
		t.Fatal("digest not saved")
	}
	// Item 2 sits in investment signals and deep dives but appears once.
	if len(doc.ContentIDs) != 2 {
		t.Fatalf("content ids = %v", doc.ContentIDs)
	}
	if doc.TopSignal == nil || doc.TopSignal.ContentID != 2 {
		t.Fatalf("top signal snapshot = %+v", doc.TopSignal)
	}
	for _, want := range []string{"Item 2", "Item 3", "Investment Signals", "Deep Dives", "DevConf"} {
		if !strings.Contains(doc.HTMLContent, want) {
			t.Fatalf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	it := item(1, 9, model.TypeArticle, model.CategoryFunding)
	it.Title = `<script>alert("x")</script>`
	d := Digest{
		Date:     time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		Counts:   Counts{Total: 1, Articles: 1},
		Sections: Sections{InvestmentSignals: []model.ContentItem{it}},
	}
	html, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert") {
		t.Fatal("title not escaped")
	}
	if !strings.Contains(html, "Saturday, August 29, 2026") {
		t.Fatalf("date not rendered: %.200s", html)
	}
}

func TestDefaultEventsQuarters(t *testing.T) {
	for _, ev := range DefaultEvents() {
		if ev.Quarter == "" {
			t.Errorf("event %q missing quarter", ev.Name)
		}
		if ev.EndDate != nil && ev.EndDate.Before(ev.StartDate) {
			t.Errorf("event %q ends before it starts", ev.Name)
		}
	}
}
