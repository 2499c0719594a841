package model

import "time"

// ContentType tags the kind of source a ContentItem came from.
type ContentType string

const (
	TypeArticle ContentType = "article"
	TypePodcast ContentType = "podcast"
	TypeVideo   ContentType = "video"
)

// Category is the closed classification set assigned during enrichment.
type Category string

const (
	CategoryFunding       Category = "funding"
	CategoryProductLaunch Category = "product_launch"
	CategoryMA            Category = "m_and_a"
	CategoryRegulatory    Category = "regulatory"
	CategoryTalent        Category = "talent"
	CategoryTechnical     Category = "technical"
	CategoryTrend         Category = "trend"
)

// Categories lists every known category, in classification order.
var Categories = []Category{
	CategoryFunding,
	CategoryProductLaunch,
	CategoryMA,
	CategoryRegulatory,
	CategoryTalent,
	CategoryTechnical,
	CategoryTrend,
}

// ContentItem is one ingested unit (article/podcast/video) keyed by source URL.
// Enrichment fields stay zero until the enricher commits them all at once.
type ContentItem struct {
	ID              int64
	SourceName      string
	SourceURL       string
	ContentType     ContentType
	Title           string
	Author          string
	PublishDate     time.Time
	RawContent      string
	Transcript      string
	DurationSeconds int

	Summary        string
	Categories     []Category
	Entities       map[string]any
	RelevanceScore int
	Rationale      string

	Processed        bool
	IncludedInDigest bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCategory reports whether the item was classified under c.
func (it ContentItem) HasCategory(c Category) bool {
	for _, have := range it.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// Text returns the best available body for enrichment: the transcript when
// one exists, otherwise the raw content.
func (it ContentItem) Text() string {
	if it.Transcript != "" {
		return it.Transcript
	}
	return it.RawContent
}

// TopSignal is the denormalized snapshot of the highest-relevance item at
// digest generation time. It is frozen into the digest row; later edits to
// the source item do not reach it.
type TopSignal struct {
	ContentID int64  `json:"content_id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
}

// DigestDocument is one generated digest, at most one per calendar day.
type DigestDocument struct {
	ID          int64
	Date        time.Time
	ContentIDs  []int64
	TopSignal   *TopSignal
	HTMLContent string
	Sent        bool
	SentAt      *time.Time
	CreatedAt   time.Time
}

// Event is an upcoming conference/event attached to digests.
type Event struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	Location  string
	Website   string
	Quarter   string // e.g. "Q1 2026"
}

// EnrichmentResult is the structured output of one provider call.
type EnrichmentResult struct {
	Summary        string
	Categories     []Category
	Entities       map[string]any
	RelevanceScore int
	Rationale      string
}
