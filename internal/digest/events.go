package digest

import (
	"time"

	"ai-news-digest/internal/model"
)

// DefaultEvents is the seed list of major AI/tech conferences. Seeding is
// idempotent per (name, quarter); re-running init never duplicates rows.
func DefaultEvents() []model.Event {
	return []model.Event{
		{
			Name:      "CES",
			StartDate: day(2026, time.January, 6),
			EndDate:   dayPtr(2026, time.January, 9),
			Location:  "Las Vegas, NV",
			Website:   "https://www.ces.tech/",
			Quarter:   "Q1 2026",
		},
		{
			Name:      "SXSW",
			StartDate: day(2026, time.March, 12),
			EndDate:   dayPtr(2026, time.March, 18),
			Location:  "Austin, TX",
			Website:   "https://www.sxsw.com/",
			Quarter:   "Q1 2026",
		},
		{
			Name:      "Google I/O",
			StartDate: day(2026, time.May, 12),
			EndDate:   dayPtr(2026, time.May, 13),
			Location:  "Mountain View, CA",
			Website:   "https://io.google/",
			Quarter:   "Q2 2026",
		},
		{
			Name:      "Microsoft Build",
			StartDate: day(2026, time.May, 18),
			EndDate:   dayPtr(2026, time.May, 20),
			Location:  "Seattle, WA",
			Website:   "https://build.microsoft.com/",
			Quarter:   "Q2 2026",
		},
		{
			Name:      "Dreamforce",
			StartDate: day(2026, time.September, 15),
			EndDate:   dayPtr(2026, time.September, 17),
			Location:  "San Francisco, CA",
			Website:   "https://www.salesforce.com/dreamforce/",
			Quarter:   "Q3 2026",
		},
		{
			Name:      "TechCrunch Disrupt",
			StartDate: day(2026, time.October, 13),
			EndDate:   dayPtr(2026, time.October, 15),
			Location:  "San Francisco, CA",
			Website:   "https://techcrunch.com/events/disrupt/",
			Quarter:   "Q4 2026",
		},
		{
			Name:      "AWS re:Invent",
			StartDate: day(2026, time.November, 30),
			EndDate:   dayPtr(2026, time.December, 4),
			Location:  "Las Vegas, NV",
			Website:   "https://reinvent.awsevents.com/",
			Quarter:   "Q4 2026",
		},
		{
			Name:      "NeurIPS",
			StartDate: day(2026, time.December, 6),
			EndDate:   dayPtr(2026, time.December, 12),
			Location:  "San Diego, CA",
			Website:   "https://neurips.cc/",
			Quarter:   "Q4 2026",
		},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}
