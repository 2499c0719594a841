package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ai-news-digest/internal/model"
)

var eventColumns = []string{
	"id", "name", "start_date", "end_date", "location", "website", "quarter",
}

func scanEvent(r rowScanner) (model.Event, error) {
	var (
		ev        model.Event
		startDate string
		endDate   sql.NullString
	)
	err := r.Scan(&ev.ID, &ev.Name, &startDate, &endDate, &ev.Location, &ev.Website, &ev.Quarter)
	if err != nil {
		return ev, err
	}
	ev.StartDate = parseTime(startDate)
	if endDate.Valid {
		t := parseTime(endDate.String)
		ev.EndDate = &t
	}
	return ev, nil
}

// AddEvent inserts one event; duplicates on (name, quarter) are no-ops.
func (s *Store) AddEvent(ctx context.Context, ev model.Event) error {
	if ev.Quarter == "" {
		ev.Quarter = QuarterOf(ev.StartDate)
	}
	var endDate any
	if ev.EndDate != nil {
		endDate = fmtTime(*ev.EndDate)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (name, start_date, end_date, location, website, quarter)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, quarter) DO NOTHING`,
		ev.Name, fmtTime(ev.StartDate), endDate, ev.Location, ev.Website, ev.Quarter,
	)
	if err != nil {
		return fmt.Errorf("store: add event: %w", err)
	}
	return nil
}

// SeedEvents loads a batch of events, skipping ones already present.
func (s *Store) SeedEvents(ctx context.Context, events []model.Event) error {
	for _, ev := range events {
		if err := s.AddEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// ListUpcomingEvents returns up to limit events starting within windowDays
// from now, ordered by start date.
func (s *Store) ListUpcomingEvents(ctx context.Context, now time.Time, windowDays, limit int) ([]model.Event, error) {
	cutoff := now.Add(time.Duration(windowDays) * 24 * time.Hour)
	b := sq.Select(eventColumns...).From("events").
		Where(sq.GtOrEq{"start_date": fmtTime(now)}).
		Where(sq.LtOrEq{"start_date": fmtTime(cutoff)}).
		OrderBy("start_date ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// QuarterOf renders a calendar quarter label like "Q1 2026".
func QuarterOf(t time.Time) string {
	q := (int(t.UTC().Month())-1)/3 + 1
	return fmt.Sprintf("Q%d %d", q, t.UTC().Year())
}
