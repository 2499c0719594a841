package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ai-news-digest/internal/model"
)

// ErrDigestSent rejects regeneration for a date whose digest already went out.
var ErrDigestSent = errors.New("store: digest for date already sent")

var digestColumns = []string{
	"id", "date", "content_ids", "top_signal", "html_content", "sent", "sent_at", "created_at",
}

func scanDigest(r rowScanner) (model.DigestDocument, error) {
	var (
		d          model.DigestDocument
		date       string
		contentIDs string
		topSignal  sql.NullString
		sent       int
		sentAt     sql.NullString
		createdAt  string
	)
	err := r.Scan(&d.ID, &date, &contentIDs, &topSignal, &d.HTMLContent, &sent, &sentAt, &createdAt)
	if err != nil {
		return d, err
	}
	d.Date = parseTime(date)
	d.CreatedAt = parseTime(createdAt)
	d.Sent = sent != 0
	if sentAt.Valid {
		t := parseTime(sentAt.String)
		d.SentAt = &t
	}
	if err := json.Unmarshal([]byte(contentIDs), &d.ContentIDs); err != nil {
		d.ContentIDs = nil
	}
	if topSignal.Valid && topSignal.String != "" {
		var ts model.TopSignal
		if err := json.Unmarshal([]byte(topSignal.String), &ts); err == nil {
			d.TopSignal = &ts
		}
	}
	return d, nil
}

// digestDay normalizes a digest date to its UTC calendar day, the digests
// table's uniqueness key.
func digestDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// SaveDigest persists the document and flips included_in_digest for every
// referenced item in the same transaction. Re-assembling a date that already
// has an unsent document supersedes it; a sent document is never replaced
// and yields ErrDigestSent.
func (s *Store) SaveDigest(ctx context.Context, d model.DigestDocument) (model.DigestDocument, error) {
	day := digestDay(d.Date)

	contentIDs, err := json.Marshal(emptyIDs(d.ContentIDs))
	if err != nil {
		return model.DigestDocument{}, fmt.Errorf("store: marshal content ids: %w", err)
	}
	var topSignal any
	if d.TopSignal != nil {
		b, err := json.Marshal(d.TopSignal)
		if err != nil {
			return model.DigestDocument{}, fmt.Errorf("store: marshal top signal: %w", err)
		}
		topSignal = string(b)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DigestDocument{}, fmt.Errorf("store: begin digest tx: %w", err)
	}
	defer tx.Rollback()

	var sent int
	err = tx.QueryRowContext(ctx, `SELECT sent FROM digests WHERE date = ?`, fmtTime(day)).Scan(&sent)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first digest for this day
	case err != nil:
		return model.DigestDocument{}, fmt.Errorf("store: check existing digest: %w", err)
	case sent != 0:
		return model.DigestDocument{}, ErrDigestSent
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO digests (date, content_ids, top_signal, html_content, sent, sent_at, created_at)
		VALUES (?, ?, ?, ?, 0, NULL, ?)
		ON CONFLICT(date) DO UPDATE SET
			content_ids = excluded.content_ids,
			top_signal = excluded.top_signal,
			html_content = excluded.html_content,
			sent = 0,
			sent_at = NULL,
			created_at = excluded.created_at`,
		fmtTime(day), string(contentIDs), topSignal, d.HTMLContent, fmtTime(time.Now()),
	)
	if err != nil {
		return model.DigestDocument{}, fmt.Errorf("store: save digest: %w", err)
	}

	for _, id := range d.ContentIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE content SET included_in_digest = 1, updated_at = ? WHERE id = ?`,
			fmtTime(time.Now()), id,
		); err != nil {
			return model.DigestDocument{}, fmt.Errorf("store: mark included %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.DigestDocument{}, fmt.Errorf("store: commit digest: %w", err)
	}

	return s.GetDigestByDate(ctx, day)
}

// GetDigestByDate returns the digest for a calendar day.
func (s *Store) GetDigestByDate(ctx context.Context, date time.Time) (model.DigestDocument, error) {
	query, args, err := sq.Select(digestColumns...).From("digests").
		Where(sq.Eq{"date": fmtTime(digestDay(date))}).ToSql()
	if err != nil {
		return model.DigestDocument{}, err
	}
	d, err := scanDigest(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.DigestDocument{}, ErrNotFound
	}
	if err != nil {
		return model.DigestDocument{}, fmt.Errorf("store: get digest: %w", err)
	}
	return d, nil
}

// LatestUnsent returns the most recently created digest still awaiting
// delivery.
func (s *Store) LatestUnsent(ctx context.Context) (model.DigestDocument, error) {
	query, args, err := sq.Select(digestColumns...).From("digests").
		Where(sq.Eq{"sent": 0}).
		OrderBy("created_at DESC").
		Limit(1).ToSql()
	if err != nil {
		return model.DigestDocument{}, err
	}
	d, err := scanDigest(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.DigestDocument{}, ErrNotFound
	}
	if err != nil {
		return model.DigestDocument{}, fmt.Errorf("store: latest unsent digest: %w", err)
	}
	return d, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE digests SET sent = 1, sent_at = ? WHERE id = ?`,
		fmtTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("store: mark digest sent: %w", err)
	}
	return nil
}

func emptyIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
