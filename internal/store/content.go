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

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

var contentColumns = []string{
	"id", "source_name", "source_url", "content_type", "title", "author",
	"publish_date", "raw_content", "transcript", "duration_seconds",
	"summary", "categories", "entities", "relevance_score", "rationale",
	"processed", "included_in_digest", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(r rowScanner) (model.ContentItem, error) {
	var (
		it                   model.ContentItem
		publishDate          string
		categories, entities string
		createdAt, updatedAt string
		processed, inDigest  int
	)
	err := r.Scan(
		&it.ID, &it.SourceName, &it.SourceURL, &it.ContentType, &it.Title, &it.Author,
		&publishDate, &it.RawContent, &it.Transcript, &it.DurationSeconds,
		&it.Summary, &categories, &entities, &it.RelevanceScore, &it.Rationale,
		&processed, &inDigest, &createdAt, &updatedAt,
	)
	if err != nil {
		return it, err
	}
	it.PublishDate = parseTime(publishDate)
	it.CreatedAt = parseTime(createdAt)
	it.UpdatedAt = parseTime(updatedAt)
	it.Processed = processed != 0
	it.IncludedInDigest = inDigest != 0
	if err := json.Unmarshal([]byte(categories), &it.Categories); err != nil {
		it.Categories = nil
	}
	if err := json.Unmarshal([]byte(entities), &it.Entities); err != nil {
		it.Entities = nil
	}
	return it, nil
}

// InsertIfAbsent stores the item unless a row with the same source URL
// already exists. The uniqueness constraint on source_url decides, so two
// fetchers racing on the same URL still end with exactly one row. A conflict
// is not an error: the existing row is returned with wasNew=false.
func (s *Store) InsertIfAbsent(ctx context.Context, item model.ContentItem) (model.ContentItem, bool, error) {
	categories, err := json.Marshal(emptyCategories(item.Categories))
	if err != nil {
		return model.ContentItem{}, false, fmt.Errorf("store: marshal categories: %w", err)
	}
	entities, err := json.Marshal(emptyEntities(item.Entities))
	if err != nil {
		return model.ContentItem{}, false, fmt.Errorf("store: marshal entities: %w", err)
	}
	now := fmtTime(time.Now())

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO content (
			source_name, source_url, content_type, title, author,
			publish_date, raw_content, transcript, duration_seconds,
			summary, categories, entities, relevance_score, rationale,
			processed, included_in_digest, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
		ON CONFLICT(source_url) DO NOTHING`,
		item.SourceName, item.SourceURL, string(item.ContentType), item.Title, item.Author,
		fmtTime(item.PublishDate), item.RawContent, item.Transcript, item.DurationSeconds,
		item.Summary, string(categories), string(entities), item.RelevanceScore, item.Rationale,
		now, now,
	)
	if err != nil {
		return model.ContentItem{}, false, fmt.Errorf("store: insert content: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.ContentItem{}, false, fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		existing, err := s.GetByURL(ctx, item.SourceURL)
		if err != nil {
			return model.ContentItem{}, false, err
		}
		return existing, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.ContentItem{}, false, fmt.Errorf("store: last insert id: %w", err)
	}
	stored, err := s.GetByID(ctx, id)
	if err != nil {
		return model.ContentItem{}, false, err
	}
	return stored, true, nil
}

// GetByID returns one item by primary key.
func (s *Store) GetByID(ctx context.Context, id int64) (model.ContentItem, error) {
	query, args, err := sq.Select(contentColumns...).From("content").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.ContentItem{}, err
	}
	it, err := scanContent(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentItem{}, ErrNotFound
	}
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("store: get content %d: %w", id, err)
	}
	return it, nil
}

// GetByURL looks an item up by its dedup key.
func (s *Store) GetByURL(ctx context.Context, sourceURL string) (model.ContentItem, error) {
	query, args, err := sq.Select(contentColumns...).From("content").Where(sq.Eq{"source_url": sourceURL}).ToSql()
	if err != nil {
		return model.ContentItem{}, err
	}
	it, err := scanContent(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentItem{}, ErrNotFound
	}
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("store: get content by url: %w", err)
	}
	return it, nil
}

// ListUnprocessed returns up to limit items awaiting enrichment, newest
// publish date first.
func (s *Store) ListUnprocessed(ctx context.Context, limit int) ([]model.ContentItem, error) {
	b := sq.Select(contentColumns...).From("content").
		Where(sq.Eq{"processed": 0}).
		OrderBy("publish_date DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return s.listContent(ctx, b)
}

// ListSince returns all items published at or after since, newest first.
func (s *Store) ListSince(ctx context.Context, since time.Time) ([]model.ContentItem, error) {
	b := sq.Select(contentColumns...).From("content").
		Where(sq.GtOrEq{"publish_date": fmtTime(since)}).
		OrderBy("publish_date DESC")
	return s.listContent(ctx, b)
}

// ListProcessedBetween returns enriched items published inside [from, to],
// newest first. This is the digest assembler's selection query.
func (s *Store) ListProcessedBetween(ctx context.Context, from, to time.Time) ([]model.ContentItem, error) {
	b := sq.Select(contentColumns...).From("content").
		Where(sq.Eq{"processed": 1}).
		Where(sq.GtOrEq{"publish_date": fmtTime(from)}).
		Where(sq.LtOrEq{"publish_date": fmtTime(to)}).
		OrderBy("publish_date DESC")
	return s.listContent(ctx, b)
}

func (s *Store) listContent(ctx context.Context, b sq.SelectBuilder) ([]model.ContentItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list content: %w", err)
	}
	defer rows.Close()

	var items []model.ContentItem
	for rows.Next() {
		it, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan content: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ApplyEnrichment commits the enrichment result for one item in a single
// transaction: entities returned by the provider are merged into the stored
// map (new keys win), and every enrichment column flips together with
// processed=1. A concurrent reader never observes processed=1 alongside
// stale or partial enrichment fields.
func (s *Store) ApplyEnrichment(ctx context.Context, id int64, result model.EnrichmentResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin enrichment tx: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRowContext(ctx, `SELECT entities FROM content WHERE id = ?`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: read entities: %w", err)
	}

	merged := map[string]any{}
	if err := json.Unmarshal([]byte(stored), &merged); err != nil {
		merged = map[string]any{}
	}
	for k, v := range result.Entities {
		merged[k] = v
	}

	entities, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("store: marshal entities: %w", err)
	}
	categories, err := json.Marshal(emptyCategories(result.Categories))
	if err != nil {
		return fmt.Errorf("store: marshal categories: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE content
		SET summary = ?, categories = ?, entities = ?, relevance_score = ?,
		    rationale = ?, processed = 1, updated_at = ?
		WHERE id = ?`,
		result.Summary, string(categories), string(entities), result.RelevanceScore,
		result.Rationale, fmtTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("store: apply enrichment: %w", err)
	}

	return tx.Commit()
}

func emptyCategories(cs []model.Category) []model.Category {
	if cs == nil {
		return []model.Category{}
	}
	return cs
}

func emptyEntities(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
