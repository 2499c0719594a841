// Package enrich runs stored content through the analysis provider and
// commits the structured results. Items that fail stay unprocessed and are
// retried on the next scheduled pass rather than immediately.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ai-news-digest/internal/ai"
	"ai-news-digest/internal/model"
)

// Store is the slice of the content store the enricher needs.
type Store interface {
	ListUnprocessed(ctx context.Context, limit int) ([]model.ContentItem, error)
	ApplyEnrichment(ctx context.Context, id int64, result model.EnrichmentResult) error
}

// Enricher analyzes unprocessed items one at a time.
type Enricher struct {
	store     Store
	provider  ai.Provider
	maxTokens int
}

// New wires an enricher. maxTokens caps each provider response.
func New(store Store, provider ai.Provider, maxTokens int) *Enricher {
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &Enricher{store: store, provider: provider, maxTokens: maxTokens}
}

// ProcessUnprocessed analyzes up to limit pending items, newest first, and
// returns how many were committed. A failing item logs and is skipped; the
// batch keeps going. Context cancellation stops between items.
func (e *Enricher) ProcessUnprocessed(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	items, err := e.store.ListUnprocessed(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("enrich: list unprocessed: %w", err)
	}

	processed := 0
	for _, item := range items {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}
		if err := e.ProcessItem(ctx, item); err != nil {
			slog.Error("enrich: item failed", "content_id", item.ID, "error", err)
			continue
		}
		processed++
	}
	slog.Info("enrich: batch complete", "processed", processed, "total", len(items))
	return processed, nil
}

// ProcessItem analyzes one item and commits the result atomically.
func (e *Enricher) ProcessItem(ctx context.Context, item model.ContentItem) error {
	slog.Info("enrich: processing", "content_id", item.ID, "title", item.Title)

	raw, err := e.provider.Complete(ctx, BuildPrompt(item), e.maxTokens)
	if err != nil {
		return fmt.Errorf("enrich: completion: %w", err)
	}
	result, err := ParseResult(raw)
	if err != nil {
		return fmt.Errorf("enrich: parse: %w", err)
	}
	if err := e.store.ApplyEnrichment(ctx, item.ID, result); err != nil {
		return fmt.Errorf("enrich: apply: %w", err)
	}
	slog.Info("enrich: processed", "content_id", item.ID, "score", result.RelevanceScore)
	return nil
}

// rawResult mirrors the provider's JSON contract. Summary may be a string or
// a list of bullets depending on the content type's prompt.
type rawResult struct {
	Summary           json.RawMessage `json:"summary"`
	KeyTimestamps     json.RawMessage `json:"key_timestamps"`
	ContentType       string          `json:"content_type"`
	Entities          map[string]any  `json:"entities"`
	Categories        []string        `json:"categories"`
	InvestmentSignals struct {
		RelevanceScore int    `json:"relevance_score"`
		Rationale      string `json:"rationale"`
	} `json:"investment_signals"`
}

// ParseResult decodes a provider response. Responses that are not bare JSON
// (fenced, or wrapped in prose) fall back to the outermost object substring.
func ParseResult(response string) (model.EnrichmentResult, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		extracted, ok := extractObject(response)
		if !ok {
			return model.EnrichmentResult{}, errors.New("no JSON object in response")
		}
		if err := json.Unmarshal([]byte(extracted), &raw); err != nil {
			return model.EnrichmentResult{}, err
		}
	}

	result := model.EnrichmentResult{
		Summary:        decodeSummary(raw.Summary),
		Categories:     decodeCategories(raw.Categories),
		Entities:       raw.Entities,
		RelevanceScore: raw.InvestmentSignals.RelevanceScore,
		Rationale:      raw.InvestmentSignals.Rationale,
	}

	// Type-specific extras ride along in the entities map.
	if len(raw.KeyTimestamps) > 0 && string(raw.KeyTimestamps) != "null" {
		var timestamps any
		if err := json.Unmarshal(raw.KeyTimestamps, &timestamps); err == nil {
			if result.Entities == nil {
				result.Entities = map[string]any{}
			}
			result.Entities["key_timestamps"] = timestamps
		}
	}
	if raw.ContentType != "" {
		if result.Entities == nil {
			result.Entities = map[string]any{}
		}
		result.Entities["video_type"] = raw.ContentType
	}
	return result, nil
}

// extractObject returns the outermost {...} substring of s.
func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// decodeSummary accepts either a prose string or a list of bullet points.
func decodeSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var bullets []string
	if err := json.Unmarshal(raw, &bullets); err == nil {
		lines := make([]string, 0, len(bullets))
		for _, b := range bullets {
			lines = append(lines, "• "+b)
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// decodeCategories keeps only values from the known classification set.
func decodeCategories(values []string) []model.Category {
	var out []model.Category
	for _, v := range values {
		c := model.Category(strings.ToLower(strings.TrimSpace(v)))
		for _, known := range model.Categories {
			if c == known {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
