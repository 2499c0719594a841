package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ai-news-digest/internal/model"
	"ai-news-digest/internal/store"
)

// ErrNoUnsent means delivery ran with nothing waiting to go out.
var ErrNoUnsent = errors.New("mail: no unsent digest")

// Store is the slice of the digest store the sender needs.
type Store interface {
	LatestUnsent(ctx context.Context) (model.DigestDocument, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
}

// Sender delivers digest documents and records the outcome. A failed send
// leaves the document unsent so the next delivery run retries it.
type Sender struct {
	store         Store
	client        *Client
	to            string
	subjectPrefix string
}

// NewSender wires a sender. subjectPrefix defaults to "AI News Digest".
func NewSender(st Store, client *Client, to, subjectPrefix string) *Sender {
	if subjectPrefix == "" {
		subjectPrefix = "AI News Digest"
	}
	return &Sender{store: st, client: client, to: to, subjectPrefix: subjectPrefix}
}

// SendDigest delivers one document and marks it sent on acceptance.
func (s *Sender) SendDigest(ctx context.Context, d model.DigestDocument) error {
	subject := fmt.Sprintf("%s - %s", s.subjectPrefix, d.Date.UTC().Format("January 2, 2006"))

	if err := s.client.Send(ctx, s.to, subject, d.HTMLContent); err != nil {
		slog.Error("mail: send failed", "digest_id", d.ID, "error", err)
		return err
	}
	if err := s.store.MarkSent(ctx, d.ID, time.Now().UTC()); err != nil {
		return err
	}
	slog.Info("mail: digest sent", "digest_id", d.ID, "recipient", s.to)
	return nil
}

// SendLatest delivers the most recent unsent digest, if any.
func (s *Sender) SendLatest(ctx context.Context) error {
	d, err := s.store.LatestUnsent(ctx)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("mail: nothing to send")
		return ErrNoUnsent
	}
	if err != nil {
		return err
	}
	return s.SendDigest(ctx, d)
}
