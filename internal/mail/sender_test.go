package mail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-news-digest/internal/model"
	"ai-news-digest/internal/store"
)

// fakeSendStore tracks sent flags.
type fakeSendStore struct {
	unsent *model.DigestDocument
	sentID int64
}

func (f *fakeSendStore) LatestUnsent(ctx context.Context) (model.DigestDocument, error) {
	if f.unsent == nil {
		return model.DigestDocument{}, store.ErrNotFound
	}
	return *f.unsent, nil
}

func (f *fakeSendStore) MarkSent(ctx context.Context, id int64, at time.Time) error {
	f.sentID = id
	return nil
}

func testDigest() model.DigestDocument {
	return model.DigestDocument{
		ID:          42,
		Date:        time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC),
		HTMLContent: "<html><body>digest body</body></html>",
	}
}

func TestSendDigestMarksSent(t *testing.T) {
	var captured []byte
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	st := &fakeSendStore{}
	client := NewClient(srv.URL, "sg-key", "digest@example.com", 0)
	s := NewSender(st, client, "reader@example.com", "")

	if err := s.SendDigest(context.Background(), testDigest()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if st.sentID != 42 {
		t.Fatalf("digest not marked sent, sentID=%d", st.sentID)
	}
	if auth != "Bearer sg-key" {
		t.Fatalf("auth header = %q", auth)
	}

	var req sendRequest
	if err := json.Unmarshal(captured, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if req.From.Email != "digest@example.com" {
		t.Fatalf("from = %q", req.From.Email)
	}
	if len(req.Personalizations) != 1 || req.Personalizations[0].To[0].Email != "reader@example.com" {
		t.Fatalf("recipients = %+v", req.Personalizations)
	}
	if !strings.Contains(req.Subject, "August 29, 2026") {
		t.Fatalf("subject = %q", req.Subject)
	}
	if req.Content[0].Type != "text/html" || !strings.Contains(req.Content[0].Value, "digest body") {
		t.Fatalf("content = %+v", req.Content)
	}
}

func TestSendDigestFailureLeavesUnsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad request"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	st := &fakeSendStore{}
	client := NewClient(srv.URL, "sg-key", "digest@example.com", 0)
	s := NewSender(st, client, "reader@example.com", "")

	if err := s.SendDigest(context.Background(), testDigest()); err == nil {
		t.Fatal("expected send failure")
	}
	if st.sentID != 0 {
		t.Fatal("failed send must not mark the digest sent")
	}
}

func TestSendLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := testDigest()
	st := &fakeSendStore{unsent: &d}
	client := NewClient(srv.URL, "sg-key", "digest@example.com", 0)
	s := NewSender(st, client, "reader@example.com", "")

	if err := s.SendLatest(context.Background()); err != nil {
		t.Fatalf("send latest: %v", err)
	}
	if st.sentID != d.ID {
		t.Fatal("latest digest not marked sent")
	}
}

func TestSendLatestNothingPending(t *testing.T) {
	st := &fakeSendStore{}
	client := NewClient("http://127.0.0.1:0", "sg-key", "digest@example.com", 0)
	s := NewSender(st, client, "reader@example.com", "")

	if err := s.SendLatest(context.Background()); !errors.Is(err, ErrNoUnsent) {
		t.Fatalf("expected ErrNoUnsent, got %v", err)
	}
}
