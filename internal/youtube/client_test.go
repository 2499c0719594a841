package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`)
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("playlistId") != "UU123" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"items":[
			{"snippet":{"title":"Ep 1","description":"d1","channelTitle":"Chan","publishedAt":"2026-08-28T09:00:00Z",
				"thumbnails":{"high":{"url":"https://img.example/1.jpg"}}},
			 "contentDetails":{"videoId":"vid1"}},
			{"snippet":{"title":"Ep 2","description":"d2","channelTitle":"Chan","publishedAt":"2026-08-27T09:00:00Z",
				"thumbnails":{"high":{"url":"https://img.example/2.jpg"}}},
			 "contentDetails":{"videoId":"vid2"}}
		]}`)
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "vid1" {
			fmt.Fprint(w, `{"items":[]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"contentDetails":{"duration":"PT1H2M3S"}}]}`)
	})
	return httptest.NewServer(mux)
}

func TestChannelUploads(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	uploads, err := c.ChannelUploads(context.Background(), "chan-id", 10)
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}
	first := uploads[0]
	if first.VideoID != "vid1" || first.Title != "Ep 1" || first.ChannelTitle != "Chan" {
		t.Fatalf("unexpected upload: %+v", first)
	}
	want := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("published = %v, want %v", first.PublishedAt, want)
	}
	if first.Thumbnail != "https://img.example/1.jpg" {
		t.Fatalf("thumbnail = %q", first.Thumbnail)
	}
}

func TestVideo(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	details, err := c.Video(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if details.Duration != "PT1H2M3S" {
		t.Fatalf("duration = %q", details.Duration)
	}

	if _, err := c.Video(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown video")
	}
}

func TestClientAuthFailure(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "wrong-key")
	if _, err := c.ChannelUploads(context.Background(), "chan-id", 10); err == nil {
		t.Fatal("expected error on auth failure")
	}
}
