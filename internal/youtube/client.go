// Package youtube is a minimal YouTube Data API v3 client covering channel
// upload listings and per-video details.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client calls the YouTube Data API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client. baseURL defaults to the public v3 endpoint;
// tests point it at a local server.
func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Upload is one entry of a channel's uploads playlist.
type Upload struct {
	VideoID      string
	Title        string
	Description  string
	ChannelTitle string
	PublishedAt  time.Time
	Thumbnail    string
}

// VideoDetails carries the per-video fields resolved separately.
type VideoDetails struct {
	Duration string // ISO-8601 style, e.g. "PT1H30M45S"
}

type channelsResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// ChannelUploads lists a channel's most recent uploads (up to maxResults).
func (c *Client) ChannelUploads(ctx context.Context, channelID string, maxResults int) ([]Upload, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	var channels channelsResponse
	err := c.get(ctx, "/channels", url.Values{
		"part": {"contentDetails"},
		"id":   {channelID},
	}, &channels)
	if err != nil {
		return nil, err
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("youtube: channel %s not found", channelID)
	}
	playlistID := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	var playlist playlistItemsResponse
	err = c.get(ctx, "/playlistItems", url.Values{
		"part":       {"snippet,contentDetails"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(maxResults)},
	}, &playlist)
	if err != nil {
		return nil, err
	}

	uploads := make([]Upload, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		u := Upload{
			VideoID:      item.ContentDetails.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnail:    item.Snippet.Thumbnails.High.URL,
		}
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			u.PublishedAt = t.UTC()
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// Video resolves details for one video ID.
func (c *Client) Video(ctx context.Context, videoID string) (VideoDetails, error) {
	var videos videosResponse
	err := c.get(ctx, "/videos", url.Values{
		"part": {"snippet,contentDetails,statistics"},
		"id":   {videoID},
	}, &videos)
	if err != nil {
		return VideoDetails{}, err
	}
	if len(videos.Items) == 0 {
		return VideoDetails{}, fmt.Errorf("youtube: video %s not found", videoID)
	}
	return VideoDetails{Duration: videos.Items[0].ContentDetails.Duration}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("youtube: %s status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
