// Package mail delivers rendered digests over the SendGrid v3 API and
// records successful sends.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the SendGrid mail send API.
type Client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

// NewClient creates a client. baseURL defaults to the public API; tests point
// it at a local server.
func NewClient(baseURL, apiKey, from string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.sendgrid.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		http:    &http.Client{Timeout: timeout},
	}
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// Send posts one HTML email. Any accepted status (200, 201, 202) counts as
// delivered; SendGrid normally answers 202.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	if c == nil {
		return errors.New("nil mail client")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("mail: empty recipient")
	}

	body, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: []address{{Email: to}}}},
		From:             address{Email: c.from},
		Subject:          subject,
		Content:          []content{{Type: "text/html", Value: htmlBody}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	}
	b, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("mail: send failed: status=%d body=%s", resp.StatusCode, string(b))
}
