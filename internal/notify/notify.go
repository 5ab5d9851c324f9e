// Package notify delivers push notifications for task events.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Title is the notification title shared by every call site.
const Title = "Taskwatch:"

const (
	pushURL     = "https://api.pushbullet.com/v2/pushes"
	httpTimeout = 10 * time.Second
)

// Notifier delivers a notification. Implementations make a single
// attempt per call; callers log failures and move on, they never retry
// or abort on them.
type Notifier interface {
	Send(title, body string) error
}

// Pushbullet sends note pushes through the Pushbullet API.
type Pushbullet struct {
	token  string
	client *http.Client
	url    string
}

// NewPushbullet returns a notifier using the given access token.
func NewPushbullet(token string) *Pushbullet {
	return &Pushbullet{
		token:  token,
		client: &http.Client{Timeout: httpTimeout},
		url:    pushURL,
	}
}

// Send posts a note push. An empty access token is an error so callers
// can surface the misconfiguration instead of silently dropping the
// notification.
func (p *Pushbullet) Send(title, body string) error {
	if p.token == "" {
		return errors.New("pushbullet access token not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"type":  "note",
		"title": title,
		"body":  body,
	})
	if err != nil {
		return fmt.Errorf("marshaling push: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Access-Token", p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("pushbullet returned %s", resp.Status)
	}

	return nil
}

// Nop discards notifications. Used when no access token is configured
// and in tests.
type Nop struct{}

// Send implements Notifier.
func (Nop) Send(title, body string) error { return nil }
