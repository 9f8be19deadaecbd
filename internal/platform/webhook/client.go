// Package webhook delivers giveaway state to the platform gateway that owns
// the actual chat messages. Delivery is best-effort: the engine's stored
// state stays authoritative whether or not the outward view updated.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

type Client struct {
	httpClient *http.Client
	url        string
}

// Event is the payload posted to the gateway for every outward update.
type Event struct {
	Type      string           `json:"type"` // created, updated, ended, announcement
	Giveaway  *models.Giveaway `json:"giveaway"`
	Announce  string           `json:"announce,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// Response is the gateway's reply. MessageID is set for created events.
type Response struct {
	Ok          bool   `json:"ok"`
	MessageID   int64  `json:"message_id,omitempty"`
	Description string `json:"description,omitempty"`
}

func NewClient(url string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		url: url,
	}
}

// Publish posts a newly created giveaway and returns the identifier of the
// message the gateway posted for it.
func (c *Client) Publish(ctx context.Context, giveaway *models.Giveaway) (int64, error) {
	resp, err := c.send(ctx, Event{Type: "created", Giveaway: giveaway})
	if err != nil {
		return 0, err
	}
	if resp.MessageID <= 0 {
		return 0, fmt.Errorf("gateway returned no message id")
	}
	return resp.MessageID, nil
}

// Refresh asks the gateway to re-render the posted message from the current
// giveaway state.
func (c *Client) Refresh(ctx context.Context, giveaway *models.Giveaway) error {
	eventType := "updated"
	if giveaway.Ended {
		eventType = "ended"
	}
	_, err := c.send(ctx, Event{Type: eventType, Giveaway: giveaway})
	return err
}

// Announce posts a free-standing message next to the giveaway, e.g. the
// winner announcement after an end or reroll.
func (c *Client) Announce(ctx context.Context, giveaway *models.Giveaway, text string) error {
	_, err := c.send(ctx, Event{Type: "announcement", Giveaway: giveaway, Announce: text})
	return err
}

func (c *Client) send(ctx context.Context, event Event) (*Response, error) {
	event.Timestamp = time.Now().Unix()

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d: %s", httpResp.StatusCode, raw)
	}

	resp := &Response{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, resp); err != nil {
			return nil, fmt.Errorf("failed to decode webhook response: %w", err)
		}
		if !resp.Ok {
			return nil, fmt.Errorf("gateway rejected event: %s", resp.Description)
		}
	}
	return resp, nil
}
