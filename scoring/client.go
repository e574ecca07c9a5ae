// Package scoring is the narrow interface to the black-box sentiment model.
// The core never computes sentiment; it sends text out and stores whatever
// polarity, entity, and keyword annotations come back.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Result is one scoring response: a polarity score in [-1, 1] plus the
// model's entity document and keyword list. The entity document is opaque to
// the ingestion core.
type Result struct {
	Score    float64         `json:"score"`
	Entities json.RawMessage `json:"entities"`
	Keywords []string        `json:"keywords"`
}

// Scorer is what ingestion callers depend on, so the model service can be
// swapped or faked.
type Scorer interface {
	Score(ctx context.Context, text string) (Result, error)
}

// Client talks to the model service over HTTP.
type Client struct {
	client *resty.Client
}

var _ Scorer = (*Client)(nil)

func NewClient(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(60 * time.Second)

	return &Client{client: client}
}

func (c *Client) Score(ctx context.Context, text string) (Result, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&Result{}).
		Post("/score")
	if err != nil {
		return Result{}, fmt.Errorf("score text: %w", err)
	}
	if !resp.IsSuccess() {
		return Result{}, fmt.Errorf("score text: status %s", resp.Status())
	}
	return *resp.Result().(*Result), nil
}
