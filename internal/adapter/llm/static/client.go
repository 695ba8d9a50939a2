// Package static provides a deterministic chat client used when no API key
// is configured and in tests.
package static

import (
	"context"
	"strings"
)

const modelName = "static-v1"

// Client returns canned responses keyed by prompt content. With no scripted
// responses it reports a clean audit (empty issue list) for every prompt.
type Client struct {
	responses []Response
}

// Response is one scripted reply: the first response whose Contains
// substring matches the prompt is returned.
type Response struct {
	Contains string
	Reply    string
}

// NewClient constructs a static client with optional scripted responses.
func NewClient(responses ...Response) *Client {
	return &Client{responses: responses}
}

// Chat returns the first matching scripted reply, or "[]".
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	for _, r := range c.responses {
		if r.Contains == "" || strings.Contains(prompt, r.Contains) {
			return r.Reply, nil
		}
	}
	return "[]", nil
}

// Model returns the static model identifier.
func (c *Client) Model() string {
	return modelName
}
