// Package ai relays free-form prompts to the hosted Gemini model and
// classifies upstream failures so handlers can map them to stable statuses.
package ai

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

	"github.com/ideaforge-io/ideaforge/src/webclient"
)

// Kind classifies a relay failure.
type Kind int

const (
	Unknown Kind = iota
	Unconfigured
	AuthFailed
	RateLimited
	BadRequest
	Unavailable
)

type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// KindOf extracts the failure kind; Unknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func failf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

type Message struct {
	Role    string `json:"role"` // system|user|assistant
	Content string `json:"content"`
}

// historyWindow bounds how many recent turns are forwarded upstream.
const historyWindow = 10

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithEndpoint points the relay at a non-default upstream; tests
// use it to stand in a local server.
func NewClientWithEndpoint(apiKey, endpoint string) *Client {
	c := NewClient(apiKey)
	c.endpoint = endpoint
	return c
}

// Chat forwards a conversation, keeping only the most recent turns.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", failf(BadRequest, "at least one message is required")
	}
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}

	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case "system":
			b.WriteString(m.Content + "\n\n")
		case "user":
			b.WriteString("User: " + m.Content + "\n\n")
		case "assistant":
			b.WriteString("Assistant: " + m.Content + "\n\n")
		}
	}
	prompt := strings.TrimSpace(b.String())
	if prompt == "" {
		prompt = messages[len(messages)-1].Content
	}
	return c.generate(ctx, prompt)
}

// ImpactScore asks the model to rate a proposal. The result is opaque text;
// the ledger core stores it without interpretation.
func (c *Client) ImpactScore(ctx context.Context, idea string) (string, error) {
	if strings.TrimSpace(idea) == "" {
		return "", failf(BadRequest, "idea text is required")
	}
	prompt := fmt.Sprintf(`Rate the impact of this idea on a scale of 1 to 100 and provide a brief explanation (1-2 sentences). Format your response as: "Score: X/100. Explanation: [your explanation]"

Idea: %s`, idea)
	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", failf(Unconfigured, "relay API key is not configured")
	}

	reqBody, _ := json.Marshal(map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})

	status, body, err := webclient.DoWithRetry(ctx, 3, time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return resp.StatusCode, b, err
	})
	if err != nil {
		return "", failf(Unavailable, "relay unreachable: %v", err)
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "", failf(AuthFailed, "relay authentication failed")
	case status == http.StatusTooManyRequests:
		return "", failf(RateLimited, "relay rate limit exceeded")
	case status == http.StatusBadRequest:
		return "", failf(BadRequest, "relay rejected the request")
	case status >= 500:
		return "", failf(Unavailable, "relay returned %d", status)
	case status != http.StatusOK:
		return "", failf(Unknown, "relay returned %d", status)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", failf(Unknown, "malformed relay response")
	}
	for _, cand := range result.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, nil
			}
		}
	}
	return "", failf(Unknown, "relay returned an empty response")
}
