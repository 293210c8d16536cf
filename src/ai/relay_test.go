package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func replyWith(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
	}
}

func promptOf(t *testing.T, r *http.Request) string {
	t.Helper()
	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 1)
	return req.Contents[0].Parts[0].Text
}

func TestChatForwardsConversation(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		prompt = promptOf(t, r)
		replyWith("Sounds promising.")(w, r)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("test-key", srv.URL)
	reply, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "You are a startup advisor."},
		{Role: "user", Content: "Is a solar kiosk viable?"},
		{Role: "assistant", Content: "Depends on the market."},
		{Role: "user", Content: "Rural Kenya."},
	})
	require.NoError(t, err)
	require.Equal(t, "Sounds promising.", reply)
	require.Contains(t, prompt, "You are a startup advisor.")
	require.Contains(t, prompt, "User: Is a solar kiosk viable?")
	require.Contains(t, prompt, "Assistant: Depends on the market.")
	require.Contains(t, prompt, "User: Rural Kenya.")
}

func TestChatKeepsOnlyRecentTurns(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prompt = promptOf(t, r)
		replyWith("ok")(w, r)
	}))
	defer srv.Close()

	var msgs []Message
	for i := 0; i < 15; i++ {
		msgs = append(msgs, Message{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}

	c := NewClientWithEndpoint("test-key", srv.URL)
	_, err := c.Chat(context.Background(), msgs)
	require.NoError(t, err)
	require.NotContains(t, prompt, "turn 4")
	require.Contains(t, prompt, "turn 5")
	require.Contains(t, prompt, "turn 14")
}

func TestChatRequiresMessages(t *testing.T) {
	c := NewClientWithEndpoint("test-key", "http://unused")
	_, err := c.Chat(context.Background(), nil)
	require.Equal(t, BadRequest, KindOf(err))
}

func TestImpactScoreWrapsIdea(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prompt = promptOf(t, r)
		replyWith("Score: 72/100. Explanation: strong social upside.")(w, r)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("test-key", srv.URL)
	score, err := c.ImpactScore(context.Background(), "community solar kiosk")
	require.NoError(t, err)
	require.Equal(t, "Score: 72/100. Explanation: strong social upside.", score)
	require.Contains(t, prompt, "Idea: community solar kiosk")
	require.Contains(t, prompt, "Score: X/100")
}

func TestImpactScoreRejectsBlankIdea(t *testing.T) {
	c := NewClientWithEndpoint("test-key", "http://unused")
	_, err := c.ImpactScore(context.Background(), "   ")
	require.Equal(t, BadRequest, KindOf(err))
}

func TestUnconfiguredKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Equal(t, Unconfigured, KindOf(err))
}

func TestUpstreamStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, AuthFailed},
		{http.StatusForbidden, AuthFailed},
		{http.StatusBadRequest, BadRequest},
		{http.StatusTeapot, Unknown},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := NewClientWithEndpoint("test-key", srv.URL)
		_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
		require.Error(t, err, "status %d", tc.status)
		require.Equal(t, tc.want, KindOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestUpstreamRateLimitSurvivesRetries(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out retry backoff")
	}
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("test-key", srv.URL)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Equal(t, RateLimited, KindOf(err))
	require.Equal(t, 3, hits)
}

func TestMalformedAndEmptyResponses(t *testing.T) {
	for name, body := range map[string]string{
		"malformed": `{"candidates":`,
		"empty":     `{"candidates":[]}`,
		"blankPart": `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		c := NewClientWithEndpoint("test-key", srv.URL)
		_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
		require.Error(t, err, name)
		require.Equal(t, Unknown, KindOf(err), name)
		srv.Close()
	}
}

func TestUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClientWithEndpoint("test-key", srv.URL)
	_, err := c.Chat(ctx, []Message{{Role: "user", Content: "hi"}})
	require.Equal(t, Unavailable, KindOf(err))
}
