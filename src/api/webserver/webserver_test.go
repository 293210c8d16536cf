package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge-io/ideaforge/src/ai"
	"github.com/ideaforge-io/ideaforge/src/api/config"
	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/store"
)

func setupTestServer(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	st := store.NewMemory()
	r := New(cfg, st, events.NewRecorder(), ai.NewClient(""))
	return r, st
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func mintToken(t *testing.T, r http.Handler, name, email, role string) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/v1/auth/token", map[string]string{
		"name": name, "email": email, "role": role,
	}, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestFullFlow(t *testing.T) {
	r, _ := setupTestServer(t)

	innovator := mintToken(t, r, "Sarah Chen", "sarah@example.com", "innovator")
	investor := mintToken(t, r, "Michael Rodriguez", "michael@example.com", "investor")
	reviewer := mintToken(t, r, "David Kim", "david@example.com", "investor")

	// create a published proposal
	resp := performRequest(r, http.MethodPost, "/v1/proposals", map[string]interface{}{
		"title":       "AI-Powered Mental Health Assistant",
		"description": "24/7 support platform",
		"category":    "healthcare",
		"stage":       "mvp",
		"fundingGoal": 250000,
		"publish":     true,
	}, innovator)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var proposal struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &proposal))
	base := fmt.Sprintf("/v1/proposals/%d", proposal.ID)

	// investors cannot create proposals
	resp = performRequest(r, http.MethodPost, "/v1/proposals", map[string]interface{}{
		"title": "x", "category": "other", "stage": "idea", "fundingGoal": 100,
	}, investor)
	require.Equal(t, http.StatusForbidden, resp.Code)

	// owner cannot back their own proposal
	resp = performRequest(r, http.MethodPost, base+"/invest", map[string]interface{}{"amount": 1000}, innovator)
	require.Equal(t, http.StatusForbidden, resp.Code)

	// unauthenticated writes bounce
	resp = performRequest(r, http.MethodPost, base+"/invest", map[string]interface{}{"amount": 1000}, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	// a real investment lands
	resp = performRequest(r, http.MethodPost, base+"/invest", map[string]interface{}{
		"amount": 50000, "terms": "equity",
	}, investor)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// bad amounts are rejected up front
	resp = performRequest(r, http.MethodPost, base+"/invest", map[string]interface{}{"amount": -5}, investor)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	// unknown proposal
	resp = performRequest(r, http.MethodPost, "/v1/proposals/9999/invest", map[string]interface{}{"amount": 10}, investor)
	require.Equal(t, http.StatusNotFound, resp.Code)

	// like toggling
	resp = performRequest(r, http.MethodPost, base+"/like", nil, investor)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"liked":true}`, resp.Body.String())
	resp = performRequest(r, http.MethodPost, base+"/like", nil, investor)
	require.JSONEq(t, `{"liked":false}`, resp.Body.String())

	// comments
	resp = performRequest(r, http.MethodPost, base+"/comments", map[string]interface{}{
		"content": "Ambitious but credible.", "rating": 4,
	}, reviewer)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var comment struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &comment))
	commentPath := fmt.Sprintf("%s/comments/%d", base, comment.ID)

	// only the author may edit
	resp = performRequest(r, http.MethodPatch, commentPath, map[string]interface{}{"rating": 1}, investor)
	require.Equal(t, http.StatusForbidden, resp.Code)
	resp = performRequest(r, http.MethodPatch, commentPath, map[string]interface{}{"rating": 5}, reviewer)
	require.Equal(t, http.StatusOK, resp.Code)

	// only the author may delete
	resp = performRequest(r, http.MethodDelete, commentPath, nil, investor)
	require.Equal(t, http.StatusForbidden, resp.Code)
	resp = performRequest(r, http.MethodDelete, commentPath, nil, reviewer)
	require.Equal(t, http.StatusNoContent, resp.Code)

	// proposal detail includes progress
	resp = performRequest(r, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var detail struct {
		Progress int `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	require.Equal(t, 20, detail.Progress)

	// public stats reflect the activity
	resp = performRequest(r, http.MethodGet, "/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var statsBody struct {
		TotalProposals int64 `json:"totalProposals"`
		TotalUsers     int64 `json:"totalUsers"`
		TotalFunding   int64 `json:"totalFunding"`
		SuccessRate    int   `json:"successRate"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &statsBody))
	require.Equal(t, int64(1), statsBody.TotalProposals)
	require.Equal(t, int64(3), statsBody.TotalUsers)
	require.Equal(t, int64(50000), statsBody.TotalFunding)
	require.Equal(t, 0, statsBody.SuccessRate)
}

func TestStatsAlwaysAnswers200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{JWTSecret: "test-secret", AllowedOrigins: []string{"*"}}
	// nil-backed store: every aggregate read fails
	r := New(cfg, downStore{}, events.NewRecorder(), ai.NewClient(""))

	resp := performRequest(r, http.MethodGet, "/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"totalProposals":0,"totalUsers":0,"totalFunding":0,"successRate":0}`, resp.Body.String())
}

type downStore struct {
	store.Store
}

func (s downStore) PlatformAggregates(ctx context.Context) (store.Aggregates, error) {
	return store.Aggregates{}, store.ErrUnavailable
}

func TestDraftProposalRejectsInvestments(t *testing.T) {
	r, _ := setupTestServer(t)

	innovator := mintToken(t, r, "Emily", "emily@example.com", "innovator")
	investor := mintToken(t, r, "Robert", "robert@example.com", "investor")

	resp := performRequest(r, http.MethodPost, "/v1/proposals", map[string]interface{}{
		"title": "Draft Only", "category": "technology", "stage": "idea", "fundingGoal": 1000,
	}, innovator)
	require.Equal(t, http.StatusCreated, resp.Code)
	var p struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &p))
	require.Equal(t, "draft", p.Status)

	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/v1/proposals/%d/invest", p.ID),
		map[string]interface{}{"amount": 100}, investor)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImpactEndpointUnconfigured(t *testing.T) {
	r, _ := setupTestServer(t)
	token := mintToken(t, r, "Sam", "sam@example.com", "investor")

	resp := performRequest(r, http.MethodPost, "/v1/ai/impact", map[string]string{"idea": "solar kiosk"}, token)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}
