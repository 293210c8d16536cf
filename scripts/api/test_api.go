// Minimal end‑to‑end integration test for the IdeaForge API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
)

var baseURL = getenv("API_URL", "http://localhost:8080/v1")

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	run := uuid.NewString()[:8]

	owner := mintToken("Smoke Innovator "+run, "innovator."+run+"@example.com", "innovator")
	backer := mintToken("Smoke Investor "+run, "investor."+run+"@example.com", "investor")

	id := createProposal(owner, run)
	investForbidden(owner, id) // self-investment must bounce
	invest(backer, id, 2500)
	invest(backer, id, 1500)
	checkFunding(id, 4000)

	toggleLike(backer, id, true)
	toggleLike(backer, id, false)

	cid := addComment(backer, id)
	deleteComment(backer, id, cid)

	checkStats()
	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- auth

func mintToken(name, email, role string) string {
	var resp struct{ Token string }
	doJSON("POST", "/auth/token", map[string]any{
		"name":  name,
		"email": email,
		"role":  role,
	}, &resp, http.StatusOK)
	if resp.Token == "" {
		log.Fatal("auth: empty token")
	}
	return resp.Token
}

// ----------------------------- proposals

func createProposal(tok, run string) uint64 {
	var resp struct{ ID uint64 }
	doAuth(tok, "POST", "/proposals", map[string]any{
		"title":       "smoke proposal " + run,
		"description": "created by scripts/api",
		"category":    "technology",
		"stage":       "idea",
		"fundingGoal": 100000,
		"publish":     true,
	}, &resp, http.StatusCreated)
	if resp.ID == 0 {
		log.Fatal("proposals: zero id")
	}
	return resp.ID
}

func checkFunding(id uint64, want int64) {
	var resp struct {
		Proposal struct{ CurrentFunding int64 }
	}
	doJSON("GET", fmt.Sprintf("/proposals/%d", id), nil, &resp, http.StatusOK)
	if resp.Proposal.CurrentFunding != want {
		log.Fatalf("funding: want %d got %d", want, resp.Proposal.CurrentFunding)
	}
}

// ----------------------------- investments

func invest(tok string, id uint64, amount int64) {
	doAuth(tok, "POST", fmt.Sprintf("/proposals/%d/invest", id), map[string]any{
		"amount": amount,
	}, nil, http.StatusCreated)
}

func investForbidden(tok string, id uint64) {
	doAuth(tok, "POST", fmt.Sprintf("/proposals/%d/invest", id), map[string]any{
		"amount": int64(1),
	}, nil, http.StatusForbidden)
}

// ----------------------------- engagement

func toggleLike(tok string, id uint64, want bool) {
	var resp struct{ Liked bool }
	doAuth(tok, "POST", fmt.Sprintf("/proposals/%d/like", id), nil, &resp, http.StatusOK)
	if resp.Liked != want {
		log.Fatalf("like: want %v got %v", want, resp.Liked)
	}
}

func addComment(tok string, id uint64) uint64 {
	var resp struct{ ID uint64 }
	doAuth(tok, "POST", fmt.Sprintf("/proposals/%d/comments", id), map[string]any{
		"content": "smoke comment " + uuid.NewString(),
		"rating":  4,
	}, &resp, http.StatusCreated)
	return resp.ID
}

func deleteComment(tok string, id, cid uint64) {
	doAuth(tok, "DELETE", fmt.Sprintf("/proposals/%d/comments/%d", id, cid), nil, nil, http.StatusNoContent)
}

// ----------------------------- stats

func checkStats() {
	var resp struct{ TotalProposals int64 }
	doJSON("GET", "/stats", nil, &resp, http.StatusOK)
	if resp.TotalProposals == 0 {
		log.Fatal("stats: no published proposals counted")
	}
}

// ----------------------------- helpers

func doAuth(token, method, path string, body, out any, want int) {
	doReq(method, path, token, body, out, want)
}

func doJSON(method, path string, body, out any, want int) {
	doReq(method, path, "", body, out, want)
}

func doReq(method, path, token string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
