// The notify service tails the API's event stream and fans each event out
// to websocket subscribers. Delivery is best effort: the write path never
// waits for this service, and a dropped event is only logged.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ideaforge-io/ideaforge/src/api/data"
	"github.com/ideaforge-io/ideaforge/src/api/events"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	port := getenv("PORT", "8081")
	rdb := data.MustRedis(getenv("REDIS_URL", "redis://127.0.0.1:6379/0"))
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	go listenForEvents(ctx, rdb, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Serve)
	httpSrv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("IdeaForge notify listening on %s", port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}

func listenForEvents(ctx context.Context, rdb *redis.Client, hub *Hub) {
	// "$" skips history: subscribers only care about activity from now on
	lastID := "$"

	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{events.Stream, lastID},
				Count:   10,
				Block:   5 * time.Second,
			}).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					log.Printf("read event stream: %v", err)
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					hub.Broadcast(encodeEvent(msg.Values))
					lastID = msg.ID
				}
			}
		}
	}
}

func encodeEvent(values map[string]interface{}) []byte {
	var ev events.Event
	if id, ok := values["id"].(string); ok {
		ev.ID = id
	}
	if typ, ok := values["type"].(string); ok {
		ev.Type = typ
	}
	if pid, ok := values["proposal_id"].(string); ok {
		ev.ProposalID, _ = strconv.ParseUint(pid, 10, 64)
	}
	if aid, ok := values["actor_id"].(string); ok {
		ev.ActorID, _ = strconv.ParseUint(aid, 10, 64)
	}
	if payload, ok := values["payload"].(string); ok {
		ev.Payload = payload
	}
	b, _ := json.Marshal(ev)
	return b
}
