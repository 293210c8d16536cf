package events

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Stream carries every event the API emits; the notify service tails it.
const Stream = "ideaforge.events"

// Event types
const (
	TypeInvestmentRecorded = "investment_recorded"
	TypeProposalFunded     = "proposal_funded"
	TypeCommentAdded       = "comment_added"
)

type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	ProposalID uint64 `json:"proposalId"`
	ActorID    uint64 `json:"actorId"`
	Payload    string `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Emit publishes in the background. Delivery is at-most-once: a failed
// publish is logged and never reaches the caller.
func Emit(pub Publisher, ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.Publish(ctx, ev); err != nil {
			log.Printf("event %s for proposal %d dropped: %v", ev.Type, ev.ProposalID, err)
		}
	}()
}

// Redis publishes events onto the shared stream.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: map[string]interface{}{
			"id":          ev.ID,
			"type":        ev.Type,
			"proposal_id": ev.ProposalID,
			"actor_id":    ev.ActorID,
			"payload":     ev.Payload,
		},
	}).Result()
	return err
}

// Recorder keeps events in memory; used by tests and DB-less runs.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
