// Storage smoke test: verifies the MySQL ledger write path and the Redis
// event stream against live backends. Run it against disposable instances.
package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/ideaforge-io/ideaforge/src/api/data"
	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()

	dsn := getenv("MYSQL_DSN", "ideaforge:ideaforge@tcp(localhost:3306)/ideaforge?parseTime=true")
	db := data.MustMySQL(dsn)
	if err := db.AutoMigrate(&types.User{}, &types.Proposal{}, &types.Investment{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	st := store.NewGorm(db)

	p := types.Proposal{
		Title:       "storage smoke " + uuid.NewString()[:8],
		Category:    "other",
		Stage:       "idea",
		FundingGoal: 1000,
		Status:      types.StatusPublished,
	}
	if err := st.CreateProposal(ctx, &p); err != nil {
		log.Fatalf("create proposal: %v", err)
	}
	log.Printf("proposal %d created", p.ID)

	read, err := st.GetProposal(ctx, p.ID)
	if err != nil {
		log.Fatalf("get proposal: %v", err)
	}

	inv := types.Investment{ProposalID: p.ID, InvestorID: 1, Amount: 250}
	err = st.ApplyLedgerWrite(ctx, store.LedgerWrite{
		ProposalID:  p.ID,
		ReadVersion: read.Version,
		Investment:  &inv,
		NewTotal:    read.CurrentFunding + 250,
		NewStatus:   read.Status,
	})
	if err != nil {
		log.Fatalf("ledger write: %v", err)
	}
	log.Printf("investment %d recorded", inv.ID)

	// the same snapshot must now be stale
	stale := types.Investment{ProposalID: p.ID, InvestorID: 1, Amount: 250}
	err = st.ApplyLedgerWrite(ctx, store.LedgerWrite{
		ProposalID:  p.ID,
		ReadVersion: read.Version,
		Investment:  &stale,
		NewTotal:    read.CurrentFunding + 500,
		NewStatus:   read.Status,
	})
	if err != store.ErrVersionConflict {
		log.Fatalf("stale write: want version conflict, got %v", err)
	}
	log.Print("stale write rejected")

	rdb := data.MustRedis(getenv("REDIS_URL", "redis://localhost:6379/0"))
	defer rdb.Close()

	pub := events.NewRedis(rdb)
	ev := events.Event{
		ID:         uuid.NewString(),
		Type:       events.TypeInvestmentRecorded,
		ProposalID: p.ID,
		ActorID:    1,
		Payload:    `{"amount":250}`,
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Fatalf("publish: %v", err)
	}

	res, err := rdb.XRevRangeN(ctx, events.Stream, "+", "-", 1).Result()
	if err != nil || len(res) == 0 {
		log.Fatalf("stream read back: %v", err)
	}
	if got := res[0].Values["id"]; got != ev.ID {
		log.Fatalf("stream read back: want %s got %v", ev.ID, got)
	}
	log.Print("event stream round trip ok")

	log.Print("✓ storage paths ok")
}
