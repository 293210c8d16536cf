package stats

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
)

// Stats is the landing-page rollup. All amounts are cents; SuccessRate is a
// rounded integer percentage of published proposals at >= 80% of their goal.
type Stats struct {
	TotalProposals int64 `json:"totalProposals"`
	TotalUsers     int64 `json:"totalUsers"`
	TotalFunding   int64 `json:"totalFunding"`
	SuccessRate    int   `json:"successRate"`
}

const storeTimeout = 3 * time.Second

// Service computes read-only platform rollups. It never returns an error:
// the landing page must render even when the store is down, so any failure
// degrades to the zero value.
type Service struct {
	store store.Store
}

func New(st store.Store) *Service { return &Service{store: st} }

func (s *Service) Platform(ctx context.Context) Stats {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	agg, err := s.store.PlatformAggregates(ctx)
	if err != nil {
		log.Printf("platform stats degraded to zeros: %v", err)
		return Stats{}
	}

	out := Stats{
		TotalProposals: agg.PublishedProposals,
		TotalUsers:     agg.Users,
		TotalFunding:   agg.PublishedFunding,
	}
	if agg.PublishedProposals > 0 {
		out.SuccessRate = int(math.Round(float64(agg.NearGoal) / float64(agg.PublishedProposals) * 100))
	}
	return out
}

// Progress reports funding progress as a percentage clamped to [0,100].
// Computed on demand, never persisted.
func Progress(p types.Proposal) int {
	if p.FundingGoal <= 0 {
		return 0
	}
	pct := math.Round(float64(p.CurrentFunding) / float64(p.FundingGoal) * 100)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}
