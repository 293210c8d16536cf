package funding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
)

var (
	ErrForbidden     = errors.New("not allowed to invest in this proposal")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNotPublished  = errors.New("proposal is not accepting investments")
	ErrConflict      = errors.New("concurrent update, please retry")
)

// maxAttempts bounds the optimistic retry loop. The critical section is a
// single row update, so retries are immediate.
const maxAttempts = 5

const storeTimeout = 5 * time.Second

// Service records investments against proposals and keeps the derived
// CurrentFunding total equal to the sum of the underlying records.
type Service struct {
	store store.Store
	pub   events.Publisher
}

func New(st store.Store, pub events.Publisher) *Service {
	return &Service{store: st, pub: pub}
}

// Record appends one investment and bumps the proposal total atomically.
// When the write pushes CurrentFunding past FundingGoal, the same write
// flips the proposal to funded; only one writer can win that transition.
func (s *Service) Record(ctx context.Context, proposalID, investorID uint64, amount int64, terms string) (types.Investment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if amount <= 0 {
		return types.Investment{}, ErrInvalidAmount
	}

	investor, err := s.store.GetUser(ctx, investorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Investment{}, ErrForbidden
		}
		return types.Investment{}, err
	}
	if investor.Role != types.RoleInvestor {
		return types.Investment{}, ErrForbidden
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, err := s.store.GetProposal(ctx, proposalID)
		if err != nil {
			return types.Investment{}, err
		}
		if p.OwnerID == investorID {
			return types.Investment{}, ErrForbidden
		}
		if p.Status != types.StatusPublished {
			return types.Investment{}, ErrNotPublished
		}

		newTotal := p.CurrentFunding + amount
		newStatus := p.Status
		funded := newTotal >= p.FundingGoal
		if funded {
			newStatus = types.StatusFunded
		}

		inv := types.Investment{
			ProposalID: p.ID,
			InvestorID: investorID,
			Amount:     amount,
			Terms:      terms,
		}
		err = s.store.ApplyLedgerWrite(ctx, store.LedgerWrite{
			ProposalID:  p.ID,
			ReadVersion: p.Version,
			Investment:  &inv,
			NewTotal:    newTotal,
			NewStatus:   newStatus,
		})
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return types.Investment{}, err
		}

		s.afterCommit(ctx, p.ID, investorID, amount, funded)
		return inv, nil
	}
	return types.Investment{}, ErrConflict
}

// afterCommit applies the counter side effects and emits events. The ledger
// write has already committed; nothing here may roll it back or fail the
// caller.
func (s *Service) afterCommit(ctx context.Context, proposalID, investorID uint64, amount int64, funded bool) {
	if err := s.store.BumpTotalInvestments(ctx, investorID); err != nil {
		log.Printf("bump total investments for user %d: %v", investorID, err)
	}
	if funded {
		ids, err := s.store.DistinctInvestors(ctx, proposalID)
		if err != nil {
			log.Printf("distinct investors for proposal %d: %v", proposalID, err)
		} else if err := s.store.BumpSuccessfulInvestments(ctx, ids); err != nil {
			log.Printf("bump successful investments for proposal %d: %v", proposalID, err)
		}
	}

	events.Emit(s.pub, events.Event{
		Type:       events.TypeInvestmentRecorded,
		ProposalID: proposalID,
		ActorID:    investorID,
		Payload:    fmt.Sprintf(`{"amount":%d}`, amount),
	})
	if funded {
		events.Emit(s.pub, events.Event{
			Type:       events.TypeProposalFunded,
			ProposalID: proposalID,
			ActorID:    investorID,
		})
	}
}

// Investments lists the append-only ledger backing a proposal's total.
func (s *Service) Investments(ctx context.Context, proposalID uint64) ([]types.Investment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if _, err := s.store.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return s.store.ListInvestments(ctx, proposalID)
}
