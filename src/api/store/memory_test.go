package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideaforge-io/ideaforge/src/api/types"
)

func TestLedgerWriteIsConditionalOnVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	p := types.Proposal{Title: "t", FundingGoal: 1000, Status: types.StatusPublished}
	require.NoError(t, s.CreateProposal(ctx, &p))

	// two writers read the same snapshot
	read, err := s.GetProposal(ctx, p.ID)
	require.NoError(t, err)

	first := types.Investment{ProposalID: p.ID, InvestorID: 1, Amount: 100}
	require.NoError(t, s.ApplyLedgerWrite(ctx, LedgerWrite{
		ProposalID:  p.ID,
		ReadVersion: read.Version,
		Investment:  &first,
		NewTotal:    read.CurrentFunding + 100,
		NewStatus:   read.Status,
	}))
	require.NotZero(t, first.ID)

	// the second writer's snapshot is now stale
	second := types.Investment{ProposalID: p.ID, InvestorID: 2, Amount: 200}
	err = s.ApplyLedgerWrite(ctx, LedgerWrite{
		ProposalID:  p.ID,
		ReadVersion: read.Version,
		Investment:  &second,
		NewTotal:    read.CurrentFunding + 200,
		NewStatus:   read.Status,
	})
	require.ErrorIs(t, err, ErrVersionConflict)

	// the losing write left no trace
	got, err := s.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), got.CurrentFunding)
	require.Equal(t, read.Version+1, got.Version)
	list, err := s.ListInvestments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// re-reading gives the second writer a fresh version to swap on
	err = s.ApplyLedgerWrite(ctx, LedgerWrite{
		ProposalID:  p.ID,
		ReadVersion: got.Version,
		Investment:  &second,
		NewTotal:    got.CurrentFunding + 200,
		NewStatus:   got.Status,
	})
	require.NoError(t, err)
	got, _ = s.GetProposal(ctx, p.ID)
	require.Equal(t, int64(300), got.CurrentFunding)
}

func TestLedgerWriteUnknownProposal(t *testing.T) {
	s := NewMemory()
	inv := types.Investment{ProposalID: 42, InvestorID: 1, Amount: 1}
	err := s.ApplyLedgerWrite(context.Background(), LedgerWrite{
		ProposalID: 42, Investment: &inv, NewTotal: 1, NewStatus: types.StatusPublished,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDistinctInvestorsDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	p := types.Proposal{Title: "t", FundingGoal: 1000, Status: types.StatusPublished}
	require.NoError(t, s.CreateProposal(ctx, &p))

	for _, investor := range []uint64{7, 8, 7, 9, 8} {
		read, err := s.GetProposal(ctx, p.ID)
		require.NoError(t, err)
		inv := types.Investment{ProposalID: p.ID, InvestorID: investor, Amount: 10}
		require.NoError(t, s.ApplyLedgerWrite(ctx, LedgerWrite{
			ProposalID:  p.ID,
			ReadVersion: read.Version,
			Investment:  &inv,
			NewTotal:    read.CurrentFunding + 10,
			NewStatus:   read.Status,
		}))
	}

	ids, err := s.DistinctInvestors(ctx, p.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{7, 8, 9}, ids)
}

func TestAggregatesCountPublishedOnly(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.CreateUser(ctx, &types.User{Name: "a", Email: "a@x", Role: types.RoleInvestor}))

	seed := func(status string, goal, funding int64) {
		p := types.Proposal{Title: "t", FundingGoal: goal, CurrentFunding: funding, Status: status}
		require.NoError(t, s.CreateProposal(ctx, &p))
	}
	seed(types.StatusDraft, 1000, 900)
	seed(types.StatusPublished, 1000, 850)
	seed(types.StatusPublished, 1000, 100)
	seed(types.StatusFunded, 1000, 1000)

	agg, err := s.PlatformAggregates(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), agg.PublishedProposals)
	require.Equal(t, int64(1), agg.Users)
	require.Equal(t, int64(950), agg.PublishedFunding)
	// the 85% published one and the funded one are near goal; the draft is not
	require.Equal(t, int64(2), agg.NearGoal)
}

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	p := types.Proposal{Title: "t", FundingGoal: 1, Status: types.StatusPublished}
	require.NoError(t, s.CreateProposal(ctx, &p))

	c := types.Comment{ProposalID: p.ID, AuthorID: 3, Content: "solid plan", Rating: 4}
	require.NoError(t, s.AddComment(ctx, &c))
	require.NotZero(t, c.ID)

	got, err := s.GetComment(ctx, p.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, "solid plan", got.Content)

	got.Rating = 5
	require.NoError(t, s.UpdateComment(ctx, got))
	got, _ = s.GetComment(ctx, p.ID, c.ID)
	require.Equal(t, 5, got.Rating)

	require.NoError(t, s.DeleteComment(ctx, p.ID, c.ID))
	_, err = s.GetComment(ctx, p.ID, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteComment(ctx, p.ID, c.ID), ErrNotFound)
}
