package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ideaforge-io/ideaforge/src/api/types"
)

// Memory implements Store on in-process maps with the same conditional-write
// semantics as the MySQL store. It backs unit tests and DB-less local runs.
type Memory struct {
	mu          sync.Mutex
	users       map[uint64]*types.User
	proposals   map[uint64]*types.Proposal
	investments map[uint64][]types.Investment // keyed by proposal
	likes       map[uint64]map[uint64]time.Time
	comments    map[uint64]map[uint64]*types.Comment
	nextID      uint64
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[uint64]*types.User),
		proposals:   make(map[uint64]*types.Proposal),
		investments: make(map[uint64][]types.Investment),
		likes:       make(map[uint64]map[uint64]time.Time),
		comments:    make(map[uint64]map[uint64]*types.Comment),
	}
}

func (s *Memory) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Memory) CreateUser(ctx context.Context, u *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Memory) GetUser(ctx context.Context, id uint64) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return *u, nil
}

func (s *Memory) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (s *Memory) BumpTotalInvestments(ctx context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.TotalInvestments++
	}
	return nil
}

func (s *Memory) BumpSuccessfulInvestments(ctx context.Context, userIDs []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			u.SuccessfulInvestments++
		}
	}
	return nil
}

func (s *Memory) CreateProposal(ctx context.Context, p *types.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	s.proposals[p.ID] = &cp
	return nil
}

func (s *Memory) GetProposal(ctx context.Context, id uint64) (types.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return types.Proposal{}, ErrNotFound
	}
	return *p, nil
}

func (s *Memory) ListProposals(ctx context.Context, f ProposalFilter) ([]types.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Proposal
	for _, p := range s.proposals {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Stage != "" && p.Stage != f.Stage {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) BumpViews(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.proposals[id]; ok {
		p.Views++
	}
	return nil
}

func (s *Memory) ApplyLedgerWrite(ctx context.Context, w LedgerWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[w.ProposalID]
	if !ok {
		return ErrNotFound
	}
	if p.Version != w.ReadVersion {
		return ErrVersionConflict
	}
	p.CurrentFunding = w.NewTotal
	p.Status = w.NewStatus
	p.Version++
	p.UpdatedAt = time.Now()

	inv := *w.Investment
	if inv.ID == 0 {
		inv.ID = s.id()
	}
	inv.CreatedAt = time.Now()
	s.investments[w.ProposalID] = append(s.investments[w.ProposalID], inv)
	*w.Investment = inv
	return nil
}

func (s *Memory) ListInvestments(ctx context.Context, proposalID uint64) ([]types.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Investment, len(s.investments[proposalID]))
	copy(out, s.investments[proposalID])
	return out, nil
}

func (s *Memory) DistinctInvestors(ctx context.Context, proposalID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uint64]bool)
	var ids []uint64
	for _, inv := range s.investments[proposalID] {
		if !seen[inv.InvestorID] {
			seen[inv.InvestorID] = true
			ids = append(ids, inv.InvestorID)
		}
	}
	return ids, nil
}

func (s *Memory) HasLike(ctx context.Context, proposalID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.likes[proposalID][userID]
	return ok, nil
}

func (s *Memory) AddLike(ctx context.Context, like types.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likes[like.ProposalID] == nil {
		s.likes[like.ProposalID] = make(map[uint64]time.Time)
	}
	s.likes[like.ProposalID][like.UserID] = like.LikedAt
	return nil
}

func (s *Memory) RemoveLike(ctx context.Context, proposalID, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes[proposalID], userID)
	return nil
}

func (s *Memory) CountLikes(ctx context.Context, proposalID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.likes[proposalID])), nil
}

func (s *Memory) AddComment(ctx context.Context, c *types.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	if s.comments[c.ProposalID] == nil {
		s.comments[c.ProposalID] = make(map[uint64]*types.Comment)
	}
	cp := *c
	s.comments[c.ProposalID][c.ID] = &cp
	return nil
}

func (s *Memory) GetComment(ctx context.Context, proposalID, commentID uint64) (types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[proposalID][commentID]
	if !ok {
		return types.Comment{}, ErrNotFound
	}
	return *c, nil
}

func (s *Memory) UpdateComment(ctx context.Context, c types.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.comments[c.ProposalID][c.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Content = c.Content
	cur.Rating = c.Rating
	cur.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *Memory) DeleteComment(ctx context.Context, proposalID, commentID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[proposalID][commentID]; !ok {
		return ErrNotFound
	}
	delete(s.comments[proposalID], commentID)
	return nil
}

func (s *Memory) ListComments(ctx context.Context, proposalID uint64) ([]types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Comment
	for _, c := range s.comments[proposalID] {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) PlatformAggregates(ctx context.Context) (Aggregates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := Aggregates{Users: int64(len(s.users))}
	for _, p := range s.proposals {
		if p.Status == types.StatusPublished {
			agg.PublishedProposals++
			agg.PublishedFunding += p.CurrentFunding
		}
		if (p.Status == types.StatusPublished || p.Status == types.StatusFunded) &&
			p.FundingGoal > 0 &&
			float64(p.CurrentFunding)/float64(p.FundingGoal) >= 0.8 {
			agg.NearGoal++
		}
	}
	return agg, nil
}
