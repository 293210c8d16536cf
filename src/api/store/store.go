package store

import (
	"context"
	"errors"

	"github.com/ideaforge-io/ideaforge/src/api/types"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrUnavailable     = errors.New("store unavailable")
)

// ProposalFilter narrows ListProposals. Empty fields match everything.
type ProposalFilter struct {
	Category string
	Stage    string
	Status   string
}

// LedgerWrite carries one investment append together with the aggregate
// state it implies. A store accepts it only if the proposal's version still
// equals ReadVersion, bumping the version as part of the same write.
type LedgerWrite struct {
	ProposalID  uint64
	ReadVersion uint64
	Investment  *types.Investment
	NewTotal    int64
	NewStatus   string
}

// Aggregates is the raw material for platform stats.
type Aggregates struct {
	PublishedProposals int64
	Users              int64
	PublishedFunding   int64
	NearGoal           int64 // published or funded, at >= 80% of goal
}

type Store interface {
	CreateUser(ctx context.Context, u *types.User) error
	GetUser(ctx context.Context, id uint64) (types.User, error)
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
	BumpTotalInvestments(ctx context.Context, userID uint64) error
	BumpSuccessfulInvestments(ctx context.Context, userIDs []uint64) error

	CreateProposal(ctx context.Context, p *types.Proposal) error
	GetProposal(ctx context.Context, id uint64) (types.Proposal, error)
	ListProposals(ctx context.Context, f ProposalFilter) ([]types.Proposal, error)
	BumpViews(ctx context.Context, id uint64) error

	ApplyLedgerWrite(ctx context.Context, w LedgerWrite) error
	ListInvestments(ctx context.Context, proposalID uint64) ([]types.Investment, error)
	DistinctInvestors(ctx context.Context, proposalID uint64) ([]uint64, error)

	HasLike(ctx context.Context, proposalID, userID uint64) (bool, error)
	AddLike(ctx context.Context, like types.Like) error
	RemoveLike(ctx context.Context, proposalID, userID uint64) error
	CountLikes(ctx context.Context, proposalID uint64) (int64, error)

	AddComment(ctx context.Context, c *types.Comment) error
	GetComment(ctx context.Context, proposalID, commentID uint64) (types.Comment, error)
	UpdateComment(ctx context.Context, c types.Comment) error
	DeleteComment(ctx context.Context, proposalID, commentID uint64) error
	ListComments(ctx context.Context, proposalID uint64) ([]types.Comment, error)

	PlatformAggregates(ctx context.Context) (Aggregates, error)
}
