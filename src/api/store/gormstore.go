package store

import (
	"context"
	"errors"
	"time"

	"github.com/ideaforge-io/ideaforge/src/api/types"
	"gorm.io/gorm"
)

// Gorm is the MySQL-backed store. Conditional updates are expressed as
// UPDATE ... WHERE version = ? so concurrent writers on one proposal never
// overwrite each other.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm { return &Gorm{db: db} }

func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrUnavailable
	default:
		return err
	}
}

func (s *Gorm) CreateUser(ctx context.Context, u *types.User) error {
	return wrapErr(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Gorm) GetUser(ctx context.Context, id uint64) (types.User, error) {
	var u types.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return u, wrapErr(err)
}

func (s *Gorm) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	var u types.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	return u, wrapErr(err)
}

func (s *Gorm) BumpTotalInvestments(ctx context.Context, userID uint64) error {
	return wrapErr(s.db.WithContext(ctx).Model(&types.User{}).
		Where("id = ?", userID).
		Update("total_investments", gorm.Expr("total_investments + 1")).Error)
}

func (s *Gorm) BumpSuccessfulInvestments(ctx context.Context, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	return wrapErr(s.db.WithContext(ctx).Model(&types.User{}).
		Where("id IN ?", userIDs).
		Update("successful_investments", gorm.Expr("successful_investments + 1")).Error)
}

func (s *Gorm) CreateProposal(ctx context.Context, p *types.Proposal) error {
	return wrapErr(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Gorm) GetProposal(ctx context.Context, id uint64) (types.Proposal, error) {
	var p types.Proposal
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, wrapErr(err)
}

func (s *Gorm) ListProposals(ctx context.Context, f ProposalFilter) ([]types.Proposal, error) {
	q := s.db.WithContext(ctx).Model(&types.Proposal{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Stage != "" {
		q = q.Where("stage = ?", f.Stage)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []types.Proposal
	err := q.Order("created_at desc").Find(&out).Error
	return out, wrapErr(err)
}

func (s *Gorm) BumpViews(ctx context.Context, id uint64) error {
	return wrapErr(s.db.WithContext(ctx).Model(&types.Proposal{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error)
}

func (s *Gorm) ApplyLedgerWrite(ctx context.Context, w LedgerWrite) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.Proposal{}).
			Where("id = ? AND version = ?", w.ProposalID, w.ReadVersion).
			Updates(map[string]interface{}{
				"current_funding": w.NewTotal,
				"status":          w.NewStatus,
				"version":         gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return tx.Create(w.Investment).Error
	})
	if errors.Is(err, ErrVersionConflict) {
		return ErrVersionConflict
	}
	return wrapErr(err)
}

func (s *Gorm) ListInvestments(ctx context.Context, proposalID uint64) ([]types.Investment, error) {
	var out []types.Investment
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at asc").Find(&out).Error
	return out, wrapErr(err)
}

func (s *Gorm) DistinctInvestors(ctx context.Context, proposalID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&types.Investment{}).
		Where("proposal_id = ?", proposalID).
		Distinct("investor_id").Pluck("investor_id", &ids).Error
	return ids, wrapErr(err)
}

func (s *Gorm) HasLike(ctx context.Context, proposalID, userID uint64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&types.Like{}).
		Where("proposal_id = ? AND user_id = ?", proposalID, userID).
		Count(&n).Error
	return n > 0, wrapErr(err)
}

func (s *Gorm) AddLike(ctx context.Context, like types.Like) error {
	err := s.db.WithContext(ctx).Create(&like).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with ourselves; the like is in place either way
		return nil
	}
	return wrapErr(err)
}

func (s *Gorm) RemoveLike(ctx context.Context, proposalID, userID uint64) error {
	return wrapErr(s.db.WithContext(ctx).
		Where("proposal_id = ? AND user_id = ?", proposalID, userID).
		Delete(&types.Like{}).Error)
}

func (s *Gorm) CountLikes(ctx context.Context, proposalID uint64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&types.Like{}).
		Where("proposal_id = ?", proposalID).Count(&n).Error
	return n, wrapErr(err)
}

func (s *Gorm) AddComment(ctx context.Context, c *types.Comment) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	return wrapErr(s.db.WithContext(ctx).Create(c).Error)
}

func (s *Gorm) GetComment(ctx context.Context, proposalID, commentID uint64) (types.Comment, error) {
	var c types.Comment
	err := s.db.WithContext(ctx).
		First(&c, "id = ? AND proposal_id = ?", commentID, proposalID).Error
	return c, wrapErr(err)
}

func (s *Gorm) UpdateComment(ctx context.Context, c types.Comment) error {
	res := s.db.WithContext(ctx).Model(&types.Comment{}).
		Where("id = ? AND proposal_id = ?", c.ID, c.ProposalID).
		Updates(map[string]interface{}{
			"content":    c.Content,
			"rating":     c.Rating,
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) DeleteComment(ctx context.Context, proposalID, commentID uint64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND proposal_id = ?", commentID, proposalID).
		Delete(&types.Comment{})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) ListComments(ctx context.Context, proposalID uint64) ([]types.Comment, error) {
	var out []types.Comment
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at asc").Find(&out).Error
	return out, wrapErr(err)
}

func (s *Gorm) PlatformAggregates(ctx context.Context) (Aggregates, error) {
	var agg Aggregates
	db := s.db.WithContext(ctx)

	if err := db.Model(&types.Proposal{}).
		Where("status = ?", types.StatusPublished).
		Count(&agg.PublishedProposals).Error; err != nil {
		return Aggregates{}, wrapErr(err)
	}
	if err := db.Model(&types.User{}).Count(&agg.Users).Error; err != nil {
		return Aggregates{}, wrapErr(err)
	}
	if err := db.Model(&types.Proposal{}).
		Where("status = ?", types.StatusPublished).
		Select("COALESCE(SUM(current_funding), 0)").
		Scan(&agg.PublishedFunding).Error; err != nil {
		return Aggregates{}, wrapErr(err)
	}
	if err := db.Model(&types.Proposal{}).
		Where("status IN ?", []string{types.StatusPublished, types.StatusFunded}).
		Where("current_funding / funding_goal >= 0.8").
		Count(&agg.NearGoal).Error; err != nil {
		return Aggregates{}, wrapErr(err)
	}
	return agg, nil
}
