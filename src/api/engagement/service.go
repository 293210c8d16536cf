package engagement

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrForbidden    = errors.New("not the author of this comment")
	ErrEmptyContent = errors.New("content must not be empty")
	ErrBadRating    = errors.New("rating must be between 1 and 5")
)

const storeTimeout = 5 * time.Second

// CommentPatch carries the mutable comment fields; nil means unchanged.
type CommentPatch struct {
	Content *string
	Rating  *int
}

// Service owns likes and rated reviews. Ownership checks live here, not in
// the handlers.
type Service struct {
	store     store.Store
	pub       events.Publisher
	sanitizer *bluemonday.Policy
}

func New(st store.Store, pub events.Publisher) *Service {
	// Strict sanitizer, plus the handful of markdown-rendered elements the
	// frontend displays.
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AllowElements("p", "br", "strong", "em", "code", "blockquote")
	sanitizer.AllowElements("ul", "ol", "li")

	return &Service{store: st, pub: pub, sanitizer: sanitizer}
}

// ToggleLike flips the caller's like. Likes are a set keyed by user id, so
// a double toggle always returns the set to its original state.
func (s *Service) ToggleLike(ctx context.Context, proposalID, userID uint64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.store.GetProposal(ctx, proposalID); err != nil {
		return false, err
	}
	liked, err := s.store.HasLike(ctx, proposalID, userID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, s.store.RemoveLike(ctx, proposalID, userID)
	}
	err = s.store.AddLike(ctx, types.Like{
		ProposalID: proposalID,
		UserID:     userID,
		LikedAt:    time.Now(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) AddComment(ctx context.Context, proposalID, userID uint64, content string, rating int) (types.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	content, err := s.cleanContent(content)
	if err != nil {
		return types.Comment{}, err
	}
	if rating < 1 || rating > 5 {
		return types.Comment{}, ErrBadRating
	}
	if _, err := s.store.GetProposal(ctx, proposalID); err != nil {
		return types.Comment{}, err
	}

	c := types.Comment{
		ProposalID: proposalID,
		AuthorID:   userID,
		Content:    content,
		Rating:     rating,
	}
	if err := s.store.AddComment(ctx, &c); err != nil {
		return types.Comment{}, err
	}

	events.Emit(s.pub, events.Event{
		Type:       events.TypeCommentAdded,
		ProposalID: proposalID,
		ActorID:    userID,
	})
	return c, nil
}

func (s *Service) UpdateComment(ctx context.Context, proposalID, commentID, userID uint64, patch CommentPatch) (types.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cur, err := s.store.GetComment(ctx, proposalID, commentID)
	if err != nil {
		return types.Comment{}, err
	}
	if cur.AuthorID != userID {
		return types.Comment{}, ErrForbidden
	}

	if patch.Content != nil {
		content, err := s.cleanContent(*patch.Content)
		if err != nil {
			return types.Comment{}, err
		}
		cur.Content = content
	}
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return types.Comment{}, ErrBadRating
		}
		cur.Rating = *patch.Rating
	}
	cur.UpdatedAt = time.Now()

	if err := s.store.UpdateComment(ctx, cur); err != nil {
		return types.Comment{}, err
	}
	return cur, nil
}

func (s *Service) DeleteComment(ctx context.Context, proposalID, commentID, userID uint64) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cur, err := s.store.GetComment(ctx, proposalID, commentID)
	if err != nil {
		return err
	}
	if cur.AuthorID != userID {
		return ErrForbidden
	}
	return s.store.DeleteComment(ctx, proposalID, commentID)
}

func (s *Service) cleanContent(content string) (string, error) {
	content = strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(content)))
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}
