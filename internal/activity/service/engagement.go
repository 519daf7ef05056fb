package service

import (
	"context"
	"errors"
	"strings"

	"github.com/academiahub/backend/internal/activity/domain"
	"github.com/academiahub/backend/internal/activity/repository"
	"github.com/academiahub/backend/internal/common/clock"
	"github.com/academiahub/backend/internal/common/constants"
	"github.com/academiahub/backend/internal/common/crypto"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/validate"
)

// EngagementService owns per-paper interactions: comments, likes and
// the durable saved-papers set.
type EngagementService struct {
	comments repository.CommentRepository
	likes    repository.EngagementRepository
	saves    repository.EngagementRepository
	idGen    crypto.IDGenerator
	clock    clock.Clock
	log      *logger.Logger
}

func NewEngagementService(
	comments repository.CommentRepository,
	likes repository.EngagementRepository,
	saves repository.EngagementRepository,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *EngagementService {
	return &EngagementService{
		comments: comments,
		likes:    likes,
		saves:    saves,
		idGen:    idGen,
		clock:    clk,
		log:      log,
	}
}

func (s *EngagementService) AddComment(ctx context.Context, userID, username, paperID, content string) (domain.Comment, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return domain.Comment{}, commonerrors.ErrEmptyPaperID
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, commonerrors.ErrEmptyComment
	}
	content = validate.Truncate(content, constants.MaxCommentLength)

	id, err := s.idGen.NewID()
	if err != nil {
		return domain.Comment{}, commonerrors.ErrInternalError.WithCause(err)
	}

	comment := domain.Comment{
		ID:        id,
		PaperID:   paperID,
		Content:   content,
		UserID:    userID,
		Username:  username,
		CreatedAt: s.clock.Now(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return domain.Comment{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":   "add_comment",
		"paper_id": paperID,
		"user_id":  userID,
	}).Info("comment added")

	return comment, nil
}

func (s *EngagementService) CommentsForPaper(ctx context.Context, paperID string) ([]domain.Comment, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return nil, commonerrors.ErrEmptyPaperID
	}

	comments, err := s.comments.ListByPaper(ctx, paperID)
	if err != nil {
		return nil, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return comments, nil
}

// DeleteComment removes a comment. Only the author may delete it.
func (s *EngagementService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return mapCommentError(err)
	}

	if comment.UserID != userID {
		return commonerrors.ErrNotCommentAuthor
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return mapCommentError(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":     "delete_comment",
		"comment_id": commentID,
		"user_id":    userID,
	}).Info("comment deleted")

	return nil
}

// ToggleLike flips the like state and reports the result: true when
// the paper is now liked. Toggling twice restores the original state.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, paperID, paperTitle string) (bool, error) {
	return s.toggle(ctx, s.likes, "toggle_like", userID, paperID, paperTitle)
}

// ToggleSave flips the saved state against the saves table, the single
// durable representation of a user's saved set.
func (s *EngagementService) ToggleSave(ctx context.Context, userID, paperID, paperTitle string) (bool, error) {
	return s.toggle(ctx, s.saves, "toggle_save", userID, paperID, paperTitle)
}

func (s *EngagementService) toggle(ctx context.Context, repo repository.EngagementRepository, action, userID, paperID, paperTitle string) (bool, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return false, commonerrors.ErrEmptyPaperID
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return false, commonerrors.ErrInternalError.WithCause(err)
	}

	set, err := repo.Toggle(ctx, domain.Engagement{
		ID:         id,
		PaperID:    paperID,
		PaperTitle: paperTitle,
		UserID:     userID,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		return false, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":   action,
		"paper_id": paperID,
		"user_id":  userID,
		"set":      set,
	}).Debug("engagement toggled")

	return set, nil
}

// PaperStatus reports the caller's like and saved state plus the total
// like count for one paper.
func (s *EngagementService) PaperStatus(ctx context.Context, userID, paperID string) (domain.PaperStatus, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return domain.PaperStatus{}, commonerrors.ErrEmptyPaperID
	}

	status := domain.PaperStatus{PaperID: paperID}

	likeCount, err := s.likes.CountForPaper(ctx, paperID)
	if err != nil {
		return domain.PaperStatus{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	status.LikeCount = likeCount

	if userID != "" {
		liked, err := s.likes.IsSet(ctx, paperID, userID)
		if err != nil {
			return domain.PaperStatus{}, commonerrors.ErrStoreUnavailable.WithCause(err)
		}
		saved, err := s.saves.IsSet(ctx, paperID, userID)
		if err != nil {
			return domain.PaperStatus{}, commonerrors.ErrStoreUnavailable.WithCause(err)
		}
		status.Liked = liked
		status.Saved = saved
	}

	return status, nil
}

// SavedPaperIDs satisfies the user profile's saved-papers source.
func (s *EngagementService) SavedPaperIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.saves.PaperIDs(ctx, userID)
	if err != nil {
		return nil, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return ids, nil
}

func mapCommentError(err error) error {
	if errors.Is(err, repository.ErrCommentNotFound) {
		return commonerrors.ErrCommentNotFound
	}
	return commonerrors.ErrStoreUnavailable.WithCause(err)
}
