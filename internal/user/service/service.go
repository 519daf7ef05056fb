package service

import (
	"context"
	"errors"
	"strings"

	"github.com/academiahub/backend/internal/common/constants"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/validate"
	"github.com/academiahub/backend/internal/user/domain"
	"github.com/academiahub/backend/internal/user/repository"
)

// SavedPapersSource reports the paper ids a user has saved. The durable
// set lives in the saves table owned by the activity context.
type SavedPapersSource interface {
	SavedPaperIDs(ctx context.Context, userID string) ([]string, error)
}

type Service struct {
	repo  repository.Repository
	saves SavedPapersSource
	log   *logger.Logger
}

func NewService(repo repository.Repository, saves SavedPapersSource, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		saves: saves,
		log:   log,
	}
}

func (s *Service) GetProfileByUsername(ctx context.Context, username string) (domain.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Profile{}, commonerrors.ErrInvalidPayload.WithCause(errors.New("username is required"))
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return domain.Profile{}, mapRepoError(err)
	}

	return s.buildProfile(ctx, user)
}

func (s *Service) GetProfileByID(ctx context.Context, id domain.ID) (domain.Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Profile{}, mapRepoError(err)
	}

	return s.buildProfile(ctx, user)
}

func (s *Service) buildProfile(ctx context.Context, user domain.User) (domain.Profile, error) {
	followers, err := s.repo.Summaries(ctx, user.Followers)
	if err != nil {
		return domain.Profile{}, mapRepoError(err)
	}

	following, err := s.repo.Summaries(ctx, user.Following)
	if err != nil {
		return domain.Profile{}, mapRepoError(err)
	}

	saved, err := s.saves.SavedPaperIDs(ctx, string(user.ID))
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		ID:              user.ID,
		Username:        user.Username,
		Role:            user.Role,
		Interests:       user.Interests,
		FollowedAuthors: user.FollowedAuthors,
		SavedPapers:     saved,
		Followers:       followers,
		Following:       following,
		FollowersCount:  len(user.Followers),
		FollowingCount:  len(user.Following),
	}, nil
}

// ToggleFollow flips the follow edge and reports the resulting state:
// true when the caller now follows the target.
func (s *Service) ToggleFollow(ctx context.Context, userID, targetID domain.ID) (bool, error) {
	if userID == targetID {
		return false, commonerrors.ErrSelfFollow
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, mapRepoError(err)
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return false, mapRepoError(err)
	}

	if user.IsFollowing(targetID) {
		if err := s.repo.Unfollow(ctx, userID, targetID); err != nil {
			return false, mapRepoError(err)
		}
		s.log.WithFields(ctx, logger.Fields{
			"action":  "unfollow_user",
			"user_id": string(userID),
			"target":  string(targetID),
		}).Info("user unfollowed")
		return false, nil
	}

	if err := s.repo.Follow(ctx, userID, targetID); err != nil {
		return false, mapRepoError(err)
	}
	s.log.WithFields(ctx, logger.Fields{
		"action":  "follow_user",
		"user_id": string(userID),
		"target":  string(targetID),
	}).Info("user followed")
	return true, nil
}

func (s *Service) SearchUsers(ctx context.Context, query string) ([]domain.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, commonerrors.ErrEmptyQuery
	}
	query = validate.Truncate(query, constants.MaxSearchQueryLength)

	users, err := s.repo.SearchByUsername(ctx, query, constants.DefaultSearchLimit)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return users, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return commonerrors.ErrUserNotFound
	case errors.Is(err, repository.ErrUsernameAlreadyExists):
		return commonerrors.ErrUsernameAlreadyExists
	case errors.Is(err, repository.ErrEmailAlreadyExists):
		return commonerrors.ErrEmailAlreadyExists
	default:
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}
}
