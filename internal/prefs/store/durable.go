package store

import (
	"context"
	"errors"
	"fmt"

	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/prefs/domain"
	userdomain "github.com/academiahub/backend/internal/user/domain"
	userrepo "github.com/academiahub/backend/internal/user/repository"
)

// Store is a keyed preferences backend. Keys are user ids for the
// durable backend and guest ids for the ephemeral one.
type Store interface {
	Get(ctx context.Context, key string) (domain.Preferences, error)
	Add(ctx context.Context, key string, field domain.Field, value string) error
	Remove(ctx context.Context, key string, field domain.Field, value string) error
}

// DurableStore persists preferences on the user record.
type DurableStore struct {
	users userrepo.Repository
}

func NewDurableStore(users userrepo.Repository) *DurableStore {
	return &DurableStore{users: users}
}

func (s *DurableStore) Get(ctx context.Context, key string) (domain.Preferences, error) {
	user, err := s.users.FindByID(ctx, userdomain.ID(key))
	if err != nil {
		return domain.Preferences{}, mapUserRepoError(err)
	}

	return domain.Preferences{
		Interests:          user.Interests,
		FollowedAuthors:    user.FollowedAuthors,
		ExcludedCategories: user.ExcludedCategories,
	}, nil
}

func (s *DurableStore) Add(ctx context.Context, key string, field domain.Field, value string) error {
	id := userdomain.ID(key)
	var err error
	switch field {
	case domain.FieldInterest:
		err = s.users.AddInterest(ctx, id, value)
	case domain.FieldFollowedAuthor:
		err = s.users.AddFollowedAuthor(ctx, id, value)
	case domain.FieldExcludedCategory:
		err = s.users.AddExcludedCategory(ctx, id, value)
	default:
		return commonerrors.ErrInvalidPayload.WithCause(fmt.Errorf("unknown preference field %q", field))
	}
	if err != nil {
		return mapUserRepoError(err)
	}
	return nil
}

func (s *DurableStore) Remove(ctx context.Context, key string, field domain.Field, value string) error {
	id := userdomain.ID(key)
	var err error
	switch field {
	case domain.FieldInterest:
		err = s.users.RemoveInterest(ctx, id, value)
	case domain.FieldFollowedAuthor:
		err = s.users.RemoveFollowedAuthor(ctx, id, value)
	case domain.FieldExcludedCategory:
		err = s.users.RemoveExcludedCategory(ctx, id, value)
	default:
		return commonerrors.ErrInvalidPayload.WithCause(fmt.Errorf("unknown preference field %q", field))
	}
	if err != nil {
		return mapUserRepoError(err)
	}
	return nil
}

func mapUserRepoError(err error) error {
	if errors.Is(err, userrepo.ErrUserNotFound) {
		return commonerrors.ErrUserNotFound
	}
	return commonerrors.ErrStoreUnavailable.WithCause(err)
}
