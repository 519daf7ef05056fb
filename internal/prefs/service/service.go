package service

import (
	"context"
	"errors"
	"strings"

	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/prefs/domain"
	"github.com/academiahub/backend/internal/prefs/store"
)

// Service routes preference operations to the durable backend for
// authenticated users and the in-memory backend for guests.
type Service struct {
	durable store.Store
	guest   store.Store
	log     *logger.Logger
}

func NewService(durable, guest store.Store, log *logger.Logger) *Service {
	return &Service{
		durable: durable,
		guest:   guest,
		log:     log,
	}
}

func (s *Service) Get(ctx context.Context, p principal.Principal) (domain.Preferences, error) {
	return s.storeFor(p).Get(ctx, p.Key)
}

func (s *Service) Add(ctx context.Context, p principal.Principal, field domain.Field, value string) (domain.Preferences, error) {
	value, err := normalizeValue(field, value)
	if err != nil {
		return domain.Preferences{}, err
	}

	backend := s.storeFor(p)
	if err := backend.Add(ctx, p.Key, field, value); err != nil {
		return domain.Preferences{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"action": "add_preference",
		"field":  string(field),
		"guest":  p.Guest,
	}).Debug("preference added")

	return backend.Get(ctx, p.Key)
}

func (s *Service) Remove(ctx context.Context, p principal.Principal, field domain.Field, value string) (domain.Preferences, error) {
	value, err := normalizeValue(field, value)
	if err != nil {
		return domain.Preferences{}, err
	}

	backend := s.storeFor(p)
	if err := backend.Remove(ctx, p.Key, field, value); err != nil {
		return domain.Preferences{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"action": "remove_preference",
		"field":  string(field),
		"guest":  p.Guest,
	}).Debug("preference removed")

	return backend.Get(ctx, p.Key)
}

func (s *Service) storeFor(p principal.Principal) store.Store {
	if p.Guest {
		return s.guest
	}
	return s.durable
}

func normalizeValue(field domain.Field, value string) (string, error) {
	if !field.Valid() {
		return "", commonerrors.ErrInvalidPayload.WithCause(errors.New("unknown preference field"))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", commonerrors.ErrInvalidPayload.WithCause(errors.New("preference value is empty"))
	}
	return value, nil
}
