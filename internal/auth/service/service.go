package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/academiahub/backend/internal/common/clock"
	"github.com/academiahub/backend/internal/common/crypto"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	userdomain "github.com/academiahub/backend/internal/user/domain"
	userrepo "github.com/academiahub/backend/internal/user/repository"
)

type Service struct {
	users    userrepo.Repository
	hasher   crypto.PasswordHasher
	idGen    crypto.IDGenerator
	clock    clock.Clock
	secret   []byte
	tokenTTL time.Duration
	log      *logger.Logger
}

func NewService(
	users userrepo.Repository,
	hasher crypto.PasswordHasher,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	secret string,
	tokenTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clk,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Register creates an account and returns the user plus a signed
// session token.
func (s *Service) Register(ctx context.Context, username, email, password string) (userdomain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return userdomain.User{}, "", commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return userdomain.User{}, "", commonerrors.ErrInternalError.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         userdomain.RoleStudent,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return userdomain.User{}, "", mapRepoError(err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return userdomain.User{}, "", err
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":  "register",
		"user_id": id,
	}).Info("user registered")

	return user, token, nil
}

// Login verifies credentials against the stored hash. Unknown users
// and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (userdomain.User, string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if commonerrors.Is(mapRepoError(err), commonerrors.ErrUserNotFound) {
			return userdomain.User{}, "", commonerrors.ErrInvalidCredentials
		}
		return userdomain.User{}, "", mapRepoError(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return userdomain.User{}, "", commonerrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return userdomain.User{}, "", err
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":  "login",
		"user_id": string(user.ID),
	}).Info("user logged in")

	return user, token, nil
}

func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *Service) issueToken(user userdomain.User) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": string(user.ID),
		"usr": user.Username,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}
	return signed, nil
}

func mapRepoError(err error) error {
	switch {
	case err == userrepo.ErrUserNotFound:
		return commonerrors.ErrUserNotFound
	case err == userrepo.ErrUsernameAlreadyExists:
		return commonerrors.ErrUsernameAlreadyExists
	case err == userrepo.ErrEmailAlreadyExists:
		return commonerrors.ErrEmailAlreadyExists
	default:
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}
}
