package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/academiahub/backend/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	SearchByUsername(ctx context.Context, query string, limit int) ([]domain.Summary, error)
	Summaries(ctx context.Context, ids []domain.ID) ([]domain.Summary, error)

	AddInterest(ctx context.Context, id domain.ID, value string) error
	RemoveInterest(ctx context.Context, id domain.ID, value string) error
	AddFollowedAuthor(ctx context.Context, id domain.ID, value string) error
	RemoveFollowedAuthor(ctx context.Context, id domain.ID, value string) error
	AddExcludedCategory(ctx context.Context, id domain.ID, value string) error
	RemoveExcludedCategory(ctx context.Context, id domain.ID, value string) error

	Follow(ctx context.Context, userID, targetID domain.ID) error
	Unfollow(ctx context.Context, userID, targetID domain.ID) error
	Following(ctx context.Context, id domain.ID) ([]domain.ID, error)

	TouchLastSeenActivity(ctx context.Context, id domain.ID) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, role,
	interests, followed_authors, excluded_categories,
	following, followers, last_seen_activity, created_at`

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_email_key" {
				return ErrEmailAlreadyExists
			}
			return ErrUsernameAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		string(id),
	)
	return scanUser(row, "find user by id")
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`,
		username,
	)
	return scanUser(row, "find user by username")
}

func scanUser(row pgx.Row, op string) (domain.User, error) {
	var user domain.User
	var following, followers []string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Interests,
		&user.FollowedAuthors,
		&user.ExcludedCategories,
		&following,
		&followers,
		&user.LastSeenActivity,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to %s: %w", op, err)
	}

	user.Following = toIDs(following)
	user.Followers = toIDs(followers)
	return user, nil
}

func toIDs(values []string) []domain.ID {
	ids := make([]domain.ID, 0, len(values))
	for _, v := range values {
		ids = append(ids, domain.ID(v))
	}
	return ids
}

func (r *PgRepository) SearchByUsername(ctx context.Context, query string, limit int) ([]domain.Summary, error) {
	searchPattern := "%" + query + "%"
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, created_at
		 FROM users
		 WHERE username ILIKE $1
		 ORDER BY username ASC
		 LIMIT $2`,
		searchPattern,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *PgRepository) Summaries(ctx context.Context, ids []domain.ID) ([]domain.Summary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, created_at
		 FROM users
		 WHERE id = ANY($1::uuid[])
		 ORDER BY username ASC`,
		idStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load user summaries: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]domain.Summary, error) {
	var users []domain.Summary
	for rows.Next() {
		var u domain.Summary
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return users, nil
}

const (
	columnInterests          = "interests"
	columnFollowedAuthors    = "followed_authors"
	columnExcludedCategories = "excluded_categories"
)

func (r *PgRepository) AddInterest(ctx context.Context, id domain.ID, value string) error {
	return r.addToSet(ctx, id, columnInterests, value)
}

func (r *PgRepository) RemoveInterest(ctx context.Context, id domain.ID, value string) error {
	return r.removeFromSet(ctx, id, columnInterests, value)
}

func (r *PgRepository) AddFollowedAuthor(ctx context.Context, id domain.ID, value string) error {
	return r.addToSet(ctx, id, columnFollowedAuthors, value)
}

func (r *PgRepository) RemoveFollowedAuthor(ctx context.Context, id domain.ID, value string) error {
	return r.removeFromSet(ctx, id, columnFollowedAuthors, value)
}

func (r *PgRepository) AddExcludedCategory(ctx context.Context, id domain.ID, value string) error {
	return r.addToSet(ctx, id, columnExcludedCategories, value)
}

func (r *PgRepository) RemoveExcludedCategory(ctx context.Context, id domain.ID, value string) error {
	return r.removeFromSet(ctx, id, columnExcludedCategories, value)
}

// addToSet appends only when absent, keeping array columns set-like.
// Column names come from the constants above, never from user input.
func (r *PgRepository) addToSet(ctx context.Context, id domain.ID, column, value string) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET `+column+` = array_append(`+column+`, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(`+column+`))`,
		string(id),
		value,
	)
	if err != nil {
		return fmt.Errorf("failed to add to %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

func (r *PgRepository) removeFromSet(ctx context.Context, id domain.ID, column, value string) error {
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users SET `+column+` = array_remove(`+column+`, $2) WHERE id = $1`,
		string(id),
		value,
	)
	if err != nil {
		return fmt.Errorf("failed to remove from %s: %w", column, err)
	}
	return nil
}

// ensureExists distinguishes "already present" no-ops from missing users.
func (r *PgRepository) ensureExists(ctx context.Context, id domain.ID) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, string(id)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) Follow(ctx context.Context, userID, targetID domain.ID) error {
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users SET following = array_append(following, $2::uuid)
		 WHERE id = $1 AND NOT ($2::uuid = ANY(following))`,
		string(userID),
		string(targetID),
	)
	if err != nil {
		return fmt.Errorf("failed to update following: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`UPDATE users SET followers = array_append(followers, $2::uuid)
		 WHERE id = $1 AND NOT ($2::uuid = ANY(followers))`,
		string(targetID),
		string(userID),
	)
	if err != nil {
		return fmt.Errorf("failed to update followers: %w", err)
	}

	return nil
}

func (r *PgRepository) Unfollow(ctx context.Context, userID, targetID domain.ID) error {
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users SET following = array_remove(following, $2::uuid) WHERE id = $1`,
		string(userID),
		string(targetID),
	)
	if err != nil {
		return fmt.Errorf("failed to update following: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`UPDATE users SET followers = array_remove(followers, $2::uuid) WHERE id = $1`,
		string(targetID),
		string(userID),
	)
	if err != nil {
		return fmt.Errorf("failed to update followers: %w", err)
	}

	return nil
}

func (r *PgRepository) Following(ctx context.Context, id domain.ID) ([]domain.ID, error) {
	var following []string
	err := r.pool.QueryRow(
		ctx,
		`SELECT following FROM users WHERE id = $1`,
		string(id),
	).Scan(&following)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load following set: %w", err)
	}

	return toIDs(following), nil
}

// TouchLastSeenActivity advances the marker to the server clock, never
// backwards. Repeated calls are idempotent.
func (r *PgRepository) TouchLastSeenActivity(ctx context.Context, id domain.ID) error {
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users SET last_seen_activity = GREATEST(last_seen_activity, now()) WHERE id = $1`,
		string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to update last seen activity: %w", err)
	}
	return nil
}

func idStrings(ids []domain.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
