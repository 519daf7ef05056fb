package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/academiahub/backend/internal/activity/domain"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) error
	FindByID(ctx context.Context, id string) (domain.Comment, error)
	ListByPaper(ctx context.Context, paperID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
	ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]domain.Record, error)
	CountByAuthorsSince(ctx context.Context, authorIDs []string, since time.Time) (int, error)
}

type PgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommentRepository(pool *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{pool: pool}
}

func (r *PgCommentRepository) Create(ctx context.Context, comment domain.Comment) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO comments (id, paper_id, content, user_id, username, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID,
		comment.PaperID,
		comment.Content,
		comment.UserID,
		comment.Username,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *PgCommentRepository) FindByID(ctx context.Context, id string) (domain.Comment, error) {
	var c domain.Comment
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, paper_id, content, user_id, username, created_at
		 FROM comments WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.PaperID, &c.Content, &c.UserID, &c.Username, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, ErrCommentNotFound
		}
		return domain.Comment{}, fmt.Errorf("failed to find comment: %w", err)
	}
	return c, nil
}

func (r *PgCommentRepository) ListByPaper(ctx context.Context, paperID string) ([]domain.Comment, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, paper_id, content, user_id, username, created_at
		 FROM comments
		 WHERE paper_id = $1
		 ORDER BY created_at DESC, id DESC`,
		paperID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Content, &c.UserID, &c.Username, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return comments, nil
}

func (r *PgCommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *PgCommentRepository) ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, username, paper_id, content, created_at
		 FROM comments
		 WHERE user_id = ANY($1::uuid[])
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		authorIDs,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment activity: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec := domain.Record{Kind: domain.KindComment}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Username, &rec.PaperID, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment activity: %w", err)
		}
		records = append(records, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return records, nil
}

func (r *PgCommentRepository) CountByAuthorsSince(ctx context.Context, authorIDs []string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(
		ctx,
		`SELECT count(*) FROM comments
		 WHERE user_id = ANY($1::uuid[]) AND created_at > $2`,
		authorIDs,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comment activity: %w", err)
	}
	return count, nil
}
