package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/academiahub/backend/internal/activity/domain"
)

type EngagementRepository interface {
	Toggle(ctx context.Context, e domain.Engagement) (bool, error)
	IsSet(ctx context.Context, paperID, userID string) (bool, error)
	CountForPaper(ctx context.Context, paperID string) (int, error)
	PaperIDs(ctx context.Context, userID string) ([]string, error)
	ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]domain.Record, error)
	CountByAuthorsSince(ctx context.Context, authorIDs []string, since time.Time) (int, error)
}

// PgEngagementRepository serves both the likes and saves tables, which
// share a shape and differ only in the record kind they produce.
type PgEngagementRepository struct {
	pool  *pgxpool.Pool
	table string
	kind  domain.Kind
}

func NewPgLikeRepository(pool *pgxpool.Pool) *PgEngagementRepository {
	return &PgEngagementRepository{pool: pool, table: "likes", kind: domain.KindLike}
}

func NewPgSaveRepository(pool *pgxpool.Pool) *PgEngagementRepository {
	return &PgEngagementRepository{pool: pool, table: "saves", kind: domain.KindSave}
}

// Toggle inserts the row when absent and deletes it when present,
// reporting the resulting state. The unique (paper_id, user_id)
// constraint makes the insert race-safe.
func (r *PgEngagementRepository) Toggle(ctx context.Context, e domain.Engagement) (bool, error) {
	tag, err := r.pool.Exec(
		ctx,
		`INSERT INTO `+r.table+` (id, paper_id, paper_title, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (paper_id, user_id) DO NOTHING`,
		e.ID,
		e.PaperID,
		e.PaperTitle,
		e.UserID,
		e.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert into %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	_, err = r.pool.Exec(
		ctx,
		`DELETE FROM `+r.table+` WHERE paper_id = $1 AND user_id = $2`,
		e.PaperID,
		e.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", r.table, err)
	}
	return false, nil
}

func (r *PgEngagementRepository) IsSet(ctx context.Context, paperID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.table+` WHERE paper_id = $1 AND user_id = $2)`,
		paperID,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", r.table, err)
	}
	return exists, nil
}

func (r *PgEngagementRepository) CountForPaper(ctx context.Context, paperID string) (int, error) {
	var count int
	err := r.pool.QueryRow(
		ctx,
		`SELECT count(*) FROM `+r.table+` WHERE paper_id = $1`,
		paperID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.table, err)
	}
	return count, nil
}

func (r *PgEngagementRepository) PaperIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT paper_id FROM `+r.table+`
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s paper ids: %w", r.table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan paper id: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return ids, nil
}

func (r *PgEngagementRepository) ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT e.id, e.user_id, u.username, e.paper_id, coalesce(e.paper_title, ''), e.created_at
		 FROM `+r.table+` e
		 JOIN users u ON u.id = e.user_id
		 WHERE e.user_id = ANY($1::uuid[])
		 ORDER BY e.created_at DESC, e.id DESC
		 LIMIT $2`,
		authorIDs,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s activity: %w", r.table, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec := domain.Record{Kind: r.kind}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Username, &rec.PaperID, &rec.PaperTitle, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s activity: %w", r.table, err)
		}
		records = append(records, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return records, nil
}

func (r *PgEngagementRepository) CountByAuthorsSince(ctx context.Context, authorIDs []string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(
		ctx,
		`SELECT count(*) FROM `+r.table+`
		 WHERE user_id = ANY($1::uuid[]) AND created_at > $2`,
		authorIDs,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s activity: %w", r.table, err)
	}
	return count, nil
}
