package service

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/academiahub/backend/internal/activity/domain"
	"github.com/academiahub/backend/internal/activity/repository"
	"github.com/academiahub/backend/internal/common/clock"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/observability/metrics"
	userdomain "github.com/academiahub/backend/internal/user/domain"
	userrepo "github.com/academiahub/backend/internal/user/repository"
)

// UserDirectory is the slice of the user repository the feed needs.
type UserDirectory interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	Following(ctx context.Context, id userdomain.ID) ([]userdomain.ID, error)
	TouchLastSeenActivity(ctx context.Context, id userdomain.ID) error
}

type FeedService struct {
	comments   repository.CommentRepository
	likes      repository.EngagementRepository
	saves      repository.EngagementRepository
	users      UserDirectory
	clock      clock.Clock
	log        *logger.Logger
	perKindCap int
	feedLimit  int
}

func NewFeedService(
	comments repository.CommentRepository,
	likes repository.EngagementRepository,
	saves repository.EngagementRepository,
	users UserDirectory,
	clk clock.Clock,
	log *logger.Logger,
	perKindCap int,
	feedLimit int,
) *FeedService {
	return &FeedService{
		comments:   comments,
		likes:      likes,
		saves:      saves,
		users:      users,
		clock:      clk,
		log:        log,
		perKindCap: perKindCap,
		feedLimit:  feedLimit,
	}
}

// GetActivityFor aggregates recent comments, likes and saves authored
// by the caller's follow set. An empty follow set short-circuits
// without touching the store. Any per-kind failure fails the whole
// request: a partial feed would silently hide activity.
func (s *FeedService) GetActivityFor(ctx context.Context, userID string) ([]domain.Record, error) {
	start := s.clock.Now()

	following, err := s.users.Following(ctx, userdomain.ID(userID))
	if err != nil {
		return nil, mapStoreError(err)
	}

	if len(following) == 0 {
		metrics.ActivityFeedRecordsReturned.Observe(0)
		return []domain.Record{}, nil
	}

	authorIDs := make([]string, 0, len(following))
	for _, id := range following {
		authorIDs = append(authorIDs, string(id))
	}

	var commentRecs, likeRecs, saveRecs []domain.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commentRecs, err = s.comments.ListByAuthors(gctx, authorIDs, s.perKindCap)
		return err
	})
	g.Go(func() error {
		var err error
		likeRecs, err = s.likes.ListByAuthors(gctx, authorIDs, s.perKindCap)
		return err
	})
	g.Go(func() error {
		var err error
		saveRecs, err = s.saves.ListByAuthors(gctx, authorIDs, s.perKindCap)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action":  "activity_feed",
			"user_id": userID,
			"error":   err.Error(),
		}).Error("activity feed aggregation failed")
		return nil, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	records := make([]domain.Record, 0, len(commentRecs)+len(likeRecs)+len(saveRecs))
	records = append(records, commentRecs...)
	records = append(records, likeRecs...)
	records = append(records, saveRecs...)

	sortRecords(records)

	if len(records) > s.feedLimit {
		records = records[:s.feedLimit]
	}

	metrics.ActivityFeedDurationSeconds.Observe(s.clock.Since(start).Seconds())
	metrics.ActivityFeedRecordsReturned.Observe(float64(len(records)))

	return records, nil
}

// sortRecords orders newest first. Equal timestamps break on record id
// descending so the ordering is deterministic across requests.
func sortRecords(records []domain.Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}

// UnreadCount sums new per-kind activity since the caller last marked
// the feed read.
func (s *FeedService) UnreadCount(ctx context.Context, userID string) (int, error) {
	user, err := s.users.FindByID(ctx, userdomain.ID(userID))
	if err != nil {
		metrics.NotificationCountQueriesTotal.WithLabelValues("error").Inc()
		return 0, mapStoreError(err)
	}

	if len(user.Following) == 0 {
		metrics.NotificationCountQueriesTotal.WithLabelValues("ok").Inc()
		return 0, nil
	}

	authorIDs := make([]string, 0, len(user.Following))
	for _, id := range user.Following {
		authorIDs = append(authorIDs, string(id))
	}

	since := user.LastSeenActivity

	var commentCount, likeCount, saveCount int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commentCount, err = s.comments.CountByAuthorsSince(gctx, authorIDs, since)
		return err
	})
	g.Go(func() error {
		var err error
		likeCount, err = s.likes.CountByAuthorsSince(gctx, authorIDs, since)
		return err
	})
	g.Go(func() error {
		var err error
		saveCount, err = s.saves.CountByAuthorsSince(gctx, authorIDs, since)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.NotificationCountQueriesTotal.WithLabelValues("error").Inc()
		return 0, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	metrics.NotificationCountQueriesTotal.WithLabelValues("ok").Inc()
	return commentCount + likeCount + saveCount, nil
}

// MarkRead advances the caller's last-seen marker to now. Calling it
// twice is a no-op the second time.
func (s *FeedService) MarkRead(ctx context.Context, userID string) error {
	if err := s.users.TouchLastSeenActivity(ctx, userdomain.ID(userID)); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func mapStoreError(err error) error {
	if commonerrors.IsDomainError(err) {
		return err
	}
	if errors.Is(err, userrepo.ErrUserNotFound) {
		return commonerrors.ErrUserNotFound
	}
	return commonerrors.ErrStoreUnavailable.WithCause(err)
}
