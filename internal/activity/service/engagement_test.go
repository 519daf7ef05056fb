package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/academiahub/backend/internal/activity/domain"
	"github.com/academiahub/backend/internal/activity/repository"
	"github.com/academiahub/backend/internal/common/clock"
	"github.com/academiahub/backend/internal/common/constants"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
)

type fixedIDGen struct {
	next int
}

func (g *fixedIDGen) NewID() (string, error) {
	g.next++
	return "id-" + string(rune('0'+g.next)), nil
}

// toggleStateRepo emulates the insert-or-delete toggle of the real
// repository with an in-memory set.
type toggleStateRepo struct {
	mockEngagementRepo
	set map[string]bool
}

func newToggleStateRepo() *toggleStateRepo {
	r := &toggleStateRepo{set: make(map[string]bool)}
	r.toggleFn = func(_ context.Context, e domain.Engagement) (bool, error) {
		key := e.PaperID + "/" + e.UserID
		if r.set[key] {
			delete(r.set, key)
			return false, nil
		}
		r.set[key] = true
		return true, nil
	}
	return r
}

func newTestEngagementService(comments *mockCommentRepo, likes, saves repository.EngagementRepository) *EngagementService {
	return NewEngagementService(
		comments, likes, saves,
		&fixedIDGen{},
		clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		logger.GetInstance(),
	)
}

func TestAddCommentRejectsEmptyContent(t *testing.T) {
	svc := newTestEngagementService(&mockCommentRepo{}, &mockEngagementRepo{}, &mockEngagementRepo{})

	_, err := svc.AddComment(context.Background(), "u1", "alice", "2101.00001", "   ")
	if !commonerrors.Is(err, commonerrors.ErrEmptyComment) {
		t.Fatalf("expected empty comment error, got %v", err)
	}
}

func TestAddCommentRejectsEmptyPaperID(t *testing.T) {
	svc := newTestEngagementService(&mockCommentRepo{}, &mockEngagementRepo{}, &mockEngagementRepo{})

	_, err := svc.AddComment(context.Background(), "u1", "alice", "", "great paper")
	if !commonerrors.Is(err, commonerrors.ErrEmptyPaperID) {
		t.Fatalf("expected empty paper id error, got %v", err)
	}
}

func TestAddCommentPersistsTrimmedContent(t *testing.T) {
	var created domain.Comment
	comments := &mockCommentRepo{
		createFn: func(_ context.Context, c domain.Comment) error {
			created = c
			return nil
		},
	}
	svc := newTestEngagementService(comments, &mockEngagementRepo{}, &mockEngagementRepo{})

	comment, err := svc.AddComment(context.Background(), "u1", "alice", "2101.00001", "  nice result  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Content != "nice result" {
		t.Errorf("expected trimmed content, got %q", created.Content)
	}
	if comment.Username != "alice" || comment.UserID != "u1" {
		t.Errorf("unexpected authorship: %+v", comment)
	}
	if comment.ID == "" {
		t.Error("expected generated comment id")
	}
}

func TestAddCommentKeepsMultiByteContentIntact(t *testing.T) {
	var created domain.Comment
	comments := &mockCommentRepo{
		createFn: func(_ context.Context, c domain.Comment) error {
			created = c
			return nil
		},
	}
	svc := newTestEngagementService(comments, &mockEngagementRepo{}, &mockEngagementRepo{})

	// 1000 three-byte runes: over the cap in bytes but under it in runes.
	content := strings.Repeat("→", 1000)
	_, err := svc.AddComment(context.Background(), "u1", "alice", "2101.00001", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Content != content {
		t.Errorf("content within the rune cap must be stored unchanged, got %d runes", utf8.RuneCountInString(created.Content))
	}
}

func TestAddCommentTruncatesOnRuneBoundary(t *testing.T) {
	var created domain.Comment
	comments := &mockCommentRepo{
		createFn: func(_ context.Context, c domain.Comment) error {
			created = c
			return nil
		},
	}
	svc := newTestEngagementService(comments, &mockEngagementRepo{}, &mockEngagementRepo{})

	_, err := svc.AddComment(context.Background(), "u1", "alice", "2101.00001", strings.Repeat("→", constants.MaxCommentLength+500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(created.Content) {
		t.Fatal("truncation must not split a multi-byte rune")
	}
	if got := utf8.RuneCountInString(created.Content); got != constants.MaxCommentLength {
		t.Errorf("expected %d runes after truncation, got %d", constants.MaxCommentLength, got)
	}
}

func TestDeleteCommentRequiresAuthor(t *testing.T) {
	comments := &mockCommentRepo{
		findByIDFn: func(_ context.Context, id string) (domain.Comment, error) {
			return domain.Comment{ID: id, UserID: "owner"}, nil
		},
	}
	svc := newTestEngagementService(comments, &mockEngagementRepo{}, &mockEngagementRepo{})

	err := svc.DeleteComment(context.Background(), "intruder", "c1")
	if !commonerrors.Is(err, commonerrors.ErrNotCommentAuthor) {
		t.Fatalf("expected not-author error, got %v", err)
	}
}

func TestDeleteCommentMapsNotFound(t *testing.T) {
	comments := &mockCommentRepo{
		findByIDFn: func(context.Context, string) (domain.Comment, error) {
			return domain.Comment{}, repository.ErrCommentNotFound
		},
	}
	svc := newTestEngagementService(comments, &mockEngagementRepo{}, &mockEngagementRepo{})

	err := svc.DeleteComment(context.Background(), "u1", "missing")
	if !commonerrors.Is(err, commonerrors.ErrCommentNotFound) {
		t.Fatalf("expected comment not found, got %v", err)
	}
}

func TestToggleSaveIsAnInvolution(t *testing.T) {
	saves := newToggleStateRepo()
	svc := newTestEngagementService(&mockCommentRepo{}, &mockEngagementRepo{}, saves)

	set, err := svc.ToggleSave(context.Background(), "u1", "2101.00001", "A Paper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set {
		t.Fatal("first toggle should save")
	}

	set, err = svc.ToggleSave(context.Background(), "u1", "2101.00001", "A Paper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set {
		t.Fatal("second toggle should unsave")
	}
}

func TestToggleLikeRejectsEmptyPaperID(t *testing.T) {
	svc := newTestEngagementService(&mockCommentRepo{}, newToggleStateRepo(), &mockEngagementRepo{})

	_, err := svc.ToggleLike(context.Background(), "u1", "  ", "")
	if !commonerrors.Is(err, commonerrors.ErrEmptyPaperID) {
		t.Fatalf("expected empty paper id error, got %v", err)
	}
}

func TestPaperStatusSkipsPerUserChecksForGuests(t *testing.T) {
	likes := &mockEngagementRepo{
		countForPaperFn: func(context.Context, string) (int, error) { return 7, nil },
		isSetFn: func(context.Context, string, string) (bool, error) {
			t.Fatal("guest status must not query per-user state")
			return false, nil
		},
	}
	svc := newTestEngagementService(&mockCommentRepo{}, likes, &mockEngagementRepo{})

	status, err := svc.PaperStatus(context.Background(), "", "2101.00001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.LikeCount != 7 || status.Liked || status.Saved {
		t.Fatalf("unexpected status: %+v", status)
	}
}
