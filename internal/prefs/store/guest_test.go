package store

import (
	"context"
	"testing"
	"time"

	"github.com/academiahub/backend/internal/common/clock"
	"github.com/academiahub/backend/internal/common/constants"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/prefs/domain"
)

func newTestGuestStore() (*GuestStore, *clock.MockClock) {
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewGuestStore(clk, constants.GuestPrefsTTL, logger.GetInstance()), clk
}

func TestGuestStoreAddIsIdempotent(t *testing.T) {
	store, _ := newTestGuestStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Add(ctx, "g1", domain.FieldInterest, "quantum"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	prefs, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prefs.Interests) != 1 || prefs.Interests[0] != "quantum" {
		t.Fatalf("expected single interest, got %v", prefs.Interests)
	}
}

func TestGuestStoreRemove(t *testing.T) {
	store, _ := newTestGuestStore()
	ctx := context.Background()

	store.Add(ctx, "g1", domain.FieldFollowedAuthor, "Jane Doe")
	store.Add(ctx, "g1", domain.FieldFollowedAuthor, "John Smith")
	store.Remove(ctx, "g1", domain.FieldFollowedAuthor, "Jane Doe")

	prefs, _ := store.Get(ctx, "g1")
	if len(prefs.FollowedAuthors) != 1 || prefs.FollowedAuthors[0] != "John Smith" {
		t.Fatalf("unexpected authors: %v", prefs.FollowedAuthors)
	}

	// Removing a value that is not present is a no-op.
	if err := store.Remove(ctx, "g1", domain.FieldFollowedAuthor, "Nobody"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGuestStoreIsolatesKeys(t *testing.T) {
	store, _ := newTestGuestStore()
	ctx := context.Background()

	store.Add(ctx, "g1", domain.FieldInterest, "quantum")

	prefs, _ := store.Get(ctx, "g2")
	if len(prefs.Interests) != 0 {
		t.Fatalf("expected empty prefs for g2, got %v", prefs.Interests)
	}
}

func TestGuestStoreToggleSave(t *testing.T) {
	store, _ := newTestGuestStore()

	if set := store.ToggleSave("g1", "2101.00001", "A Paper"); !set {
		t.Fatal("first toggle should save")
	}
	if !store.IsSaved("g1", "2101.00001") {
		t.Fatal("expected paper saved")
	}
	if store.IsSaved("g2", "2101.00001") {
		t.Fatal("save leaked across guests")
	}

	if set := store.ToggleSave("g1", "2101.00001", "A Paper"); set {
		t.Fatal("second toggle should unsave")
	}
	if store.IsSaved("g1", "2101.00001") {
		t.Fatal("expected paper unsaved")
	}
}

func TestGuestStoreSweepExpiresIdleEntries(t *testing.T) {
	store, clk := newTestGuestStore()
	ctx := context.Background()

	store.Add(ctx, "idle", domain.FieldInterest, "quantum")

	clk.Advance(constants.GuestPrefsTTL / 2)
	store.Add(ctx, "active", domain.FieldInterest, "crypto")

	clk.Advance(constants.GuestPrefsTTL/2 + time.Minute)

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected 1 expired entry, got %d", removed)
	}

	prefs, _ := store.Get(ctx, "idle")
	if len(prefs.Interests) != 0 {
		t.Fatal("expired entry should be gone")
	}
	prefs, _ = store.Get(ctx, "active")
	if len(prefs.Interests) != 1 {
		t.Fatal("active entry should survive the sweep")
	}
}

func TestGuestStoreGetRefreshesTTL(t *testing.T) {
	store, clk := newTestGuestStore()
	ctx := context.Background()

	store.Add(ctx, "g1", domain.FieldInterest, "quantum")

	clk.Advance(constants.GuestPrefsTTL - time.Minute)
	store.Get(ctx, "g1")

	clk.Advance(2 * time.Minute)
	if removed := store.Sweep(); removed != 0 {
		t.Fatalf("recently read entry should not expire, removed %d", removed)
	}
}
