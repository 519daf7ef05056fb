package store

import (
	"context"
	"sync"
	"time"

	"github.com/academiahub/backend/internal/common/clock"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/prefs/domain"
)

type guestEntry struct {
	prefs    domain.Preferences
	saved    map[string]string
	lastSeen time.Time
}

// GuestStore keeps preferences and saved papers for unauthenticated
// visitors in process memory, keyed by the guest_id cookie. Entries
// expire after the TTL and are swept by a background cleanup loop.
type GuestStore struct {
	mu      sync.RWMutex
	entries map[string]*guestEntry
	clock   clock.Clock
	ttl     time.Duration
	log     *logger.Logger
}

func NewGuestStore(clk clock.Clock, ttl time.Duration, log *logger.Logger) *GuestStore {
	return &GuestStore{
		entries: make(map[string]*guestEntry),
		clock:   clk,
		ttl:     ttl,
		log:     log,
	}
}

// StartCleanup sweeps expired entries until ctx is cancelled.
func (s *GuestStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := s.Sweep()
				if removed > 0 {
					s.log.Debugf("guest store cleanup removed %d expired entries", removed)
				}
			}
		}
	}()
}

// Sweep removes expired entries and reports how many were dropped.
func (s *GuestStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *GuestStore) Get(_ context.Context, key string) (domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.touch(key)
	return copyPreferences(entry.prefs), nil
}

func (s *GuestStore) Add(_ context.Context, key string, field domain.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.touch(key)
	switch field {
	case domain.FieldInterest:
		entry.prefs.Interests = appendUnique(entry.prefs.Interests, value)
	case domain.FieldFollowedAuthor:
		entry.prefs.FollowedAuthors = appendUnique(entry.prefs.FollowedAuthors, value)
	case domain.FieldExcludedCategory:
		entry.prefs.ExcludedCategories = appendUnique(entry.prefs.ExcludedCategories, value)
	}
	return nil
}

func (s *GuestStore) Remove(_ context.Context, key string, field domain.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.touch(key)
	switch field {
	case domain.FieldInterest:
		entry.prefs.Interests = removeValue(entry.prefs.Interests, value)
	case domain.FieldFollowedAuthor:
		entry.prefs.FollowedAuthors = removeValue(entry.prefs.FollowedAuthors, value)
	case domain.FieldExcludedCategory:
		entry.prefs.ExcludedCategories = removeValue(entry.prefs.ExcludedCategories, value)
	}
	return nil
}

// ToggleSave flips a guest's saved state for a paper and reports the
// resulting state.
func (s *GuestStore) ToggleSave(key, paperID, paperTitle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.touch(key)
	if _, ok := entry.saved[paperID]; ok {
		delete(entry.saved, paperID)
		return false
	}
	entry.saved[paperID] = paperTitle
	return true
}

func (s *GuestStore) IsSaved(key, paperID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return false
	}
	_, saved := entry.saved[paperID]
	return saved
}

func (s *GuestStore) SavedPaperIDs(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(entry.saved))
	for id := range entry.saved {
		ids = append(ids, id)
	}
	return ids
}

// touch returns the entry for key, creating it when absent, and marks
// it live. Callers must hold the write lock.
func (s *GuestStore) touch(key string) *guestEntry {
	entry, ok := s.entries[key]
	if !ok {
		entry = &guestEntry{saved: make(map[string]string)}
		s.entries[key] = entry
	}
	entry.lastSeen = s.clock.Now()
	return entry
}

func copyPreferences(p domain.Preferences) domain.Preferences {
	return domain.Preferences{
		Interests:          append([]string(nil), p.Interests...),
		FollowedAuthors:    append([]string(nil), p.FollowedAuthors...),
		ExcludedCategories: append([]string(nil), p.ExcludedCategories...),
	}
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

func removeValue(values []string, value string) []string {
	out := values[:0]
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
