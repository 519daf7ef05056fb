package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/paper/arxiv"
	"github.com/academiahub/backend/internal/paper/domain"
	prefsdomain "github.com/academiahub/backend/internal/prefs/domain"
)

type mockSearcher struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, req arxiv.SearchRequest) (domain.SearchResult, error)
	queries  []string
}

func (m *mockSearcher) Search(ctx context.Context, req arxiv.SearchRequest) (domain.SearchResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, req.Query)
	m.mu.Unlock()
	return m.searchFn(ctx, req)
}

type mockPrefs struct {
	prefs prefsdomain.Preferences
	err   error
}

func (m *mockPrefs) Get(context.Context, principal.Principal) (prefsdomain.Preferences, error) {
	return m.prefs, m.err
}

var recBase = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func paperAt(id string, daysAgo int) domain.Paper {
	return domain.Paper{
		ID:          id,
		Title:       "Paper " + id,
		PublishedAt: recBase.AddDate(0, 0, -daysAgo),
		UpdatedAt:   recBase.AddDate(0, 0, -daysAgo),
	}
}

func newTestRecommendService(searcher Searcher, prefs PreferencesSource) *RecommendService {
	return NewRecommendService(searcher, prefs, logger.GetInstance(), 25, 10, time.Second)
}

func TestRecommendEmptyPreferencesSkipsSearch(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(context.Context, arxiv.SearchRequest) (domain.SearchResult, error) {
			t.Fatal("no search expected without preferences")
			return domain.SearchResult{}, nil
		},
	}
	svc := newTestRecommendService(searcher, &mockPrefs{})

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "g1", Guest: true}, domain.SortNewest, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Papers) != 0 || page.Total != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestRecommendIssuesOneQueryPerTerm(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(context.Context, arxiv.SearchRequest) (domain.SearchResult, error) {
			return domain.SearchResult{}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{
		Interests:       []string{"quantum computing", "category theory"},
		FollowedAuthors: []string{"Jane Doe"},
	}}
	svc := newTestRecommendService(searcher, prefs)

	if _, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{`all:"category theory"`, `all:"quantum computing"`, `au:"Jane Doe"`}
	got := append([]string(nil), searcher.queries...)
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("expected %d queries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRecommendDeduplicatesAcrossTerms(t *testing.T) {
	shared := paperAt("2101.00001v2", 1)
	searcher := &mockSearcher{
		searchFn: func(_ context.Context, req arxiv.SearchRequest) (domain.SearchResult, error) {
			switch req.Query {
			case `all:"quantum"`:
				return domain.SearchResult{Papers: []domain.Paper{shared, paperAt("2102.00002", 2)}}, nil
			case `au:"Jane Doe"`:
				dup := shared
				dup.ID = "2101.00001v3"
				return domain.SearchResult{Papers: []domain.Paper{dup}}, nil
			}
			return domain.SearchResult{}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{
		Interests:       []string{"quantum"},
		FollowedAuthors: []string{"Jane Doe"},
	}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 papers after dedupe, got %d", page.Total)
	}

	for _, p := range page.Papers {
		if p.BareID() == "2101.00001" && !p.ByFollowedAuthor {
			t.Error("duplicate from author term should carry followed-author flag")
		}
	}
}

func TestRecommendFiltersExcludedCategories(t *testing.T) {
	kept := paperAt("2101.00001", 1)
	kept.Categories = []string{"cs.LG"}
	dropped := paperAt("2102.00002", 2)
	dropped.Categories = []string{"cs.LG", "q-bio.NC"}

	searcher := &mockSearcher{
		searchFn: func(context.Context, arxiv.SearchRequest) (domain.SearchResult, error) {
			return domain.SearchResult{Papers: []domain.Paper{kept, dropped}}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{
		Interests:          []string{"learning"},
		ExcludedCategories: []string{"q-bio.NC"},
	}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || page.Papers[0].ID != "2101.00001" {
		t.Fatalf("expected only the unexcluded paper, got %+v", page.Papers)
	}
}

func TestRecommendToleratesPartialTermFailure(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(_ context.Context, req arxiv.SearchRequest) (domain.SearchResult, error) {
			if req.Query == `all:"failing topic"` {
				return domain.SearchResult{}, errors.New("upstream timeout")
			}
			return domain.SearchResult{Papers: []domain.Paper{
				paperAt("2101.00001", 1),
				paperAt("2102.00002", 2),
				paperAt("2103.00003", 3),
				paperAt("2104.00004", 4),
				paperAt("2105.00005", 5),
			}}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{
		Interests: []string{"failing topic", "healthy topic"},
	}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 1)
	if err != nil {
		t.Fatalf("expected partial results, got error: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("expected 5 papers from the healthy term, got %d", page.Total)
	}
}

func TestRecommendRelevancePutsFollowedAuthorsFirst(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(_ context.Context, req arxiv.SearchRequest) (domain.SearchResult, error) {
			if req.Query == `au:"Jane Doe"` {
				return domain.SearchResult{Papers: []domain.Paper{paperAt("2001.00001", 300)}}, nil
			}
			return domain.SearchResult{Papers: []domain.Paper{paperAt("2105.00005", 1)}}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{
		Interests:       []string{"quantum"},
		FollowedAuthors: []string{"Jane Doe"},
	}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortRelevance, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Papers[0].ID != "2001.00001" {
		t.Fatalf("expected the followed author's older paper first, got %s", page.Papers[0].ID)
	}
}

func TestRecommendLastUpdatedOrdering(t *testing.T) {
	older := paperAt("2101.00001", 30)
	older.UpdatedAt = recBase // revised recently
	newer := paperAt("2105.00005", 1)

	searcher := &mockSearcher{
		searchFn: func(context.Context, arxiv.SearchRequest) (domain.SearchResult, error) {
			return domain.SearchResult{Papers: []domain.Paper{newer, older}}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{Interests: []string{"quantum"}}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortLastUpdated, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Papers[0].ID != "2101.00001" {
		t.Fatalf("expected recently revised paper first, got %s", page.Papers[0].ID)
	}
}

func TestRecommendClampsPageNumber(t *testing.T) {
	papers := make([]domain.Paper, 0, 25)
	for i := 0; i < 25; i++ {
		papers = append(papers, paperAt("25"+string(rune('a'+i))+".0000", i))
	}
	searcher := &mockSearcher{
		searchFn: func(context.Context, arxiv.SearchRequest) (domain.SearchResult, error) {
			return domain.SearchResult{Papers: papers}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{Interests: []string{"quantum"}}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 3 || page.TotalPages != 3 {
		t.Fatalf("expected clamp to last page 3, got page=%d totalPages=%d", page.Page, page.TotalPages)
	}
	if len(page.Papers) != 5 {
		t.Fatalf("expected 5 papers on the last page, got %d", len(page.Papers))
	}

	page, err = svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 1 || len(page.Papers) != 10 {
		t.Fatalf("expected first full page, got page=%d len=%d", page.Page, len(page.Papers))
	}
}

func TestRecommendClampsPageOnEmptyPool(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(context.Context, arxiv.SearchRequest) (domain.SearchResult, error) {
			return domain.SearchResult{}, nil
		},
	}
	prefs := &mockPrefs{prefs: prefsdomain.Preferences{Interests: []string{"quantum"}}}
	svc := newTestRecommendService(searcher, prefs)

	page, err := svc.Recommend(context.Background(), principal.Principal{Key: "u1"}, domain.SortNewest, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("expected page clamped to 1 on an empty pool, got %d", page.Page)
	}
	if page.Total != 0 || page.TotalPages != 0 || len(page.Papers) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}
