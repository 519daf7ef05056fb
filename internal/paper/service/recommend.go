package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/observability/metrics"
	"github.com/academiahub/backend/internal/paper/arxiv"
	"github.com/academiahub/backend/internal/paper/domain"
	prefsdomain "github.com/academiahub/backend/internal/prefs/domain"
)

// PreferencesSource resolves the caller's preferences regardless of
// which backend holds them.
type PreferencesSource interface {
	Get(ctx context.Context, p principal.Principal) (prefsdomain.Preferences, error)
}

// RecommendService builds a personalized paper pool by fanning out one
// arXiv query per interest and followed author, then merging, filtering
// and paging the results.
type RecommendService struct {
	client      Searcher
	prefs       PreferencesSource
	log         *logger.Logger
	perTermCap  int
	pageSize    int
	termTimeout time.Duration
}

func NewRecommendService(
	client Searcher,
	prefs PreferencesSource,
	log *logger.Logger,
	perTermCap int,
	pageSize int,
	termTimeout time.Duration,
) *RecommendService {
	return &RecommendService{
		client:      client,
		prefs:       prefs,
		log:         log,
		perTermCap:  perTermCap,
		pageSize:    pageSize,
		termTimeout: termTimeout,
	}
}

type searchTerm struct {
	query  string
	author bool
}

func (s *RecommendService) Recommend(ctx context.Context, p principal.Principal, mode domain.SortMode, page int) (domain.RecommendationPage, error) {
	prefs, err := s.prefs.Get(ctx, p)
	if err != nil {
		return domain.RecommendationPage{}, err
	}

	terms := buildTerms(prefs)
	if len(terms) == 0 {
		return emptyPage(s.pageSize), nil
	}

	pool := s.fanOut(ctx, terms)
	pool = dedupe(pool)
	pool = filterExcluded(pool, prefs.ExcludedCategories)
	markFollowedAuthors(pool, prefs.FollowedAuthors)
	sortPool(pool, mode)

	metrics.RecommendPoolSize.Observe(float64(len(pool)))

	return paginate(pool, page, s.pageSize), nil
}

func buildTerms(prefs prefsdomain.Preferences) []searchTerm {
	terms := make([]searchTerm, 0, len(prefs.Interests)+len(prefs.FollowedAuthors))
	for _, interest := range prefs.Interests {
		terms = append(terms, searchTerm{query: `all:"` + interest + `"`})
	}
	for _, author := range prefs.FollowedAuthors {
		terms = append(terms, searchTerm{query: `au:"` + author + `"`, author: true})
	}
	return terms
}

// fanOut runs one bounded search per term. A failed term costs its
// share of the pool, never the whole request: a recommendation page
// built from the terms that did answer beats an error page.
func (s *RecommendService) fanOut(ctx context.Context, terms []searchTerm) []domain.Paper {
	var (
		mu   sync.Mutex
		pool []domain.Paper
		wg   sync.WaitGroup
	)

	for _, term := range terms {
		wg.Add(1)
		go func(term searchTerm) {
			defer wg.Done()

			termCtx, cancel := context.WithTimeout(ctx, s.termTimeout)
			defer cancel()

			result, err := s.client.Search(termCtx, arxiv.SearchRequest{
				Query:      term.query,
				MaxResults: s.perTermCap,
				SortBy:     arxiv.SortSubmittedDate,
			})
			if err != nil {
				metrics.RecommendTermFailuresTotal.Inc()
				s.log.WithFields(ctx, logger.Fields{
					"action": "recommend_term",
					"term":   term.query,
					"error":  err.Error(),
				}).Warn("recommendation term failed")
				return
			}

			papers := result.Papers
			for i := range papers {
				if term.author {
					papers[i].ByFollowedAuthor = true
				}
			}

			mu.Lock()
			pool = append(pool, papers...)
			mu.Unlock()
		}(term)
	}

	wg.Wait()
	return pool
}

// dedupe keeps the first occurrence of each paper, merging the
// followed-author flag across duplicates.
func dedupe(pool []domain.Paper) []domain.Paper {
	seen := make(map[string]int, len(pool))
	out := pool[:0]
	for _, paper := range pool {
		key := paper.BareID()
		if idx, ok := seen[key]; ok {
			if paper.ByFollowedAuthor {
				out[idx].ByFollowedAuthor = true
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, paper)
	}
	return out
}

func filterExcluded(pool []domain.Paper, excluded []string) []domain.Paper {
	if len(excluded) == 0 {
		return pool
	}

	excludedSet := make(map[string]struct{}, len(excluded))
	for _, cat := range excluded {
		excludedSet[strings.ToLower(cat)] = struct{}{}
	}

	out := pool[:0]
	for _, paper := range pool {
		if hasExcludedCategory(paper, excludedSet) {
			continue
		}
		out = append(out, paper)
	}
	return out
}

func hasExcludedCategory(paper domain.Paper, excluded map[string]struct{}) bool {
	for _, cat := range paper.Categories {
		if _, ok := excluded[strings.ToLower(cat)]; ok {
			return true
		}
	}
	if _, ok := excluded[strings.ToLower(paper.PrimaryCategory)]; ok {
		return true
	}
	return false
}

// markFollowedAuthors also flags papers that reached the pool via an
// interest term but are authored by someone the user follows.
func markFollowedAuthors(pool []domain.Paper, followed []string) {
	if len(followed) == 0 {
		return
	}

	followedSet := make(map[string]struct{}, len(followed))
	for _, name := range followed {
		followedSet[strings.ToLower(name)] = struct{}{}
	}

	for i := range pool {
		if pool[i].ByFollowedAuthor {
			continue
		}
		for _, author := range pool[i].Authors {
			if _, ok := followedSet[strings.ToLower(author)]; ok {
				pool[i].ByFollowedAuthor = true
				break
			}
		}
	}
}

// sortPool orders the pool deterministically: ties inside each mode
// break on bare id descending.
func sortPool(pool []domain.Paper, mode domain.SortMode) {
	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		switch mode {
		case domain.SortLastUpdated:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		case domain.SortRelevance:
			if a.ByFollowedAuthor != b.ByFollowedAuthor {
				return a.ByFollowedAuthor
			}
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.After(b.PublishedAt)
			}
		default:
			if !a.PublishedAt.Equal(b.PublishedAt) {
				return a.PublishedAt.After(b.PublishedAt)
			}
		}
		return a.BareID() > b.BareID()
	})
}

func paginate(pool []domain.Paper, page, pageSize int) domain.RecommendationPage {
	total := len(pool)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if totalPages == 0 {
		page = 1
	} else if page > totalPages {
		page = totalPages
	}

	startIdx := (page - 1) * pageSize
	if startIdx >= total {
		return domain.RecommendationPage{
			Papers:     []domain.Paper{},
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		}
	}

	endIdx := startIdx + pageSize
	if endIdx > total {
		endIdx = total
	}

	return domain.RecommendationPage{
		Papers:     pool[startIdx:endIdx],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

func emptyPage(pageSize int) domain.RecommendationPage {
	return domain.RecommendationPage{
		Papers:   []domain.Paper{},
		Page:     1,
		PageSize: pageSize,
	}
}
