package service

import (
	"context"
	"strings"

	"github.com/academiahub/backend/internal/common/constants"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/validate"
	"github.com/academiahub/backend/internal/paper/arxiv"
	"github.com/academiahub/backend/internal/paper/domain"
)

// Searcher is the arXiv client surface the services need.
type Searcher interface {
	Search(ctx context.Context, req arxiv.SearchRequest) (domain.SearchResult, error)
}

type SearchService struct {
	client     Searcher
	maxResults int
	log        *logger.Logger
}

func NewSearchService(client Searcher, maxResults int, log *logger.Logger) *SearchService {
	return &SearchService{
		client:     client,
		maxResults: maxResults,
		log:        log,
	}
}

// Search runs a free-text query against arXiv, newest first.
func (s *SearchService) Search(ctx context.Context, query string, start, limit int) (domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{}, commonerrors.ErrEmptyQuery
	}
	query = validate.Truncate(query, constants.MaxSearchQueryLength)

	if limit <= 0 || limit > constants.MaxSearchResultsLimit {
		limit = s.maxResults
	}
	if start < 0 {
		start = 0
	}

	result, err := s.client.Search(ctx, arxiv.SearchRequest{
		Query:      `all:"` + query + `"`,
		Start:      start,
		MaxResults: limit,
		SortBy:     arxiv.SortSubmittedDate,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "paper_search",
			"error":  err.Error(),
		}).Error("arxiv search failed")
		return domain.SearchResult{}, commonerrors.ErrSearchUpstream.WithCause(err)
	}

	return result, nil
}

// GetByID fetches a single paper through the id_list parameter.
func (s *SearchService) GetByID(ctx context.Context, id string) (domain.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Paper{}, commonerrors.ErrEmptyPaperID
	}

	result, err := s.client.Search(ctx, arxiv.SearchRequest{
		IDList:     []string{id},
		MaxResults: 1,
	})
	if err != nil {
		return domain.Paper{}, commonerrors.ErrSearchUpstream.WithCause(err)
	}

	if len(result.Papers) == 0 {
		return domain.Paper{}, commonerrors.ErrPaperNotFound
	}

	return result.Papers[0], nil
}
