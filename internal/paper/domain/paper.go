package domain

import (
	"strings"
	"time"
)

// Paper is one arXiv entry normalized for the API surface.
type Paper struct {
	ID              string
	Title           string
	Summary         string
	Authors         []string
	Categories      []string
	PrimaryCategory string
	PublishedAt     time.Time
	UpdatedAt       time.Time
	AbsURL          string
	PDFURL          string

	// ByFollowedAuthor marks pool entries that came from a followed
	// author, used by relevance ordering.
	ByFollowedAuthor bool
}

// BareID strips the version suffix from an arXiv identifier, e.g.
// "2101.00001v3" becomes "2101.00001".
func (p Paper) BareID() string {
	return StripVersion(p.ID)
}

func StripVersion(id string) string {
	idx := strings.LastIndex(id, "v")
	if idx <= 0 {
		return id
	}
	for _, r := range id[idx+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	if idx == len(id)-1 {
		return id
	}
	return id[:idx]
}

// SearchResult carries one result page plus the upstream total.
type SearchResult struct {
	Papers       []Paper
	TotalResults int
}

type SortMode string

const (
	SortNewest      SortMode = "newest"
	SortLastUpdated SortMode = "lastUpdated"
	SortRelevance   SortMode = "relevance"
)

func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortLastUpdated:
		return SortLastUpdated
	case SortRelevance:
		return SortRelevance
	default:
		return SortNewest
	}
}

// RecommendationPage is one page of the recommendation pool.
type RecommendationPage struct {
	Papers     []Paper
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}
