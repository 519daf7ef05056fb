package http

import (
	"net/http"
	"strconv"
	"time"

	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/paper/domain"
	"github.com/academiahub/backend/internal/paper/service"
)

type Handler struct {
	search        *service.SearchService
	recommend     *service.RecommendService
	errorHandler  *commonhttp.ErrorHandler
	searchTimeout time.Duration
}

func NewHandler(search *service.SearchService, recommend *service.RecommendService, log *logger.Logger, searchTimeout time.Duration) *Handler {
	return &Handler{
		search:        search,
		recommend:     recommend,
		errorHandler:  commonhttp.NewErrorHandler(log),
		searchTimeout: searchTimeout,
	}
}

// RegisterRoutes mounts the search and recommendation surface, all of
// it public. Recommendations personalize from whatever preferences
// the caller has, guest or account.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.searchTimeout)

	mux.HandleFunc("/api/search",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleSearch)))
	mux.HandleFunc("/api/paper",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleGetPaper)))
	mux.HandleFunc("/api/recommendations",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleRecommendations)))
}

type paperResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Authors          []string  `json:"authors"`
	Categories       []string  `json:"categories"`
	PrimaryCategory  string    `json:"primary_category"`
	PublishedAt      time.Time `json:"published_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	AbsURL           string    `json:"abs_url"`
	PDFURL           string    `json:"pdf_url"`
	ByFollowedAuthor bool      `json:"by_followed_author,omitempty"`
}

type searchResponse struct {
	Papers       []paperResponse `json:"papers"`
	TotalResults int             `json:"total_results"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, _ := strconv.Atoi(q.Get("start"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.search.Search(r.Context(), q.Get("q"), start, limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, searchResponse{
		Papers:       toPaperResponses(result.Papers),
		TotalResults: result.TotalResults,
	})
}

func (h *Handler) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := h.search.GetByID(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toPaperResponse(paper))
}

type recommendationsResponse struct {
	Papers     []paperResponse `json:"papers"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := domain.ParseSortMode(q.Get("sort"))
	page, _ := strconv.Atoi(q.Get("page"))

	p := principal.Resolve(w, r)

	result, err := h.recommend.Recommend(r.Context(), p, mode, page)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, recommendationsResponse{
		Papers:     toPaperResponses(result.Papers),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func toPaperResponses(papers []domain.Paper) []paperResponse {
	out := make([]paperResponse, 0, len(papers))
	for _, p := range papers {
		out = append(out, toPaperResponse(p))
	}
	return out
}

func toPaperResponse(p domain.Paper) paperResponse {
	return paperResponse{
		ID:               p.ID,
		Title:            p.Title,
		Summary:          p.Summary,
		Authors:          p.Authors,
		Categories:       p.Categories,
		PrimaryCategory:  p.PrimaryCategory,
		PublishedAt:      p.PublishedAt,
		UpdatedAt:        p.UpdatedAt,
		AbsURL:           p.AbsURL,
		PDFURL:           p.PDFURL,
		ByFollowedAuthor: p.ByFollowedAuthor,
	}
}
