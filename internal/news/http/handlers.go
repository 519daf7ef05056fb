package http

import (
	"net/http"
	"time"

	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/news/domain"
	"github.com/academiahub/backend/internal/news/service"
)

type Handler struct {
	service        *service.Service
	errorHandler   *commonhttp.ErrorHandler
	requestTimeout time.Duration
}

func NewHandler(svc *service.Service, log *logger.Logger, requestTimeout time.Duration) *Handler {
	return &Handler{
		service:        svc,
		errorHandler:   commonhttp.NewErrorHandler(log),
		requestTimeout: requestTimeout,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.HandleFunc("/api/news",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleNews)))
}

type articleResponse struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Topic       string    `json:"topic"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

func (h *Handler) handleNews(w http.ResponseWriter, r *http.Request) {
	var topic domain.Topic
	if raw := r.URL.Query().Get("topic"); raw != "" {
		parsed, ok := domain.ParseTopic(raw)
		if !ok {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "unknown topic", nil, "")
			return
		}
		topic = parsed
	}

	articles, err := h.service.Articles(r.Context(), topic)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleResponse{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			Topic:       string(a.Topic),
			Summary:     a.Summary,
			PublishedAt: a.PublishedAt,
		})
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}
