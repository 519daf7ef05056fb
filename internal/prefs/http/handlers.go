package http

import (
	"net/http"
	"time"

	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/common/validate"
	"github.com/academiahub/backend/internal/prefs/domain"
	"github.com/academiahub/backend/internal/prefs/service"
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

// RegisterRoutes mounts the preferences surface. All routes work for
// guests; the caller wraps them with the optional auth middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.HandleFunc("/api/preferences",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleGet)))
	mux.HandleFunc("/api/preferences/interests",
		withTimeout(h.mutation(domain.FieldInterest)))
	mux.HandleFunc("/api/preferences/authors",
		withTimeout(h.mutation(domain.FieldFollowedAuthor)))
	mux.HandleFunc("/api/preferences/categories",
		withTimeout(h.mutation(domain.FieldExcludedCategory)))
}

type preferencesResponse struct {
	Interests          []string `json:"interests"`
	FollowedAuthors    []string `json:"followed_authors"`
	ExcludedCategories []string `json:"excluded_categories"`
}

type mutationRequest struct {
	Value string `json:"value" validate:"required,min=1,max=200"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p := principal.Resolve(w, r)

	prefs, err := h.service.Get(r.Context(), p)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toResponse(prefs))
}

func (h *Handler) mutation(field domain.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodDelete:
		default:
			commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
			return
		}

		var req mutationRequest
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid JSON", nil, "")
			return
		}
		if err := validate.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		p := principal.Resolve(w, r)

		var (
			prefs domain.Preferences
			err   error
		)
		if r.Method == http.MethodPost {
			prefs, err = h.service.Add(r.Context(), p, field, req.Value)
		} else {
			prefs, err = h.service.Remove(r.Context(), p, field, req.Value)
		}
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		commonhttp.WriteJSON(w, http.StatusOK, toResponse(prefs))
	}
}

func toResponse(p domain.Preferences) preferencesResponse {
	return preferencesResponse{
		Interests:          emptyIfNil(p.Interests),
		FollowedAuthors:    emptyIfNil(p.FollowedAuthors),
		ExcludedCategories: emptyIfNil(p.ExcludedCategories),
	}
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
