package http

import (
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/jwtverify"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/user/domain"
	"github.com/academiahub/backend/internal/user/service"
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

// RegisterRoutes mounts the user surface. The follow route requires
// authentication and is wrapped by the caller.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.HandleFunc("/api/users/search",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleSearch)))
	mux.Handle("/api/users/",
		requireAuthForFollow(requireAuth, withTimeout(h.handleUserSubtree)))
}

// requireAuthForFollow applies auth only to the follow action; profile
// reads stay public.
func requireAuthForFollow(requireAuth func(http.Handler) http.Handler, next http.HandlerFunc) http.Handler {
	authed := requireAuth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/follow") {
			authed.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleUserSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getProfile(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "follow" && r.Method == http.MethodPost:
		h.toggleFollow(w, r, parts[0])
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
	}
}

type profileResponse struct {
	ID              string            `json:"id"`
	Username        string            `json:"username"`
	Role            string            `json:"role"`
	Interests       []string          `json:"interests"`
	FollowedAuthors []string          `json:"followed_authors"`
	SavedPapers     []string          `json:"saved_papers"`
	Followers       []summaryResponse `json:"followers"`
	Following       []summaryResponse `json:"following"`
	FollowersCount  int               `json:"followers_count"`
	FollowingCount  int               `json:"following_count"`
}

type summaryResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, username string) {
	profile, err := h.service.GetProfileByUsername(r.Context(), username)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

type followResponse struct {
	Following bool `json:"following"`
}

func (h *Handler) toggleFollow(w http.ResponseWriter, r *http.Request, targetID string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := commonhttp.ValidateUUID(targetID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	following, err := h.service.ToggleFollow(r.Context(), domain.ID(claims.UserID), domain.ID(targetID))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, followResponse{Following: following})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]summaryResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toSummaryResponse(u))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:              string(p.ID),
		Username:        p.Username,
		Role:            string(p.Role),
		Interests:       emptyIfNil(p.Interests),
		FollowedAuthors: emptyIfNil(p.FollowedAuthors),
		SavedPapers:     emptyIfNil(p.SavedPapers),
		Followers:       toSummaryResponses(p.Followers),
		Following:       toSummaryResponses(p.Following),
		FollowersCount:  p.FollowersCount,
		FollowingCount:  p.FollowingCount,
	}
}

func toSummaryResponses(in []domain.Summary) []summaryResponse {
	out := make([]summaryResponse, 0, len(in))
	for _, s := range in {
		out = append(out, toSummaryResponse(s))
	}
	return out
}

func toSummaryResponse(s domain.Summary) summaryResponse {
	return summaryResponse{
		ID:        string(s.ID),
		Username:  s.Username,
		CreatedAt: s.CreatedAt,
	}
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
