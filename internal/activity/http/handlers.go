package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/academiahub/backend/internal/activity/domain"
	"github.com/academiahub/backend/internal/activity/service"
	"github.com/academiahub/backend/internal/activity/stream"
	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/jwtverify"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/common/validate"
)

// GuestSaves is the ephemeral saved-papers backend for visitors
// without an account.
type GuestSaves interface {
	ToggleSave(key, paperID, paperTitle string) bool
	IsSaved(key, paperID string) bool
}

type Handler struct {
	feed           *service.FeedService
	engagement     *service.EngagementService
	guestSaves     GuestSaves
	notifier       *stream.Notifier
	errorHandler   *commonhttp.ErrorHandler
	requestTimeout time.Duration
}

func NewHandler(
	feed *service.FeedService,
	engagement *service.EngagementService,
	guestSaves GuestSaves,
	notifier *stream.Notifier,
	log *logger.Logger,
	requestTimeout time.Duration,
) *Handler {
	return &Handler{
		feed:           feed,
		engagement:     engagement,
		guestSaves:     guestSaves,
		notifier:       notifier,
		errorHandler:   commonhttp.NewErrorHandler(log),
		requestTimeout: requestTimeout,
	}
}

// RegisterRoutes mounts the activity surface. requireAuth guards the
// routes that need an account; save and status work for guests too.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.Handle("/api/activity",
		requireAuth(commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleFeed))))
	mux.HandleFunc("/api/notifications/count",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleUnreadCount)))
	mux.Handle("/api/notifications/read",
		requireAuth(commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.handleMarkRead))))
	// The stream upgrades the connection and manages its own lifetime,
	// so it skips the request timeout wrapper.
	mux.Handle("/api/notifications/stream",
		requireAuth(commonhttp.RequireMethod(http.MethodGet)(h.notifier.Handle)))
	mux.HandleFunc("/api/papers/", withTimeout(h.handlePaperSubtree))
	mux.Handle("/api/comments/",
		requireAuth(commonhttp.RequireMethod(http.MethodDelete)(withTimeout(h.handleDeleteComment))))
}

type recordResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	PaperID    string    `json:"paper_id"`
	PaperTitle string    `json:"paper_title,omitempty"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	records, err := h.feed.GetActivityFor(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

type unreadResponse struct {
	Unread int `json:"unread"`
}

// handleUnreadCount tolerates guests: a visitor without an account has
// no follow set and therefore zero unread activity.
func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteJSON(w, http.StatusOK, unreadResponse{Unread: 0})
		return
	}

	count, err := h.feed.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, unreadResponse{Unread: count})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.feed.MarkRead(r.Context(), claims.UserID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, unreadResponse{Unread: 0})
}

// handlePaperSubtree routes /api/papers/{id}/{action}. The action is
// the last path segment; everything before it is the paper id, which
// may itself contain a slash for old-style arXiv identifiers.
func (h *Handler) handlePaperSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/papers/"), "/")
	idx := strings.LastIndex(rest, "/")
	if idx <= 0 {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
		return
	}
	paperID, action := rest[:idx], rest[idx+1:]

	switch {
	case action == "comments" && r.Method == http.MethodGet:
		h.listComments(w, r, paperID)
	case action == "comments" && r.Method == http.MethodPost:
		h.addComment(w, r, paperID)
	case action == "like" && r.Method == http.MethodPost:
		h.toggleLike(w, r, paperID)
	case action == "save" && r.Method == http.MethodPost:
		h.toggleSave(w, r, paperID)
	case action == "status" && r.Method == http.MethodGet:
		h.paperStatus(w, r, paperID)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
	}
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	PaperID   string    `json:"paper_id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request, paperID string) {
	comments, err := h.engagement.CommentsForPaper(r.Context(), paperID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request, paperID string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req commentRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid JSON", nil, "")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	comment, err := h.engagement.AddComment(r.Context(), claims.UserID, claims.Username, paperID, req.Content)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	commentID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/comments/"), "/")
	if err := commonhttp.ValidateUUID(commentID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.engagement.DeleteComment(r.Context(), claims.UserID, commentID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type engagementRequest struct {
	Title string `json:"title" validate:"max=500"`
}

type toggleResponse struct {
	Set bool `json:"set"`
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, paperID string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := h.decodeEngagement(w, r)
	if !ok {
		return
	}

	set, err := h.engagement.ToggleLike(r.Context(), claims.UserID, paperID, req.Title)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toggleResponse{Set: set})
}

// toggleSave works for both account holders and guests. Guest saves
// live in the in-memory store scoped by the guest cookie.
func (h *Handler) toggleSave(w http.ResponseWriter, r *http.Request, paperID string) {
	req, ok := h.decodeEngagement(w, r)
	if !ok {
		return
	}

	p := principal.Resolve(w, r)
	if p.Guest {
		set := h.guestSaves.ToggleSave(p.Key, paperID, req.Title)
		commonhttp.WriteJSON(w, http.StatusOK, toggleResponse{Set: set})
		return
	}

	set, err := h.engagement.ToggleSave(r.Context(), p.Key, paperID, req.Title)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toggleResponse{Set: set})
}

type statusResponse struct {
	PaperID   string `json:"paper_id"`
	Liked     bool   `json:"liked"`
	Saved     bool   `json:"saved"`
	LikeCount int    `json:"like_count"`
}

func (h *Handler) paperStatus(w http.ResponseWriter, r *http.Request, paperID string) {
	p := principal.Resolve(w, r)

	userID := ""
	if !p.Guest {
		userID = p.Key
	}

	status, err := h.engagement.PaperStatus(r.Context(), userID, paperID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if p.Guest {
		status.Saved = h.guestSaves.IsSaved(p.Key, paperID)
	}

	commonhttp.WriteJSON(w, http.StatusOK, statusResponse{
		PaperID:   status.PaperID,
		Liked:     status.Liked,
		Saved:     status.Saved,
		LikeCount: status.LikeCount,
	})
}

func (h *Handler) decodeEngagement(w http.ResponseWriter, r *http.Request) (engagementRequest, bool) {
	var req engagementRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid JSON", nil, "")
			return engagementRequest{}, false
		}
		if err := validate.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return engagementRequest{}, false
		}
	}
	return req, true
}

func toRecordResponse(rec domain.Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		Kind:       string(rec.Kind),
		UserID:     rec.UserID,
		Username:   rec.Username,
		PaperID:    rec.PaperID,
		PaperTitle: rec.PaperTitle,
		Content:    rec.Content,
		CreatedAt:  rec.CreatedAt,
	}
}

func toCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PaperID:   c.PaperID,
		Content:   c.Content,
		UserID:    c.UserID,
		Username:  c.Username,
		CreatedAt: c.CreatedAt,
	}
}
