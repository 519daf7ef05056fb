package http

import (
	"net/http"
	"time"

	authservice "github.com/academiahub/backend/internal/auth/service"
	"github.com/academiahub/backend/internal/common/constants"
	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/jwtverify"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/validate"
	userdomain "github.com/academiahub/backend/internal/user/domain"
)

type Handler struct {
	service        *authservice.Service
	errorHandler   *commonhttp.ErrorHandler
	requestTimeout time.Duration
	secureCookies  bool
}

func NewHandler(svc *authservice.Service, log *logger.Logger, requestTimeout time.Duration, secureCookies bool) *Handler {
	return &Handler{
		service:        svc,
		errorHandler:   commonhttp.NewErrorHandler(log),
		requestTimeout: requestTimeout,
		secureCookies:  secureCookies,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.HandleFunc("/api/auth/register",
		commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.handleRegister)))
	mux.HandleFunc("/api/auth/login",
		commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.handleLogin)))
	mux.HandleFunc("/api/auth/logout",
		commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.handleLogout)))
	mux.HandleFunc("/api/auth/me",
		commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.handleMe)))
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid JSON", nil, "")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setAuthCookie(w, token)
	commonhttp.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid JSON", nil, "")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setAuthCookie(w, token)
	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, userResponse{
		ID:       claims.UserID,
		Username: claims.Username,
	})
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func toUserResponse(u userdomain.User) userResponse {
	return userResponse{
		ID:       string(u.ID),
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}
