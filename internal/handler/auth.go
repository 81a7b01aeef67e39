package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/featherbook/featherbook/internal/auth"
	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/handler/dto"
	"github.com/featherbook/featherbook/internal/middleware"
	"github.com/featherbook/featherbook/internal/service"
)

// AuthHandler handles registration, login and token endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	required := [][2]string{{"username", req.Username}, {"email", req.Email}, {"password", req.Password}}
	for _, f := range required {
		if strings.TrimSpace(f[1]) == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "The "+f[0]+" field is required")
			return
		}
	}
	if err := middleware.ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", err.Error())
		return
	}
	if err := middleware.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error())
		return
	}

	res, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_registered",
		slog.String("user_id", res.User.ID),
		slog.String("role", string(res.User.Role)),
	)
	writeJSON(w, http.StatusCreated, codec.EncodeUserWithToken(res.User, res.Token))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required")
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login_failed",
			slog.String("reason", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("user_logged_in", slog.String("user_id", res.User.ID))
	writeJSON(w, http.StatusOK, codec.EncodeUserWithToken(res.User, res.Token))
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	writeJSON(w, http.StatusOK, dto.ClaimsResponse{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAtTime(),
	})
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Refresh(r.Context(), auth.ClaimsFromContext(r.Context()))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// UserHandler serves account administration endpoints.
type UserHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documents(users, codec.EncodeUser))
}
