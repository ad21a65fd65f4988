package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
	ratesvc "github.com/rmdelbarrio/adet/internal/services/rate"
	userssvc "github.com/rmdelbarrio/adet/internal/services/users"
	"github.com/rmdelbarrio/adet/internal/transport/http/dto"
	httperrors "github.com/rmdelbarrio/adet/internal/transport/http/errors"
)

type AuthHandler struct {
	auth         *authsvc.Service
	users        *userssvc.Service
	loginLimiter *ratesvc.LoginLimiter
	log          *zap.Logger
}

func NewAuthHandler(auth *authsvc.Service, users *userssvc.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		users: users,
		log:   log,
	}
}

func (h *AuthHandler) AttachLoginLimiter(limiter *ratesvc.LoginLimiter) {
	h.loginLimiter = limiter
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, userssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "username and password are required")
		case errors.Is(err, userssvc.ErrAlreadyExists):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "USERNAME_TAKEN",
				Message: "username already exists",
			})
		default:
			h.logError("register failed", err)
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if h.loginLimiter != nil && req.Username != "" {
		retryAfterSec, ok, err := h.loginLimiter.AllowLogin(r.Context(), req.Username)
		if err != nil {
			h.logError("login rate check failed", err)
		} else if !ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_MANY_ATTEMPTS",
				Message:       "too many login attempts",
				RetryAfterSec: retryAfterSec,
			})
			return
		}
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	writeTokens(w, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	writeTokens(w, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LogoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		h.handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

// All token and credential failures collapse into one opaque 401 body.
// The internal distinction stays in the debug log.
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInvalidToken),
		errors.Is(err, authsvc.ErrPayloadMismatch):
		if h.log != nil {
			h.log.Debug("auth request rejected", zap.Error(err))
		}
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		h.logError("auth request failed", err)
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func (h *AuthHandler) logError(msg string, err error) {
	if h.log != nil {
		h.log.Error(msg, zap.Error(err))
	}
}

func writeTokens(w http.ResponseWriter, res authsvc.AuthResult) {
	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me: dto.AuthMeResponse{
			ID:       res.Me.ID,
			Username: res.Me.Username,
			Role:     res.Me.Role,
		},
	})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
