package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rmdelbarrio/adet/internal/domain/model"
	userssvc "github.com/rmdelbarrio/adet/internal/services/users"
	"github.com/rmdelbarrio/adet/internal/transport/http/dto"
	httperrors "github.com/rmdelbarrio/adet/internal/transport/http/errors"
)

type UsersHandler struct {
	service *userssvc.Service
	log     *zap.Logger
}

func NewUsersHandler(service *userssvc.Service, log *zap.Logger) *UsersHandler {
	return &UsersHandler{service: service, log: log}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	users, err := h.service.List(r.Context())
	if err != nil {
		h.logError("list users failed", err)
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, toUserResponses(users))
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	userID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.service.UpdateRole(r.Context(), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, userssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "role must be one of: user, admin")
		case errors.Is(err, userssvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "user not found")
		default:
			h.logError("update user failed", err)
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UpdateUserResponse{
		Message: "User updated successfully",
		User:    toUserResponse(user),
	})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	userID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, userssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		case errors.Is(err, userssvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "user not found")
		default:
			h.logError("delete user failed", err)
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) logError(msg string, err error) {
	if h.log != nil {
		h.log.Error(msg, zap.Error(err))
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toUserResponse(user model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func toUserResponses(users []model.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	return out
}
