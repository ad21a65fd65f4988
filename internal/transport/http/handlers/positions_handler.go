package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rmdelbarrio/adet/internal/domain/model"
	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
	positionsvc "github.com/rmdelbarrio/adet/internal/services/positions"
	"github.com/rmdelbarrio/adet/internal/transport/http/dto"
	httperrors "github.com/rmdelbarrio/adet/internal/transport/http/errors"
)

type PositionsHandler struct {
	service *positionsvc.Service
	log     *zap.Logger
}

func NewPositionsHandler(service *positionsvc.Service, log *zap.Logger) *PositionsHandler {
	return &PositionsHandler{service: service, log: log}
}

func (h *PositionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	positions, err := h.service.List(r.Context())
	if err != nil {
		h.logError("list positions failed", err)
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, toPositionResponses(positions))
}

func (h *PositionsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	positions, err := h.service.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		h.logError("list my positions failed", err)
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, toPositionResponses(positions))
}

func (h *PositionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid position id")
		return
	}

	position, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handlePositionError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toPositionResponse(position))
}

func (h *PositionsHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	position, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.handlePositionError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toPositionResponse(position))
}

func (h *PositionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CreatePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	position, err := h.service.Create(r.Context(), positionsvc.CreateInput{
		Code:       req.PositionCode,
		Name:       req.PositionName,
		MinSalary:  req.MinSalary,
		Department: req.Department,
		UserID:     identity.UserID,
	})
	if err != nil {
		h.handlePositionError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, toPositionResponse(position))
}

func (h *PositionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid position id")
		return
	}

	var req dto.UpdatePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	position, err := h.service.Update(r.Context(), id, positionsvc.UpdateInput{
		Code:       req.PositionCode,
		Name:       req.PositionName,
		MinSalary:  req.MinSalary,
		Department: req.Department,
	})
	if err != nil {
		h.handlePositionError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toPositionResponse(position))
}

func (h *PositionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSITION_SERVICE_UNAVAILABLE", "position service is unavailable")
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid position id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handlePositionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PositionsHandler) handlePositionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, positionsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "position_code and position_name are required")
	case errors.Is(err, positionsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "position not found")
	case errors.Is(err, positionsvc.ErrCodeTaken):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "POSITION_CODE_TAKEN",
			Message: "position code already exists",
		})
	default:
		h.logError("position request failed", err)
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func (h *PositionsHandler) logError(msg string, err error) {
	if h.log != nil {
		h.log.Error(msg, zap.Error(err))
	}
}

func toPositionResponse(position model.Position) dto.PositionResponse {
	return dto.PositionResponse{
		ID:         position.ID,
		Code:       position.Code,
		Name:       position.Name,
		MinSalary:  position.MinSalary,
		Department: position.Department,
		UserID:     position.UserID,
		CreatedBy:  position.CreatedBy,
		CreatedAt:  position.CreatedAt,
	}
}

func toPositionResponses(positions []model.Position) []dto.PositionResponse {
	out := make([]dto.PositionResponse, 0, len(positions))
	for _, position := range positions {
		out = append(out, toPositionResponse(position))
	}
	return out
}
