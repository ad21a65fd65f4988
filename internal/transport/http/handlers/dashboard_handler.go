package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
	dashboardsvc "github.com/rmdelbarrio/adet/internal/services/dashboard"
	"github.com/rmdelbarrio/adet/internal/transport/http/dto"
	httperrors "github.com/rmdelbarrio/adet/internal/transport/http/errors"
)

type DashboardHandler struct {
	service *dashboardsvc.Service
	log     *zap.Logger
}

func NewDashboardHandler(service *dashboardsvc.Service, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, log: log}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DASHBOARD_SERVICE_UNAVAILABLE", "dashboard service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		if h.log != nil {
			h.log.Error("dashboard stats failed", zap.Error(err))
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DashboardStatsResponse{
		Message:     fmt.Sprintf("Welcome, %s. This is the admin dashboard.", identity.Username),
		UserCount:   stats.UserCount,
		RecentUsers: toUserResponses(stats.RecentUsers),
	})
}
