package handlers

import (
	"net/http"
	"strconv"

	"github.com/upb/inventory-api/middleware"
	"github.com/upb/inventory-api/repositories"
	"github.com/upb/inventory-api/utils"
	"go.uber.org/zap"
)

const defaultAuthEventLimit = 20

// MeHandler serves the authenticated caller's own identity and auth history
type MeHandler struct {
	events repositories.AuthEventRepository
	logger *zap.Logger
}

// NewMeHandler creates a new MeHandler. events may be nil when the audit trail is disabled.
func NewMeHandler(events repositories.AuthEventRepository, logger *zap.Logger) *MeHandler {
	return &MeHandler{
		events: events,
		logger: logger,
	}
}

// authEventsQuery holds the query parameters of GET /api/v1/me/auth-events
type authEventsQuery struct {
	Limit int `validate:"min=1,max=100"`
}

// HandleMe handles GET /api/v1/me
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserContextFromContext(r.Context())
	if user == nil {
		// Only reachable when the route is mounted without RequireAuth
		h.logger.Error("user context missing from authenticated route",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleAuthEvents handles GET /api/v1/me/auth-events
func (h *MeHandler) HandleAuthEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	user := middleware.GetUserContextFromContext(ctx)
	if user == nil {
		h.logger.Error("user context missing from authenticated route", zap.String("request_id", requestID))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	if h.events == nil {
		_ = utils.WriteNotFound(w, "Auth audit trail is disabled")
		return
	}

	query := authEventsQuery{Limit: defaultAuthEventLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "limit must be an integer", nil)
			return
		}
		query.Limit = limit
	}
	if err := utils.ValidateStruct(query); err != nil {
		_ = utils.WriteValidationError(w, err)
		return
	}

	events, err := h.events.ListByUser(ctx, user.UserID, query.Limit)
	if err != nil {
		h.logger.Error("failed to list auth events",
			zap.String("request_id", requestID),
			zap.String("sub", user.UserID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, events)
}
