package assignments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lodgeline/lodgeline/internal/authz"
	"github.com/lodgeline/lodgeline/internal/platform/httpx"
	"github.com/lodgeline/lodgeline/internal/shared"
)

// Handler exposes assignment administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, validator: validator.New()}
}

// MountRoutes registers assignment routes. There is deliberately no delete
// route; assignments only toggle between active and inactive.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(shared.PermRolesView, nil))
		r.Get("/users/{userID}", h.listForUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(shared.PermRolesEdit, nil))
		r.Post("/", h.grant)
		r.Post("/{assignmentID}/deactivate", h.setActive(false))
		r.Post("/{assignmentID}/reactivate", h.setActive(true))
	})
}

type grantRequest struct {
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	RoleID     int64  `json:"role_id" validate:"required,gt=0"`
	PropertyID *int64 `json:"property_id" validate:"omitempty,gt=0"`
}

type assignmentResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	RoleID     int64  `json:"role_id"`
	RoleName   string `json:"role_name,omitempty"`
	PropertyID *int64 `json:"property_id,omitempty"`
	IsActive   bool   `json:"is_active"`
}

func toResponse(a Assignment) assignmentResponse {
	return assignmentResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		RoleID:     a.RoleID,
		RoleName:   a.RoleName,
		PropertyID: a.PropertyID,
		IsActive:   a.IsActive,
	}
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	assignments, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]assignmentResponse, len(assignments))
	for i, a := range assignments {
		out[i] = toResponse(a)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": out})
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user_id and role_id are required")
		return
	}
	assignment, err := h.service.Grant(r.Context(), req.UserID, req.RoleID, req.PropertyID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownUser), errors.Is(err, ErrUnknownRole), errors.Is(err, ErrUnknownProperty):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("grant assignment", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(assignment))
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "assignmentID"), 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid assignment id")
			return
		}
		var opErr error
		if active {
			opErr = h.service.Reactivate(r.Context(), id)
		} else {
			opErr = h.service.Deactivate(r.Context(), id)
		}
		if opErr != nil {
			if errors.Is(opErr, shared.ErrNotFound) {
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			h.logger.Error("toggle assignment", slog.Any("error", opErr))
			httpx.RespondError(w, opErr)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
