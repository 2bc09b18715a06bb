package expenses

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lodgeline/lodgeline/internal/authz"
	"github.com/lodgeline/lodgeline/internal/platform/httpx"
	"github.com/lodgeline/lodgeline/internal/shared"
)

// RepositoryPort defines data access methods for expenses.
type RepositoryPort interface {
	ListByProperty(ctx context.Context, propertyID int64) ([]Expense, error)
	Create(ctx context.Context, propertyID int64, description string, amount float64, incurredOn time.Time, createdBy int64) (Expense, error)
}

// Handler exposes per-property expense endpoints. The routes sit under
// /properties/{propertyID}/expenses, so the guard reads the property scope
// straight off the URL.
type Handler struct {
	logger    *slog.Logger
	repo      RepositoryPort
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, authz: authz, validator: validator.New()}
}

// MountRoutes registers expense routes; callers mount this under a route
// carrying the propertyID parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	extract := authz.PropertyIDFromURLParam("propertyID")
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(shared.PermExpenseView, extract))
		r.Get("/", h.listExpenses)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(shared.PermExpenseEdit, extract))
		r.Post("/", h.createExpense)
	})
}

type expenseRequest struct {
	Description string  `json:"description" validate:"required,min=2,max=255"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	IncurredOn  string  `json:"incurred_on" validate:"required,datetime=2006-01-02"`
}

type expenseResponse struct {
	ID          int64   `json:"id"`
	PropertyID  int64   `json:"property_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	IncurredOn  string  `json:"incurred_on"`
}

func toResponse(e Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		PropertyID:  e.PropertyID,
		Description: e.Description,
		Amount:      e.Amount,
		IncurredOn:  e.IncurredOn.Format("2006-01-02"),
	}
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := paramPropertyID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid property id")
		return
	}
	expenses, err := h.repo.ListByProperty(r.Context(), propertyID)
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toResponse(e)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := paramPropertyID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid property id")
		return
	}
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "description, amount and incurred_on are required")
		return
	}
	incurredOn, err := time.Parse("2006-01-02", req.IncurredOn)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "incurred_on must be YYYY-MM-DD")
		return
	}
	userID, ok := currentUserID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	expense, err := h.repo.Create(r.Context(), propertyID, strings.TrimSpace(req.Description), req.Amount, incurredOn, userID)
	if err != nil {
		h.logger.Error("create expense", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(expense))
}

func paramPropertyID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "propertyID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
