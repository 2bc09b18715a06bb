package authz

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lodgeline/lodgeline/internal/platform/httpx"
	"github.com/lodgeline/lodgeline/internal/shared"
)

// PermissionsHandler serves the read-only permission catalog.
type PermissionsHandler struct {
	logger *slog.Logger
	authz  Middleware
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, authz Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, authz: authz}
}

// MountRoutes registers permission catalog routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(shared.PermPermissionsView, nil))
		r.Get("/", h.listCatalog)
	})
}

type catalogModule struct {
	Module string   `json:"module"`
	Label  string   `json:"label"`
	Keys   []string `json:"keys"`
}

func (h *PermissionsHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	title := cases.Title(language.English)

	grouped := make(map[string]*catalogModule)
	var order []string
	for _, entry := range shared.Catalog() {
		group, ok := grouped[entry.Module]
		if !ok {
			group = &catalogModule{Module: entry.Module, Label: title.String(entry.Module)}
			grouped[entry.Module] = group
			order = append(order, entry.Module)
		}
		group.Keys = append(group.Keys, entry.Key)
	}

	modules := make([]catalogModule, 0, len(order))
	for _, name := range order {
		modules = append(modules, *grouped[name])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"modules": modules})
}
