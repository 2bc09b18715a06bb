package authz

import (
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/lodgeline/lodgeline/internal/platform/httpx"
	"github.com/lodgeline/lodgeline/internal/shared"
)

// PropertyIDExtractor derives the target property id from an incoming
// request. False means the request carries no property context.
type PropertyIDExtractor func(r *http.Request) (int64, bool)

// PropertyIDFromURLParam extracts the property id from a chi route parameter.
func PropertyIDFromURLParam(name string) PropertyIDExtractor {
	return func(r *http.Request) (int64, bool) {
		raw := chi.URLParam(r, name)
		if raw == "" {
			return 0, false
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
}

// Middleware wires authorization guards for HTTP handlers. Guards respond
// 401 for unauthenticated callers and a generic 403 on denial; which
// capability was missing never reaches the client.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequirePermission guards a route with a single required capability. The
// extractor, when non-nil, supplies the property context for the check. On
// success the resolved set is attached to the request context.
func (m Middleware) RequirePermission(perm string, extract PropertyIDExtractor) func(http.Handler) http.Handler {
	return m.guard([]string{normalizeKey(perm)}, extract, false)
}

// RequireAnyPermission passes when the caller holds at least one of the
// required capabilities. Parameters mirror RequirePermission: keys first,
// extractor last.
func (m Middleware) RequireAnyPermission(perms []string, extract PropertyIDExtractor) func(http.Handler) http.Handler {
	return m.guard(normalizeKeys(perms), extract, true)
}

// RequireAuthenticated only checks that the caller has a session-bound user
// id. Routes whose visibility is decided per row (ownership bypass) use this
// instead of a capability guard.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := m.currentUserID(r); !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrAuthenticationRequired.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin guards a route on the super-admin flag alone; the
// general resolver is not consulted.
func (m Middleware) RequireSuperAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := m.currentUserID(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrAuthenticationRequired.Error())
				return
			}
			isSuper, err := m.Service.IsSuperAdmin(r.Context(), userID)
			if err != nil {
				m.logError("authz super admin check", err)
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !isSuper {
				m.logDenied(r, userID)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) guard(perms []string, extract PropertyIDExtractor, any bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := m.currentUserID(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrAuthenticationRequired.Error())
				return
			}
			resolved, err := m.Service.Resolve(r.Context(), userID)
			if err != nil {
				m.logError("authz resolve", err)
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			var propertyID int64
			if extract != nil {
				if id, ok := extract(r); ok {
					propertyID = id
				}
			}
			granted := resolved.HasAll(perms, propertyID)
			if any {
				granted = resolved.HasAny(perms, propertyID)
			}
			if !granted {
				m.logDenied(r, userID)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
				return
			}
			ctx := ContextWithPermissions(r.Context(), resolved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func (m Middleware) logDenied(r *http.Request, userID int64) {
	if m.Logger == nil {
		return
	}
	m.Logger.Warn(shared.ErrPermissionDenied.Error(),
		slog.Int64("user_id", userID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))
}

func (m Middleware) logError(msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
}

func normalizeKey(perm string) string {
	return strings.TrimSpace(strings.ToLower(perm))
}

func normalizeKeys(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = normalizeKey(p)
		if p == "" {
			continue
		}
		if _, ok := unique[p]; ok {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
