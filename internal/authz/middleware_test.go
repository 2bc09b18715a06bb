package authz_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/authz"
	"github.com/lodgeline/lodgeline/internal/shared"
	_ "github.com/lodgeline/lodgeline/internal/testing/guard"
)

func requestAsUser(t *testing.T, method, target string, userID int64) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(method, target, nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	if userID > 0 {
		sess.SetUser(strconv.FormatInt(userID, 10))
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	svc := authz.NewService(newMemoryStore())
	mw := authz.Middleware{Service: svc}

	handler := mw.RequirePermission(shared.PermExpenseView, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := requestAsUser(t, http.MethodGet, "/expenses", 0)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequirePermissionDeniedIsGeneric(t *testing.T) {
	store := newMemoryStore()
	store.users[1] = authz.User{ID: 1}
	svc := authz.NewService(store)
	mw := authz.Middleware{Service: svc}

	handler := mw.RequirePermission(shared.PermExpenseView, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := requestAsUser(t, http.MethodGet, "/expenses", 1)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
	// The denial body must not reveal which capability was missing.
	require.NotContains(t, res.Body.String(), shared.PermExpenseView)
}

func TestRequirePermissionAttachesResolvedSet(t *testing.T) {
	store := newMemoryStore()
	store.users[2] = authz.User{ID: 2}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 2, RoleID: 1, IsActive: true}}
	store.rolePerms[1] = []string{shared.PermExpenseView}
	svc := authz.NewService(store)
	mw := authz.Middleware{Service: svc}

	var attached bool
	handler := mw.RequirePermission(shared.PermExpenseView, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perms, ok := authz.PermissionsFromContext(r.Context())
		attached = ok && perms.Has(shared.PermExpenseView, 0)
		w.WriteHeader(http.StatusOK)
	}))

	req := requestAsUser(t, http.MethodGet, "/expenses", 2)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, attached)
}

func TestRequirePermissionScopedViaURLParam(t *testing.T) {
	store := newMemoryStore()
	store.users[3] = authz.User{ID: 3}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 3, RoleID: 1, PropertyID: ptr(7), IsActive: true}}
	store.rolePerms[1] = []string{shared.PermExpenseView}
	svc := authz.NewService(store)
	mw := authz.Middleware{Service: svc}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(mw.RequirePermission(shared.PermExpenseView, authz.PropertyIDFromURLParam("propertyID")))
		r.Get("/properties/{propertyID}/expenses", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, requestAsUser(t, http.MethodGet, "/properties/7/expenses", 3))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, requestAsUser(t, http.MethodGet, "/properties/8/expenses", 3))
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyPermission(t *testing.T) {
	store := newMemoryStore()
	store.users[4] = authz.User{ID: 4}
	store.assignments = []authz.Assignment{{ID: 1, UserID: 4, RoleID: 1, IsActive: true}}
	store.rolePerms[1] = []string{shared.PermReportView}
	svc := authz.NewService(store)
	mw := authz.Middleware{Service: svc}

	handler := mw.RequireAnyPermission([]string{shared.PermExpenseView, shared.PermReportView}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := requestAsUser(t, http.MethodGet, "/reports", 4)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestRequireSuperAdmin(t *testing.T) {
	store := newMemoryStore()
	store.users[5] = authz.User{ID: 5, IsSuperAdmin: true}
	store.users[6] = authz.User{ID: 6}
	svc := authz.NewService(store)
	mw := authz.Middleware{Service: svc}

	handler := mw.RequireSuperAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAsUser(t, http.MethodPost, "/users/6/super-admin", 5))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestAsUser(t, http.MethodPost, "/users/6/super-admin", 6))
	require.Equal(t, http.StatusForbidden, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestAsUser(t, http.MethodPost, "/users/6/super-admin", 0))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestResolutionFailureSurfacesAsServerError(t *testing.T) {
	store := newMemoryStore()
	store.users[7] = authz.User{ID: 7}
	store.failRolePerms = context.DeadlineExceeded
	store.assignments = []authz.Assignment{{ID: 1, UserID: 7, RoleID: 1, IsActive: true}}
	svc := authz.NewService(store)
	mw := authz.Middleware{Service: svc}

	handler := mw.RequirePermission(shared.PermExpenseView, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := requestAsUser(t, http.MethodGet, "/expenses", 7)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusInternalServerError, res.Code)
}
