package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/shared"
	_ "github.com/lodgeline/lodgeline/internal/testing/guard"
)

func TestSessionCommitStoresNamespacedKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "lodgeline_session", "secret", time.Hour, false)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("7")

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.True(t, strings.HasPrefix(keys[0], "lodgeline:session:"))

	// The committed cookie must round-trip back to the same session.
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	follow := httptest.NewRequest(http.MethodGet, "/", nil)
	follow.AddCookie(cookies[0])
	loaded, err := manager.Load(ctx, follow)
	require.NoError(t, err)
	require.Equal(t, "7", loaded.User())
}
