package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/s3vault/internal/logging"
	"github.com/dmitrijs2005/s3vault/internal/server/auth"
	"github.com/dmitrijs2005/s3vault/internal/server/metrics"
)

// Metrics register on the default registry, so the test binary creates them once.
var testMetrics = metrics.New()

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", logger, nil, nil, nil, testMetrics, "test-secret")
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte("test-secret"), time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid token reaches the handler", func(t *testing.T) {
		called := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called++
			userID, ok := userIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "user-1", userID)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set("Authorization", bearerToken(t, "user-1"))
		rec := httptest.NewRecorder()

		s.requireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, called)
	})

	t.Run("missing header short-circuits", func(t *testing.T) {
		called := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called++ })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		rec := httptest.NewRecorder()

		s.requireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, called)
	})

	t.Run("garbage token short-circuits", func(t *testing.T) {
		called := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called++ })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		s.requireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, called)
	})

	t.Run("token signed with another secret short-circuits", func(t *testing.T) {
		token, err := auth.GenerateToken("user-1", []byte("other-secret"), time.Minute)
		require.NoError(t, err)

		called := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called++ })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		s.requireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, called)
	})
}

// Unauthenticated requests must be rejected at the router before any service
// is touched: the services behind these routes are nil, so reaching a handler
// would panic.
func TestRouter_UnauthenticatedShortCircuit(t *testing.T) {
	s := newTestServer(t)
	router := s.router()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/settings/default"},
		{http.MethodPost, "/api/v1/settings/test"},
		{http.MethodPost, "/api/v1/settings/credentials"},
		{http.MethodPost, "/api/v1/settings/encryption"},
		{http.MethodPost, "/api/v1/files"},
		{http.MethodGet, "/api/v1/files"},
		{http.MethodGet, "/api/v1/files/somekey"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	router := s.router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := userIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), userIDKey, "user-1")
	id, ok := userIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)
}
