package httptransport_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railguard/internal/jwttoken"
	"railguard/internal/platform/middleware"
	httptransport "railguard/internal/transport/http"
	"railguard/pkg/requestcontext"
)

const testAccount = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"

type echoHandler struct{}

func (echoHandler) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(requestcontext.Owner(r.Context()).String()))
	})
}

type staticChecker struct{ err error }

func (c staticChecker) Health(context.Context) error { return c.err }

func newRouter(checkers map[string]httptransport.HealthChecker) (http.Handler, *jwttoken.Service) {
	tokens := jwttoken.NewService("test-key", "railguard-test")
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    slog.Default(),
		Validator: tokens,
		Handlers:  []httptransport.Registrar{echoHandler{}},
		Checkers:  checkers,
	})
	return router, tokens
}

func TestRouterAuth(t *testing.T) {
	router, tokens := newRouter(nil)

	t.Run("rejects unauthenticated API requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("passes the authenticated owner through the chain", func(t *testing.T) {
		token, err := tokens.GenerateToken(testAccount, middleware.RoleOwner, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testAccount, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestHealthz(t *testing.T) {
	t.Run("ok without checkers", func(t *testing.T) {
		router, _ := newRouter(nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("degraded when a dependency fails", func(t *testing.T) {
		router, _ := newRouter(map[string]httptransport.HealthChecker{
			"redis": staticChecker{err: errors.New("connection refused")},
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "degraded", body["status"])
	})
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	router, _ := newRouter(nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
