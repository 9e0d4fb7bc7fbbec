package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-ordertrack/configs"
	"github.com/Keoroanthony/go-ordertrack/internal/auth"
	"github.com/Keoroanthony/go-ordertrack/internal/db"
	"github.com/Keoroanthony/go-ordertrack/internal/db/dbtest"
	"github.com/Keoroanthony/go-ordertrack/internal/handlers"
	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/notifier"
	"github.com/Keoroanthony/go-ordertrack/internal/server"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
	"github.com/Keoroanthony/go-ordertrack/internal/session/sessiontest"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := db.NewStore(dbtest.Open(t))
	log := logger.NewWithWriter(io.Discard, false)
	sms := notifier.NewSMSClient(config.AfricaTalkingConfig{CountryCode: "254"}, log)

	return server.NewRouter(server.Deps{
		Logger:   log,
		Session:  session.Options{Secret: sessiontest.Secret},
		Auth:     auth.NewHandler(nil, store),
		Handlers: handlers.New(store, sms, nil),
	})
}

func TestRoutes(t *testing.T) {
	router := setupRouter(t)

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"GET /",
		"GET /login",
		"GET /callback",
		"GET /logout",
		"GET /dashboard",
		"POST /customer",
		"POST /order",
		"GET /api/health",
		"GET /api/customers",
		"GET /api/orders",
		"GET /metrics",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, `ordertrack_http_requests_total{method="GET",route="/api/health",status="200"}`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRequestIDOnEveryResponse(t *testing.T) {
	router := setupRouter(t)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}
