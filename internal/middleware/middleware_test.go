package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/middleware"
)

func setupRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.RequestLogger(logger.NewWithWriter(buf, true)))
	r.Use(middleware.Recovery())

	r.GET("/ok", func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNoContent)
	})
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	return r
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	t.Run("Reuses an inbound request id", func(t *testing.T) {
		buf.Reset()
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "req-123", recorder.Header().Get(middleware.RequestIDHeader))
		assert.Contains(t, buf.String(), `"msg":"inside handler","request_id":"req-123"`)
		assert.Contains(t, buf.String(), `"path":"/ok"`)
	})

	t.Run("Generates a request id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ok", nil))

		assert.Len(t, recorder.Header().Get(middleware.RequestIDHeader), 36)
	})
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, recorder.Body.String())
	assert.NotContains(t, recorder.Body.String(), "kaboom")
	assert.Contains(t, buf.String(), "panic recovered")
}
