package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-user-admin/internal/core/config"
)

func TestHumanURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8081", HumanURL("0.0.0.0", 8081))
	assert.Equal(t, "http://127.0.0.1:8081", HumanURL("", 8081))
	assert.Equal(t, "http://admin.local:80", HumanURL("admin.local", 80))
}

func TestFromConfig(t *testing.T) {
	srv := FromConfig(config.AdminHTTP{Host: "0.0.0.0", Port: 9000, ReadTimeoutSec: 5, WriteTimeoutSec: 10, IdleTimeoutSec: 60}, http.NotFoundHandler())
	assert.Equal(t, "0.0.0.0:9000", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
}

func TestNewRouterRecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRouter(zap.New(core))
	r.GET("/users", func(c *gin.Context) {
		c.Set(KeyRequestID, "rid-42")
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/users", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "/users", entries[0].ContextMap()["path"])
		assert.Equal(t, "rid-42", entries[0].ContextMap()["request_id"])
	}
}
