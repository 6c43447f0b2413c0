package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newHealthRouter(h HealthHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	r.GET("/livez", h.Livez)
	r.GET("/readyz", h.Readyz)
	return r
}

func TestReadyzReportsFailedChecks(t *testing.T) {
	r := newHealthRouter(HealthHandlers{Checks: map[string]Check{
		"mongo": func(context.Context) error { return errors.New("no reachable servers") },
		"redis": func(context.Context) error { return nil },
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no reachable servers")
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestLivezEchoesRequestID(t *testing.T) {
	r := newHealthRouter(HealthHandlers{})
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(RequestIDHeader, "req-42")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}
