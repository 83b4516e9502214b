package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveReady(checks map[string]Pinger) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(checks).Ready)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestReady(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	w := serveReady(map[string]Pinger{"postgres": ok})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"checks":{"postgres":"ok"}}`, w.Body.String())

	w = serveReady(map[string]Pinger{"postgres": ok, "minio": down})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"checks":{"postgres":"ok","minio":"connection refused"}}`, w.Body.String())

	w = serveReady(nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
