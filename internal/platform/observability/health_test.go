package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestServer_Routes(t *testing.T) {
	logger := zerolog.Nop()
	api := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	h := NewServerWithAPI(fakePinger{}, 0, "/api/alerts/", api, &logger).Handler()

	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(h, "/metrics").Code)
	assert.Equal(t, http.StatusTeapot, get(h, "/api/alerts/test").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/other").Code)
}

func TestServer_ReadyReportsDatabaseFailure(t *testing.T) {
	logger := zerolog.Nop()
	h := NewServer(fakePinger{err: errors.New("down")}, 0, &logger).Handler()

	rec := get(h, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "down")
}

func TestServer_ReadyWithoutDatabase(t *testing.T) {
	logger := zerolog.Nop()
	h := NewServer(nil, 0, &logger).Handler()

	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)
}
