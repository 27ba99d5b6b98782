package routes

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkpost/app/controllers"
	"inkpost/app/metrics"
	"inkpost/app/repositories/mock"
	"inkpost/app/services"
	"inkpost/app/views"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := mock.NewPostRepository()
	renderer, err := views.New(views.Options{})
	require.NoError(t, err)
	m := metrics.New()

	return SetupRoutes(Handlers{
		Posts:   controllers.NewPostController(services.NewPostService(repo), renderer, log, m),
		Health:  controllers.NewHealthController(repo, log),
		CodeCSS: []byte(".chroma{}"),
	}, log, m)
}

func TestSetupRoutes(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name        string
		method      string
		path        string
		status      int
		contentType string
	}{
		{name: "index", method: http.MethodGet, path: "/", status: http.StatusOK, contentType: "text/html; charset=utf-8"},
		{name: "show unknown", method: http.MethodGet, path: "/post/1", status: http.StatusNotFound},
		{name: "show non-numeric", method: http.MethodGet, path: "/post/first", status: http.StatusNotFound},
		{name: "add requires POST", method: http.MethodGet, path: "/add", status: http.StatusMethodNotAllowed},
		{name: "index requires GET", method: http.MethodPost, path: "/", status: http.StatusMethodNotAllowed},
		{name: "api list", method: http.MethodGet, path: "/api/posts", status: http.StatusOK, contentType: "application/json"},
		{name: "api unknown", method: http.MethodGet, path: "/api/unknown", status: http.StatusNotFound, contentType: "application/json"},
		{name: "health", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "code css", method: http.MethodGet, path: "/static/code.css", status: http.StatusOK, contentType: "text/css; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	router := SetupRoutes(Handlers{
		Posts:  controllers.NewPostController(services.NewPostService(mock.NewPostRepository()), nil, log, m),
		Health: controllers.NewHealthController(mock.NewPostRepository(), log),
	}, log, m)

	// A nil renderer makes the index page panic.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/", http.MethodGet, "500")))
}

func TestNotFoundIsLoggedAndCounted(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	repo := mock.NewPostRepository()
	renderer, err := views.New(views.Options{})
	require.NoError(t, err)
	m := metrics.New()
	router := SetupRoutes(Handlers{
		Posts:  controllers.NewPostController(services.NewPostService(repo), renderer, log, m),
		Health: controllers.NewHealthController(repo, log),
	}, log, m)

	for _, path := range []string{"/nothing", "/api/nothing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, logs.String(), "path="+path)
	}
	assert.Contains(t, logs.String(), "status=404")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")))
}
