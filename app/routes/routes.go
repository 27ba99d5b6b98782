package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"inkpost/app/controllers"
	"inkpost/app/metrics"
	"inkpost/app/middleware"

	"github.com/gorilla/mux"
)

// Handlers groups the controllers mounted by SetupRoutes.
type Handlers struct {
	Posts  *controllers.PostController
	Health *controllers.HealthController
	// CodeCSS is served as the stylesheet for highlighted code.
	CodeCSS []byte
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(h Handlers, log *slog.Logger, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware; recovered panics reach Metrics as 500s.
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.Recoverer(log))

	// Router middleware does not run for unmatched requests.
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
			return
		}
		http.NotFound(w, r)
	})
	router.NotFoundHandler = middleware.Logger(log)(middleware.Metrics(m)(notFound))

	// Web routes
	router.HandleFunc("/", h.Posts.Index).Methods(http.MethodGet)
	router.HandleFunc("/post/{id:[0-9]+}", h.Posts.Show).Methods(http.MethodGet)
	router.HandleFunc("/add", h.Posts.Create).Methods(http.MethodPost)

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/posts", h.Posts.Index).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", h.Posts.Show).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.Posts.Create).Methods(http.MethodPost)

	// Operational endpoints
	router.HandleFunc("/healthz", h.Health.Check).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/static/code.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write(h.CodeCSS)
	}).Methods(http.MethodGet)

	return router
}
