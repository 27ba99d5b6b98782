package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"inkpost/app/metrics"
	"inkpost/app/models"
	"inkpost/app/repositories"
	"inkpost/app/services"
	"inkpost/app/views"

	"github.com/gorilla/mux"
)

// maxBodyBytes bounds form and JSON bodies of new posts.
const maxBodyBytes = 1 << 20

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	views       *views.Renderer
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, renderer *views.Renderer, log *slog.Logger, m *metrics.Metrics) *PostController {
	return &PostController{
		postService: postService,
		views:       renderer,
		log:         log,
		metrics:     m,
	}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	pc.metrics.IncrementPostOperations("list", err == nil)
	if err != nil {
		pc.serverError(w, r, "failed to list posts", err)
		return
	}

	if isAPIRequest(r) {
		pc.sendJSON(w, http.StatusOK, posts)
		return
	}
	pc.render(w, r, views.PageIndex, struct {
		Posts []*models.Post
	}{
		Posts: posts,
	})
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		// The route only matches digits, so this is an id beyond int range.
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	pc.metrics.IncrementPostOperations("get", err == nil || errors.Is(err, repositories.ErrNotFound))
	if errors.Is(err, repositories.ErrNotFound) {
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		pc.serverError(w, r, "failed to get post", err)
		return
	}

	if isAPIRequest(r) {
		pc.sendJSON(w, http.StatusOK, post)
		return
	}
	pc.render(w, r, views.PageShow, struct {
		Post *models.Post
	}{
		Post: post,
	})
}

// Create handles creating a new post from a form or, under /api, a JSON body.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		req *models.AddPostRequest
		err error
	)
	if isAPIRequest(r) {
		req = &models.AddPostRequest{}
		err = json.NewDecoder(r.Body).Decode(req)
	} else {
		req, err = models.AddPostRequestFromForm(r)
	}
	if err != nil {
		pc.metrics.IncrementPostOperations("create", false)
		pc.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), req)
	pc.metrics.IncrementPostOperations("create", err == nil)
	if errors.Is(err, services.ErrInvalidPost) {
		pc.sendError(w, r, "title and content are required", http.StatusBadRequest)
		return
	}
	if err != nil {
		pc.serverError(w, r, "failed to create post", err)
		return
	}

	pc.log.Info("post created", slog.Int("id", post.ID))
	if isAPIRequest(r) {
		w.Header().Set("Location", "/api/posts/"+strconv.Itoa(post.ID))
		pc.sendJSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Helper methods for consistent response handling

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api"
}

func (pc *PostController) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pc.views.Render(w, page, data); err != nil {
		pc.serverError(w, r, "failed to render "+page, err)
	}
}

func (pc *PostController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		pc.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// serverError logs err and answers with a generic 500.
func (pc *PostController) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	pc.log.Error(msg, slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	pc.sendError(w, r, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (pc *PostController) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if isAPIRequest(r) {
		pc.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}
