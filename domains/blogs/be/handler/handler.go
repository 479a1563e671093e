package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkpress/inkpress/domains/blogs/be/service"
	platformauth "github.com/inkpress/inkpress/platform/go/auth"
	"github.com/inkpress/inkpress/platform/go/httpapi"
	platformlogging "github.com/inkpress/inkpress/platform/go/logging"
)

const (
	problemTypeValidation = "https://inkpress.dev/problems/validation-error"
	problemTypeNotFound   = "https://inkpress.dev/problems/not-found"
	problemTypeConflict   = "https://inkpress.dev/problems/conflict"
	problemTypeInternal   = "https://inkpress.dev/problems/internal-error"
)

type operation string

const (
	createOperation             operation = "blogsCreate"
	listOperation               operation = "blogsList"
	getOperation                operation = "blogsGet"
	updateOperation             operation = "blogsUpdate"
	deleteOperation             operation = "blogsDelete"
	listPublishedOperation      operation = "blogsListPublished"
	getPublishedBySlugOperation operation = "blogsGetPublishedBySlug"
)

// Handler wires the blogs service to the HTTP surface.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("blogs service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, logger: logger}
}

// MountAuthenticated registers the owner-scoped routes. The router is
// expected to already carry the auth middleware.
func (h *Handler) MountAuthenticated(r chi.Router) {
	r.Post("/blogs", h.Create)
	r.Get("/blogs", h.List)
	r.Get("/blogs/{blogID}", h.Get)
	r.Put("/blogs/{blogID}", h.Update)
	r.Delete("/blogs/{blogID}", h.Delete)
}

// MountPublic registers the anonymous read-only routes.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/blogs/public", h.ListPublished)
	r.Get("/blogs/public/{slug}", h.GetPublishedBySlug)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	var payload blogPayload
	if !h.decodePayload(w, r, &payload) {
		return
	}

	created, err := h.svc.Create(r.Context(), callerID, payload.toCreateInput())
	if err != nil {
		h.writeError(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/blogs/%s", created.ID.String()))
	httpapi.WriteJSON(w, http.StatusCreated, toAPIBlog(created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	blogs, err := h.svc.List(r.Context(), callerID)
	if err != nil {
		h.writeError(w, r, err, listOperation)
		return
	}

	items := make([]apiBlog, 0, len(blogs))
	for _, blog := range blogs {
		items = append(items, toAPIBlog(blog))
	}
	httpapi.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	blogID, ok := h.parseBlogID(w, r)
	if !ok {
		return
	}

	blog, err := h.svc.Get(r.Context(), callerID, blogID)
	if err != nil {
		h.writeError(w, r, err, getOperation)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, toAPIBlog(blog))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	blogID, ok := h.parseBlogID(w, r)
	if !ok {
		return
	}

	var payload blogPayload
	if !h.decodePayload(w, r, &payload) {
		return
	}

	updated, err := h.svc.Update(r.Context(), callerID, blogID, payload.toUpdateInput())
	if err != nil {
		h.writeError(w, r, err, updateOperation)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, toAPIBlog(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	blogID, ok := h.parseBlogID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), callerID, blogID); err != nil {
		h.writeError(w, r, err, deleteOperation)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "Blog deleted"})
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.svc.ListPublished(r.Context())
	if err != nil {
		h.writeError(w, r, err, listPublishedOperation)
		return
	}

	items := make([]apiPublicBlog, 0, len(blogs))
	for _, blog := range blogs {
		items = append(items, toAPIPublicBlog(blog))
	}
	httpapi.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetPublishedBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	blog, err := h.svc.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		h.writeError(w, r, err, getPublishedBySlugOperation)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, toAPIBlog(blog))
}

// apiBlog is the full wire representation served to the owner and on the
// public detail route.
type apiBlog struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// apiPublicBlog is the public list projection; content and owner are omitted.
type apiPublicBlog struct {
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAPIBlog(blog service.Blog) apiBlog {
	return apiBlog{
		ID:        blog.ID,
		OwnerID:   blog.OwnerID,
		Title:     blog.Title,
		Slug:      blog.Slug,
		Excerpt:   blog.Excerpt,
		Content:   blog.Content,
		Tags:      blog.Tags,
		Published: blog.Published,
		CreatedAt: blog.CreatedAt,
		UpdatedAt: blog.UpdatedAt,
	}
}

func toAPIPublicBlog(blog service.PublicBlog) apiPublicBlog {
	return apiPublicBlog{
		Title:     blog.Title,
		Slug:      blog.Slug,
		Excerpt:   blog.Excerpt,
		Tags:      blog.Tags,
		Published: blog.Published,
		CreatedAt: blog.CreatedAt,
		UpdatedAt: blog.UpdatedAt,
	}
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	credentials, ok := platformauth.UserFromContext(r.Context())
	if !ok || credentials == nil {
		problem := httpapi.NewProblem("Unauthorized", "missing credentials", problemTypeValidation, http.StatusUnauthorized, nil)
		httpapi.WriteProblem(w, problem)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(credentials.Id)
	if err != nil {
		problem := httpapi.NewProblem("Unauthorized", "invalid user id", problemTypeValidation, http.StatusUnauthorized, nil)
		httpapi.WriteProblem(w, problem)
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) parseBlogID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "blogID"))
	if err != nil {
		// An unparseable id cannot name an existing blog.
		problem := httpapi.NewProblem("Resource not found", "blog not found", problemTypeNotFound, http.StatusNotFound, nil)
		httpapi.WriteProblem(w, problem)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, payload *blogPayload) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(payload); err != nil {
		problem := httpapi.NewProblem("Invalid request body", "request body must be valid JSON", problemTypeValidation, http.StatusBadRequest, nil)
		httpapi.WriteProblem(w, problem)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, op operation) {
	status, title, detail, problemType, fields := classifyError(err)

	logger := platformlogging.FromRequest(r, h.logger)
	logFields := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", status),
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("blogs operation failed", append(logFields, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("blogs resource not found", append(logFields, zap.Error(err))...)
	default:
		logger.Warn("blogs request rejected", append(logFields, zap.Error(err))...)
	}

	httpapi.WriteProblem(w, httpapi.NewProblem(title, detail, problemType, status, fields))
}

func classifyError(err error) (status int, title, detail, problemType string, fieldErrors map[string][]string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest,
			"Validation failed",
			"one or more fields are invalid",
			problemTypeValidation,
			validationErr.Fields
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound,
			"Resource not found",
			"blog not found",
			problemTypeNotFound,
			nil
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict,
			"Conflict",
			"could not allocate a unique slug",
			problemTypeConflict,
			nil
	default:
		return http.StatusInternalServerError,
			"Internal server error",
			"an unexpected error occurred",
			problemTypeInternal,
			nil
	}
}
