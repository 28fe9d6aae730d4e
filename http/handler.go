package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/anupamd/picstore"
)

// Service is the upload pipeline the handlers drive.
type Service interface {
	UploadFile(ctx context.Context, filename string, content []byte) (picstore.FileUploadResult, error)
	UploadImage(ctx context.Context, up picstore.ImageUpload) (picstore.ImageMeta, error)
	GetImage(ctx context.Context, id uuid.UUID) (picstore.ImageMeta, error)
	ListImages(ctx context.Context, q picstore.ImageQuery) (picstore.ImageList, error)
	UpdateImage(ctx context.Context, id uuid.UUID, patch picstore.ImagePatch) (picstore.ImageMeta, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
	CreateItem(ctx context.Context, content string) (picstore.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (picstore.Item, error)
	ListItems(ctx context.Context) ([]picstore.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, content string) (picstore.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ProcessStorageEvent(ctx context.Context, n picstore.Notification) ([]picstore.ProcessedObject, error)
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type HandlerConfig struct {
	// MaxBodyBytes caps upload request bodies; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	CORS         CORSConfig
}

// Handler provides HTTP handlers for the upload and metadata operations.
type Handler struct {
	config   HandlerConfig
	service  Service
	validate *validator.Validate
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Handler{
		config:   cfg,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Post("/files", h.handleUploadFile)

	r.Route("/images", func(r chi.Router) {
		r.Post("/", h.handleUploadImage)
		r.Get("/", h.handleListImages)
		r.Get("/{id}", h.handleGetImage)
		r.Put("/{id}", h.handleUpdateImage)
		r.Delete("/{id}", h.handleDeleteImage)
	})

	r.Route("/items", func(r chi.Router) {
		r.Post("/", h.handleCreateItem)
		r.Get("/", h.handleListItems)
		r.Get("/{id}", h.handleGetItem)
		r.Put("/{id}", h.handleUpdateItem)
		r.Delete("/{id}", h.handleDeleteItem)
	})

	r.Post("/events/storage", h.handleStorageEvent)

	return r
}

// idParam parses the {id} path parameter. A false return means the error
// response has already been written.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "Invalid ID format")
		return uuid.UUID{}, false
	}
	return id, true
}
