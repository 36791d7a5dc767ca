// Package http wires the service into the chi router: the public shorten
// and redirect endpoints, the admin CRUD and stats API, and the health probe.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/go-shorty/shorty/internal/models"
)

// LinkService is the surface the handlers need from the business layer.
type LinkService interface {
	ShortenLink(ctx context.Context, originalURL, customCode string) (*models.Link, error)
	ResolveLink(ctx context.Context, shortCode string, event models.ClickEvent) (*models.Link, error)
	GetLink(ctx context.Context, shortCode string) (*models.Link, error)
	ListLinks(ctx context.Context) ([]models.Link, error)
	ModifyLink(ctx context.Context, shortCode string, patch models.LinkPatch) (*models.Link, error)
	RemoveLink(ctx context.Context, shortCode string) error
	Stats(ctx context.Context) (*models.Summary, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter builds the HTTP surface. baseURL is what shortened links are
// prefixed with in responses; the redirect route itself is mounted at the
// router root.
func NewRouter(logger *httplog.Logger, linkSvc LinkService, db Pinger, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(db))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		validate := getValidate()

		r.Post("/shorten", handleShortenLink(linkSvc, validate, baseURL))

		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", handleStats(linkSvc))

			r.Route("/urls", func(r chi.Router) {
				r.Post("/", handleShortenLink(linkSvc, validate, baseURL))
				r.Get("/", handleListLinks(linkSvc))

				r.Route("/{shortCode}", func(r chi.Router) {
					r.Get("/", handleGetLink(linkSvc))
					r.Put("/", handleModifyLink(linkSvc, validate))
					r.Delete("/", handleRemoveLink(linkSvc))
				})
			})
		})
	})

	r.Get("/{shortCode}", handleRedirect(linkSvc))

	return r
}
