package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/portfolio-api/server/src/server/middleware"
	"github.com/portfolio-api/server/src/server/static"
)

type RouterConfig struct {
	Portfolio Portfolio
	Health    *HealthHandler
	Cache     Invalidator // nil when caching is disabled
	Assets    AssetURLs   // nil when no storage is configured

	// Files serves local asset storage under FilesPrefix.
	Files       http.Handler
	FilesPrefix string

	CORSOrigins []string
	// Auth protects admin routes when set.
	Auth *authmw.AuthConfig
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	projects := &ProjectHandler{Portfolio: cfg.Portfolio}
	education := &EducationHandler{Portfolio: cfg.Portfolio}
	experiences := &ExperienceHandler{Portfolio: cfg.Portfolio}
	socialMedia := &SocialMediaHandler{Portfolio: cfg.Portfolio}
	cacheHandler := &CacheHandler{Cache: cfg.Cache}
	assets := &AssetHandler{Assets: cfg.Assets}
	health := cfg.Health
	if health == nil {
		health = &HealthHandler{}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", Ping)
		r.Get("/health", health.Check)
		r.Get("/openapi.json", serveOpenAPI)

		r.Get("/projects", projects.List)
		r.Get("/education", education.List)
		r.Get("/experiences", experiences.List)
		r.Get("/social-media-links", socialMedia.List)
		r.Get("/assets/*", assets.Get)

		r.Group(func(r chi.Router) {
			if cfg.Auth != nil {
				r.Use(authmw.RequireAuth(*cfg.Auth))
			}
			r.Delete("/cache", cacheHandler.Clear)
		})
	})

	if cfg.Files != nil && cfg.FilesPrefix != "" {
		r.Handle(cfg.FilesPrefix+"/*", cfg.Files)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(static.OpenAPI)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
