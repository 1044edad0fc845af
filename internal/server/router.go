// Package server assembles the HTTP surface of the import service.
package server

import (
	"net/http"

	"github.com/rpattn/klinik/internal/auth"
	"github.com/rpattn/klinik/internal/catalog"
	"github.com/rpattn/klinik/internal/importer"
	"github.com/rpattn/klinik/internal/middleware"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Options configures the router.
type Options struct {
	Logger      zerolog.Logger
	Store       repository.Store
	Importer    *importer.Service
	Upload      importer.HandlerConfig
	CORSOrigins []string
	// JWTSecret selects bearer authentication; empty falls back to identity headers.
	JWTSecret string
}

// NewRouter wires middleware and routes.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Recovery(opts.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	identity := auth.HeaderMiddleware()
	if opts.JWTSecret != "" {
		identity = auth.JWTMiddleware([]byte(opts.JWTSecret))
	}

	repos := opts.Store.Repositories()
	imports := importer.NewHTTPHandler(opts.Importer, opts.Store.ImportLogs(), opts.Upload)
	labTests := catalog.NewHandler(repos.LabTests)

	r.Route("/api", func(r chi.Router) {
		r.Use(identity)
		r.Route("/imports", imports.Routes)
		r.With(middleware.DataLoaderMiddleware(repos.LabTests)).Get("/lab-tests", labTests.ListLabTests)
	})

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	return corsHandler.Handler(r)
}
