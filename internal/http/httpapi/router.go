package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"imagen/internal/http/handlers"
	"imagen/internal/infra"
	"imagen/internal/middleware"
)

// NewRouter mounts the generation endpoints behind the shared middleware chain.
func NewRouter(app *handlers.App, logger zerolog.Logger) http.Handler {
	cfg := app.Config
	if cfg == nil {
		cfg = &infra.Config{}
	}

	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.I18N(cfg.DefaultLocale),
		middleware.Recover(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.Get("/", app.Info)

	r.Route("/generate", func(r chi.Router) {
		r.Post("/image", app.GenerateImage)
	})
	r.Route("/titan-generate", func(r chi.Router) {
		r.Post("/image", app.TitanGenerateImage)
	})
	r.Route("/stability-generate", func(r chi.Router) {
		r.Post("/image", app.StabilityGenerateImage)
	})

	// Local storage driver: serve what FileStore wrote.
	if cfg.StorageDriver == infra.StorageDriverFilesystem && cfg.StoragePath != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StoragePath))))
	}

	return r
}
