package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"lockday/internal/http/handlers"
	"lockday/internal/middleware"
	"lockday/internal/relay"
)

type Options struct {
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	Relay           http.Handler
	RateLimitPerMin int
	// StaticDir is served read-only under /static/ when set.
	StaticDir string
	Logger    zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
	)

	// The relay answers its own permissive CORS.
	if opts.Relay != nil {
		limit := opts.RateLimitPerMin
		if limit <= 0 {
			limit = 30
		}
		r.With(middleware.RateLimit(limit, time.Minute)).Post(relay.Path, opts.Relay.ServeHTTP)
		r.Options(relay.Path, opts.Relay.ServeHTTP)
	}

	if opts.StaticDir != "" {
		r.Get("/static/*", staticFiles(opts.StaticDir))
	}

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.CORS(opts.AllowedOrigins),
			middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		)

		r.Get("/v1/healthz", app.Health)
		r.Get("/v1/openapi.json", app.OpenAPIJSON)
		r.Get("/v1/docs", app.OpenAPIDocs)
		r.Get("/v1/landing", app.LandingPage)
		r.Get("/v1/stats", app.StatsSummary)

		r.Route("/v1/tools", func(r chi.Router) {
			r.Get("/", app.ListTools)
			r.Get("/{tool}", app.GetTool)
			r.Post("/{tool}/sessions", app.CreateSession)
		})

		r.Route("/v1/sessions/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Delete("/", app.DeleteSession)
			r.Put("/persistence", app.SetPersistence)
			r.Post("/upload", app.Upload)
			r.Delete("/asset", app.ClearAsset)
			r.Post("/process", app.Process)
			r.Get("/download", app.Download)
			r.Get("/events", app.Events)
		})
	})

	return r
}

func staticFiles(dir string) http.HandlerFunc {
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}
}
