package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"lockday/internal/domain"
	"lockday/internal/http/handlers"
	httpapi "lockday/internal/http/httpapi"
	"lockday/internal/infra"
	"lockday/internal/infra/credentials"
	"lockday/internal/infra/geoip"
	"lockday/internal/ledger"
	"lockday/internal/notify"
	"lockday/internal/processing"
	"lockday/internal/relay"
	"lockday/internal/session"
	"lockday/internal/storage"
	"lockday/internal/upload"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres backs the ledger and the credential store; SQLite is the
	// single-node alternative for the ledger.
	var (
		recorder ledger.Recorder = ledger.Nop{}
		creds    *credentials.Store
	)
	pool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case err == nil:
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		pg := ledger.NewPostgres(runner)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
		recorder = pg
		creds = credentials.NewStore(runner)
	case errors.Is(err, infra.ErrNoDatabase):
		if cfg.SQLitePath != "" {
			lite, err := ledger.OpenSQLite(cfg.SQLitePath)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to open sqlite ledger")
			}
			defer lite.Close()
			recorder = lite
		}
	default:
		logger.Fatal().Err(err).Msg("failed to connect database")
	}

	store, staticDir, err := objectStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object storage")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	var generator relay.Generator
	apiKey, err := credentials.ResolveGeminiAPIKey(ctx, cfg.GeminiAPIKey, creds)
	if err != nil {
		logger.Warn().Err(err).Msg("no stored gemini api key")
	}
	if apiKey != "" {
		gemini, err := relay.NewGemini(ctx, relay.GeminiConfig{
			APIKey:  apiKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Strict:  cfg.RelayStrict,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init gemini")
		}
		generator = gemini
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; relay requests will fail")
	}

	catalog := domain.DefaultCatalog()
	messages := notify.NewMessages()
	hub := notify.NewHub()

	acceptor := upload.NewAcceptor(upload.Config{
		MaxBytes:     cfg.UploadMaxBytes,
		AllowedTypes: cfg.UploadAllowedTypes,
		Bucket:       cfg.StorageBucket,
		Store:        store,
		Recorder:     recorder,
		Messages:     messages,
		Logger:       logger,
	})
	registry := processing.NewDefaultRegistry(
		catalog,
		processing.Echo{Delay: cfg.ProcessingDelay},
		processing.NewCaption(captionGenerator(cfg, generator)),
	)
	manager := session.NewManager(session.Config{
		Catalog:          catalog,
		Acceptor:         acceptor,
		Registry:         registry,
		Recorder:         recorder,
		Messages:         messages,
		Hub:              hub,
		PersistByDefault: cfg.PersistByDefault,
		IdleTTL:          cfg.SessionIdleTTL,
		Logger:           logger,
	})

	app := handlers.NewApp(catalog, manager, hub, recorder, cfg.UploadMaxBytes, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
		Relay:           relay.NewHandler(generator, logger),
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       staticDir,
		Logger:          logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		return server.Run(gctx, cfg.HTTPIdleTimeout)
	})
	g.Go(func() error {
		return manager.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

// captionGenerator calls the relay in-process unless RELAY_URL points the
// caption tool at a relay deployed elsewhere. Relay calls carry no timeout.
func captionGenerator(cfg *infra.Config, gen relay.Generator) processing.TextGenerator {
	if cfg.RelayURL != "" {
		return relay.NewClient(cfg.RelayURL, 0)
	}
	return relay.NewLocal(gen)
}

// objectStore picks the persistence backend. The filesystem store also
// returns the directory to serve under /static/.
func objectStore(cfg *infra.Config) (storage.ObjectStore, string, error) {
	switch cfg.StorageBackend {
	case "supabase":
		s, err := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		return s, "", err
	case "none":
		return nil, "", nil
	default:
		s, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return s, s.BasePath(), nil
	}
}
