package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinote/clinote/internal/config"
	"github.com/clinote/clinote/internal/domain/dotphrase"
	"github.com/clinote/clinote/internal/domain/extraction"
	"github.com/clinote/clinote/internal/domain/lab"
	"github.com/clinote/clinote/internal/domain/medication"
	"github.com/clinote/clinote/internal/domain/notes"
	"github.com/clinote/clinote/internal/domain/preferences"
	"github.com/clinote/clinote/internal/platform/auth"
	"github.com/clinote/clinote/internal/platform/db"
	"github.com/clinote/clinote/internal/platform/kvstore"
	"github.com/clinote/clinote/internal/platform/middleware"
	"github.com/clinote/clinote/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinote-server",
		Short: "Clinical note assistant API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// services are the domain services the HTTP layer is built from.
type services struct {
	reconciler  *lab.Reconciler
	extraction  *extraction.Service
	catalog     *medication.Catalog
	dotPhrases  *dotphrase.Service
	notes       *notes.Service
	preferences *preferences.Service
	dbHealth    echo.HandlerFunc
}

// imagePaths are the routes that accept base64 image bodies.
var imagePaths = []string{
	"/api" + extraction.LabImagePath,
	"/api" + extraction.LabBatchPath,
	"/api" + extraction.MedicationImagePath,
}

func imageBodyLimits(limit string) map[string]string {
	out := make(map[string]string, len(imagePaths))
	for _, p := range imagePaths {
		out[p] = limit
	}
	return out
}

func imageTimeouts(d time.Duration) map[string]time.Duration {
	out := make(map[string]time.Duration, len(imagePaths))
	for _, p := range imagePaths {
		out[p] = d
	}
	return out
}

func rateLimitConfig(name string, rps float64, burst int, fallback middleware.RateLimitConfig) middleware.RateLimitConfig {
	if rps <= 0 || burst <= 0 {
		return fallback
	}
	return middleware.RateLimitConfig{Name: name, RequestsPerSecond: rps, BurstSize: burst}
}

func authMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		return auth.DevAuthMiddleware()
	}
	return auth.JWTMiddleware(auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		JWKSURL:    cfg.AuthJWKSURL,
		SigningKey: []byte(cfg.AuthSigningKey),
	})
}

func newServer(cfg *config.Config, logger zerolog.Logger, svc services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger, cfg.IsProduction())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", auth.DevUserHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, imageBodyLimits(cfg.ImageBodyLimit)))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, imageTimeouts(cfg.ExtractionTimeout)))
	e.Use(middleware.Audit(logger, "/api/v1/notes"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if svc.dbHealth != nil {
		e.GET("/health/db", svc.dbHealth)
	}

	api := e.Group("/api", authMiddleware(cfg), auth.RequireUser())
	api.Use(middleware.RateLimit(rateLimitConfig("api", cfg.RateLimitRPS, cfg.RateLimitBurst, middleware.DefaultRateLimitConfig())))
	v1 := api.Group("/v1")

	imageLimit := middleware.RateLimit(rateLimitConfig("image", cfg.ImageRateLimitRPS, cfg.ImageRateLimitBurst, middleware.ImageRateLimitConfig()))
	extraction.NewHandler(svc.extraction).RegisterRoutes(api, imageLimit)
	lab.NewHandler(svc.reconciler).RegisterRoutes(v1)
	medication.NewHandler(svc.catalog).RegisterRoutes(api, v1)
	dotphrase.NewHandler(svc.dotPhrases).RegisterRoutes(v1)
	notes.NewHandler(svc.notes).RegisterRoutes(v1)
	preferences.NewHandler(svc.preferences).RegisterRoutes(v1)

	return e
}

// buildExtractors wires the lab and medication backends named in cfg. A
// backend whose credentials are missing is left nil and its routes answer
// 503. The returned func releases backend clients.
func buildExtractors(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (extraction.LabExtractor, extraction.MedicationExtractor, func()) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	var ocr extraction.TextDetector
	if cfg.LabExtractor == config.ExtractorVision ||
		cfg.MedicationExtractor == config.ExtractorVisionGemini ||
		cfg.MedicationExtractor == config.ExtractorVisionAnthropic {
		v, err := extraction.NewVisionOCR(ctx, cfg.GoogleCredentials)
		if err != nil {
			logger.Error().Err(err).Msg("google vision unavailable")
		} else {
			ocr = v
			closers = append(closers, v.Close)
		}
	}

	var claude *extraction.AnthropicExtractor
	if cfg.AnthropicAPIKey != "" {
		claude = extraction.NewAnthropicExtractor(extraction.NewAnthropicMessager(cfg.AnthropicAPIKey), cfg.AnthropicModel, logger)
	}

	var labs extraction.LabExtractor
	switch cfg.LabExtractor {
	case config.ExtractorVision:
		if ocr != nil {
			labs = extraction.NewOCRLabExtractor(ocr, logger)
		}
	case config.ExtractorAnthropic:
		if claude != nil {
			labs = claude
		}
	}

	var meds extraction.MedicationExtractor
	switch cfg.MedicationExtractor {
	case config.ExtractorAnthropic:
		if claude != nil {
			meds = claude
		}
	case config.ExtractorVisionAnthropic:
		if ocr != nil && claude != nil {
			meds = extraction.NewOCRMedicationExtractor(ocr, claude, logger)
		}
	case config.ExtractorVisionGemini:
		if ocr != nil {
			gen, err := extraction.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
			if err != nil {
				logger.Error().Err(err).Msg("gemini unavailable")
			} else {
				meds = extraction.NewOCRMedicationExtractor(ocr, extraction.NewGeminiParser(gen, cfg.GeminiModel, logger), logger)
			}
		}
	}

	if labs == nil {
		logger.Warn().Str("extractor", cfg.LabExtractor).Msg("lab extraction is not configured")
	}
	if meds == nil {
		logger.Warn().Str("extractor", cfg.MedicationExtractor).Msg("medication extraction is not configured")
	}
	return labs, meds, cleanup
}

func runServer() error {
	// Logger
	logger := newLogger(os.Getenv("ENV"))

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger = newLogger(cfg.Env)

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	labs, meds, closeExtractors := buildExtractors(ctx, cfg, logger)
	defer closeExtractors()

	svc := services{
		reconciler:  lab.NewReconciler(logger),
		extraction:  extraction.NewService(labs, meds, logger),
		catalog:     medication.NewCatalog(cfg.FormularyFile, logger),
		dotPhrases:  dotphrase.NewService(dotphrase.NewRepoPG(pool), dotphrase.DefaultLibrary()),
		notes:       notes.NewService(notes.NewRepoPG(pool)),
		preferences: preferences.NewService(kvstore.NewPGStore(pool), logger),
		dbHealth:    db.HealthHandler(pool),
	}
	e := newServer(cfg, logger, svc)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
