package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/babytrack/babytrack/internal/config"
	"github.com/babytrack/babytrack/internal/domain/account"
	"github.com/babytrack/babytrack/internal/domain/appointment"
	"github.com/babytrack/babytrack/internal/domain/child"
	"github.com/babytrack/babytrack/internal/domain/doctor"
	"github.com/babytrack/babytrack/internal/domain/growth"
	"github.com/babytrack/babytrack/internal/domain/vaccination"
	"github.com/babytrack/babytrack/internal/platform/auth"
	"github.com/babytrack/babytrack/internal/platform/db"
	"github.com/babytrack/babytrack/internal/platform/middleware"
)

// BirthRecorderAdapter adapts the growth service to the child.BirthRecorder
// interface, avoiding a direct import between the child and growth packages.
type BirthRecorderAdapter struct {
	svc *growth.Service
}

// NewBirthRecorderAdapter creates a new adapter.
func NewBirthRecorderAdapter(svc *growth.Service) *BirthRecorderAdapter {
	return &BirthRecorderAdapter{svc: svc}
}

// RecordBirth implements child.BirthRecorder.
func (a *BirthRecorderAdapter) RecordBirth(ctx context.Context, ownerID string, childID uuid.UUID, birthDate time.Time, weightKG, lengthCM float64) error {
	notes := "Measurements at birth"
	_, err := a.svc.Record(ctx, ownerID, growth.RecordInput{
		ChildID:         childID,
		MeasurementDate: birthDate,
		WeightKG:        weightKG,
		LengthCM:        lengthCM,
		Notes:           &notes,
	})
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "babytrack-server",
		Short: "BabyTrack API Server",
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
		Short: "Start the BabyTrack API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
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
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Growth domain
	growthRepo := growth.NewRepoPG(pool)
	growthBirths := growth.NewBirthDateSourcePG(pool)
	growthSvc := growth.NewService(growthRepo, growthBirths)
	growthHandler := growth.NewHandler(growthSvc)
	growthHandler.RegisterRoutes(apiV1)

	// Child domain; new children with birth measurements seed their first
	// growth measurement.
	childRepo := child.NewRepoPG(pool)
	childSvc := child.NewService(childRepo)
	childSvc.SetBirthRecorder(NewBirthRecorderAdapter(growthSvc))
	childSvc.SetLogger(logger)
	childHandler := child.NewHandler(childSvc)
	childHandler.RegisterRoutes(apiV1)

	// Doctor domain
	doctorRepo := doctor.NewRepoPG(pool)
	doctorSvc := doctor.NewService(doctorRepo)
	doctorHandler := doctor.NewHandler(doctorSvc)
	doctorHandler.RegisterRoutes(apiV1)

	// Appointment domain; reference checks and writes share one transaction.
	apptRepo := appointment.NewRepoPG(pool)
	apptRefs := appointment.NewReferenceCheckerPG(pool)
	apptSvc := appointment.NewService(apptRepo, apptRefs)
	apptSvc.SetTxRunner(db.NewRunner(pool))
	apptHandler := appointment.NewHandler(apptSvc)
	apptHandler.RegisterRoutes(apiV1)

	// Vaccination domain
	defRepo := vaccination.NewDefinitionRepoPG(pool)
	doseRepo := vaccination.NewDoseRepoPG(pool)
	childDir := vaccination.NewChildDirectoryPG(pool)
	vaccSvc := vaccination.NewService(defRepo, doseRepo, childDir)
	vaccHandler := vaccination.NewHandler(vaccSvc)
	vaccHandler.RegisterRoutes(apiV1)

	// Account domain
	profileRepo := account.NewRepoPG(pool)
	profileSvc := account.NewService(profileRepo)
	profileHandler := account.NewHandler(profileSvc)
	profileHandler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
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
