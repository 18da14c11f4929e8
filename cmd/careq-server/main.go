package main

import (
	"context"
	"errors"
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

	"github.com/careq/careq/internal/config"
	"github.com/careq/careq/internal/domain/booking"
	"github.com/careq/careq/internal/domain/catalog"
	"github.com/careq/careq/internal/platform/auth"
	"github.com/careq/careq/internal/platform/db"
	"github.com/careq/careq/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "careq-server",
		Short: "Hospital appointment booking and token issuance server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
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

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo hospitals and doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Store != "postgres" {
				return fmt.Errorf("seed requires STORE=postgres, the memory store is process-local")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := catalog.NewService(catalog.NewHospitalRepoPG(pool), catalog.NewDoctorRepoPG(pool))
			return seedCatalog(ctx, svc)
		},
	}
}

func seedCatalog(ctx context.Context, svc *catalog.Service) error {
	hospitals := []struct {
		hospital catalog.Hospital
		doctors  []catalog.Doctor
	}{
		{
			hospital: catalog.Hospital{
				Name:        "City General Hospital",
				Location:    "14 MG Road",
				District:    "Central",
				Specialties: []string{"general medicine", "pediatrics", "cardiology"},
			},
			doctors: []catalog.Doctor{
				{Name: "Dr. Meera Rao", Specialty: "general medicine", Availability: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, DailyCapacity: 5},
				{Name: "Dr. Arjun Pillai", Specialty: "cardiology", Availability: []string{"Mon", "Wed", "Fri"}, DailyCapacity: 5},
			},
		},
		{
			hospital: catalog.Hospital{
				Name:        "Lakeside Community Clinic",
				Location:    "2 Lake View Street",
				District:    "North",
				Specialties: []string{"general medicine", "dermatology"},
			},
			doctors: []catalog.Doctor{
				{Name: "Dr. Sunita Iyer", Specialty: "dermatology", Availability: []string{"Tue", "Thu", "Sat"}, DailyCapacity: 5},
			},
		},
	}

	for _, entry := range hospitals {
		h := entry.hospital
		if err := svc.CreateHospital(ctx, &h); err != nil {
			return fmt.Errorf("seed hospital %s: %w", h.Name, err)
		}
		fmt.Printf("Created hospital %s (%s)\n", h.Name, h.ID)
		for _, d := range entry.doctors {
			d.HospitalID = h.ID
			if err := svc.CreateDoctor(ctx, &d); err != nil {
				return fmt.Errorf("seed doctor %s: %w", d.Name, err)
			}
			fmt.Printf("  Created doctor %s (%s)\n", d.Name, d.ID)
		}
	}
	return nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Storage wiring. The memory store exists for local development and
	// demos; production is locked to postgres by config validation.
	var (
		pool         *pgxpool.Pool
		registry     booking.ScheduleRegistry
		store        booking.AppointmentStore
		hospitalRepo catalog.HospitalRepository
		doctorRepo   catalog.DoctorRepository
	)
	switch cfg.Store {
	case "postgres":
		p, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		logger.Info().Msg("connected to database")

		pool = p
		registry = booking.NewRegistryPG(p)
		store = booking.NewStorePG(p)
		hospitalRepo = catalog.NewHospitalRepoPG(p)
		doctorRepo = catalog.NewDoctorRepoPG(p)
	case "memory":
		logger.Warn().Msg("using the in-memory store, data will not survive a restart")
		registry = booking.NewMemoryRegistry()
		store = booking.NewMemoryStore()
		hospitalRepo = catalog.NewHospitalRepoMem()
		doctorRepo = catalog.NewDoctorRepoMem()
	}

	catalogSvc := catalog.NewService(hospitalRepo, doctorRepo)
	bookingSvc := booking.NewService(registry, store, booking.NewCatalogDirectory(catalogSvc), logger)
	lifecycle := booking.NewLifecycle(store)
	queries := booking.NewQueries(store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	booking.NewHandler(bookingSvc, lifecycle, queries).RegisterRoutes(apiV1)

	// Serve with graceful shutdown on SIGINT/SIGTERM.
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited")
		}
	}()
	logger.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}
