package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hims/hims/internal/config"
	"github.com/hims/hims/internal/domain/finance"
	"github.com/hims/hims/internal/domain/laboratory"
	"github.com/hims/hims/internal/domain/patient"
	"github.com/hims/hims/internal/domain/pharmacy"
	"github.com/hims/hims/internal/platform/db"
	"github.com/hims/hims/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hims-server",
		Short: "Hospital Information Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HIMS API server",
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

// resolveReconcileDate parses the --date flag, defaulting to now when empty.
func resolveReconcileDate(dateStr string, now time.Time) (time.Time, error) {
	if dateStr == "" {
		return now, nil
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
	}
	return day, nil
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a day's income into the finance ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")

			day, err := resolveReconcileDate(dateStr, time.Now())
			if err != nil {
				return err
			}

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

			conn, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}
			defer conn.Release()

			ctx = db.WithConn(ctx, conn)
			txCtx, tx, err := db.WithTx(ctx)
			if err != nil {
				return err
			}

			finRepo := finance.NewRepoPG(pool)
			dispenseRepo := pharmacy.NewDispenseRepoPG(pool)
			labRepo := laboratory.NewRepoPG(pool)
			finSvc := finance.NewService(finRepo, dispenseRepo, labRepo)

			rec, err := finSvc.Reconcile(txCtx, day)
			if err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("reconcile failed: %w", err)
			}
			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("commit failed: %w", err)
			}

			fmt.Printf("Reconciled %s: dispensary=%s laboratory=%s hmos=%s total=%s\n",
				rec.RecordDate.Format("2006-01-02"),
				rec.DispensaryTotal.StringFixed(2),
				rec.LaboratoryTotal.StringFixed(2),
				rec.HMOsTotal.StringFixed(2),
				rec.TotalIncome.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().String("date", "", "Day to reconcile (YYYY-MM-DD, defaults to today)")
	return cmd
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if cfg.IsProduction() && !cfg.TLSEnabled {
		logger.Warn().Msg("running in production without TLS")
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
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(db.RequestConn(pool))

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	api := e.Group("/api")

	// -- Register Domain Handlers --

	// Patient domain
	patientRepo := patient.NewRepoPG(pool)
	patientSvc := patient.NewService(patientRepo)
	patientHandler := patient.NewHandler(patientSvc)
	patientHandler.RegisterRoutes(api)

	// Pharmacy domain
	drugRepo := pharmacy.NewDrugRepoPG(pool)
	dispenseRepo := pharmacy.NewDispenseRepoPG(pool)
	pharmacySvc := pharmacy.NewService(drugRepo, dispenseRepo, patientSvc)
	pharmacyHandler := pharmacy.NewHandler(pharmacySvc)
	pharmacyHandler.RegisterRoutes(api)

	// Laboratory domain
	labRepo := laboratory.NewRepoPG(pool)
	labSvc := laboratory.NewService(labRepo)
	labHandler := laboratory.NewHandler(labSvc)
	labHandler.RegisterRoutes(api)

	// Finance domain
	finRepo := finance.NewRepoPG(pool)
	finSvc := finance.NewService(finRepo, dispenseRepo, labRepo)
	finHandler := finance.NewHandler(finSvc)
	finHandler.RegisterRoutes(api)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
