package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/daxreyes/bushfire-beacon/internal/api"
	"github.com/daxreyes/bushfire-beacon/internal/auth"
	"github.com/daxreyes/bushfire-beacon/internal/config"
	"github.com/daxreyes/bushfire-beacon/internal/domain/facilities"
	"github.com/daxreyes/bushfire-beacon/internal/domain/reports"
	"github.com/daxreyes/bushfire-beacon/internal/domain/users"
	"github.com/daxreyes/bushfire-beacon/internal/email"
	"github.com/daxreyes/bushfire-beacon/internal/notify"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
	"github.com/daxreyes/bushfire-beacon/internal/storage/postgres"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Beacon HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

Configuration comes from environment variables. The first superuser is
created on startup when the FIRST_SUPERUSER_* variables are set.

Examples:
  beacon serve
  beacon serve --host 127.0.0.1 --port 9090
  beacon serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting beacon server")

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.Connect(poolCtx, cfg.Database.URL)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	userStore := postgres.NewUserStore(pool)
	facilityStore := postgres.NewFacilityStore(pool)
	reportStore := postgres.NewReportStore(pool)

	codec := auth.NewTokenCodec(cfg.Auth.SecretKey)
	emailSvc, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email service init failed: %w", err)
	}
	notifier := notify.New(cfg.Notify.SubscriberBuffer, logger)

	usersSvc := users.NewService(userStore, codec, emailSvc, cfg.Auth, cfg.Server.BaseURL, logger)
	facilitiesSvc := facilities.NewService(facilityStore, notifier, logger)
	reportsSvc := reports.NewService(reportStore, facilityStore, notifier, logger)
	validator := auth.NewCredentialValidator(codec, usersSvc, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapSuperuser(bootCtx, cfg, usersSvc, logger); err != nil {
		logger.Error().Err(err).Msg("superuser bootstrap failed")
	}
	bootCancel()

	router := api.NewRouter(api.Deps{
		Config:     cfg,
		Logger:     logger,
		Users:      usersSvc,
		Facilities: facilitiesSvc,
		Reports:    reportsSvc,
		Validator:  validator,
		Codec:      codec,
		Notifier:   notifier,
		Version:    Version,
		DBPing:     pool.Ping,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	shutdown(server, notifier, logger)
	return nil
}

// bootstrapSuperuser makes sure the configured first superuser exists. An
// account that already exists is left untouched.
func bootstrapSuperuser(ctx context.Context, cfg config.Config, usersSvc *users.Service, logger zerolog.Logger) error {
	bootstrap := cfg.Bootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" {
		logger.Warn().Msg("FIRST_SUPERUSER_* env vars not set; skipping bootstrap")
		return nil
	}

	if _, err := usersSvc.GetByEmail(ctx, bootstrap.Email); err == nil {
		logger.Info().Str("email", bootstrap.Email).Msg("superuser already exists")
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("lookup superuser: %w", err)
	}

	_, err := usersSvc.Create(ctx, users.CreateParams{
		Email:       bootstrap.Email,
		Password:    bootstrap.Password,
		FullName:    bootstrap.FullName,
		IsActive:    true,
		IsVerified:  true,
		IsSuperuser: true,
	})
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	logger.Info().Str("email", bootstrap.Email).Msg("superuser created")
	return nil
}

func shutdown(server *http.Server, notifier *notify.Notifier, logger zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	notifier.Close()
	logger.Info().Msg("stopped")
}
