package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/allcures/dashboard/internal/config"
	"github.com/allcures/dashboard/internal/dashboard"
	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/domain/ledger"
	"github.com/allcures/dashboard/internal/domain/livemeetings"
	"github.com/allcures/dashboard/internal/platform/middleware"
	"github.com/allcures/dashboard/internal/platform/remote"
	"github.com/allcures/dashboard/internal/platform/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "All Cures operations dashboard",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load env file %s: %w", envFile, err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file loaded before configuration")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(overviewCmd())
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(liveMeetingsCmd())
	rootCmd.AddCommand(transactionsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// clients builds the data and auth clients. They differ only when
// AUTH_BASE_URL points somewhere else.
func clients(cfg *config.Config, logger zerolog.Logger) (data, auth *remote.Client, err error) {
	data, err = remote.New(cfg.BackendBaseURL,
		remote.WithTimeout(cfg.RequestTimeout),
		remote.WithLogger(logger.With().Str("component", "remote").Logger()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("backend client: %w", err)
	}
	if cfg.AuthBaseURL == cfg.BackendBaseURL {
		return data, data, nil
	}
	auth, err = remote.New(cfg.AuthBaseURL,
		remote.WithTimeout(cfg.RequestTimeout),
		remote.WithLogger(logger.With().Str("component", "auth").Logger()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("auth client: %w", err)
	}
	return data, auth, nil
}

func queriesFor(cfg *config.Config, client *remote.Client) dashboard.Queries {
	return dashboard.Queries{
		Appointments: appointments.NewQueries(client),
		Doctors:      doctors.NewQueries(client),
		LiveMeetings: livemeetings.NewQueries(client, cfg.LiveMeetingToken),
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		stderrLogger := zerolog.New(os.Stderr)
		stderrLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)

	data, authClient, err := clients(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build backend clients")
	}

	key, generated, err := cfg.SigningKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve session signing key")
	}
	if generated {
		logger.Warn().Msg("SESSION_SIGNING_KEY not set, sessions will not survive a restart")
	}

	l, err := ledger.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load ledger fixtures")
	}

	authenticator := session.NewRemoteAuthenticator(authClient)
	gateLogger := logger.With().Str("component", "session").Logger()
	manager := session.NewManager(
		session.NewStore(cfg.SessionTTL),
		session.NewCodec(key, cfg.SessionTTL),
		cfg.SessionTTL,
		cfg.SessionCookieSecure,
		func() *session.Gate { return session.NewGate(authenticator, gateLogger) },
	)
	registry := dashboard.NewRegistry(queriesFor(cfg, data), logger)
	srv := dashboard.NewServer(dashboard.Options{
		RequestTimeout: cfg.RequestTimeout + 2*time.Second,
		LoginRateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.LoginRateLimitRPS,
			BurstSize:         cfg.LoginRateLimitBurst,
		},
		HSTS: cfg.SessionCookieSecure,
	}, manager, registry, l, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "Accept", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	srv.RegisterRoutes(e)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.BackendBaseURL).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
