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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mock-api-gateway/internal/config"
	"github.com/mock-api-gateway/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	port int
	seed string
}

func newRootCmd() *cobra.Command {
	var flags serveFlags

	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Mock API gateway with key auth, rate limiting and audit logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
	addServeFlags(root, &flags)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
	addServeFlags(serve, &flags)

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gateway %s (%s)\n", Version, Commit)
		},
	}

	root.AddCommand(serve, version)
	return root
}

func addServeFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().IntVar(&f.port, "port", 0, "Listen port (overrides PORT)")
	cmd.Flags().StringVar(&f.seed, "seed", "", "YAML seed file (overrides SEED_FILE)")
}

func runServe(cmd *cobra.Command, flags serveFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		if flags.port < 1 || flags.port > 65535 {
			return fmt.Errorf("--port must be between 1 and 65535, got %d", flags.port)
		}
		cfg.Port = flags.port
	}
	if cmd.Flags().Changed("seed") {
		cfg.SeedFile = flags.seed
	}

	setupLogging(cfg)

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, seed)
	if err != nil {
		return err
	}
	srv := app.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", Version).Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
