package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicsignal/augur/internal/httpapi"
	"github.com/civicsignal/augur/internal/logging"
	"github.com/civicsignal/augur/pkg/augur/config"
)

var serveFlags struct {
	config string
	addr   string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP service",
	Long: `Starts the HTTP service exposing POST /extract. Each submitted document is
segmented into sentences, parsed and coded sentence-by-sentence against the
configured external services, and returned as one aggregated JSON result.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.config, "config", "", "path to YAML config file")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveFlags.config)
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.Server.Addr = serveFlags.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	api := httpapi.New(engine, version)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger := logging.New("serve")
	logger.Info("listening", "addr", cfg.Server.Addr, "parser", cfg.Parser.URL, "coder", cfg.Coder.URL)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("shut down")
	return nil
}
