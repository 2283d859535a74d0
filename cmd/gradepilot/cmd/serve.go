package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradepilot/gradepilot/internal/adapters/embed"
	"github.com/gradepilot/gradepilot/internal/adapters/llm"
	"github.com/gradepilot/gradepilot/internal/adapters/store"
	"github.com/gradepilot/gradepilot/internal/api"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grading API server",
	Long: `Start the GradePilot HTTP API server.

The server exposes grading, answer key and analytics endpoints. The
similarity model is loaded lazily on the first grading request; with
watching enabled, a fine-tuned model dropped onto disk is picked up
without a restart.

Examples:
  # Start with defaults (localhost:8000)
  gradepilot serve

  # Bind to all interfaces on a custom port
  gradepilot serve --host 0.0.0.0 --port 9000`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"host address to bind to (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"port to listen on (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gradeStore, err := store.NewStore(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("opening grade store: %w", err)
	}
	defer func() {
		if closeErr := gradeStore.Close(); closeErr != nil {
			log.Warn("closing grade store failed", "error", closeErr)
		}
	}()

	var scorer core.SimilarityScorer
	if cfg.Grading.HybridEnabled {
		embedScorer := embed.NewScorer(cfg.Similarity, log)
		defer embedScorer.Close()
		scorer = embedScorer

		// Warm in the background so the first request doesn't pay the
		// model load. A failure here just means Gemini-only grading.
		go func() {
			if warmErr := embedScorer.Warm(); warmErr != nil {
				log.Warn("similarity model not available", "error", warmErr)
			}
		}()

		if cfg.Similarity.WatchFineTuned {
			watcher := embed.NewWatcher(cfg.Similarity.FineTunedPath, embedScorer, log)
			go func() {
				if watchErr := watcher.Run(ctx); watchErr != nil && ctx.Err() == nil {
					log.Warn("fine-tuned model watcher stopped", "error", watchErr)
				}
			}()
		}
	} else {
		log.Info("hybrid grading disabled, similarity model will not be loaded")
	}

	grader, err := llm.NewClient(cfg.Gemini, log)
	if err != nil {
		return fmt.Errorf("configuring gemini client: %w", err)
	}

	svc := service.New(cfg.Grading, scorer, grader, gradeStore, log)

	requestTimeout, err := time.ParseDuration(cfg.Server.RequestTimeout)
	if err != nil {
		return fmt.Errorf("parsing request timeout: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("parsing shutdown timeout: %w", err)
	}

	server := api.NewServer(svc,
		api.WithLogger(log),
		api.WithCORSOrigins(cfg.Server.CORSOrigins),
		api.WithRequestTimeout(requestTimeout),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := server.ListenAndServe(ctx, addr, shutdownTimeout); err != nil {
		return fmt.Errorf("running server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
