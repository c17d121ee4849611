// Package main provides the legal FAQ Q&A server binary.
// The server answers legal questions by retrieving relevant FAQ entries from
// a vector database and composing an AI-generated answer.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/legalqa/legal-rag/internal/config"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
	"github.com/legalqa/legal-rag/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "legal-rag-server",
		Short: "Legal FAQ Q&A server with retrieval-augmented answers",
		Long: `legal-rag-server answers legal questions from a curated FAQ knowledge base.

On startup the server loads the FAQ dataset, embeds the questions via the
OpenAI API, and indexes them in Qdrant. Incoming questions are embedded,
matched against the collection by cosine similarity, and answered by an LLM
grounded on the retrieved FAQs. Every interaction is logged to SQLite.

Examples:
  legal-rag-server                       # Start with defaults
  legal-rag-server --port 8000           # Custom HTTP port
  legal-rag-server --reindex             # Rebuild the vector collection
  legal-rag-server -c config.yaml        # Load a config file`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().String("host", "", "server host (overrides config)")
	rootCmd.Flags().Int("port", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().String("qdrant-host", "", "Qdrant host (overrides config)")
	rootCmd.Flags().Int("qdrant-port", 0, "Qdrant gRPC port (overrides config)")
	rootCmd.Flags().Bool("reindex", false, "rebuild the vector collection before serving")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("legal-rag-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	reindex, _ := cmd.Flags().GetBool("reindex")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if qdrantHost, _ := cmd.Flags().GetString("qdrant-host"); qdrantHost != "" {
		cfg.Qdrant.Host = qdrantHost
	}
	if qdrantPort, _ := cmd.Flags().GetInt("qdrant-port"); qdrantPort != 0 {
		cfg.Qdrant.Port = qdrantPort
	}

	logLevel := cfg.Log.Level
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cfg.Log.Format)

	log.Info("starting legal-rag-server",
		"version", version,
		"addr", cfg.Address(),
		"collection", cfg.Qdrant.Collection,
	)

	srv, err := server.New(cfg, version, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Index(ctx, reindex); err != nil {
		return fmt.Errorf("failed to index FAQ dataset: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server exited with error")
		return err
	}

	log.Info("server exited cleanly")
	return nil
}
