// Work-Flow-zen daemon - messaging automation backend
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/surya9634/Work-Flow-zen/internal/ai"
	"github.com/surya9634/Work-Flow-zen/internal/api"
	"github.com/surya9634/Work-Flow-zen/internal/config"
	"github.com/surya9634/Work-Flow-zen/internal/kb"
	"github.com/surya9634/Work-Flow-zen/internal/logging"
	"github.com/surya9634/Work-Flow-zen/internal/owner"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

var (
	dataDir    string
	port       int
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Work-Flow-zen - AI-powered business messaging backend",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to ~/.workflow)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config.json")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		logging.SetLevel(logging.DEBUG)
	}

	logging.Info("starting workflow daemon, data dir %s", cfg.DataDir)

	// Identity stores come first: the owner resolver needs them before the
	// conversation store can resolve a default owner for new threads.
	authStore := store.NewAuthStore(cfg.DataDir)
	pageOwners := store.NewPageOwnerStore(cfg.DataDir)
	defaultOwner := store.NewDefaultOwnerStore(cfg.DataDir)

	resolver := owner.NewResolver(authStore, pageOwners, defaultOwner)
	ownerID, err := resolver.Bootstrap()
	if err != nil {
		return fmt.Errorf("owner bootstrap failed: %w", err)
	}
	logging.Info("default owner: %s", ownerID)

	campaigns := store.NewCampaignStore(cfg.DataDir)
	conversations := store.NewConversationStore(cfg.DataDir, resolver.DefaultOwner)
	memories := store.NewMemoryStore(cfg.DataDir, cfg.AI.MemoryEnabled)
	analytics := store.NewAnalyticsStore(cfg.DataDir)
	profile := store.NewBusinessProfileStore(cfg.DataDir)
	prompts := store.NewPromptStore(cfg.DataDir)
	motherAI := store.NewMotherAIStore(cfg.DataDir)
	integrations := store.NewIntegrationStore(cfg.DataDir)

	builder := kb.NewBuilder(profile, authStore, campaigns, motherAI)

	client := ai.NewClient(ai.ClientConfig{
		APIKey: cfg.AI.GroqAPIKey,
		Model:  cfg.AI.GroqModel,
	})
	if client.IsConfigured() {
		logging.Info("groq configured, model %s", client.Model())
	} else {
		logging.Warn("GROQ_API_KEY not set - replies fall back to product summaries")
	}

	backfiller := ai.NewBackfiller(campaigns, builder)
	responder := ai.NewResponder(builder, client, memories, analytics, prompts, authStore, backfiller)

	server := api.New(api.Config{
		AppConfig: cfg,

		Auth:          authStore,
		Campaigns:     campaigns,
		Conversations: conversations,
		Memories:      memories,
		Analytics:     analytics,
		PageOwners:    pageOwners,
		DefaultOwner:  defaultOwner,
		Profile:       profile,
		Prompts:       prompts,
		MotherAI:      motherAI,
		Integrations:  integrations,

		Builder:   builder,
		Responder: responder,
		Resolver:  resolver,
	})

	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening on :%d", cfg.Server.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		logging.Info("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logging.Info("shutdown complete")
	return nil
}
