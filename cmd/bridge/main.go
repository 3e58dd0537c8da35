// Command bridge is the CultureBridge CLI: it runs the cultural adaptation
// pipeline, re-audits stored variants, and inspects the dataset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"culturebridge/internal/config"
	"culturebridge/internal/culture"
	"culturebridge/internal/gateway"
	"culturebridge/internal/logging"
	"culturebridge/internal/pipeline"
	"culturebridge/internal/store"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	apiKey      string
	dbPath      string
	datasetPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "CultureBridge - behavioral adaptation engine for storefronts",
	Long: `CultureBridge converts behavioral dimension scores for a target
population into a concrete bundle of storefront adaptation decisions:
flow changes, module configuration, copy variants, a compliance score,
and a predicted-impact estimate.

Every decision carries a machine-checkable rationale tying it to a
dimension and threshold rule. Output is identical and auditable whether
or not the enrichment service is reachable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, verbose)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bridge.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "enrichment API key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "variant database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "cultural dataset path (overrides embedded defaults)")
}

// services bundles everything a subcommand needs.
type services struct {
	cfg          *config.Config
	data         *culture.Store
	variants     *store.VariantStore
	orchestrator *pipeline.Orchestrator
}

func buildServices() (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if dbPath != "" {
		cfg.Store.DatabasePath = dbPath
	}
	if datasetPath != "" {
		cfg.Data.DatasetPath = datasetPath
	}

	data, err := culture.LoadStore(cfg.Data.DatasetPath)
	if err != nil {
		return nil, err
	}

	variants, err := store.NewVariantStore(cfg.Store.DatabasePath)
	if err != nil {
		return nil, err
	}

	var gw gateway.Gateway = gateway.Disabled{}
	if cfg.LLM.Enabled() {
		g, err := gateway.NewGeminiGateway(gateway.GeminiConfig{
			APIKey:          cfg.LLM.APIKey,
			Model:           cfg.LLM.Model,
			Timeout:         cfg.LLM.TimeoutDuration(),
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		}, logger.Named("gateway"))
		if err != nil {
			variants.Close()
			return nil, err
		}
		gw = g
	} else {
		logger.Info("enrichment not configured; stages will use deterministic fallbacks")
	}

	return &services{
		cfg:          cfg,
		data:         data,
		variants:     variants,
		orchestrator: pipeline.NewOrchestrator(data, gw, logger.Named("pipeline")),
	}, nil
}

func (s *services) close() {
	if s.variants != nil {
		_ = s.variants.Close()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
