package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"insightlens/internal/config"
	"insightlens/internal/infrastructure"
)

var (
	flagConfig string
	flagSeed   int64

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "insightlens",
	Short: "Tabular e-commerce analytics: aggregation, segmentation and model training",
	Long: `InsightLens ingests transaction-level tabular data and produces
descriptive statistics, RFM customer features, k-means segments, quantile
RFM scores, a sales forecast model, a high-value customer classifier, and
short textual insights.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig != "" {
			if err := os.Setenv("INSIGHTLENS_CONFIG", flagConfig); err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Pipeline.RandomSeed = flagSeed
		}
		logger = infrastructure.InitializeLogger(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (YAML)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 42, "random seed for every stochastic stage")
}
