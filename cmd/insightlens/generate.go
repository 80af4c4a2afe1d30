package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"insightlens/internal/exporter"
	"insightlens/internal/pipeline"
)

var (
	flagGenTransactions int
	flagGenCustomers    int
	flagGenOutput       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic e-commerce transaction CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		genCfg := pipeline.DefaultGeneratorConfig(cfg.Pipeline.RandomSeed)
		genCfg.Transactions = flagGenTransactions
		genCfg.Customers = flagGenCustomers
		genCfg.ShowProgress = true

		d := pipeline.GenerateDataset(genCfg)

		writer := exporter.NewCSVWriter(cfg.Paths.DataDir, logger)
		if err := writer.WriteDataset(flagGenOutput, d); err != nil {
			return err
		}
		logger.Info("synthetic dataset written",
			slog.String("file", flagGenOutput),
			slog.Int("transactions", d.Len()),
			slog.Int("customers", flagGenCustomers))
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVar(&flagGenTransactions, "transactions", 5000, "number of transactions")
	generateCmd.Flags().IntVar(&flagGenCustomers, "customers", 500, "number of distinct customers")
	generateCmd.Flags().StringVar(&flagGenOutput, "output", "transactions.csv", "output file, relative to the data directory")
	rootCmd.AddCommand(generateCmd)
}
