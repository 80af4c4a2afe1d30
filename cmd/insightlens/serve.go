package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"insightlens/internal/dataset"
	"insightlens/internal/pipeline"
	"insightlens/internal/transport"
)

var flagServeInput string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline and serve results over a read-only JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, roles, err := loadServeInput()
		if err != nil {
			return err
		}

		result, err := pipeline.New(cfg.Pipeline, logger).Run(cmd.Context(), d, roles)
		if err != nil {
			return err
		}

		srv := transport.NewServer(cfg.Server, logger)
		srv.SetResult(result)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeInput, "input", "", "transaction CSV to analyze (defaults to a synthetic dataset)")
	rootCmd.AddCommand(serveCmd)
}

func loadServeInput() (*dataset.Dataset, dataset.ColumnRoles, error) {
	if flagServeInput == "" {
		d := pipeline.GenerateDataset(pipeline.DefaultGeneratorConfig(cfg.Pipeline.RandomSeed))
		return d, pipeline.GeneratorRoles(), nil
	}
	d, err := dataset.LoadCSV(flagServeInput)
	if err != nil {
		return nil, dataset.ColumnRoles{}, err
	}
	return d, dataset.ColumnRoles{}, nil
}
