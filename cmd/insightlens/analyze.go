package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"insightlens/internal/dataset"
	"insightlens/internal/exporter"
	"insightlens/internal/mlearn"
	"insightlens/internal/pipeline"
	"insightlens/internal/store"
)

var (
	flagAnalyzeInput string
	flagAnalyzeDemo  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analytics pipeline and export reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, roles, err := loadInput()
		if err != nil {
			return err
		}

		result, err := pipeline.New(cfg.Pipeline, logger).Run(cmd.Context(), d, roles)
		if err != nil {
			return err
		}

		for _, finding := range result.Findings {
			fmt.Println("  •", finding)
		}

		if err := exportResult(d, result); err != nil {
			return err
		}
		if err := saveModels(result); err != nil {
			return err
		}

		if cfg.Database.Enabled {
			if err := persistRun(cmd, result); err != nil {
				return err
			}
		}

		logger.Info("analysis complete", slog.String("run_id", result.RunID))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&flagAnalyzeInput, "input", "", "transaction CSV to analyze")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeDemo, "demo", false, "analyze a generated synthetic dataset instead of a file")
	analyzeCmd.MarkFlagsOneRequired("input", "demo")
	rootCmd.AddCommand(analyzeCmd)
}

func loadInput() (*dataset.Dataset, dataset.ColumnRoles, error) {
	if flagAnalyzeDemo {
		d := pipeline.GenerateDataset(pipeline.DefaultGeneratorConfig(cfg.Pipeline.RandomSeed))
		return d, pipeline.GeneratorRoles(), nil
	}
	d, err := dataset.LoadCSV(flagAnalyzeInput)
	if err != nil {
		return nil, dataset.ColumnRoles{}, err
	}
	// Roles come from configuration and classifier hints.
	return d, dataset.ColumnRoles{}, nil
}

func exportResult(d *dataset.Dataset, result *pipeline.Result) error {
	writer := exporter.NewCSVWriter(cfg.Paths.ReportsDir, logger)
	if err := writer.WriteCustomerFeatures("customer_features.csv", result.Customers, result.Scores); err != nil {
		return err
	}

	workbook := filepath.Join(cfg.Paths.ReportsDir, "analysis.xlsx")
	if err := exporter.WriteWorkbook(workbook, d, result); err != nil {
		return err
	}
	logger.Info("reports written", slog.String("dir", cfg.Paths.ReportsDir))
	return nil
}

func saveModels(result *pipeline.Result) error {
	if f := result.Models.Forecast; f != nil {
		path := filepath.Join(cfg.Paths.ModelsDir, f.Bundle.Kind+".json")
		if err := mlearn.SaveBundle(f.Bundle, path); err != nil {
			return err
		}
		logger.Info("model saved", slog.String("kind", f.Bundle.Kind), slog.Float64("rmse", f.RMSE))
	}
	if c := result.Models.Classification; c != nil {
		path := filepath.Join(cfg.Paths.ModelsDir, c.Bundle.Kind+".json")
		if err := mlearn.SaveBundle(c.Bundle, path); err != nil {
			return err
		}
		logger.Info("model saved", slog.String("kind", c.Bundle.Kind), slog.Float64("accuracy", c.Accuracy))
	}
	return nil
}

func persistRun(cmd *cobra.Command, result *pipeline.Result) error {
	db, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if err := db.SaveRun(ctx, result); err != nil {
		return err
	}
	logger.Info("run persisted", slog.String("run_id", result.RunID))
	return nil
}
