// Package pipeline orchestrates the full analytics run: column
// classification, aggregation, RFM feature derivation, segmentation, model
// training, and insight synthesis. Stages run strictly in sequence; model
// stages are independent of each other, so a failed model is logged and
// skipped while the rest of the run continues.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"insightlens/internal/aggregate"
	"insightlens/internal/classify"
	"insightlens/internal/config"
	"insightlens/internal/dataset"
	"insightlens/internal/forecast"
	"insightlens/internal/insight"
	"insightlens/internal/mlearn"
	"insightlens/internal/rfm"
	"insightlens/internal/schema"
	"insightlens/internal/segment"
)

// Models holds the trained model results. The set of model kinds is fixed,
// so each gets a named field; a nil field means that model was skipped.
type Models struct {
	Forecast       *forecast.Result
	Classification *classify.Result
}

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Result is everything a single pipeline run produces.
type Result struct {
	RunID     string
	Profile   *schema.Profile
	Roles     dataset.ColumnRoles
	Stats     aggregate.BasicStats
	Tables    *aggregate.Result
	Customers []rfm.CustomerFeatureRow
	Scores    []rfm.Score
	Segments  *segment.Result
	Models    Models
	Findings  []string
	Timings   []StageTiming
}

// Pipeline runs the analytics stages with a fixed configuration.
type Pipeline struct {
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// New builds a pipeline. A nil logger falls back to slog.Default.
func New(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes every stage against the dataset. Roles left empty are filled
// from configuration first, then from the column classifier's hints. The
// returned error is non-nil only when the run cannot proceed at all; model
// stage failures are recorded and skipped.
func (p *Pipeline) Run(ctx context.Context, d *dataset.Dataset, roles dataset.ColumnRoles) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := p.logger.With(slog.String("run_id", result.RunID))

	stage := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		result.Timings = append(result.Timings, StageTiming{Stage: name, Duration: elapsed})
		if err != nil {
			logger.ErrorContext(ctx, "stage failed",
				slog.String("stage", name), slog.Duration("elapsed", elapsed), slog.Any("error", err))
			return err
		}
		logger.InfoContext(ctx, "stage complete",
			slog.String("stage", name), slog.Duration("elapsed", elapsed))
		return nil
	}

	_ = stage("classify_columns", func() error {
		result.Profile = schema.NewClassifier().Classify(d)
		return nil
	})
	result.Roles = p.resolveRoles(result.Profile, d.Len(), roles)
	logger.InfoContext(ctx, "roles resolved",
		slog.String("customer", result.Roles.Customer),
		slog.String("timestamp", result.Roles.Timestamp),
		slog.String("amount", result.Roles.Amount),
		slog.String("category", result.Roles.Category),
		slog.String("region", result.Roles.Region),
		slog.String("age", result.Roles.Age))

	_ = stage("basic_stats", func() error {
		result.Stats = aggregate.ComputeBasicStats(d, result.Profile)
		return nil
	})

	var txns *dataset.Transactions
	if err := stage("transaction_view", func() error {
		var err error
		txns, err = dataset.NewTransactions(d, result.Roles)
		return err
	}); err != nil {
		return nil, err
	}

	_ = stage("aggregate", func() error {
		result.Tables = aggregate.Analyze(txns)
		return nil
	})

	_ = stage("rfm_features", func() error {
		result.Customers = rfm.BuildFeatures(txns)
		return nil
	})

	// The remaining stages are independent; each failure only skips its own
	// output.
	_ = stage("rfm_scoring", func() error {
		scores, err := rfm.ScoreCustomers(result.Customers)
		if err != nil {
			return err
		}
		result.Scores = scores
		return nil
	})

	_ = stage("segmentation", func() error {
		segments, err := segment.Segment(result.Customers, segment.Config{
			Clusters: p.cfg.ClusterCount,
			Seed:     p.cfg.RandomSeed,
		})
		if err != nil {
			return err
		}
		result.Segments = segments
		return nil
	})

	_ = stage("forecast_model", func() error {
		trained, err := forecast.Train(txns, p.forecastConfig())
		if err != nil {
			return err
		}
		result.Models.Forecast = trained
		return nil
	})

	_ = stage("classification_model", func() error {
		trained, err := classify.Train(txns, p.classifyConfig())
		if err != nil {
			return err
		}
		result.Models.Classification = trained
		return nil
	})

	_ = stage("insights", func() error {
		result.Findings = insight.Findings(p.insightInputs(result, txns))
		return nil
	})

	return result, nil
}

// resolveRoles fills unbound roles from configuration, then from classifier
// hints. Explicit caller roles always win, and each column binds at most one
// role. Among customer candidates a name carrying a customer word beats a
// bare id match, and a per-row-unique column (a transaction id) loses to one
// that repeats; among revenue candidates an aggregate total beats a unit
// price.
func (p *Pipeline) resolveRoles(profile *schema.Profile, rows int, roles dataset.ColumnRoles) dataset.ColumnRoles {
	if roles.Amount == "" {
		roles.Amount = p.cfg.RevenueColumn
	}
	if roles.Customer == "" {
		roles.Customer = p.cfg.CustomerColumn
	}
	if roles.Timestamp == "" {
		roles.Timestamp = p.cfg.DateColumn
	}
	if roles.Category == "" {
		roles.Category = p.cfg.CategoryColumn
	}
	if roles.Region == "" {
		roles.Region = p.cfg.RegionColumn
	}
	if roles.Age == "" {
		roles.Age = p.cfg.AgeColumn
	}

	used := make(map[string]bool)
	for _, name := range []string{
		roles.Customer, roles.Timestamp, roles.Amount,
		roles.Category, roles.Region, roles.Age,
	} {
		if name != "" {
			used[name] = true
		}
	}
	bind := func(target *string, candidate string) {
		if *target == "" && candidate != "" {
			*target = candidate
			used[candidate] = true
		}
	}

	bind(&roles.Customer, pickCustomer(profile, rows, used))
	bind(&roles.Amount, pickAmount(profile, used))
	bind(&roles.Timestamp, firstUnused(profile.DateCandidates(), used))
	bind(&roles.Category, firstUnused(profile.CategoryCandidates(), used))
	bind(&roles.Region, firstUnused(profile.RegionCandidates(), used))
	bind(&roles.Age, firstUnused(profile.AgeCandidates(), used))
	return roles
}

// Words that name a customer column outright, as opposed to the bare "id"
// substring that also matches order and transaction ids.
var customerWords = []string{"customer", "client", "user"}

func pickCustomer(profile *schema.Profile, rows int, used map[string]bool) string {
	candidates := unused(profile.CustomerCandidates(), used)

	for _, perRowUnique := range []bool{false, true} {
		for _, word := range customerWords {
			for _, name := range candidates {
				if strings.Contains(strings.ToLower(name), word) && uniquePerRow(profile, name, rows) == perRowUnique {
					return name
				}
			}
		}
	}
	for _, name := range candidates {
		if !uniquePerRow(profile, name, rows) {
			return name
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func pickAmount(profile *schema.Profile, used map[string]bool) string {
	candidates := unused(profile.RevenueCandidates(), used)

	for _, word := range []string{"total", "amount", "revenue", "sales"} {
		for _, name := range candidates {
			if strings.Contains(strings.ToLower(name), word) {
				return name
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func uniquePerRow(profile *schema.Profile, name string, rows int) bool {
	cp, ok := profile.ByName(name)
	return ok && rows > 1 && cp.Distinct == rows
}

func unused(candidates []string, used map[string]bool) []string {
	var out []string
	for _, name := range candidates {
		if !used[name] {
			out = append(out, name)
		}
	}
	return out
}

func firstUnused(candidates []string, used map[string]bool) string {
	for _, name := range candidates {
		if !used[name] {
			return name
		}
	}
	return ""
}

func (p *Pipeline) forestConfig() mlearn.ForestConfig {
	cfg := mlearn.DefaultForestConfig(p.cfg.RandomSeed)
	if p.cfg.TreeCount > 0 {
		cfg.NumTrees = p.cfg.TreeCount
	}
	return cfg
}

func (p *Pipeline) forecastConfig() forecast.Config {
	return forecast.Config{
		Seed:          p.cfg.RandomSeed,
		TestFraction:  p.cfg.TestSplitFraction,
		Chronological: p.cfg.ForecastSplit == "chronological",
		Forest:        p.forestConfig(),
	}
}

func (p *Pipeline) classifyConfig() classify.Config {
	return classify.Config{
		Seed:         p.cfg.RandomSeed,
		TestFraction: p.cfg.TestSplitFraction,
		Forest:       p.forestConfig(),
	}
}

func (p *Pipeline) insightInputs(result *Result, txns *dataset.Transactions) insight.Inputs {
	in := insight.Inputs{
		Stats:          &result.Stats,
		Tables:         result.Tables,
		Customers:      result.Customers,
		Segments:       result.Segments,
		Forecast:       result.Models.Forecast,
		Classification: result.Models.Classification,
	}

	if txns.Len() > 0 {
		total := 0.0
		for _, amount := range txns.Amounts {
			total += amount
		}
		in.HasRevenue = true
		in.TotalRevenue = total
		in.AvgTransaction = total / float64(txns.Len())

		first, last := txns.Times[0], txns.Times[0]
		for _, ts := range txns.Times[1:] {
			if ts.Before(first) {
				first = ts
			}
			if ts.After(last) {
				last = ts
			}
		}
		in.HasDates = true
		in.FirstDate, in.LastDate = first, last
	}
	return in
}
