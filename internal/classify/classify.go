// Package classify labels customers as high-value from a spending quantile
// threshold and fits a tree-ensemble classifier on per-customer features.
package classify

import (
	"math"
	"time"

	"insightlens/internal/dataset"
	apperrors "insightlens/internal/errors"
	"insightlens/internal/mlearn"
)

// HighValueQuantile is the spend quantile at or above which a customer is
// labeled high-value.
const HighValueQuantile = 0.8

// minSplitRows is the smallest acceptable size for either side of the
// train/test partition.
const minSplitRows = 10

// ModelKind identifies the persisted bundle.
const ModelKind = "high_value_customer"

// Config controls training.
type Config struct {
	Seed         int64
	TestFraction float64
	Forest       mlearn.ForestConfig
}

// DefaultConfig returns the standard training setup for the given seed.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:         seed,
		TestFraction: 0.2,
		Forest:       mlearn.DefaultForestConfig(seed),
	}
}

// Result bundles the fitted classifier with its held-out evaluation. Report
// carries per-class precision/recall for display; it does not feed back into
// any later stage.
type Result struct {
	Bundle      *mlearn.ModelBundle
	Accuracy    float64
	Importances map[string]float64
	Report      []mlearn.ClassMetrics
	Threshold   float64
	Features    []string
	TrainRows   int
	TestRows    int
}

// customerStats is the per-customer accumulator the feature matrix is built
// from, kept in first-appearance order.
type customerStats struct {
	id         string
	amounts    []float64
	categories map[string]struct{}
	age        float64
	region     string
	first      time.Time
	last       time.Time
}

// Train derives per-customer features, labels the top spenders by the 80th
// percentile threshold, and fits a classifier with a stratified split.
func Train(txns *dataset.Transactions, cfg Config) (*Result, error) {
	stats := collect(txns)

	spend := make([]float64, len(stats))
	for i, s := range stats {
		spend[i] = sum(s.amounts)
	}
	threshold := mlearn.Quantile(spend, HighValueQuantile)

	labels := make([]float64, len(stats))
	positives := 0
	for i, total := range spend {
		if total >= threshold {
			labels[i] = 1
			positives++
		}
	}
	if positives == 0 || positives == len(stats) {
		return nil, &apperrors.InsufficientDataError{
			Operation: "high-value classification",
			Need:      2,
			Got:       1,
			Detail:    "only one label class present in the data",
		}
	}

	names, X, regionEncoder := featureMatrix(txns, stats, spend)

	trainIdx, testIdx := mlearn.StratifiedSplitIndices(labels, cfg.TestFraction, cfg.Seed)
	if err := checkSplit(labels, trainIdx, testIdx); err != nil {
		return nil, err
	}

	XTrain := mlearn.Subset(X, trainIdx)
	XTest := mlearn.Subset(X, testIdx)
	yTrain := mlearn.SubsetVec(labels, trainIdx)
	yTest := mlearn.SubsetVec(labels, testIdx)

	var scaler mlearn.StandardScaler
	if err := scaler.Fit(XTrain, names, ModelKind); err != nil {
		return nil, err
	}
	XTrain = scaler.Transform(XTrain)
	XTest = scaler.Transform(XTest)

	forest, err := mlearn.TrainForest(XTrain, yTrain, true, cfg.Forest)
	if err != nil {
		return nil, err
	}

	predictions := forest.Predict(XTest)
	importances := make(map[string]float64, len(names))
	for j, name := range names {
		importances[name] = forest.Importances[j]
	}

	encoders := map[string]*mlearn.LabelEncoder{}
	if regionEncoder != nil {
		encoders["region"] = regionEncoder
	}

	return &Result{
		Bundle: &mlearn.ModelBundle{
			Kind:     ModelKind,
			Features: names,
			Scaler:   &scaler,
			Encoders: encoders,
			Forest:   forest,
		},
		Accuracy:    mlearn.Accuracy(predictions, yTest),
		Importances: importances,
		Report:      mlearn.ClassificationReport(predictions, yTest),
		Threshold:   threshold,
		Features:    names,
		TrainRows:   len(trainIdx),
		TestRows:    len(testIdx),
	}, nil
}

// Labels exposes the threshold and per-customer high-value labels in
// first-appearance customer order, without training anything.
func Labels(txns *dataset.Transactions) (threshold float64, labels []float64) {
	stats := collect(txns)
	spend := make([]float64, len(stats))
	for i, s := range stats {
		spend[i] = sum(s.amounts)
	}
	threshold = mlearn.Quantile(spend, HighValueQuantile)
	labels = make([]float64, len(stats))
	for i, total := range spend {
		if total >= threshold {
			labels[i] = 1
		}
	}
	return threshold, labels
}

func collect(txns *dataset.Transactions) []*customerStats {
	index := map[string]int{}
	var stats []*customerStats
	for i, customer := range txns.Customers {
		pos, ok := index[customer]
		if !ok {
			pos = len(stats)
			index[customer] = pos
			s := &customerStats{
				id:         customer,
				categories: map[string]struct{}{},
				age:        math.NaN(),
				first:      txns.Times[i],
				last:       txns.Times[i],
			}
			if txns.HasAges() {
				s.age = txns.Ages[i]
			}
			if txns.HasRegions() {
				s.region = txns.Regions[i]
			}
			stats = append(stats, s)
		}

		s := stats[pos]
		s.amounts = append(s.amounts, txns.Amounts[i])
		if txns.HasCategories() {
			s.categories[txns.Categories[i]] = struct{}{}
		}
		if ts := txns.Times[i]; ts.Before(s.first) {
			s.first = ts
		} else if ts.After(s.last) {
			s.last = ts
		}
	}
	return stats
}

// featureMatrix builds the per-customer design matrix. spending_std is the
// sample standard deviation, forced to 0 for single-transaction customers.
// Diversity, age and region enter only when their column is bound; without a
// category column diversity is 1 for everyone and would be a constant.
func featureMatrix(txns *dataset.Transactions, stats []*customerStats, spend []float64) ([]string, [][]float64, *mlearn.LabelEncoder) {
	names := []string{
		"total_spent", "avg_order_value", "spending_std",
		"transaction_count",
	}
	if txns.HasCategories() {
		names = append(names, "category_diversity")
	}
	if txns.HasAges() {
		names = append(names, "age")
	}

	var regionEncoder *mlearn.LabelEncoder
	var regionCodes []float64
	if txns.HasRegions() {
		regions := make([]string, len(stats))
		for i, s := range stats {
			regions[i] = s.region
		}
		regionEncoder = &mlearn.LabelEncoder{}
		regionCodes = regionEncoder.FitTransform(regions)
		names = append(names, "region_encoded")
	}
	names = append(names, "customer_lifetime_days")

	X := make([][]float64, len(stats))
	for i, s := range stats {
		row := []float64{
			spend[i],
			spend[i] / float64(len(s.amounts)),
			mlearn.SampleStdDev(s.amounts),
			float64(len(s.amounts)),
		}
		if txns.HasCategories() {
			row = append(row, float64(len(s.categories)))
		}
		if txns.HasAges() {
			row = append(row, s.age)
		}
		if regionCodes != nil {
			row = append(row, regionCodes[i])
		}
		row = append(row, math.Floor(s.last.Sub(s.first).Hours()/24))
		X[i] = row
	}

	mlearn.ImputeZero(X)
	return names, X, regionEncoder
}

// checkSplit verifies both partitions are big enough and carry both classes.
func checkSplit(labels []float64, trainIdx, testIdx []int) error {
	for _, part := range []struct {
		name    string
		indices []int
	}{
		{"train", trainIdx},
		{"test", testIdx},
	} {
		if len(part.indices) < minSplitRows {
			return &apperrors.InsufficientDataError{
				Operation: "high-value classification",
				Need:      minSplitRows,
				Got:       len(part.indices),
				Detail:    part.name + " split too small",
			}
		}
		classes := map[float64]struct{}{}
		for _, i := range part.indices {
			classes[labels[i]] = struct{}{}
		}
		if len(classes) < 2 {
			return &apperrors.InsufficientDataError{
				Operation: "high-value classification",
				Need:      2,
				Got:       len(classes),
				Detail:    part.name + " split is missing a label class",
			}
		}
	}
	return nil
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
