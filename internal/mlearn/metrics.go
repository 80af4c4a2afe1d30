package mlearn

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// RMSE computes the root-mean-squared error between predictions and targets.
func RMSE(predicted, actual []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}

// Accuracy computes the share of exact label matches.
func Accuracy(predicted, actual []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	correct := 0
	for i := range predicted {
		if predicted[i] == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predicted))
}

// ClassMetrics holds per-class evaluation numbers.
type ClassMetrics struct {
	Label     float64 `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport computes precision/recall/F1 per class, ordered by
// label value. Reporting only; no training decision depends on it.
func ClassificationReport(predicted, actual []float64) []ClassMetrics {
	labels := map[float64]struct{}{}
	for _, v := range actual {
		labels[v] = struct{}{}
	}
	for _, v := range predicted {
		labels[v] = struct{}{}
	}
	ordered := make([]float64, 0, len(labels))
	for v := range labels {
		ordered = append(ordered, v)
	}
	sort.Float64s(ordered)

	report := make([]ClassMetrics, 0, len(ordered))
	for _, label := range ordered {
		var tp, fp, fn, support int
		for i := range actual {
			predIs := predicted[i] == label
			actualIs := actual[i] == label
			switch {
			case predIs && actualIs:
				tp++
			case predIs && !actualIs:
				fp++
			case !predIs && actualIs:
				fn++
			}
			if actualIs {
				support++
			}
		}

		m := ClassMetrics{Label: label, Support: support}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report = append(report, m)
	}
	return report
}

// FormatReport renders a classification report as aligned text lines.
func FormatReport(report []ClassMetrics) string {
	var b strings.Builder
	b.WriteString("label  precision  recall  f1      support\n")
	for _, m := range report {
		fmt.Fprintf(&b, "%-6.0f %-10.4f %-7.4f %-7.4f %d\n",
			m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	return b.String()
}
