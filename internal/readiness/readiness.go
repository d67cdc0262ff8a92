// Package readiness scores whether a dataset is fit for model training.
package readiness

import (
	"fmt"

	"biasdetect/domain/audit"
	"biasdetect/domain/table"

	"github.com/montanaflynn/stats"
)

const (
	ReadyScore       = 80
	maxMissingRatio  = 0.10
	minGroupShare    = 0.10
	minRows          = 100
	minVariance      = 1e-6
	missingPenalty   = 20
	imbalancePenalty = 15
	smallPenalty     = 10
	variancePenalty  = 10
)

// Check scores t starting from 100 and deducting for each detected issue.
func Check(t *table.Table, sensitive []string) audit.Readiness {
	score := 100
	issues := []string{}

	if t.MissingRatio() > maxMissingRatio {
		score -= missingPenalty
		issues = append(issues, "High missing value ratio (>10%)")
	}

	for _, name := range sensitive {
		col, ok := t.Column(name)
		if !ok || col.DistinctCount() < 2 {
			continue
		}
		if smallestShare(col) < minGroupShare {
			score -= imbalancePenalty
			issues = append(issues, fmt.Sprintf("Imbalanced data in %s (min group < 10%%)", name))
		}
	}

	if t.Rows() < minRows {
		score -= smallPenalty
		issues = append(issues, "Dataset too small (<100 rows)")
	}

	if lowVariance(t) {
		score -= variancePenalty
		issues = append(issues, "Low variance in some numerical columns")
	}

	return audit.Readiness{Ready: score >= ReadyScore, Score: score, Issues: issues}
}

// smallestShare is the smallest group's fraction of the non-missing rows.
func smallestShare(col *table.Column) float64 {
	counts := col.ValueCounts()
	total := 0
	smallest := counts[0].Count
	for _, vc := range counts {
		total += vc.Count
		smallest = min(smallest, vc.Count)
	}
	return float64(smallest) / float64(total)
}

func lowVariance(t *table.Table) bool {
	for _, col := range t.Columns() {
		if col.Kind() != table.KindNumeric {
			continue
		}
		data := col.Floats()
		if len(data) < 2 {
			continue
		}
		v, err := stats.SampleVariance(data)
		if err == nil && v < minVariance {
			return true
		}
	}
	return false
}
