package fairness

import (
	"errors"
	"fmt"
	"sort"

	"biasdetect/domain/audit"
	"biasdetect/domain/core"
	"biasdetect/domain/table"
	"biasdetect/internal"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CalculatorConfig tunes a Calculator. Zero values select the defaults.
type CalculatorConfig struct {
	Bins                int     // groups for numeric sensitive columns (default: 5)
	DisparateImpactRule float64 // four-fifths threshold (default: 0.8)
	Logger              *internal.Logger
}

// Calculator computes fairness metrics for sensitive/target column pairs.
type Calculator struct {
	config CalculatorConfig
	logger *internal.Logger
}

func NewCalculator(config CalculatorConfig) *Calculator {
	if config.Bins == 0 {
		config.Bins = DefaultBucketCount
	}
	if config.DisparateImpactRule == 0 {
		config.DisparateImpactRule = audit.FourFifthsThreshold
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Calculator{config: config, logger: logger}
}

// Compute validates the pair and returns its metrics. Numeric sensitive
// columns are binned first. Every failed precondition is a validation error;
// the metrics value is empty whenever err is non-nil.
func (c *Calculator) Compute(t *table.Table, sensitive, target string) (audit.FairnessMetrics, error) {
	sCol, okS := t.Column(sensitive)
	tCol, okT := t.Column(target)
	if !okS || !okT {
		return audit.FairnessMetrics{}, core.NewValidationError(sensitive, core.ErrValidation,
			"Columns %s or %s not found in dataset.", sensitive, target)
	}

	binned := NeedsBinning(sCol)
	groups, err := Bin(sCol, c.config.Bins)
	if err != nil {
		return audit.FairnessMetrics{}, err
	}

	if groups.DistinctCount() < 2 {
		return audit.FairnessMetrics{}, core.NewValidationError(sensitive, core.ErrInsufficientVariation,
			"Sensitive column %s has insufficient variation (needs at least 2 unique values).", sensitive)
	}
	if tCol.DistinctCount() < 2 {
		return audit.FairnessMetrics{}, core.NewValidationError(target, core.ErrInsufficientVariation,
			"Target column %s has insufficient variation (needs at least 2 unique values).", target)
	}
	if groups.HasNulls() || tCol.HasNulls() {
		return audit.FairnessMetrics{}, core.NewValidationError(sensitive, core.ErrMissingValues,
			"Columns %s and/or %s contain missing values.", sensitive, target)
	}
	if !IsBinary(tCol) {
		return audit.FairnessMetrics{}, core.NewValidationError(target, core.ErrNonBinaryTarget,
			"Target column %s must be binary (0 or 1) for fairness metrics.", target)
	}

	summary := groupStats(groups, tCol, binned)
	rates := make([]float64, len(summary))
	byGroup := make(map[string]float64, len(summary))
	for i, g := range summary {
		rates[i] = g.SelectionRate
		byGroup[g.Group] = g.SelectionRate
	}

	hi := floats.Max(rates)
	if hi == 0 {
		return audit.FairnessMetrics{}, core.NewComputationError("disparate impact",
			errors.New("every group has a zero selection rate"))
	}
	di := floats.Min(rates) / hi

	return audit.FairnessMetrics{
		SensitiveColumn:      sensitive,
		TargetColumn:         target,
		DisparateImpact:      di,
		EqualizedOddsRatio:   equalizedOdds(summary),
		SelectionRateByGroup: byGroup,
		Groups:               summary,
		FourFifthsViolation:  di < c.config.DisparateImpactRule,
		Binned:               binned,
	}, nil
}

// ComputeAll runs Compute for every sensitive column. It never fails: each
// column yields a tagged outcome and failures are logged at WARN.
func (c *Calculator) ComputeAll(t *table.Table, sensitive []string, target string) []audit.ColumnOutcome {
	outcomes := make([]audit.ColumnOutcome, 0, len(sensitive))
	for _, col := range sensitive {
		m, err := c.computeSafe(t, col, target)
		if err != nil {
			c.logger.Warn("Error calculating fairness metrics for %s: %v", col, err)
		} else {
			c.logger.Debug("fairness metrics for %s: disparate impact %.4f over %d groups", col, m.DisparateImpact, len(m.Groups))
		}
		outcomes = append(outcomes, audit.NewOutcome(col, m, err))
	}
	return outcomes
}

func (c *Calculator) computeSafe(t *table.Table, sensitive, target string) (m audit.FairnessMetrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = audit.FairnessMetrics{}
			err = core.NewComputationError("fairness metrics for "+sensitive, fmt.Errorf("unexpected error: %v", r))
		}
	}()
	return c.Compute(t, sensitive, target)
}

// groupStats aggregates the target per group. Binned groups keep bin order,
// other groups are sorted by label.
func groupStats(groups, target *table.Column, binned bool) []audit.GroupStat {
	outcomes := make(map[string][]float64)
	for i := 0; i < groups.Len(); i++ {
		y, _ := target.Float(i)
		label := groups.Label(i)
		outcomes[label] = append(outcomes[label], y)
	}

	labels := make([]string, 0, len(outcomes))
	for label := range outcomes {
		labels = append(labels, label)
	}
	if binned {
		sort.Slice(labels, func(a, b int) bool { return binIndex(labels[a]) < binIndex(labels[b]) })
	} else {
		sort.Strings(labels)
	}

	out := make([]audit.GroupStat, len(labels))
	for i, label := range labels {
		ys := outcomes[label]
		out[i] = audit.GroupStat{
			Group:         label,
			Count:         len(ys),
			Positives:     int(floats.Sum(ys)),
			SelectionRate: stat.Mean(ys, nil),
		}
	}
	return out
}

// equalizedOdds evaluates the ratio with predictions equal to the outcome.
// The true positive rate is 1 for a group with positives and 0 otherwise;
// the false positive rate is 0 everywhere, which counts as parity.
func equalizedOdds(groups []audit.GroupStat) float64 {
	tpr := make([]float64, len(groups))
	fpr := make([]float64, len(groups))
	for i, g := range groups {
		if g.Positives > 0 {
			tpr[i] = 1
		}
	}
	return min(parityRatio(tpr), parityRatio(fpr))
}

// parityRatio is min/max, with an all-zero vector counting as parity.
func parityRatio(v []float64) float64 {
	hi := floats.Max(v)
	if hi == 0 {
		return 1
	}
	return floats.Min(v) / hi
}
