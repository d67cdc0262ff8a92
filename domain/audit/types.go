package audit

import (
	"math"

	"biasdetect/domain/core"
)

// FourFifthsThreshold is the disparate-impact level below which a column is
// flagged under the four-fifths rule.
const FourFifthsThreshold = 0.8

// GroupStat is the outcome summary for one group of a sensitive column.
type GroupStat struct {
	Group         string  `json:"group"`
	Count         int     `json:"count"`
	Positives     int     `json:"positives"`
	SelectionRate float64 `json:"selection_rate"`
}

// FairnessMetrics is the result of one sensitive/target column pair.
type FairnessMetrics struct {
	SensitiveColumn string `json:"sensitive_column"`
	TargetColumn    string `json:"target_column"`

	// DisparateImpact is the smallest group selection rate divided by the largest.
	DisparateImpact float64 `json:"disparate_impact"`

	// EqualizedOddsRatio is computed with predictions equal to the observed
	// outcome, so per-group false positive rates are always 0 and the ratio
	// collapses to 1 when every group has positives and 0 otherwise. It is
	// reported for compatibility and carries no model information.
	EqualizedOddsRatio float64 `json:"equalized_odds_ratio"`

	SelectionRateByGroup map[string]float64 `json:"selection_rate_by_group"`
	Groups               []GroupStat        `json:"groups"`
	FourFifthsViolation  bool               `json:"four_fifths_violation"`

	// Binned is true when the sensitive column was discretized first.
	Binned bool `json:"binned"`
}

// IsEmpty reports whether m is the zero value returned alongside an error.
func (m FairnessMetrics) IsEmpty() bool {
	return m.SelectionRateByGroup == nil
}

// BiasScore is |1 - DisparateImpact| expressed as a percentage.
func (m FairnessMetrics) BiasScore() float64 {
	return BiasScore(m.DisparateImpact)
}

// BiasScore converts a disparate-impact ratio into a 0-100 bias score.
func BiasScore(disparateImpact float64) float64 {
	return math.Abs(1-disparateImpact) * 100
}

// OutcomeStatus tags a per-column analysis result.
type OutcomeStatus string

const (
	StatusOK      OutcomeStatus = "ok"
	StatusSkipped OutcomeStatus = "skipped" // precondition not met
	StatusFailed  OutcomeStatus = "failed"  // computation error
)

// ColumnOutcome is either a metrics value or the reason there is none.
type ColumnOutcome struct {
	Column  string          `json:"column"`
	Status  OutcomeStatus   `json:"status"`
	Metrics FairnessMetrics `json:"metrics"`
	Message string          `json:"message,omitempty"`
	Err     error           `json:"-"`
}

// OK reports whether the outcome carries metrics.
func (o ColumnOutcome) OK() bool {
	return o.Status == StatusOK
}

// NewOutcome tags a Compute result.
func NewOutcome(column string, m FairnessMetrics, err error) ColumnOutcome {
	if err == nil {
		return ColumnOutcome{Column: column, Status: StatusOK, Metrics: m}
	}
	status := StatusFailed
	if core.IsValidationError(err) {
		status = StatusSkipped
	}
	return ColumnOutcome{Column: column, Status: status, Message: err.Error(), Err: err}
}

// BiasPercentage is the mean bias score over the successful outcomes, 0 when none succeeded.
func BiasPercentage(outcomes []ColumnOutcome) float64 {
	var sum float64
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		sum += o.Metrics.BiasScore()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
