// Package audit holds the values produced by a fairness audit: per-column
// metrics, dataset profile and readiness summaries, and the report that
// bundles them for storage and transport.
package audit

import (
	"encoding/json"
	"fmt"

	"biasdetect/domain/core"
)

// ColumnSummary is the descriptive profile of one numeric column.
type ColumnSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
}

// CorrelationMatrix holds pairwise Pearson coefficients between numeric
// columns. Undefined coefficients (a constant column) are reported as 0.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Readiness is the ML-readiness verdict for a dataset.
type Readiness struct {
	Ready  bool     `json:"ready"`
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// FeatureImportance is the share of a baseline model's weight carried by one column.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Prediction summarizes a baseline classifier trained to predict the target
// from every other column. Importances sum to 1 and are sorted descending.
type Prediction struct {
	Model             string              `json:"model"`
	TargetColumn      string              `json:"target_column"`
	TrainRows         int                 `json:"train_rows"`
	TestRows          int                 `json:"test_rows"`
	Accuracy          float64             `json:"accuracy"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
}

// Report is the full result of one analysis request.
type Report struct {
	ID               core.ID         `json:"id"`
	DatasetName      string          `json:"dataset_name"`
	TargetColumn     string          `json:"target_column"`
	Rows             int             `json:"rows"`
	SensitiveColumns []string        `json:"sensitive_columns"`
	Outcomes         []ColumnOutcome `json:"outcomes"`
	BiasPercentage   float64         `json:"bias_percentage"`
	Recommendations  []string        `json:"recommendations"`

	PIIColumns             []string          `json:"pii_columns"`
	PrivacyRecommendations []string          `json:"privacy_recommendations"`
	CleaningNotes          []string          `json:"cleaning_notes,omitempty"`
	Readiness              Readiness         `json:"readiness"`
	Profile                []ColumnSummary   `json:"profile"`
	Correlation            CorrelationMatrix `json:"correlation"`

	// Prediction is set when a sample prediction was requested and succeeded.
	Prediction      *Prediction `json:"prediction,omitempty"`
	PredictionError string      `json:"prediction_error,omitempty"`

	CreatedAt core.Timestamp `json:"created_at"`
}

// Violations returns the outcomes that fail the four-fifths rule at threshold.
func (r *Report) Violations(threshold float64) []ColumnOutcome {
	var out []ColumnOutcome
	for _, o := range r.Outcomes {
		if o.OK() && o.Metrics.DisparateImpact < threshold {
			out = append(out, o)
		}
	}
	return out
}

// ReportRecord is the stored snapshot of a finished report.
type ReportRecord struct {
	ID             core.ID        `db:"id" json:"id"`
	DatasetName    string         `db:"dataset_name" json:"dataset_name"`
	TargetColumn   string         `db:"target_column" json:"target_column"`
	RowCount       int            `db:"row_count" json:"row_count"`
	BiasPercentage float64        `db:"bias_percentage" json:"bias_percentage"`
	Payload        []byte         `db:"payload" json:"-"`
	CreatedAt      core.Timestamp `db:"created_at" json:"created_at"`
}

// NewRecord snapshots a report for storage.
func NewRecord(r *Report) (ReportRecord, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return ReportRecord{}, fmt.Errorf("failed to encode report: %w", err)
	}
	return ReportRecord{
		ID:             r.ID,
		DatasetName:    r.DatasetName,
		TargetColumn:   r.TargetColumn,
		RowCount:       r.Rows,
		BiasPercentage: r.BiasPercentage,
		Payload:        payload,
		CreatedAt:      r.CreatedAt,
	}, nil
}

// Report decodes the stored payload.
func (rec ReportRecord) Report() (*Report, error) {
	var r Report
	if err := json.Unmarshal(rec.Payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", rec.ID, err)
	}
	return &r, nil
}
