package app

import (
	"context"
	"fmt"
	"slices"

	"biasdetect/domain/audit"
	"biasdetect/domain/core"
	"biasdetect/domain/table"
	"biasdetect/internal"
	"biasdetect/internal/dataset"
	"biasdetect/internal/errors"
	"biasdetect/internal/fairness"
	"biasdetect/internal/prediction"
	"biasdetect/internal/privacy"
	"biasdetect/internal/profiling"
	"biasdetect/internal/readiness"
	"biasdetect/ports"
)

// ErrHistoryDisabled is returned by history lookups when no repository is configured.
var ErrHistoryDisabled = errors.New(errors.CodeNotFound, "audit history is not configured")

// AuditConfig holds the analysis defaults. Zero values select the package defaults.
type AuditConfig struct {
	Bins                int
	DisparateImpactRule float64
	MissingThreshold    float64
	Logger              *internal.Logger
}

// AuditService runs fairness audits on sessions and keeps their history
type AuditService struct {
	config    AuditConfig
	reports   ports.ReportRepository // optional
	predictor *prediction.Predictor
	logger    *internal.Logger
}

// AnalyzeRequest defines the inputs of one analysis
type AnalyzeRequest struct {
	TargetColumn string
	// SensitiveColumns are detected from column names when empty.
	SensitiveColumns []string
	// Bins overrides the configured bucket count for numeric sensitive columns.
	Bins  int
	Clean bool
	// Predict trains a baseline classifier on the target and adds it to the report.
	Predict bool
}

// NewAuditService creates an audit service. reports may be nil.
func NewAuditService(config AuditConfig, reports ports.ReportRepository) *AuditService {
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AuditService{
		config:    config,
		reports:   reports,
		predictor: prediction.NewPredictor(prediction.Config{Logger: logger}),
		logger:    logger,
	}
}

// HistoryEnabled reports whether finished reports are stored.
func (s *AuditService) HistoryEnabled() bool {
	return s.reports != nil
}

// Analyze audits the session's dataset and records the report on the session.
// Per-column failures are part of the report; only unusable input is an error.
func (s *AuditService) Analyze(ctx context.Context, session *Session, req AnalyzeRequest) (*audit.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if session == nil || session.Dataset == nil {
		return nil, errors.InvalidInput("no dataset loaded")
	}
	if req.TargetColumn == "" {
		return nil, core.NewValidationError("target", core.ErrValidation, "Target column is required.")
	}
	if !session.Dataset.Has(req.TargetColumn) {
		return nil, core.NewValidationError("target", core.ErrSchemaMismatch,
			"Target column %s not found in dataset.", req.TargetColumn)
	}

	t := session.Dataset
	var notes []string
	if req.Clean {
		t, notes = dataset.Clean(t)
		session.Dataset = t
	}

	sensitive := req.SensitiveColumns
	if len(sensitive) == 0 {
		sensitive = dataset.DetectSensitiveColumns(t)
	}
	sensitive = slices.DeleteFunc(slices.Clone(sensitive), func(name string) bool {
		return name == req.TargetColumn
	})

	bins := req.Bins
	if bins == 0 {
		bins = s.config.Bins
	}
	calculator := fairness.NewCalculator(fairness.CalculatorConfig{
		Bins:                bins,
		DisparateImpactRule: s.config.DisparateImpactRule,
		Logger:              s.logger,
	})
	advisor := fairness.Advisor{MissingThreshold: s.config.MissingThreshold}

	outcomes := calculator.ComputeAll(t, sensitive, req.TargetColumn)
	pii := privacy.DetectPII(t)

	report := &audit.Report{
		ID:                     core.NewID(),
		DatasetName:            t.Name(),
		TargetColumn:           req.TargetColumn,
		Rows:                   t.Rows(),
		SensitiveColumns:       sensitive,
		Outcomes:               outcomes,
		BiasPercentage:         audit.BiasPercentage(outcomes),
		Recommendations:        slices.Collect(advisor.Recommend(t, sensitive)),
		PIIColumns:             pii,
		PrivacyRecommendations: privacy.Recommendations(pii),
		CleaningNotes:          notes,
		Readiness:              readiness.Check(t, sensitive),
		Profile:                profiling.Profile(t),
		Correlation:            profiling.CorrelationMatrix(t),
		CreatedAt:              core.Now(),
	}

	if req.Predict {
		predicted, err := s.predictor.Predict(t, req.TargetColumn)
		if err != nil {
			s.logger.Warn("Sample prediction on %s failed: %v", report.DatasetName, err)
			report.PredictionError = err.Error()
		} else {
			report.Prediction = predicted
		}
	}

	s.logger.Info("Analyzed %s: %d rows, %d sensitive columns, bias %.1f%%",
		report.DatasetName, report.Rows, len(sensitive), report.BiasPercentage)

	if s.reports != nil {
		if err := s.saveReport(ctx, report); err != nil {
			s.logger.Warn("Failed to store report %s: %v", report.ID, err)
		}
	}

	session.TargetColumn = req.TargetColumn
	session.SensitiveColumns = sensitive
	session.Report = report
	return report, nil
}

func (s *AuditService) saveReport(ctx context.Context, report *audit.Report) error {
	rec, err := audit.NewRecord(report)
	if err != nil {
		return errors.InternalError("failed to snapshot report").WithCause(err)
	}
	return s.reports.Save(ctx, rec)
}

// Mitigate reweights the session's dataset by its sensitive columns and makes
// the result the working table. Columns are detected when the session has none.
func (s *AuditService) Mitigate(session *Session, strategy fairness.Strategy) (*table.Table, error) {
	if session == nil || session.Dataset == nil {
		return nil, errors.InvalidInput("no dataset loaded")
	}
	sensitive := session.SensitiveColumns
	if len(sensitive) == 0 {
		sensitive = dataset.DetectSensitiveColumns(session.Dataset)
	}
	if len(sensitive) == 0 {
		return nil, core.NewValidationError("sensitive", core.ErrValidation,
			"No sensitive columns to mitigate.")
	}

	present := slices.DeleteFunc(slices.Clone(sensitive), func(name string) bool {
		return !session.Dataset.Has(name)
	})

	mitigator := fairness.NewMitigator(fairness.MitigatorConfig{Strategy: strategy, Logger: s.logger})
	out := mitigator.MitigateOrOriginal(session.Dataset, sensitive)

	session.WeightedBy = nil
	if len(present) > 0 && out != session.Dataset {
		session.WeightedBy = present
	} else {
		s.logger.Warn("No weight column added: none of %v could be weighted", sensitive)
	}
	session.Dataset = out
	session.SensitiveColumns = sensitive
	return out, nil
}

// ListReports returns stored report summaries, newest first.
func (s *AuditService) ListReports(ctx context.Context, limit, offset int) ([]audit.ReportRecord, error) {
	if s.reports == nil {
		return nil, ErrHistoryDisabled
	}
	return s.reports.List(ctx, limit, offset)
}

// GetReport loads and decodes a stored report.
func (s *AuditService) GetReport(ctx context.Context, id core.ID) (*audit.Report, error) {
	if s.reports == nil {
		return nil, ErrHistoryDisabled
	}
	rec, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to load report %s", id))
	}
	report, err := rec.Report()
	if err != nil {
		return nil, errors.InternalError("stored report is unreadable").WithCause(err)
	}
	return report, nil
}
