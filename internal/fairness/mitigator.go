package fairness

import (
	"errors"
	"math"

	"biasdetect/domain/core"
	"biasdetect/domain/table"
	"biasdetect/internal"

	"gonum.org/v1/gonum/floats"
)

// WeightColumn is the column the mitigator adds or overwrites.
const WeightColumn = "weight"

// Strategy decides how several sensitive columns combine into one weight.
type Strategy string

const (
	// StrategyLastWins weights by each column in turn, each overwriting the
	// previous result, so only the last present column takes effect.
	StrategyLastWins Strategy = "last"
	// StrategyCombined multiplies the inverse group frequencies of every
	// present column and normalizes once.
	StrategyCombined Strategy = "combined"
)

// ParseStrategy maps "last" / "combined" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyLastWins:
		return StrategyLastWins, nil
	case StrategyCombined:
		return StrategyCombined, nil
	}
	return "", core.NewValidationError("strategy", core.ErrValidation,
		"unknown weighting strategy %q (want last or combined)", s)
}

// MitigatorConfig tunes a Mitigator.
type MitigatorConfig struct {
	Strategy Strategy // default: StrategyLastWins
	Logger   *internal.Logger
}

// Mitigator reweights rows so under-represented groups count more.
type Mitigator struct {
	config MitigatorConfig
	logger *internal.Logger
}

func NewMitigator(config MitigatorConfig) *Mitigator {
	if config.Strategy == "" {
		config.Strategy = StrategyLastWins
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Mitigator{config: config, logger: logger}
}

// Mitigate returns a copy of t with a normalized weight column. Each row is
// weighted by 1 / (size of its group); rows with a missing group value get a
// missing weight. Sensitive columns absent from t are skipped, and when none
// is present the copy carries no weight column.
func (m *Mitigator) Mitigate(t *table.Table, sensitive []string) (*table.Table, error) {
	out := t.Clone()

	var present []*table.Column
	for _, name := range sensitive {
		if col, ok := out.Column(name); ok {
			present = append(present, col)
		}
	}
	if len(present) == 0 {
		return out, nil
	}

	if m.config.Strategy == StrategyCombined {
		weights := make([]float64, out.Rows())
		floats.AddConst(1, weights)
		for _, col := range present {
			inv, err := inverseFrequencies(col)
			if err != nil {
				return nil, err
			}
			floats.Mul(weights, inv)
		}
		return withWeights(out, weights)
	}

	for _, col := range present {
		inv, err := inverseFrequencies(col)
		if err != nil {
			return nil, err
		}
		if out, err = withWeights(out, inv); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MitigateOrOriginal is Mitigate that logs any error and falls back to t.
func (m *Mitigator) MitigateOrOriginal(t *table.Table, sensitive []string) *table.Table {
	out, err := m.Mitigate(t, sensitive)
	if err != nil {
		m.logger.Error("Error mitigating bias: %v", err)
		return t
	}
	return out
}

// inverseFrequencies returns 1/count of each row's group, NaN for missing rows.
func inverseFrequencies(col *table.Column) ([]float64, error) {
	counts := make(map[string]int)
	for _, vc := range col.ValueCounts() {
		counts[vc.Value] = vc.Count
	}
	if len(counts) == 0 {
		return nil, core.NewValidationError(col.Name(), core.ErrMissingValues,
			"Column %s has no values to weight by.", col.Name())
	}
	inv := make([]float64, col.Len())
	for i := range inv {
		if col.IsNull(i) {
			inv[i] = math.NaN()
			continue
		}
		inv[i] = 1 / float64(counts[col.Label(i)])
	}
	return inv, nil
}

// withWeights normalizes w over its non-missing entries and stores it as the weight column.
func withWeights(t *table.Table, w []float64) (*table.Table, error) {
	var total float64
	for _, v := range w {
		if !math.IsNaN(v) {
			total += v
		}
	}
	if total == 0 || math.IsInf(total, 0) {
		return nil, core.NewComputationError("normalizing weights", errors.New("weights do not sum to a positive finite value"))
	}
	normalized := make([]float64, len(w))
	floats.ScaleTo(normalized, 1/total, w)
	return t.WithColumn(table.NewNumeric(WeightColumn, normalized, nil))
}
