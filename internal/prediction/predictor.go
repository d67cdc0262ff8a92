// Package prediction trains a baseline classifier on an audited dataset to
// show how well the target can be predicted from the remaining columns, and
// which columns the model leans on.
package prediction

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"biasdetect/domain/audit"
	"biasdetect/domain/core"
	"biasdetect/domain/table"
	"biasdetect/internal"
	"biasdetect/internal/fairness"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ModelName identifies the baseline in reports.
const ModelName = "logistic_regression"

const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
	DefaultEpochs       = 500
	DefaultLearningRate = 0.5
	DefaultL2           = 0.01

	minRows = 5
)

// Config tunes a Predictor. Zero values select the defaults.
type Config struct {
	TestFraction float64 // share of rows held out for scoring (default: 0.2)
	Seed         uint64  // split seed (default: 42)
	Epochs       int     // gradient descent passes (default: 500)
	LearningRate float64
	L2           float64 // ridge penalty on the coefficients
	Logger       *internal.Logger
}

// Predictor fits a logistic regression on standardized features.
type Predictor struct {
	config Config
	logger *internal.Logger
}

func NewPredictor(config Config) *Predictor {
	if config.TestFraction <= 0 || config.TestFraction >= 1 {
		config.TestFraction = DefaultTestFraction
	}
	if config.Seed == 0 {
		config.Seed = DefaultSeed
	}
	if config.Epochs <= 0 {
		config.Epochs = DefaultEpochs
	}
	if config.LearningRate <= 0 {
		config.LearningRate = DefaultLearningRate
	}
	if config.L2 <= 0 {
		config.L2 = DefaultL2
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Predictor{config: config, logger: logger}
}

// feature is one encoded input column, one value per labelled row.
type feature struct {
	name   string
	values []float64
}

// Predict trains on a seeded split of the rows whose target is present and
// scores accuracy on the held-out part. Categorical columns are label-encoded
// in sorted order; missing numeric values take the column mean.
func (p *Predictor) Predict(t *table.Table, target string) (*audit.Prediction, error) {
	tCol, ok := t.Column(target)
	if !ok {
		return nil, core.NewValidationError("target", core.ErrSchemaMismatch,
			"Target column %s not found in dataset.", target)
	}
	if !fairness.IsBinary(tCol) {
		return nil, core.NewValidationError(target, core.ErrNonBinaryTarget,
			"Target column %s must be binary (0 or 1) to train a classifier.", target)
	}

	var rows []int
	var y []float64
	for i := 0; i < tCol.Len(); i++ {
		if v, ok := tCol.Float(i); ok {
			rows = append(rows, i)
			y = append(y, v)
		}
	}
	if len(rows) < minRows {
		return nil, core.NewValidationError(target, core.ErrValidation,
			"At least %d labelled rows are needed to train a classifier.", minRows)
	}

	features := encodeFeatures(t, target, rows)
	if len(features) == 0 {
		return nil, core.NewValidationError(target, core.ErrValidation,
			"Dataset has no columns besides %s to predict from.", target)
	}

	train, test := p.split(len(rows))
	if !hasBothClasses(y, train) {
		return nil, core.NewValidationError(target, core.ErrInsufficientVariation,
			"Training split of %s contains a single outcome class.", target)
	}

	xTrain, xTest := standardize(features, train, test)
	yTrain := pick(y, train)
	weights, bias := p.fit(xTrain, yTrain)

	prediction := &audit.Prediction{
		Model:             ModelName,
		TargetColumn:      target,
		TrainRows:         len(train),
		TestRows:          len(test),
		Accuracy:          accuracy(xTest, pick(y, test), weights, bias),
		FeatureImportance: importances(features, weights),
	}
	p.logger.Debug("Trained %s on %d rows of %s: accuracy %.3f",
		ModelName, len(train), t.Name(), prediction.Accuracy)
	return prediction, nil
}

// split shuffles row positions with the configured seed and holds out the
// first ceil(n*TestFraction) of them, keeping at least one row on each side.
func (p *Predictor) split(n int) (train, test []int) {
	rng := rand.New(rand.NewPCG(p.config.Seed, p.config.Seed))
	perm := rng.Perm(n)
	nTest := int(math.Ceil(float64(n) * p.config.TestFraction))
	nTest = min(max(nTest, 1), n-1)
	return perm[nTest:], perm[:nTest]
}

// fit runs batch gradient descent on the ridge-penalized log loss.
func (p *Predictor) fit(x *mat.Dense, y []float64) (*mat.VecDense, float64) {
	n, d := x.Dims()
	weights := mat.NewVecDense(d, nil)
	residual := mat.NewVecDense(n, nil)
	var bias float64
	var z, grad mat.VecDense

	step := p.config.LearningRate / float64(n)
	for epoch := 0; epoch < p.config.Epochs; epoch++ {
		z.MulVec(x, weights)
		var sum float64
		for i := 0; i < n; i++ {
			r := sigmoid(z.AtVec(i)+bias) - y[i]
			residual.SetVec(i, r)
			sum += r
		}
		grad.MulVec(x.T(), residual)
		weights.AddScaledVec(weights, -p.config.LearningRate*p.config.L2, weights)
		weights.AddScaledVec(weights, -step, &grad)
		bias -= step * sum
	}
	return weights, bias
}

func accuracy(x *mat.Dense, y []float64, weights *mat.VecDense, bias float64) float64 {
	var z mat.VecDense
	z.MulVec(x, weights)
	correct := 0
	for i, want := range y {
		got := 0.0
		if sigmoid(z.AtVec(i)+bias) >= 0.5 {
			got = 1
		}
		if got == want {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

// importances normalizes absolute coefficients so they sum to 1.
func importances(features []feature, weights *mat.VecDense) []audit.FeatureImportance {
	abs := make([]float64, len(features))
	for j := range features {
		abs[j] = math.Abs(weights.AtVec(j))
	}
	if total := floats.Sum(abs); total > 0 {
		floats.Scale(1/total, abs)
	}

	out := make([]audit.FeatureImportance, len(features))
	for j, f := range features {
		out[j] = audit.FeatureImportance{Feature: f.name, Importance: abs[j]}
	}
	slices.SortStableFunc(out, func(a, b audit.FeatureImportance) int {
		return cmp.Compare(b.Importance, a.Importance)
	})
	return out
}

// encodeFeatures turns every column except target into floats over rows.
// Numeric columns with no finite values are left out.
func encodeFeatures(t *table.Table, target string, rows []int) []feature {
	var out []feature
	for _, col := range t.Columns() {
		if col.Name() == target {
			continue
		}
		if col.IsNumeric() {
			if values, ok := numericValues(col, rows); ok {
				out = append(out, feature{name: col.Name(), values: values})
			}
			continue
		}
		out = append(out, feature{name: col.Name(), values: labelCodes(col, rows)})
	}
	return out
}

// numericValues fills missing and non-finite values with the mean of the rest.
func numericValues(col *table.Column, rows []int) ([]float64, bool) {
	values := make([]float64, len(rows))
	filled := make([]bool, len(rows))
	var present []float64
	for k, i := range rows {
		if v, ok := col.Float(i); ok && !math.IsInf(v, 0) && !math.IsNaN(v) {
			values[k] = v
			filled[k] = true
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, false
	}
	mean := stat.Mean(present, nil)
	for k := range values {
		if !filled[k] {
			values[k] = mean
		}
	}
	return values, true
}

// labelCodes maps each distinct label, missing ("") included, to its index
// in sorted order.
func labelCodes(col *table.Column, rows []int) []float64 {
	var labels []string
	for _, i := range rows {
		labels = append(labels, col.Label(i))
	}
	distinct := slices.Compact(slices.Sorted(slices.Values(labels)))

	codes := make([]float64, len(rows))
	for k, label := range labels {
		idx, _ := slices.BinarySearch(distinct, label)
		codes[k] = float64(idx)
	}
	return codes
}

// standardize scales each feature by its training mean and deviation and
// returns the train and test design matrices. Constant features become 0.
func standardize(features []feature, train, test []int) (*mat.Dense, *mat.Dense) {
	xTrain := mat.NewDense(len(train), len(features), nil)
	xTest := mat.NewDense(len(test), len(features), nil)
	for j, f := range features {
		mean, std := stat.MeanStdDev(pick(f.values, train), nil)
		scale := 0.0
		if std > 0 && !math.IsNaN(std) {
			scale = 1 / std
		}
		for r, i := range train {
			xTrain.Set(r, j, (f.values[i]-mean)*scale)
		}
		for r, i := range test {
			xTest.Set(r, j, (f.values[i]-mean)*scale)
		}
	}
	return xTrain, xTest
}

func hasBothClasses(y []float64, idx []int) bool {
	var pos, neg bool
	for _, i := range idx {
		if y[i] == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	return pos && neg
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = values[i]
	}
	return out
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
