package fairness

import (
	"fmt"
	"iter"
	"math"
	"regexp"
	"slices"

	"biasdetect/domain/table"
)

// DefaultMissingThreshold is the missing-value fraction above which a column is flagged.
const DefaultMissingThreshold = 0.10

var emailPattern = regexp.MustCompile(`@\S+\.\S+`)

// Advisor produces data-quality recommendations for sensitive columns.
type Advisor struct {
	MissingThreshold float64 // default: DefaultMissingThreshold
}

// Recommend yields advisories for each named column, in column order.
// Unknown columns yield nothing. Each range re-evaluates the table.
func (a Advisor) Recommend(t *table.Table, sensitive []string) iter.Seq[string] {
	threshold := a.MissingThreshold
	if threshold == 0 {
		threshold = DefaultMissingThreshold
	}
	return func(yield func(string) bool) {
		for _, name := range sensitive {
			col, ok := t.Column(name)
			if !ok {
				continue
			}
			for _, msg := range columnAdvice(col, threshold) {
				if !yield(msg) {
					return
				}
			}
		}
	}
}

func columnAdvice(col *table.Column, threshold float64) []string {
	var out []string
	if col.DistinctCount() < 2 {
		out = append(out, fmt.Sprintf("Column %s has insufficient variation. Collect more diverse data.", col.Name()))
	}
	if col.MissingRate() > threshold {
		out = append(out, fmt.Sprintf("Column %s has >%g%% missing values. Consider imputing or removing.", col.Name(), math.Round(threshold*10000)/100))
	}
	if col.Kind() == table.KindCategorical && slices.ContainsFunc(col.Strings(), emailPattern.MatchString) {
		out = append(out, fmt.Sprintf("Column %s may contain emails. Remove for privacy.", col.Name()))
	}
	return out
}

// Recommend uses the default Advisor.
func Recommend(t *table.Table, sensitive []string) iter.Seq[string] {
	return Advisor{}.Recommend(t, sensitive)
}

// Recommendations collects Recommend into a slice.
func Recommendations(t *table.Table, sensitive []string) []string {
	return slices.Collect(Recommend(t, sensitive))
}
