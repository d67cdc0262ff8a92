package profiling

import (
	"math"

	"biasdetect/domain/audit"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// SummarizeColumn computes the descriptive profile of a numeric sample.
func SummarizeColumn(name string, data []float64) (audit.ColumnSummary, error) {
	summary := audit.ColumnSummary{Column: name, Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}

	stdDev, err := stats.StandardDeviationSample(data)
	if err != nil {
		return summary, err
	}
	if math.IsNaN(stdDev) {
		stdDev = 0
	}

	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return summary, err
	}

	// Quartiles for IQR-based outlier detection
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return summary, err
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return summary, err
	}

	summary.Mean = mean
	summary.Std = stdDev
	summary.Min = min
	summary.Max = max
	summary.Median = median
	summary.Q25 = q25
	summary.Q75 = q75
	summary.Skewness = calculateSkewness(data, stdDev)
	summary.Kurtosis = calculateKurtosis(data, stdDev)
	summary.Outliers = detectOutliers(data, q25, q75)

	return summary, nil
}

// calculateSkewness is the adjusted Fisher-Pearson sample skewness
func calculateSkewness(data []float64, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	return stat.Skew(data, nil)
}

// calculateKurtosis is the bias-corrected sample excess kurtosis
func calculateKurtosis(data []float64, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}
	return stat.ExKurtosis(data, nil)
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
