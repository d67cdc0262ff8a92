// Package hiring generates a synthetic, deliberately imbalanced hiring dataset
// for demos and end-to-end tests of the fairness audit.
package hiring

import (
	"fmt"
	"math"
	"math/rand/v2"

	"biasdetect/domain/table"

	"gonum.org/v1/gonum/stat/distuv"
)

// Column names of the generated dataset.
const (
	ColName           = "name"
	ColEmail          = "email"
	ColPhone          = "phone"
	ColAge            = "Age"
	ColGender         = "Gender"
	ColRace           = "Race"
	ColDepartment     = "Department"
	ColDailyRate      = "DailyRate"
	ColMonthlyIncome  = "MonthlyIncome"
	ColYearsAtCompany = "YearsAtCompany"
	ColShortlisted    = "shortlisted"
)

type Config struct {
	Rows int
	Seed int64

	// Share of DailyRate and MonthlyIncome cells blanked out.
	MissingFraction float64
	// Probability of a row being shortlisted.
	ShortlistRate float64
}

func DefaultConfig() Config {
	return Config{
		Rows:            1000,
		Seed:            42,
		MissingFraction: 0.05,
		ShortlistRate:   0.3,
	}
}

type weighted struct {
	values  []string
	weights []float64
}

var (
	genders     = weighted{[]string{"Male", "Female", "Other"}, []float64{0.5, 0.4, 0.1}}
	races       = weighted{[]string{"White", "Black", "Asian", "Hispanic", "Other"}, []float64{0.4, 0.2, 0.2, 0.15, 0.05}}
	departments = weighted{[]string{"IT", "HR", "Sales", "Marketing"}, []float64{1, 1, 1, 1}}
)

// Generate builds the dataset. The same Config always yields the same table.
func Generate(cfg Config) (*table.Table, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	if cfg.MissingFraction < 0 || cfg.MissingFraction > 1 {
		return nil, fmt.Errorf("missing fraction must be within [0, 1]")
	}
	if cfg.ShortlistRate < 0 || cfg.ShortlistRate > 1 {
		return nil, fmt.Errorf("shortlist rate must be within [0, 1]")
	}

	src := rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed))
	rng := rand.New(src)
	n := cfg.Rows

	genderDist := genders.distribution(src)
	raceDist := races.distribution(src)
	deptDist := departments.distribution(src)
	dailyDist := distuv.Normal{Mu: 1000, Sigma: 200, Src: src}
	monthlyDist := distuv.Normal{Mu: 6000, Sigma: 1500, Src: src}
	shortlistDist := distuv.Bernoulli{P: cfg.ShortlistRate, Src: src}

	names := make([]string, n)
	emails := make([]string, n)
	phones := make([]string, n)
	ages := make([]string, n)
	gender := make([]string, n)
	race := make([]string, n)
	dept := make([]string, n)
	daily := make([]float64, n)
	monthly := make([]float64, n)
	years := make([]float64, n)
	shortlisted := make([]float64, n)

	for i := 0; i < n; i++ {
		names[i] = fmt.Sprintf("Person_%d", i)
		emails[i] = fmt.Sprintf("person%d@example.com", i)
		phones[i] = fmt.Sprintf("555-555-%04d", i%10000)
		ages[i] = ageBand(20 + rng.IntN(40))
		gender[i] = genders.value(genderDist)
		race[i] = races.value(raceDist)
		dept[i] = departments.value(deptDist)
		daily[i] = math.Trunc(dailyDist.Rand())
		monthly[i] = math.Trunc(monthlyDist.Rand())
		years[i] = float64(rng.IntN(20))
		shortlisted[i] = shortlistDist.Rand()
	}

	missing := int(cfg.MissingFraction * float64(n))
	dailyNull := blankRows(rng, n, missing)
	monthlyNull := blankRows(rng, n, missing)

	return table.New(
		table.NewCategorical(ColName, names, nil),
		table.NewCategorical(ColEmail, emails, nil),
		table.NewCategorical(ColPhone, phones, nil),
		table.NewCategorical(ColAge, ages, nil),
		table.NewCategorical(ColGender, gender, nil),
		table.NewCategorical(ColRace, race, nil),
		table.NewCategorical(ColDepartment, dept, nil),
		table.NewNumeric(ColDailyRate, daily, dailyNull),
		table.NewNumeric(ColMonthlyIncome, monthly, monthlyNull),
		table.NewNumeric(ColYearsAtCompany, years, nil),
		table.NewNumeric(ColShortlisted, shortlisted, nil),
	)
}

// ageBand maps an age onto the 20-30 / 31-40 / 41-50 / 51-60 bands.
func ageBand(age int) string {
	switch {
	case age <= 30:
		return "20-30"
	case age <= 40:
		return "31-40"
	case age <= 50:
		return "41-50"
	default:
		return "51-60"
	}
}

func (w weighted) distribution(src rand.Source) distuv.Categorical {
	return distuv.NewCategorical(w.weights, src)
}

func (w weighted) value(d distuv.Categorical) string {
	return w.values[int(d.Rand())]
}

// blankRows marks k distinct random rows.
func blankRows(rng *rand.Rand, n, k int) []bool {
	null := make([]bool, n)
	for _, i := range rng.Perm(n)[:k] {
		null[i] = true
	}
	return null
}
