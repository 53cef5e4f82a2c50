package score

import (
	"fmt"
	"math"
	"strings"
)

// ModelVersion is the current scoring model version.
const ModelVersion = "1.0.0"

// Feature identifies one input of the propensity model.
type Feature int

const (
	Age Feature = iota
	AnnualIncome
	Expenses
	CreditScore
	WebsiteVisits
	ActivePolicies
	MaturedPolicies
	EmailResponseRate
	AppInteractions
	FeedbackScore

	featureCount
)

// Range is the normalization domain of a feature.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// FeatureSpec describes a feature together with its range and weight.
type FeatureSpec struct {
	Name   string  `json:"name" yaml:"name"`
	Range  Range   `json:"range" yaml:"range"`
	Weight float64 `json:"weight" yaml:"weight"`
	Scaled bool    `json:"scaled" yaml:"scaled"`
}

var (
	featureNames = [featureCount]string{
		Age:               "age",
		AnnualIncome:      "annualIncome",
		Expenses:          "expenses",
		CreditScore:       "creditScore",
		WebsiteVisits:     "websiteVisits",
		ActivePolicies:    "activePolicies",
		MaturedPolicies:   "maturedPolicies",
		EmailResponseRate: "emailResponseRate",
		AppInteractions:   "appInteractions",
		FeedbackScore:     "feedbackScore",
	}

	// emailResponseRate keeps its 0-1 entry but is never rescaled.
	featureRanges = [featureCount]Range{
		Age:               {Min: 22, Max: 65},
		AnnualIncome:      {Min: 200000, Max: 2000000},
		Expenses:          {Min: 50000, Max: 1500000},
		CreditScore:       {Min: 300, Max: 900},
		WebsiteVisits:     {Min: 0, Max: 50},
		ActivePolicies:    {Min: 0, Max: 5},
		MaturedPolicies:   {Min: 0, Max: 3},
		EmailResponseRate: {Min: 0, Max: 1},
		AppInteractions:   {Min: 0, Max: 100},
		FeedbackScore:     {Min: 1, Max: 10},
	}

	featureWeights = [featureCount]float64{
		Age:               0.08,
		AnnualIncome:      0.15,
		Expenses:          0.10,
		CreditScore:       0.12,
		WebsiteVisits:     0.08,
		ActivePolicies:    0.12,
		MaturedPolicies:   0.10,
		EmailResponseRate: 0.10,
		AppInteractions:   0.08,
		FeedbackScore:     0.07,
	}
)

const weightSumTolerance = 1e-9

// String returns the feature's record field name.
func (f Feature) String() string {
	if f < 0 || f >= featureCount {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// Scaled reports whether the feature is min-max normalized.
func (f Feature) Scaled() bool {
	return f != EmailResponseRate
}

// Integral reports whether the feature is a whole-number count in Customer.
func (f Feature) Integral() bool {
	switch f {
	case AnnualIncome, Expenses, EmailResponseRate:
		return false
	default:
		return f >= 0 && f < featureCount
	}
}

// Features returns all model features in scoring order.
func Features() []Feature {
	list := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		list = append(list, f)
	}
	return list
}

// ParseFeature resolves a field name (case-insensitive) to its feature.
func ParseFeature(name string) (Feature, error) {
	n := strings.TrimSpace(name)
	for f, v := range featureNames {
		if strings.EqualFold(v, n) {
			return Feature(f), nil
		}
	}
	return 0, fmt.Errorf("unknown feature: %q", name)
}

// RangeOf returns the normalization range of f.
func RangeOf(f Feature) Range {
	return featureRanges[f]
}

// WeightOf returns the weight of f.
func WeightOf(f Feature) float64 {
	return featureWeights[f]
}

// Model returns a copy of the feature table in scoring order.
func Model() []FeatureSpec {
	list := make([]FeatureSpec, 0, featureCount)
	for _, f := range Features() {
		list = append(list, FeatureSpec{
			Name:   f.String(),
			Range:  featureRanges[f],
			Weight: featureWeights[f],
			Scaled: f.Scaled(),
		})
	}
	return list
}

// CheckModel verifies the table invariants: every range has max != min and
// the weights sum to 1.
func CheckModel() error {
	return checkTables(featureRanges, featureWeights)
}

func checkTables(ranges [featureCount]Range, weights [featureCount]float64) error {
	var sum float64
	for f := Feature(0); f < featureCount; f++ {
		if ranges[f].Max == ranges[f].Min {
			return fmt.Errorf("feature %s: empty range [%v, %v]", f, ranges[f].Min, ranges[f].Max)
		}
		sum += weights[f]
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights sum to %v, expected 1", sum)
	}
	return nil
}
