package score

import (
	"errors"
	"fmt"
	"math"
)

const (
	scoreScale = 100

	bandLowCeil    = 40
	bandMediumCeil = 70

	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

// ErrNonFinite is returned by Validate for NaN or infinite field values.
var ErrNonFinite = errors.New("non-finite value")

// Customer holds the raw inputs to the propensity model.
type Customer struct {
	Age               int     `json:"age" yaml:"age"`                             // Years
	AnnualIncome      float64 `json:"annualIncome" yaml:"annualIncome"`           // Currency units
	Expenses          float64 `json:"expenses" yaml:"expenses"`                   // Currency units
	CreditScore       int     `json:"creditScore" yaml:"creditScore"`             // 300-900
	WebsiteVisits     int     `json:"websiteVisits" yaml:"websiteVisits"`         // Count
	ActivePolicies    int     `json:"activePolicies" yaml:"activePolicies"`       // Count
	MaturedPolicies   int     `json:"maturedPolicies" yaml:"maturedPolicies"`     // Count
	EmailResponseRate float64 `json:"emailResponseRate" yaml:"emailResponseRate"` // Fraction 0-1
	AppInteractions   int     `json:"appInteractions" yaml:"appInteractions"`     // Count
	FeedbackScore     int     `json:"feedbackScore" yaml:"feedbackScore"`         // 1-10
}

// Vector holds one value per feature in scoring order.
type Vector [featureCount]float64

// Values returns the raw feature values of c.
func (c Customer) Values() Vector {
	return Vector{
		Age:               float64(c.Age),
		AnnualIncome:      c.AnnualIncome,
		Expenses:          c.Expenses,
		CreditScore:       float64(c.CreditScore),
		WebsiteVisits:     float64(c.WebsiteVisits),
		ActivePolicies:    float64(c.ActivePolicies),
		MaturedPolicies:   float64(c.MaturedPolicies),
		EmailResponseRate: c.EmailResponseRate,
		AppInteractions:   float64(c.AppInteractions),
		FeedbackScore:     float64(c.FeedbackScore),
	}
}

// FromValues builds a customer from raw feature values. Count fields are
// truncated toward zero.
func FromValues(v Vector) Customer {
	return Customer{
		Age:               int(v[Age]),
		AnnualIncome:      v[AnnualIncome],
		Expenses:          v[Expenses],
		CreditScore:       int(v[CreditScore]),
		WebsiteVisits:     int(v[WebsiteVisits]),
		ActivePolicies:    int(v[ActivePolicies]),
		MaturedPolicies:   int(v[MaturedPolicies]),
		EmailResponseRate: v[EmailResponseRate],
		AppInteractions:   int(v[AppInteractions]),
		FeedbackScore:     int(v[FeedbackScore]),
	}
}

// Scale multiplies every element of v by k.
func (v Vector) Scale(k float64) Vector {
	for i := range v {
		v[i] *= k
	}
	return v
}

// Normalize rescales every feature of c to its range. Values outside the
// range are not clamped.
func Normalize(c Customer) Vector {
	v := c.Values()
	for f := Feature(0); f < featureCount; f++ {
		if f.Scaled() {
			v[f] = scale(v[f], featureRanges[f])
		}
	}
	return v
}

// WeightedSum returns the weighted sum of a normalized vector, in [0, 1]
// for in-range input.
func WeightedSum(v Vector) float64 {
	var sum float64
	for f := Feature(0); f < featureCount; f++ {
		sum += float64(v[f] * featureWeights[f])
	}
	return sum
}

// Compute returns the propensity score of c on a 0-100 scale rounded to two
// decimals.
func Compute(c Customer) float64 {
	return round2(WeightedSum(Normalize(c)) * scoreScale)
}

// Validate rejects customers with NaN or infinite values.
func Validate(c Customer) error {
	v := c.Values()
	for f := Feature(0); f < featureCount; f++ {
		if math.IsNaN(v[f]) || math.IsInf(v[f], 0) {
			return fmt.Errorf("%s: %w", f, ErrNonFinite)
		}
	}
	return nil
}

// Band maps a score to its display band.
func Band(s float64) string {
	switch {
	case s < bandLowCeil:
		return BandLow
	case s < bandMediumCeil:
		return BandMedium
	default:
		return BandHigh
	}
}

func scale(value float64, r Range) float64 {
	return (value - r.Min) / (r.Max - r.Min)
}

// round2 rounds half up (toward +Inf) at two decimals.
func round2(v float64) float64 {
	return math.Floor(float64(v*scoreScale)+0.5) / scoreScale
}
