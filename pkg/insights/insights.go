package insights

import (
	"math"

	"github.com/mchmarny/propensity/pkg/score"
	"github.com/shopspring/decimal"
)

const (
	hundredPercent = 100

	creditFloor = 300
	creditCeil  = 850

	engagementVisitsCeil = 20

	currencyPlaces = 2

	ruleCreditMin  = 700
	ruleIncomeMin  = 50000
	ruleVisitsMin  = 10
	ruleScorePlace = 4
)

var (
	ruleBase = decimal.RequireFromString("0.5")
	ruleStep = decimal.RequireFromString("0.1")
)

// Insights are the secondary customer metrics shown next to the score.
// Percentages are capped at 100 but not floored.
type Insights struct {
	ExpenseRatio    float64         `json:"expense_ratio" yaml:"expenseRatio"`
	CreditHealth    float64         `json:"credit_health" yaml:"creditHealth"`
	EngagementScore float64         `json:"engagement_score" yaml:"engagementScore"`
	AnnualSurplus   decimal.Decimal `json:"annual_surplus" yaml:"annualSurplus"`
	RuleScore       float64         `json:"rule_score" yaml:"ruleScore"`
}

// Compute derives the insight metrics for c.
func Compute(c score.Customer) *Insights {
	return &Insights{
		ExpenseRatio:    ExpenseRatio(c.Expenses, c.AnnualIncome),
		CreditHealth:    CreditHealth(c.CreditScore),
		EngagementScore: EngagementScore(c.WebsiteVisits),
		AnnualSurplus:   Surplus(c.AnnualIncome, c.Expenses),
		RuleScore:       RuleScore(c),
	}
}

// ExpenseRatio is expenses as a percentage of income.
func ExpenseRatio(expenses, income float64) float64 {
	if income == 0 {
		return 0
	}
	return capPercent(expenses / income * hundredPercent)
}

// CreditHealth places the credit score on the 300-850 bureau scale.
func CreditHealth(creditScore int) float64 {
	return capPercent(float64(creditScore-creditFloor) / (creditCeil - creditFloor) * hundredPercent)
}

// EngagementScore treats 20 website visits as full engagement.
func EngagementScore(visits int) float64 {
	return capPercent(float64(visits) / engagementVisitsCeil * hundredPercent)
}

// Surplus returns income minus expenses rounded to currency precision.
func Surplus(income, expenses float64) decimal.Decimal {
	return decimal.NewFromFloat(income).Sub(decimal.NewFromFloat(expenses)).Round(currencyPlaces)
}

// RuleScore is the coarse 0-1 propensity estimate used when no model is
// available: 0.5 plus 0.1 for each of credit score above 700, income above
// 50,000 and more than 10 website visits, capped at 1.
func RuleScore(c score.Customer) float64 {
	v := ruleBase
	if c.CreditScore > ruleCreditMin {
		v = v.Add(ruleStep)
	}
	if c.AnnualIncome > ruleIncomeMin {
		v = v.Add(ruleStep)
	}
	if c.WebsiteVisits > ruleVisitsMin {
		v = v.Add(ruleStep)
	}
	return math.Min(1, v.Round(ruleScorePlace).InexactFloat64())
}

func capPercent(v float64) float64 {
	return math.Min(hundredPercent, v)
}
