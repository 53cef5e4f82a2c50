package dashboard

import (
	"slices"
)

// Recommendation is a canned product card.
type Recommendation struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Confidence  int    `json:"confidence" yaml:"confidence"`
	Reason      string `json:"reason" yaml:"reason"`
}

var recommendations = []Recommendation{
	{
		Title:       "Term Life Insurance Plus",
		Description: "Enhanced coverage with critical illness benefit",
		Confidence:  95,
		Reason:      "Based on your age and family status",
	},
	{
		Title:       "Smart Health Elite",
		Description: "Comprehensive health coverage with global benefits",
		Confidence:  88,
		Reason:      "Matches your healthcare needs",
	},
	{
		Title:       "Wealth Builder Pro",
		Description: "High-return investment plan with insurance benefits",
		Confidence:  82,
		Reason:      "Aligns with your investment goals",
	},
	{
		Title:       "Child Future Secure",
		Description: "Education planning with guaranteed returns",
		Confidence:  78,
		Reason:      "Perfect for your children's future",
	},
	{
		Title:       "Retirement Comfort Plus",
		Description: "Steady post-retirement income",
		Confidence:  75,
		Reason:      "Start early for comfortable retirement",
	},
	{
		Title:       "Smart Income Shield",
		Description: "Income protection with disability coverage",
		Confidence:  72,
		Reason:      "Protects your earning capacity",
	},
}

// Recommendations returns a copy of the product cards, highest confidence
// first. Limit <= 0 returns all of them.
func Recommendations(limit int) []*Recommendation {
	list := make([]*Recommendation, 0, len(recommendations))
	for _, r := range recommendations {
		list = append(list, &r)
	}

	slices.SortStableFunc(list, func(a, b *Recommendation) int {
		return b.Confidence - a.Confidence
	})

	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
