package dashboard

import (
	"fmt"

	"github.com/mchmarny/propensity/pkg/insights"
	"github.com/mchmarny/propensity/pkg/score"
)

// RecommendationLimitDefault is the number of cards on the dashboard.
const RecommendationLimitDefault = 6

// Summary is everything the dashboard shows for one customer.
type Summary struct {
	Profile         *Profile           `json:"profile" yaml:"profile"`
	Phone           string             `json:"phone_e164,omitempty" yaml:"phoneE164,omitempty"`
	Score           *score.Breakdown   `json:"score" yaml:"score"`
	Insights        *insights.Insights `json:"insights" yaml:"insights"`
	Recommendations []*Recommendation  `json:"recommendations" yaml:"recommendations"`
}

// Build assembles the dashboard summary for p.
func Build(p *Profile) (*Summary, error) {
	phone, err := p.check()
	if err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if err := score.Validate(p.Customer); err != nil {
		return nil, fmt.Errorf("invalid customer %s: %w", p.CustomerID, err)
	}

	s := &Summary{
		Profile:         p,
		Phone:           phone,
		Score:           score.Explain(p.Customer),
		Insights:        insights.Compute(p.Customer),
		Recommendations: Recommendations(RecommendationLimitDefault),
	}

	return s, nil
}
