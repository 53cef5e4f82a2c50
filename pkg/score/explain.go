package score

// Contribution is one feature's share of a score.
type Contribution struct {
	Feature    string  `json:"feature" yaml:"feature"`
	Value      float64 `json:"value" yaml:"value"`
	Normalized float64 `json:"normalized" yaml:"normalized"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Points     float64 `json:"points" yaml:"points"`
}

// Breakdown is a score together with its per-feature contributions.
type Breakdown struct {
	Score         float64         `json:"score" yaml:"score"`
	Band          string          `json:"band" yaml:"band"`
	ModelVersion  string          `json:"model_version" yaml:"modelVersion"`
	Contributions []*Contribution `json:"contributions" yaml:"contributions"`
}

// Explain scores c and reports how much each feature contributed. Points are
// unrounded; only Score carries the final rounding.
func Explain(c Customer) *Breakdown {
	raw := c.Values()
	norm := Normalize(c)

	b := &Breakdown{
		Score:         round2(WeightedSum(norm) * scoreScale),
		ModelVersion:  ModelVersion,
		Contributions: make([]*Contribution, 0, featureCount),
	}
	b.Band = Band(b.Score)

	for f := Feature(0); f < featureCount; f++ {
		b.Contributions = append(b.Contributions, &Contribution{
			Feature:    f.String(),
			Value:      raw[f],
			Normalized: norm[f],
			Weight:     featureWeights[f],
			Points:     norm[f] * featureWeights[f] * scoreScale,
		})
	}
	return b
}
