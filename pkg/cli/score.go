package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/propensity/pkg/data"
	"github.com/mchmarny/propensity/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagFile    = "file"
	flagExplain = "explain"
)

// customerFlag maps a command line flag to a customer feature.
type customerFlag struct {
	name    string
	usage   string
	feature score.Feature
	float   bool
}

var customerFlags = []customerFlag{
	{"age", "Age in years", score.Age, false},
	{"annual-income", "Annual income", score.AnnualIncome, true},
	{"expenses", "Annual expenses", score.Expenses, true},
	{"credit-score", "Credit score (300-900)", score.CreditScore, false},
	{"website-visits", "Website visit count", score.WebsiteVisits, false},
	{"active-policies", "Active policy count", score.ActivePolicies, false},
	{"matured-policies", "Matured policy count", score.MaturedPolicies, false},
	{"email-response-rate", "Email response rate (0-1)", score.EmailResponseRate, true},
	{"app-interactions", "App interaction count", score.AppInteractions, false},
	{"feedback-score", "Feedback score (1-10)", score.FeedbackScore, false},
}

// scoreResult is the output of the score command.
type scoreResult struct {
	Score        float64          `json:"score" yaml:"score"`
	Band         string           `json:"band" yaml:"band"`
	ModelVersion string           `json:"model_version" yaml:"modelVersion"`
	Breakdown    *score.Breakdown `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// modelResult is the output of the model command.
type modelResult struct {
	Version  string               `json:"version" yaml:"version"`
	Features []*score.FeatureSpec `json:"features" yaml:"features"`
}

func newFileFlag(usage string) *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:    flagFile,
		Aliases: []string{"f"},
		Usage:   usage,
	}
}

func newScoreCmd() *urfave.Command {
	flags := []urfave.Flag{
		newFileFlag("Path to a json, yaml or csv file, the first record is scored"),
		&urfave.BoolFlag{
			Name:  flagExplain,
			Usage: "Include per-feature contributions (optional, default: false)",
		},
	}
	for _, f := range customerFlags {
		if f.float {
			flags = append(flags, &urfave.FloatFlag{Name: f.name, Usage: f.usage})
			continue
		}
		flags = append(flags, &urfave.IntFlag{Name: f.name, Usage: f.usage})
	}

	return &urfave.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Compute the propensity score of a single customer",
		Action:  cmdScore,
		Flags:   flags,
	}
}

func newModelCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "model",
		Usage:  "Print the feature ranges and weights of the scoring model",
		Action: cmdModel,
	}
}

func cmdScore(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	c, err := customerFromCommand(cmd)
	if err != nil {
		return err
	}

	if err := score.Validate(*c); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	res := newScoreResult(*c, cmd.Bool(flagExplain))
	slog.Debug("customer scored", "score", res.Score, "band", res.Band)

	return cfg.encode(res)
}

func newScoreResult(c score.Customer, explain bool) *scoreResult {
	b := score.Explain(c)
	res := &scoreResult{
		Score:        b.Score,
		Band:         b.Band,
		ModelVersion: b.ModelVersion,
	}
	if explain {
		res.Breakdown = b
	}
	return res
}

// customerFromCommand reads the first record of --file, or builds one from
// the per-field flags. Unset fields are zero.
func customerFromCommand(cmd *urfave.Command) (*score.Customer, error) {
	if path := cmd.String(flagFile); path != "" {
		list, err := data.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 || list[0] == nil {
			return nil, fmt.Errorf("no customer records in %s", path)
		}
		if len(list) > 1 {
			slog.Warn("file has multiple records, scoring the first one", "file", path, "records", len(list))
		}
		return list[0], nil
	}

	var v score.Vector
	set := 0
	for _, f := range customerFlags {
		if !cmd.IsSet(f.name) {
			continue
		}
		set++
		if f.float {
			v[f.feature] = cmd.Float(f.name)
		} else {
			v[f.feature] = float64(cmd.Int(f.name))
		}
	}
	if set == 0 {
		return nil, errors.New("either --file or customer field flags are required")
	}

	c := score.FromValues(v)
	return &c, nil
}

func newModelResult() *modelResult {
	specs := score.Model()
	res := &modelResult{
		Version:  score.ModelVersion,
		Features: make([]*score.FeatureSpec, 0, len(specs)),
	}
	for i := range specs {
		res.Features = append(res.Features, &specs[i])
	}
	return res
}

func cmdModel(ctx context.Context, _ *urfave.Command) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}
	return cfg.encode(newModelResult())
}
