package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mchmarny/propensity/pkg/dashboard"
	"github.com/mchmarny/propensity/pkg/data"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func newDashboardCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "dashboard",
		Aliases: []string{"d"},
		Usage:   "Print the dashboard summary of a customer profile",
		Action:  cmdDashboard,
		Flags: []urfave.Flag{
			newFileFlag("Path to a json or yaml customer profile (optional, defaults to the sample profile)"),
		},
	}
}

func cmdDashboard(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	p := dashboard.SampleProfile()
	if path := cmd.String(flagFile); path != "" {
		if p, err = readProfile(path); err != nil {
			return err
		}
	}

	s, err := dashboard.Build(p)
	if err != nil {
		return err
	}

	return cfg.encode(s)
}

func readProfile(path string) (*dashboard.Profile, error) {
	format, err := data.FormatOf(path)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading profile %s: %w", path, err)
	}

	p := &dashboard.Profile{}
	switch format {
	case data.FormatJSON:
		err = json.Unmarshal(b, p)
	case data.FormatYAML:
		err = yaml.Unmarshal(b, p)
	default:
		return nil, fmt.Errorf("%w: profiles must be json or yaml: %s", data.ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding profile %s: %w", path, err)
	}
	return p, nil
}
