package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/propensity/pkg/config"
	"github.com/mchmarny/propensity/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "propensity"

	formatJSON = "json"
	formatYAML = "yaml"

	flagDebug     = "debug"
	flagFormat    = "format"
	flagConfigDir = "config"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	errMissingConfig = errors.New("app config not initialized")
	errInvalidFormat = errors.New("invalid output format")
)

type configKey struct{}

type appConfig struct {
	*config.Config
	Out io.Writer
}

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func getConfig(ctx context.Context) (*appConfig, error) {
	cfg, ok := ctx.Value(configKey{}).(*appConfig)
	if !ok || cfg == nil {
		return nil, errMissingConfig
	}
	return cfg, nil
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Customer propensity scoring for insurance engagement",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagDebug,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml] (optional, defaults to config)",
			},
			&urfave.StringFlag{
				Name:  flagConfigDir,
				Usage: fmt.Sprintf("Path to the config directory (optional, defaults to $HOME/.%s)", appName),
			},
		},
		Commands: []*urfave.Command{
			newScoreCmd(),
			newBatchCmd(),
			newModelCmd(),
			newAskCmd(),
			newDashboardCmd(),
			newServerCmd(),
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			dir := cmd.String(flagConfigDir)
			if dir == "" {
				dir = getHomeDir()
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return ctx, fmt.Errorf("loading config: %w", err)
			}

			if cmd.Bool(flagDebug) {
				cfg.LogLevel = "debug"
			}
			logging.SetDefaultCLILogger(cfg.LogLevel)

			if f := cmd.String(flagFormat); f != "" {
				cfg.Format = f
			}
			format, err := parseFormat(cfg.Format)
			if err != nil {
				return ctx, err
			}
			cfg.Format = format

			slog.Debug("config loaded", "dir", dir, "format", cfg.Format, "port", cfg.Port)

			out := cmd.Root().Writer
			if out == nil {
				out = os.Stdout
			}

			return context.WithValue(ctx, configKey{}, &appConfig{Config: cfg, Out: out}), nil
		},
	}
}

// parseFormat normalizes an output format name. Empty means json.
func parseFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q, use json or yaml", errInvalidFormat, f)
	}
}

func getHomeDir() string {
	dir, _, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return filepath.Join(".", "."+appName)
	}
	return dir
}

func (c *appConfig) encode(v any) error {
	if c.Format == formatYAML {
		e := yaml.NewEncoder(c.Out)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(c.Out)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
