package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mchmarny/propensity/pkg/data"
	"github.com/mchmarny/propensity/pkg/faq"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagDriver  = "driver"
	flagDSN     = "dsn"
	flagTable   = "table"
	flagLimit   = "limit"
	flagWorkers = "workers"
)

func newBatchCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Score customer records from a file or a database",
		Action:  cmdBatch,
		Flags: []urfave.Flag{
			newFileFlag("Path to a json, yaml or csv file with customer records"),
			&urfave.StringFlag{
				Name:  flagDriver,
				Usage: fmt.Sprintf("Database driver %v (optional, defaults to config)", data.Drivers),
			},
			&urfave.StringFlag{
				Name:  flagDSN,
				Usage: "Database connection string, read-only access is enough (optional, defaults to config)",
			},
			&urfave.StringFlag{
				Name:  flagTable,
				Usage: "Table with customer records (optional, defaults to config)",
			},
			&urfave.IntFlag{
				Name:  flagLimit,
				Usage: "Maximum number of records to read from the database (optional, default: all)",
			},
			&urfave.IntFlag{
				Name:  flagWorkers,
				Usage: "Number of concurrent scorers (optional, defaults to config)",
			},
		},
	}
}

func newAskCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "ask",
		Usage:     "Answer a question about insurance products",
		ArgsUsage: "<question...>",
		Action:    cmdAsk,
	}
}

func cmdBatch(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	list, err := loadBatch(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if cmd.IsSet(flagWorkers) {
		workers = cmd.Int(flagWorkers)
	}

	res, err := data.ScoreAll(ctx, list, workers)
	if err != nil {
		return fmt.Errorf("scoring batch: %w", err)
	}

	slog.Debug("batch done", "run", res.RunID, "scored", res.Scored, "rejected", res.Rejected)

	return cfg.encode(res)
}

func loadBatch(ctx context.Context, cmd *urfave.Command, cfg *appConfig) ([]*data.NamedCustomer, error) {
	if path := cmd.String(flagFile); path != "" {
		list, err := data.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return data.Name(list), nil
	}

	src := cfg.Source
	if v := cmd.String(flagDriver); v != "" {
		src.Driver = v
	}
	if v := cmd.String(flagDSN); v != "" {
		src.DSN = v
	}
	if v := cmd.String(flagTable); v != "" {
		src.Table = v
	}

	if src.DSN == "" {
		return nil, errors.New("either --file or --dsn (or source.dsn in config) is required")
	}

	db, err := data.GetDB(src.Driver, src.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	slog.Debug("reading customers", "driver", src.Driver, "table", src.Table)

	return data.QueryCustomers(ctx, db, src.Table, cmd.Int(flagLimit))
}

func cmdAsk(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	q := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if q == "" {
		return errors.New("question required")
	}

	answer, topic := faq.Match(q)
	slog.Debug("faq", "topic", topic)

	return cfg.encode(&askResponse{Answer: answer})
}
