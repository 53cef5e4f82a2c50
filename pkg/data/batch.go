package data

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/propensity/pkg/score"
	"golang.org/x/sync/errgroup"
)

// Result is the score of one customer in a batch.
type Result struct {
	ID    string  `json:"id" yaml:"id"`
	Score float64 `json:"score" yaml:"score"`
	Band  string  `json:"band,omitempty" yaml:"band,omitempty"`
	Error string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResult is the outcome of scoring a list of customers.
type BatchResult struct {
	RunID        string    `json:"run_id" yaml:"runId"`
	ModelVersion string    `json:"model_version" yaml:"modelVersion"`
	ScoredAt     time.Time `json:"scored_at" yaml:"scoredAt"`
	Scored       int       `json:"scored" yaml:"scored"`
	Rejected     int       `json:"rejected" yaml:"rejected"`
	Results      []*Result `json:"results" yaml:"results"`
}

// ScoreAll scores list with at most workers concurrent scorers. Results keep
// the input order. Records with non-finite values are reported in the result
// and do not stop the batch.
func ScoreAll(ctx context.Context, list []*NamedCustomer, workers int) (*BatchResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	res := &BatchResult{
		RunID:        uuid.NewString(),
		ModelVersion: score.ModelVersion,
		ScoredAt:     time.Now().UTC(),
		Results:      make([]*Result, len(list)),
	}

	slog.Debug("scoring batch", "run", res.RunID, "records", len(list), "workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, nc := range list {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.Results[i] = scoreOne(nc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s interrupted: %w", res.RunID, err)
	}

	for _, r := range res.Results {
		if r.Error != "" {
			res.Rejected++
			continue
		}
		res.Scored++
	}

	slog.Debug("batch scored", "run", res.RunID, "scored", res.Scored, "rejected", res.Rejected)

	return res, nil
}

func scoreOne(nc *NamedCustomer) *Result {
	if nc == nil {
		return &Result{Error: "empty record"}
	}

	r := &Result{ID: nc.ID}
	if err := score.Validate(nc.Customer); err != nil {
		r.Error = err.Error()
		return r
	}

	r.Score = score.Compute(nc.Customer)
	r.Band = score.Band(r.Score)
	return r
}
