package convert

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch runs jobs on up to workers goroutines and returns one result per job
// in input order. A failing job never stops the others; a cancelled context
// marks the jobs that had not started yet.
func (c *Converter) Batch(ctx context.Context, jobs []Job, workers int) []*Result {
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = &Result{Name: job.Source.Name(), Output: job.Output, Err: err}
				return nil
			}
			results[i] = c.Run(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	c.log.Info("batch finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", len(Failed(results))),
		zap.Int("workers", workers),
	)
	return results
}

// Failed returns the results that carry an error.
func Failed(results []*Result) []*Result {
	var out []*Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
