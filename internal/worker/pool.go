package worker

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Job is a unit of work to execute in the pool.
type Job func(context.Context) error

// Run executes jobs with bounded concurrency and returns a joined error.
// A failing job never stops its siblings: every job that can run does,
// and the errors are collected. Cancellation of ctx stops enqueueing and
// is reported alongside any job errors.
func Run(ctx context.Context, workers int, jobs []Job) error {
	if workers < 1 {
		workers = 1
	}
	if len(jobs) == 0 {
		return nil
	}

	errs := make([]error, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		i, job := i, job
		g.Go(func() error {
			errs[i] = job(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	return errors.Join(errs...)
}
