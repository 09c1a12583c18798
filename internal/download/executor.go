package download

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"imgur-archiver/internal/logging"
	"imgur-archiver/internal/model"
	"imgur-archiver/internal/plan"
	"imgur-archiver/internal/worker"
)

// errNotStarted marks a fetch entry whose transfer never ran, which
// happens when the run's context is cancelled before the pool reaches
// it. Such entries are failures, never successes.
var errNotStarted = errors.New("transfer not started")

// Failure records one file that could not be transferred.
type Failure struct {
	File model.RemoteFile
	Err  error
}

// Report aggregates the outcome of an executed plan. Failures are in
// catalog position order.
type Report struct {
	Skipped   int
	Succeeded int
	Failures  []Failure
}

// OK reports whether every planned transfer completed.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Executor drains the fetch-marked entries of a plan with bounded
// concurrency.
type Executor struct {
	fetcher *Fetcher
	logger  *logging.Logger
	workers int
	retries int
}

// NewExecutor creates an Executor. workers and retries are clamped to at
// least 1.
func NewExecutor(fetcher *Fetcher, logger *logging.Logger, workers, retries int) *Executor {
	if workers < 1 {
		workers = 1
	}
	if retries < 1 {
		retries = 1
	}
	return &Executor{fetcher: fetcher, logger: logger, workers: workers, retries: retries}
}

// Run executes a plan. Skip entries are accounted for synchronously;
// fetch entries run on a worker pool. A failed transfer is recorded and
// never aborts its siblings: the run completes every entry it can and
// the report says what happened. Outcomes are collected into a
// per-entry slice, so workers share no mutable state.
func (e *Executor) Run(ctx context.Context, p plan.Plan) Report {
	total := len(p.Entries)
	outcomes := make([]error, total)

	jobs := make([]worker.Job, 0, total)
	for i, entry := range p.Entries {
		if entry.Action == plan.ActionSkip {
			e.logger.Infof("[%d/%d] Skipping %s: already downloaded", entry.File.Position+1, total, filepath.Base(entry.Path))
			continue
		}
		outcomes[i] = errNotStarted
		i, entry := i, entry
		jobs = append(jobs, func(ctx context.Context) error {
			outcomes[i] = e.fetchEntry(ctx, entry, total)
			return nil
		})
	}
	if err := worker.Run(ctx, e.workers, jobs); err != nil {
		e.logger.Warnf("worker pool: %v", err)
	}

	var report Report
	for i, entry := range p.Entries {
		switch {
		case entry.Action == plan.ActionSkip:
			report.Skipped++
		case outcomes[i] == nil:
			report.Succeeded++
		default:
			report.Failures = append(report.Failures, Failure{File: entry.File, Err: outcomes[i]})
		}
	}
	return report
}

func (e *Executor) fetchEntry(ctx context.Context, entry plan.Entry, total int) error {
	name := filepath.Base(entry.Path)
	track := entry.File.Position + 1
	e.logger.Infof("[%d/%d] Downloading %s (%s)", track, total, name, humanize.IBytes(uint64(entry.File.Size)))
	started := time.Now()

	progress := e.makeProgressLogger(name, track, total)

	var err error
	for attempt := 1; attempt <= e.retries; attempt++ {
		err = e.fetcher.FetchFile(ctx, entry.File.URL, entry.Path, entry.File.Size, progress)
		if err == nil {
			e.logger.Infof("[%d/%d] Finished %s (%s, %s)", track, total, name,
				humanize.IBytes(uint64(entry.File.Size)), transferRate(entry.File.Size, time.Since(started)))
			return nil
		}
		if attempt == e.retries {
			break
		}
		e.logger.Warnf("[%d/%d] Retry %d/%d for %s: %v", track, total, attempt, e.retries-1, name, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 400 * time.Millisecond):
		}
	}

	e.logger.Errorf("[%d/%d] Failed %s: %v", track, total, name, err)
	return err
}

func (e *Executor) makeProgressLogger(name string, track, total int) ProgressFunc {
	lastBucket := int64(-1)
	return func(update ProgressUpdate) {
		if update.TotalBytes <= 0 {
			return
		}
		percent := (update.BytesWritten * 100) / update.TotalBytes
		bucket := percent / 10
		if percent == 100 || bucket > lastBucket {
			e.logger.Infof("[%d/%d] Downloading %s: %d%% (%s/%s)", track, total, name, percent,
				humanize.IBytes(uint64(update.BytesWritten)), humanize.IBytes(uint64(update.TotalBytes)))
			lastBucket = bucket
		}
	}
}

func transferRate(bytes int64, duration time.Duration) string {
	if duration <= 0 {
		return "n/a"
	}
	return humanize.IBytes(uint64(float64(bytes)/duration.Seconds())) + "/s"
}
