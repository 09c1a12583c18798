package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"

	"imgur-archiver/internal/album"
	"imgur-archiver/internal/api"
	"imgur-archiver/internal/config"
	"imgur-archiver/internal/download"
	"imgur-archiver/internal/logging"
	"imgur-archiver/internal/model"
	"imgur-archiver/internal/plan"
)

func main() {
	cfg, err := config.Parse()
	logger := logging.New()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	ctx := context.Background()

	reference := cfg.Reference
	if reference == "" {
		reference, err = promptReference()
		if err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	}

	ref, err := album.ParseReference(reference)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	apiClient := api.New(httpClient, cfg.BaseURL, cfg.ClientID)

	logger.Infof("Retrieving album information for id %s", ref.ID)
	catalog, err := withRetryResult(ctx, cfg.Retries, func() (model.Catalog, error) {
		return apiClient.FetchCatalog(ctx, ref)
	})
	if err != nil {
		logger.Errorf("fetch catalog: %v", err)
		os.Exit(1)
	}

	destDir := filepath.Join(cfg.OutputDir, catalog.Ref.ID)
	p, err := plan.Build(destDir, catalog)
	if err != nil {
		logger.Errorf("build plan: %v", err)
		os.Exit(1)
	}
	logger.Infof("Found %d files in %s %s; %d to download, %d already present",
		len(p.Entries), catalog.Ref.Kind, catalog.Ref.ID, p.FetchCount(), p.SkipCount())

	executor := download.NewExecutor(download.NewFetcher(httpClient), logger, cfg.Workers, cfg.Retries)
	report := executor.Run(ctx, p)

	logger.Infof("Done: %d succeeded, %d skipped, %d failed in %s",
		report.Succeeded, report.Skipped, len(report.Failures), destDir)
	for _, f := range report.Failures {
		logger.Errorf("File %d (%s) failed: %v", f.File.Position+1, f.File.URL, f.Err)
	}
	if !report.OK() {
		os.Exit(1)
	}
}

// promptReference asks for the album reference interactively when no
// positional argument was given.
func promptReference() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("inspect stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return "", fmt.Errorf("no album reference given; pass an id or URL as argument")
	}

	var reference string
	err = huh.NewInput().
		Title("Album or gallery to download").
		Description("An id like vNOUshX, or a full imgur.com/a/... or imgur.com/gallery/... URL.").
		Value(&reference).
		Run()
	if err != nil {
		return "", fmt.Errorf("run reference prompt: %w", err)
	}
	return reference, nil
}

// withRetryResult retries fn with linear backoff. Errors other than
// transient lookup failures are returned immediately.
func withRetryResult[T any](ctx context.Context, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		value, callErr := fn()
		if callErr == nil {
			return value, nil
		}
		err = callErr
		if !errors.Is(err, model.ErrTransient) || i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(i) * 400 * time.Millisecond):
		}
	}

	return zero, err
}
