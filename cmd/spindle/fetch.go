package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/spindle/internal/config"
	"github.com/nao1215/spindle/internal/fetch"
	"github.com/nao1215/spindle/internal/model"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url]...",
		Short: "Fetch one or more URLs without traversal",
		Long: `Fetch retrieves one or more URLs without following links.

URLs are fetched in parallel with bounded concurrency. Results keep the
input order, so the report lists URLs exactly as given.

Examples:
  # Fetch a single page
  spindle fetch https://example.com

  # Fetch several pages at once
  spindle fetch https://example.com/a https://example.com/b

  # Limit parallel fetches
  spindle fetch -b 2 https://example.com/a https://example.com/b

  # Output JSON report
  spindle fetch --json https://example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFetchCmd,
	}

	// Concurrency flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of parallel fetches")

	addCommonFlags(cmd)

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildFetchConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runFetch(ctx, cfg, logger)
}

// buildFetchConfig creates a Config from the fetch command's flags.
func buildFetchConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildBaseConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runFetch executes the parallel fetch.
func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher, cleanup, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	touchSession(ctx, cfg, logger)

	mf := fetch.NewMultiFetcher(fetcher,
		fetch.WithConcurrency(cfg.Concurrency),
		fetch.WithMultiLogger(logger),
	)

	profile := hostProfile(cfg)

	logger.Info("starting fetch",
		"urls", len(cfg.Targets),
		"concurrency", cfg.Concurrency,
		"backend", string(cfg.ResolveBackend()),
	)

	fmt.Printf("Fetching %d URL(s)...\n", len(cfg.Targets))
	startTime := time.Now()

	results := mf.FetchAll(ctx, cfg.Targets, fetch.Options{
		SessionID: cfg.SessionID,
		CacheMode: string(cfg.CacheMode),
		Render: fetch.RenderOptions{
			WaitUntil: profile.WaitUntil,
			Timeout:   profile.RenderTimeout.AsDuration(),
		},
	})

	elapsed := time.Since(startTime)
	fmt.Printf("Fetch completed in %s\n\n", elapsed.Round(time.Millisecond))

	pages := make([]*model.PageResult, 0, len(results))
	for _, res := range results {
		pages = append(pages, pageFromMultiResult(res))
	}

	writer, closeOutput, err := newReportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.WritePages(pages); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// pageFromMultiResult converts one fetch outcome into a page record.
func pageFromMultiResult(res fetch.MultiResult) *model.PageResult {
	page := &model.PageResult{
		URL:       res.URL,
		FetchedAt: time.Now(),
	}

	if res.Err != nil {
		page.Err = res.Err.Error()
		return page
	}
	if !res.Result.Success {
		msg := res.Result.ErrorMessage
		if msg == "" {
			msg = "fetch failed"
		}
		page.Err = msg
		return page
	}

	page.Title = res.Result.Title
	page.Content = res.Result.Content()
	page.InternalLinks = res.Result.InternalLinks
	page.ExternalLinks = res.Result.ExternalLinks
	page.ComputeHash()
	page.TruncateContent()

	return page
}
