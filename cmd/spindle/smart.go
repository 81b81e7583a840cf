package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/spindle/internal/config"
	"github.com/nao1215/spindle/internal/dispatch"
	"github.com/spf13/cobra"
)

// NewSmartCmd creates the smart command.
func NewSmartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smart [url]",
		Short: "Fetch one URL with a content-type aware strategy",
		Long: `Smart fetches a single URL with a strategy picked from its content type.

The target is probed first. Sitemaps are parsed and their URLs listed,
optionally fetching a sample of them. HTML, feeds, JSON, and plain text
are fetched once and reported with their best extracted content. When
the probe fails, the html strategy is used and the report notes the
degraded detection.

Examples:
  # Smart crawl a page
  spindle smart https://example.com

  # Parse a sitemap and fetch a sample of its URLs
  spindle smart --follow-links https://example.com/sitemap.xml

  # Smart crawl through a session
  spindle smart -s session_123 https://example.com

  # Output Markdown report
  spindle smart --markdown https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runSmartCmd,
	}

	// Strategy flags
	cmd.Flags().IntP("depth", "d", config.DefaultSmartDepth,
		"Render depth hint forwarded to the gateway")
	cmd.Flags().BoolP("follow-links", "f", false,
		"Fetch a sample of the URLs listed in a discovered sitemap")

	addCommonFlags(cmd)

	return cmd
}

// runSmartCmd executes the smart command.
func runSmartCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildSmartConfig(cmd, args)
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

	return runSmart(ctx, cfg, logger)
}

// buildSmartConfig creates a Config from the smart command's flags.
func buildSmartConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildBaseConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.FollowLinks, err = cmd.Flags().GetBool("follow-links")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runSmart executes the smart crawl.
func runSmart(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher, cleanup, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	touchSession(ctx, cfg, logger)

	d := dispatch.NewDispatcher(fetcher,
		dispatch.WithDispatcherLogger(logger),
		dispatch.WithSmartDepth(cfg.MaxDepth),
	)

	profile := hostProfile(cfg)
	target := cfg.Targets[0]

	logger.Info("starting smart crawl",
		"target", target,
		"followLinks", cfg.FollowLinks,
		"backend", string(cfg.ResolveBackend()),
	)

	fmt.Printf("Smart crawling %s...\n", target)
	startTime := time.Now()

	result, err := d.Run(ctx, dispatch.Request{
		URL:           target,
		SessionID:     cfg.SessionID,
		CacheMode:     string(cfg.CacheMode),
		WaitUntil:     profile.WaitUntil,
		RenderTimeout: profile.RenderTimeout.AsDuration(),
		FollowLinks:   cfg.FollowLinks,
	})
	if err != nil {
		return fmt.Errorf("smart crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Smart crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	writer, closeOutput, err := newReportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.WriteDispatch(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
