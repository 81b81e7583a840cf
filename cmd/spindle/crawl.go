package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/spindle/internal/config"
	"github.com/nao1215/spindle/internal/fetch"
	"github.com/nao1215/spindle/internal/log"
	"github.com/nao1215/spindle/internal/report"
	"github.com/nao1215/spindle/internal/session"
	"github.com/nao1215/spindle/internal/traverse"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site breadth-first and report every fetched page",
		Long: `Crawl walks a site breadth-first starting from the given URL.

Every page is fetched through the configured backend, its links are
extracted, and same-host links are followed until the depth or page
budget is exhausted. Failed pages are recorded and reported without
stopping the crawl.

Examples:
  # Crawl a site two levels deep
  spindle crawl -d 2 https://example.com

  # Crawl through a render gateway
  spindle crawl -e https://render.example.com https://example.com

  # Only follow documentation URLs
  spindle crawl --include '/docs/' https://example.com

  # Reuse a browsing session and skip the gateway cache
  spindle crawl -s session_123 --bypass-cache https://example.com

  # Output JSON report
  spindle crawl --json https://example.com

Configuration file (.spindle) example:
  endpoint: "https://render.example.com"
  hosts:
    example.com:
      cookie: "session_id=abc123"
      waitUntil: "networkidle"
      renderTimeout: "90s"`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Traversal flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link-following depth (0 fetches only the start URL)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch")
	cmd.Flags().String("include", "",
		"Regular expression a URL must match to be followed")
	cmd.Flags().String("exclude", "",
		"Regular expression that drops matching URLs")
	cmd.Flags().Duration("delay", 0,
		"Pause between page fetches (e.g., 500ms)")

	addCommonFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCrawl(ctx, cfg, logger)
}

// addCommonFlags registers the flags shared by the crawl, smart, and
// fetch commands.
func addCommonFlags(cmd *cobra.Command) {
	// Gateway connection flags
	cmd.Flags().StringP("endpoint", "e", "",
		"Remote render gateway base URL (e.g., https://render.example.com)")
	cmd.Flags().String("api-key", "",
		"API key for the render gateway")
	cmd.Flags().String("backend", "",
		"Fetch backend: gateway, direct, or browser (default: auto-select)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each fetch")

	// Session flags
	cmd.Flags().StringP("session", "s", "",
		"Session id to route fetches through")
	cmd.Flags().Bool("bypass-cache", false,
		"Always fetch fresh content, skipping the gateway cache")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spindle in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildBaseConfig creates a Config from the flags shared by all fetch
// commands.
func buildBaseConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Endpoint, err = cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, err
	}

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}

	backend, err := cmd.Flags().GetString("backend")
	if err != nil {
		return nil, err
	}
	cfg.Backend = config.Backend(backend)

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.SessionID, err = cmd.Flags().GetString("session")
	if err != nil {
		return nil, err
	}

	bypassCache, err := cmd.Flags().GetBool("bypass-cache")
	if err != nil {
		return nil, err
	}
	if bypassCache {
		cfg.CacheMode = config.CacheModeBypass
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := loadProfiles(cfg); err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Sessions always live in the XDG data directory so separate
	// invocations share them
	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (target URLs)
	cfg.Targets = args

	return cfg, nil
}

// loadProfiles loads gateway settings and host profiles from the config file.
// If the user explicitly specified a config file path, error if not found.
// If no path specified, silently use empty profiles if no file found.
func loadProfiles(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			// User explicitly specified a config file that doesn't exist
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		cfg.Profiles = &config.File{
			Hosts: make(map[string]config.HostProfile),
		}
		return nil
	}

	profiles, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.Profiles = profiles

	// Flags win over file values for gateway settings
	if cfg.Endpoint == "" {
		cfg.Endpoint = profiles.Endpoint
	}
	if cfg.APIKey == "" {
		cfg.APIKey = profiles.APIKey
	}
	if cfg.Backend == config.BackendAuto && profiles.Backend != "" {
		cfg.Backend = config.Backend(profiles.Backend)
	}

	return nil
}

// buildCrawlConfig creates a Config from the crawl command's flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildBaseConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.IncludePattern, err = cmd.Flags().GetString("include")
	if err != nil {
		return nil, err
	}

	cfg.ExcludePattern, err = cmd.Flags().GetString("exclude")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The redacting handler keeps API keys and session cookies out of the
// log output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewRedactLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher, cleanup, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engineOpts := []traverse.EngineOption{
		traverse.WithEngineLogger(logger),
	}
	if cfg.Delay > 0 {
		engineOpts = append(engineOpts, traverse.WithDelay(cfg.Delay))
	}

	// Route session crawls through the registry so the session's
	// last-used time tracks real activity
	if cfg.SessionID != "" {
		store, err := session.Open(cfg.DBDir, session.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		defer store.Close()
		engineOpts = append(engineOpts, traverse.WithSessionToucher(
			session.NewRegistry(store, session.WithRegistryLogger(logger))))
	}

	eng := traverse.NewEngine(fetcher, engineOpts...)

	// Host profile values override global flags for this host
	profile := hostProfile(cfg)
	maxDepth := cfg.MaxDepth
	if profile.Depth > 0 {
		maxDepth = profile.Depth
	}

	target := cfg.Targets[0]

	logger.Info("starting crawl",
		"target", target,
		"maxDepth", maxDepth,
		"maxPages", cfg.MaxPages,
		"backend", string(cfg.ResolveBackend()),
	)

	fmt.Printf("Crawling %s...\n", target)
	startTime := time.Now()

	result, err := eng.Run(ctx, traverse.Request{
		StartURL:       target,
		MaxDepth:       maxDepth,
		MaxPages:       cfg.MaxPages,
		IncludePattern: cfg.IncludePattern,
		ExcludePattern: cfg.ExcludePattern,
		SessionID:      cfg.SessionID,
		CacheMode:      string(cfg.CacheMode),
		Render: fetch.RenderOptions{
			WaitUntil: profile.WaitUntil,
			Timeout:   profile.RenderTimeout.AsDuration(),
		},
	})
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	writer, closeOutput, err := newReportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.WriteTraversal(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// hostProfile returns the merged host profile for the first target.
// Falls back to defaults when the target has no specific profile.
func hostProfile(cfg *config.Config) config.HostProfile {
	if cfg.Profiles == nil || len(cfg.Targets) == 0 {
		return config.HostProfile{}
	}

	target, err := fetch.ParseTarget(cfg.Targets[0])
	if err != nil {
		return cfg.Profiles.Defaults
	}

	return cfg.Profiles.GetHostProfile(target.Hostname())
}

// hostHeaders flattens a host profile into the extra HTTP headers for
// the direct backend. The cookie becomes a Cookie header.
func hostHeaders(profile config.HostProfile) map[string]string {
	if len(profile.Headers) == 0 && profile.Cookie == "" {
		return nil
	}

	headers := make(map[string]string, len(profile.Headers)+1)
	for k, v := range profile.Headers {
		headers[k] = v
	}
	if profile.Cookie != "" {
		headers["Cookie"] = profile.Cookie
	}

	return headers
}

// newFetcher creates the fetch backend selected by the configuration.
// The returned cleanup function releases backend resources and must be
// called when fetching is done.
func newFetcher(cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, func(), error) {
	noop := func() {}

	switch cfg.ResolveBackend() {
	case config.BackendGateway:
		client, err := fetch.NewClient(cfg.Endpoint,
			fetch.WithAPIKey(cfg.APIKey),
			fetch.WithClientTimeout(cfg.Timeout),
			fetch.WithClientUserAgent(cfg.UserAgent),
			fetch.WithClientMaxBodySize(cfg.MaxBodySize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gateway client: %w", err)
		}
		logger.Info("using gateway backend", "endpoint", cfg.Endpoint)
		return client, noop, nil

	case config.BackendBrowser:
		browser, err := fetch.NewBrowser(
			fetch.WithBrowserTimeout(cfg.Timeout),
			fetch.WithBrowserUserAgent(cfg.UserAgent),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start browser backend: %w", err)
		}
		logger.Info("using browser backend")
		cleanup := func() {
			if err := browser.Close(); err != nil {
				logger.Error("failed to close browser", "error", err)
			}
		}
		return browser, cleanup, nil

	default:
		opts := []fetch.DirectOption{
			fetch.WithDirectTimeout(cfg.Timeout),
			fetch.WithDirectUserAgent(cfg.UserAgent),
			fetch.WithDirectMaxBodySize(cfg.MaxBodySize),
		}
		if cfg.SOCKSProxy != "" {
			opts = append(opts, fetch.WithSOCKSProxy(cfg.SOCKSProxy))
		}
		if headers := hostHeaders(hostProfile(cfg)); len(headers) > 0 {
			opts = append(opts, fetch.WithExtraHeaders(headers))
		}
		direct, err := fetch.NewDirect(opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create direct fetcher: %w", err)
		}
		logger.Info("using direct backend")
		return direct, noop, nil
	}
}

// newReportWriter creates the report writer selected by the configuration.
// The returned close function flushes and closes the output file, if any.
func newReportWriter(cfg *config.Config) (report.Writer, func(), error) {
	output, closeOutput, err := openReportOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	// JSON output (versioned envelope with all data)
	if cfg.JSONReport {
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()), closeOutput, nil
	}

	// Markdown output
	if cfg.MarkdownReport {
		return report.NewMarkdownWriter(output), closeOutput, nil
	}

	// Human-readable report (default)
	return report.NewTextWriter(output, report.WithTextVerbose(cfg.Verbose)), closeOutput, nil
}

// openReportOutput opens the report destination: the configured file,
// or stdout when none is set.
func openReportOutput(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Create/overwrite the output file with secure permissions (0600)
	// Reports may contain session identifiers and page content that
	// should only be readable by the owner
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	closeFile := func() {
		_ = f.Close() //nolint:errcheck // Best effort close
	}
	return f, closeFile, nil
}

// touchSession marks the session as used before a run. Failures are
// logged rather than returned: a stale or missing session record must
// not block the fetch itself.
func touchSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if cfg.SessionID == "" {
		return
	}

	store, err := session.Open(cfg.DBDir, session.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open session database", "error", err)
		return
	}
	defer store.Close()

	reg := session.NewRegistry(store, session.WithRegistryLogger(logger))
	found, err := reg.Touch(ctx, cfg.SessionID)
	if err != nil {
		logger.Warn("failed to touch session", "session_id", cfg.SessionID, "error", err)
		return
	}
	if !found {
		logger.Warn("session not found", "session_id", cfg.SessionID)
	}
}
