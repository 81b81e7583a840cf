package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/spindle/internal/config"
	"github.com/nao1215/spindle/internal/session"
	"github.com/spf13/cobra"
)

// NewSessionCmd creates the session command and its subcommands.
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage persistent browsing sessions",
		Long: `Session manages persistent browsing sessions on the render gateway.

A session keeps cookies, login state, and browser caches alive between
commands. Create one, pass its id to crawl or smart via --session, and
clear it when done. Sessions have no expiry; they live until cleared.`,
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionClearCmd())

	return cmd
}

// newSessionCreateCmd creates the session create subcommand.
func newSessionCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new browsing session",
		Long: `Create registers a new browsing session.

When --url is given, the page is fetched once through the new session so
it arrives warm (cookies set, caches filled). A failed warm-up fetch is
reported as a warning; the session is still created and usable.

Examples:
  # Create a session with a generated id
  spindle session create

  # Create a session and warm it up
  spindle session create --url https://example.com/login

  # Create a session with an explicit id and browser
  spindle session create --id ci-run-42 --browser firefox`,
		RunE: runSessionCreateCmd,
	}

	// Session flags
	cmd.Flags().String("id", "",
		"Explicit session identifier (default: generated)")
	cmd.Flags().String("url", "",
		"Initial URL fetched once to warm the session")
	cmd.Flags().String("browser", config.DefaultBrowserType,
		"Browser engine for the session: chromium, firefox, or webkit")

	// Gateway connection flags
	cmd.Flags().StringP("endpoint", "e", "",
		"Remote render gateway base URL (e.g., https://render.example.com)")
	cmd.Flags().String("api-key", "",
		"API key for the render gateway")
	cmd.Flags().String("backend", "",
		"Fetch backend: gateway, direct, or browser (default: auto-select)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the warm-up fetch")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spindle in current or home directory)")

	return cmd
}

// runSessionCreateCmd executes the session create subcommand.
func runSessionCreateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildSessionConfig(cmd)
	if err != nil {
		return err
	}

	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	initialURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	browser, err := cmd.Flags().GetString("browser")
	if err != nil {
		return err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := session.Open(cfg.DBDir, session.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer store.Close()

	regOpts := []session.RegistryOption{
		session.WithRegistryLogger(logger),
	}

	// The warm-up fetch needs a fetcher only when an initial URL is given
	if initialURL != "" {
		// Host profile lookups key off the target list
		cfg.Targets = []string{initialURL}
		fetcher, cleanup, err := newFetcher(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		regOpts = append(regOpts, session.WithPrimingFetcher(fetcher))
	}

	reg := session.NewRegistry(store, regOpts...)
	record, err := reg.Create(ctx, session.CreateRequest{
		ID:          id,
		InitialURL:  initialURL,
		BrowserType: browser,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Session created successfully")
	fmt.Fprintf(cmd.OutOrStdout(), "Session id: %s\n", record.ID)
	if record.LastError != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: initial fetch failed: %s\n", record.LastError)
	}

	return nil
}

// buildSessionConfig creates a Config from the session create flags.
// Session commands have no target URLs, so the full Validate is not
// applied here.
func buildSessionConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

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

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := loadProfiles(cfg); err != nil {
		return nil, err
	}

	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("configuration error: %w", config.ErrInvalidBackend)
	}

	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// newSessionListCmd creates the session list subcommand.
func newSessionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active browsing sessions",
		Long: `List shows all registered sessions with their age and idle time.

Examples:
  # List sessions
  spindle session list

  # List sessions as JSON
  spindle session list --json`,
		RunE: runSessionListCmd,
	}

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runSessionListCmd executes the session list subcommand.
func runSessionListCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := session.Open(cfg.DBDir, session.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer store.Close()

	reg := session.NewRegistry(store, session.WithRegistryLogger(logger))
	sessions, err := reg.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	writer, closeOutput, err := newReportWriter(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.WriteSessions(sessions); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// newSessionClearCmd creates the session clear subcommand.
func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [session-id]",
		Short: "Remove a browsing session",
		Long: `Clear removes a browsing session from the registry.

Clearing a session id that does not exist is not an error; the command
reports it and exits successfully.

Examples:
  # Clear a session
  spindle session clear session_1748779200000_ab12cd34`,
		Args: cobra.ExactArgs(1),
		RunE: runSessionClearCmd,
	}
}

// runSessionClearCmd executes the session clear subcommand.
func runSessionClearCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := session.Open(config.XDGDataDir(), session.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer store.Close()

	reg := session.NewRegistry(store, session.WithRegistryLogger(logger))
	found, err := reg.Clear(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if found {
		fmt.Fprintf(cmd.OutOrStdout(), "Session cleared: %s\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Session not found: %s\n", args[0])
	}

	return nil
}
