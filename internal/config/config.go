package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to keep single-command runs bounded while still
// producing useful crawls on typical sites.
const (
	// DefaultTimeout is set to 60 seconds because rendered fetches through
	// the gateway involve a real browser navigation on the remote side.
	// A shorter timeout would fail on pages with slow scripts or redirects.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxDepth of 3 covers the start page, its links, and their
	// links. Deeper traversals grow exponentially and rarely add signal
	// for a single-command crawl. Override via --depth for larger jobs.
	DefaultMaxDepth = 3

	// DefaultMaxPages is the maximum number of pages fetched per traversal.
	// This bounds runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultSmartDepth is the render depth hint threaded to the gateway
	// for smart crawls. Smart crawls target one URL, so a shallow hint
	// keeps remote render costs predictable.
	DefaultSmartDepth = 2

	// DefaultConcurrency is the number of parallel fetches when processing
	// multiple URLs. Higher values increase throughput but may trigger
	// gateway rate limiting.
	DefaultConcurrency = 5

	// AppName is the application name used for XDG directory paths.
	AppName = "spindle"

	// DefaultUserAgent identifies spindle in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "Spindle/1.0 (+https://github.com/nao1215/spindle)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most pages while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultBrowserType is the browser engine requested for new sessions.
	DefaultBrowserType = "chromium"
)

// Backend selects which fetch implementation performs page fetches.
type Backend string

// Fetch backend values.
const (
	// BackendAuto selects BackendGateway when an endpoint is configured
	// and BackendDirect otherwise.
	BackendAuto Backend = ""
	// BackendGateway fetches through the remote render gateway.
	BackendGateway Backend = "gateway"
	// BackendDirect fetches with a plain HTTP client and local extraction.
	BackendDirect Backend = "direct"
	// BackendBrowser fetches with a local headless browser.
	BackendBrowser Backend = "browser"
)

// IsValid returns true if this is a known backend value.
func (b Backend) IsValid() bool {
	switch b {
	case BackendAuto, BackendGateway, BackendDirect, BackendBrowser:
		return true
	default:
		return false
	}
}

// CacheMode controls how the gateway uses its page cache for a fetch.
type CacheMode string

// Cache mode values.
const (
	// CacheModeEnabled serves cached content when fresh and fetches
	// otherwise. This is the default.
	CacheModeEnabled CacheMode = "enabled"
	// CacheModeBypass always fetches fresh content.
	CacheModeBypass CacheMode = "bypass"
	// CacheModeOnly serves only cached content and fails on a miss.
	CacheModeOnly CacheMode = "only"
)

// IsValid returns true if this is a known cache mode.
func (m CacheMode) IsValid() bool {
	switch m {
	case CacheModeEnabled, CacheModeBypass, CacheModeOnly:
		return true
	default:
		return false
	}
}

// Config holds all configuration options for spindle.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, CrawlConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Endpoint is the base URL of the remote render gateway,
	// e.g. "https://render.example.com". Required for the gateway backend.
	Endpoint string

	// APIKey authenticates requests to the gateway.
	// Sent as a bearer token when non-empty.
	APIKey string

	// Backend selects the fetch implementation.
	// Empty means auto: gateway when Endpoint is set, direct otherwise.
	Backend Backend

	// Timeout is the per-request timeout for fetches and probes.
	// This applies to individual requests, not the overall run duration.
	Timeout time.Duration

	// MaxDepth is the maximum recursion depth for traversals.
	// Depth 0 means only fetch the start URL.
	MaxDepth int

	// MaxPages is the maximum number of pages fetched per traversal.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// IncludePattern is a regular expression; when set, only URLs matching
	// it are enqueued during traversal. Compiled before the first fetch so
	// an invalid pattern fails the whole run up front.
	IncludePattern string

	// ExcludePattern is a regular expression; URLs matching it are never
	// enqueued. Compiled before the first fetch, like IncludePattern.
	ExcludePattern string

	// SessionID associates fetches with a registered browsing session.
	// Empty means sessionless fetching.
	SessionID string

	// CacheMode controls gateway cache behavior for fetches.
	CacheMode CacheMode

	// Delay is the pause between page fetches during a traversal.
	// Zero means no pause. Useful to avoid hammering small sites.
	Delay time.Duration

	// FollowLinks enables following discovered sitemap URLs during a
	// smart crawl. The follow count is bounded by the dispatcher.
	FollowLinks bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Concurrency is the number of parallel fetches for multi-URL runs.
	Concurrency int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .spindle in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profiles holds host-specific settings loaded from the config file.
	// This is populated by LoadConfigFile and consulted per fetch.
	Profiles *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of URLs to operate on.
	// Single-URL commands use the first entry.
	Targets []string

	// DBDir is the directory path for the session database.
	// Defaults to the XDG data directory (~/.local/share/spindle on Linux).
	// The sessions database lives here so separate invocations share it.
	DBDir string

	// UserAgent is the User-Agent header sent with direct HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory
	// exhaustion. Set to 0 to use the default (5MB).
	MaxBodySize int64

	// SOCKSProxy is an optional SOCKS5 proxy address ("host:port") for the
	// direct backend. Empty means direct connections.
	SOCKSProxy string

	// BrowserType is the browser engine requested when creating sessions.
	BrowserType string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxDepth:    DefaultMaxDepth,
		MaxPages:    DefaultMaxPages,
		CacheMode:   CacheModeEnabled,
		Concurrency: DefaultConcurrency,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BrowserType: DefaultBrowserType,
		DBDir:       XDGDataDir(),
	}
}

// ResolveBackend returns the effective backend after auto-selection.
func (c *Config) ResolveBackend() Backend {
	if c.Backend != BackendAuto {
		return c.Backend
	}
	if c.Endpoint != "" {
		return BackendGateway
	}
	return BackendDirect
}

// XDGDataDir returns the XDG data directory for spindle.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/spindle
// On macOS: ~/Library/Application Support/spindle
// On Windows: %LOCALAPPDATA%\spindle
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for spindle.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/spindle
// On macOS: ~/Library/Application Support/spindle
// On Windows: %APPDATA%\spindle
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for spindle.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/spindle
// On macOS: ~/Library/Caches/spindle
// On Windows: %LOCALAPPDATA%\spindle\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network activity.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target URL
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Depth must be non-negative; 0 means fetch only the start URL
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}

	// MaxPages must be non-negative; 0 means use the default
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// Concurrency must be positive; zero would mean no fetching
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// Backend must be a known value
	if !c.Backend.IsValid() {
		return ErrInvalidBackend
	}

	// The gateway backend needs an endpoint to talk to
	if c.Backend == BackendGateway && c.Endpoint == "" {
		return ErrMissingEndpoint
	}

	// CacheMode must be a known value
	if c.CacheMode != "" && !c.CacheMode.IsValid() {
		return ErrInvalidCacheMode
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
