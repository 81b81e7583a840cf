package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/spindle/internal/fetch"
	"github.com/nao1215/spindle/internal/model"
)

// defaultBrowserType is recorded on sessions created without an
// explicit browser type.
const defaultBrowserType = "chromium"

// Registry is the session API used by the CLI and the traversal engine.
// It wraps a Store with identifier generation, the optional priming
// fetch, and age bookkeeping.
type Registry struct {
	store   Store
	fetcher fetch.Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPrimingFetcher sets the fetcher used to warm a session right
// after creation. Without one, sessions are created cold.
func WithPrimingFetcher(f fetch.Fetcher) RegistryOption {
	return func(r *Registry) {
		r.fetcher = f
	}
}

// WithRegistryLogger sets the logger for session lifecycle events.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry on top of store.
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRequest describes a session to create.
type CreateRequest struct {
	// ID is an explicit identifier. Empty means generate one.
	ID string

	// InitialURL, when set, is fetched once through the new session so
	// the gateway browser arrives warm (cookies set, caches filled).
	InitialURL string

	// BrowserType names the gateway browser profile. Empty means
	// chromium.
	BrowserType string

	// Metadata is free-form caller data stored with the session.
	Metadata map[string]string
}

// Create registers a new session and returns its record.
//
// The record is stored before the priming fetch runs: a session whose
// first page load fails is still a valid session, so the failure lands
// in LastError instead of blocking creation. An explicit ID that
// already exists is rejected with ErrDuplicateID.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*model.SessionRecord, error) {
	now := r.now()

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = generateID(now)
	} else {
		existing, err := r.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
	}

	browserType := req.BrowserType
	if browserType == "" {
		browserType = defaultBrowserType
	}

	record := &model.SessionRecord{
		ID:          id,
		InitialURL:  req.InitialURL,
		BrowserType: browserType,
		CreatedAt:   now,
		LastUsed:    now,
		Metadata:    req.Metadata,
	}
	if err := r.store.Put(ctx, record); err != nil {
		return nil, err
	}
	r.logger.Info("session created", "session_id", id, "browser_type", browserType)

	if req.InitialURL != "" && r.fetcher != nil {
		if err := r.prime(ctx, record); err != nil {
			record.LastError = err.Error()
			if putErr := r.store.Put(ctx, record); putErr != nil {
				return nil, putErr
			}
			r.logger.Warn("session priming fetch failed",
				"session_id", id, "url", req.InitialURL, "error", err)
		}
	}

	return record, nil
}

// prime runs the initial fetch through the new session.
func (r *Registry) prime(ctx context.Context, record *model.SessionRecord) error {
	result, err := r.fetcher.Fetch(ctx, record.InitialURL, fetch.Options{SessionID: record.ID})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("initial fetch failed: %s", result.ErrorMessage)
	}
	return nil
}

// Touch marks the session as used now. It reports whether the session
// exists; touching an absent session is not an error.
func (r *Registry) Touch(ctx context.Context, id string) (bool, error) {
	return r.store.Touch(ctx, id, r.now())
}

// Get returns the session record, or nil when absent.
func (r *Registry) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	return r.store.Get(ctx, id)
}

// Clear removes the session. It reports whether the session existed;
// clearing an absent session is not an error so clears are idempotent.
func (r *Registry) Clear(ctx context.Context, id string) (bool, error) {
	found, err := r.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if found {
		r.logger.Info("session cleared", "session_id", id)
	}
	return found, nil
}

// List returns one summary per session, oldest first, with ages
// computed against the registry clock.
func (r *Registry) List(ctx context.Context) ([]model.SessionSummary, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	summaries := make([]model.SessionSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.Summarize(now))
	}
	return summaries, nil
}

// generateID builds a session identifier from the creation time and a
// random suffix. The timestamp keeps identifiers sortable by creation
// order; the suffix keeps two sessions created in the same millisecond
// distinct.
func generateID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}
