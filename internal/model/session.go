package model

import "time"

// SessionRecord is a browsing session tracked by the session registry.
// A session groups related fetches on the remote side (cookies, auth state,
// rendered tabs); the registry only tracks identity and usage times.
type SessionRecord struct {
	// ID is the unique session identifier.
	// Generated as session_<millis>_<suffix> unless the caller supplied one.
	ID string `json:"id"`

	// InitialURL is the URL used for the priming fetch at creation time.
	// Empty when the session was created without one.
	InitialURL string `json:"initial_url,omitempty"`

	// BrowserType is the requested browser engine for rendered fetches.
	BrowserType string `json:"browser_type,omitempty"`

	// CreatedAt is when the session was registered.
	CreatedAt time.Time `json:"created_at"`

	// LastUsed is updated every time the session is touched by a fetch,
	// traversal, or smart crawl.
	LastUsed time.Time `json:"last_used"`

	// LastError records the most recent priming failure, if any.
	// A failed priming fetch does not invalidate the session.
	LastError string `json:"last_error,omitempty"`

	// Metadata holds free-form key/value pairs supplied at creation.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SessionSummary is a SessionRecord enriched with derived age fields for
// listing. Minutes are computed against a fixed "now" so that one listing
// is internally consistent.
type SessionSummary struct {
	// ID is the session identifier.
	ID string `json:"id"`

	// InitialURL is the session's priming URL, if any.
	InitialURL string `json:"initial_url,omitempty"`

	// BrowserType is the requested browser engine.
	BrowserType string `json:"browser_type,omitempty"`

	// CreatedAt is when the session was registered.
	CreatedAt time.Time `json:"created_at"`

	// LastUsed is when the session was last touched.
	LastUsed time.Time `json:"last_used"`

	// AgeMinutes is the time since creation, in minutes.
	AgeMinutes float64 `json:"age_minutes"`

	// IdleMinutes is the time since last use, in minutes.
	IdleMinutes float64 `json:"idle_minutes"`
}

// Summarize derives a SessionSummary from the record at the given time.
func (r *SessionRecord) Summarize(now time.Time) SessionSummary {
	return SessionSummary{
		ID:          r.ID,
		InitialURL:  r.InitialURL,
		BrowserType: r.BrowserType,
		CreatedAt:   r.CreatedAt,
		LastUsed:    r.LastUsed,
		AgeMinutes:  now.Sub(r.CreatedAt).Minutes(),
		IdleMinutes: now.Sub(r.LastUsed).Minutes(),
	}
}
