// Package fetch provides the page-fetch capability that the traversal
// engine, dispatcher, and session registry are built on.
//
// The Fetcher interface abstracts over three implementations:
//   - Client: talks to the remote render gateway over HTTP/JSON
//   - Direct: plain HTTP with local HTML extraction
//   - Browser: local headless Chrome rendering
//
// All implementations report per-page failures through Result rather than
// Go errors where possible, so callers can treat a broken page as data
// instead of aborting a whole run. Transport-level problems (unreachable
// gateway, invalid URL) are returned as errors.
//
// The package also provides MultiFetcher for bounded-concurrency fetching
// of independent URL lists.
package fetch
