// Package session manages persistent browsing sessions on the render
// gateway: creating them, recording when they were last used, and
// clearing them.
//
// Session records live in a Store. The in-memory store backs tests and
// one-shot runs; the SQLite store survives across invocations so a
// session created yesterday can be reused today. The Registry wraps a
// Store with identifier generation, the optional priming fetch that
// warms a session right after creation, and age bookkeeping for
// listings.
package session
