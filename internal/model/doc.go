// Package model defines the core data structures used throughout spindle.
//
// This package contains the following main types:
//   - PageResult: The outcome of fetching a single page
//   - TraversalResult: The aggregate result of a recursive crawl
//   - DispatchReport: The result of a content-type aware smart crawl
//   - SessionRecord: A browsing session tracked by the session registry
//   - Label: The content classification assigned by the dispatcher
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (traverse, dispatch, session, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
