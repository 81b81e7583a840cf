// Package traverse implements breadth-first traversal of a site
// starting from a single URL.
//
// The engine fetches pages through a fetch.Fetcher, follows internal
// links level by level, and stops when it runs out of links, reaches
// the depth limit, or exhausts the page budget. Individual page
// failures are recorded on the page and never abort the run; only an
// unusable request (bad start URL, invalid filter pattern) is an error.
package traverse
