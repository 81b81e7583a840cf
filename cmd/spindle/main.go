// Package main provides the entry point for the spindle CLI.
//
// Spindle is a content-aware crawler that fetches pages through a remote
// render gateway, with direct HTTP and local headless browser fallbacks.
//
// Usage:
//
//	spindle crawl <url>
//	spindle smart <url>
//	spindle session create --url <url>
//
// See --help for all available options.
package main

// main is the entry point for spindle.
func main() {
	Execute()
}
