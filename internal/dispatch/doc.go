// Package dispatch implements content-type aware fetching: probe the
// target's type first, then hand the URL to the strategy that knows how
// to treat it.
//
// Classification is deliberately coarse. Five labels (html, sitemap,
// feed, json, text) cover everything the strategies distinguish;
// anything unrecognized degrades to html, which extracts something
// useful from almost any response. Sitemaps get their own strategy
// because their value is the URL list, not the markup.
package dispatch
