// Package config provides configuration structures and utilities for spindle.
// It defines the main configuration options for the fetch backends, the
// traversal engine, session storage, and report generation preferences.
package config
