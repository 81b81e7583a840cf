// Package main provides the entry point for the spindle CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for spindle.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spindle",
		Short: "Content-aware crawler for a remote render gateway",
		Long: `Spindle crawls sites through a remote render gateway that executes
JavaScript before returning page content.

The crawl command walks a site breadth-first and reports every page it
fetched. The smart command probes one URL first and picks a fetch strategy
from the detected content type. Persistent browsing sessions keep cookies
and login state alive across commands.

Without a gateway endpoint, spindle falls back to plain HTTP fetching with
local content extraction.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSmartCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewSessionCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
