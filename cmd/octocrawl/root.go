// Package main provides the entry point for the OctoCrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for OctoCrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "octocrawl",
		Short: "Concurrent website crawler and sitemap builder",
		Long: `OctoCrawl is a concurrent website crawler. It maps a site's URL space
into a sitemap tree, detects server-side technologies from response
headers, and can run post-crawl analysis modules over the results.

Crawling stays on the start URL's host; links to other domains are
recorded but never followed.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
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
