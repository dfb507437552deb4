package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "augur",
	Short: "Political-event extraction from news text",
	Long: "Augur converts raw news-style text into coded political-event records\nby segmenting documents into sentences and driving each sentence through\nan external constituency parser and an external event-coding engine.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.Version = version
}
