package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"audioscribe/cmd/a2t/cmd/export"
	"audioscribe/cmd/a2t/cmd/fetch"
	"audioscribe/cmd/a2t/cmd/history"
	"audioscribe/cmd/a2t/cmd/serve"
	"audioscribe/cmd/a2t/cmd/transcribe"
	"audioscribe/cmd/a2t/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a2t",
	Short: "Turn audio into text, over HTTP or in batches from the command line",
	Long: `Turn audio into text with pluggable transcription providers.
- serve runs the HTTP API with upload, history, caching and export
- transcribe batch-processes a local audio directory
- fetch downloads audio referenced by a web page
- every finished transcription is recorded in the history store`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(fetch.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
