package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/azh05/Recapsule/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recapsule",
	Short: "Recapsule episode generation server",
	Long: `Recapsule - A generated-podcast API server

Recapsule turns a topic into a finished two-host audio episode:
it researches the topic, writes a dialogue script, synthesizes
each line, and stitches the result into a single track with a
timeline and reconciled citations.

The server exposes a small HTTP API for creating episodes,
polling their generation status, and subscribing to the RSS feed
of completed episodes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)
}

// loadConfig loads the configuration when a command needs it
// This is called lazily only when a command that needs config runs
func loadConfig() {
	// Skip config loading for commands that don't need it
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
