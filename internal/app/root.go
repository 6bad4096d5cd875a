// Package app contains the Cobra command tree for engagewatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "engagewatch",
	Short: "Engagement value scoring and initiative prioritization",
	Long: `engagewatch scores customer engagement data to find promoter
candidates, measures the retention and revenue impact of engagement
activities, and ranks initiatives by combined value.

Import a facts file with 'engagewatch import', then use a subcommand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("engagewatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  import     Load an engagement facts file into the local database")
		fmt.Println("  promoters  Score customers and suggest referral/testimonial outreach")
		fmt.Println("  impact     Measure retention and revenue impact per activity")
		fmt.Println("  rank       Rank initiatives by combined priority score")
		fmt.Println("  report     Full evaluation: promoters, impact, and rankings")
		fmt.Println("  track      Record a run and compare against the previous one")
		fmt.Println("  watch      Monitor the data and alert on outcome changes")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/engagewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
