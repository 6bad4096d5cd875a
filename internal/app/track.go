package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlight-systems/engagewatch/internal/output"
	"github.com/harborlight-systems/engagewatch/internal/store"
)

var (
	trackAsOf    string
	trackCompare int
	trackJSON    bool
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Record a run and compare against the previous one",
	Long: `Run a full evaluation, persist its outputs as a new run, and show
how the summary metrics moved since the previous run: promoter counts,
average score, and the top initiative.`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default: now)")
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous run (1 = most recent)")
	trackCmd.Flags().BoolVar(&trackJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(trackAsOf)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	res, err := evaluate(db, cfg, asOf)
	if err != nil {
		return err
	}

	runID, err := db.CreateRun("track", appVersion)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	if err := db.SaveRunOutputs(runID, res.Promoters, res.Impacts, res.Initiatives); err != nil {
		return fmt.Errorf("saving run outputs: %w", err)
	}

	current, err := db.GetLatestRun()
	if err != nil {
		return fmt.Errorf("loading current run: %w", err)
	}

	// trackCompare=1 means the immediate predecessor (offset 2 from newest).
	previous, err := db.GetRunN(trackCompare + 1)
	if err != nil {
		return fmt.Errorf("loading previous run: %w", err)
	}

	var diff *store.RunDiff
	if previous != nil {
		diff, err = db.DiffRuns(previous, current)
		if err != nil {
			return fmt.Errorf("comparing runs: %w", err)
		}
	}

	if trackJSON || flagJSON {
		result := map[string]any{"run": current}
		if diff != nil {
			result["diff"] = diff
		}
		return printJSON(result)
	}

	renderTrack(current, diff)
	return nil
}

func renderTrack(current *store.Run, diff *store.RunDiff) {
	fmt.Println(output.Section("Track: Run Comparison"))
	fmt.Println()
	fmt.Printf(" Run %s recorded at %s\n\n", current.ID[:8], current.TakenAt.Format("2006-01-02 15:04:05"))

	if diff == nil {
		fmt.Println(" First run recorded. Run 'engagewatch track' again later to see trends.")
		return
	}

	fmt.Printf(" Comparing against run %s (%s)\n\n",
		diff.Previous.ID[:8], diff.Previous.TakenAt.Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Change")
	tbl.AlignRight(1, 2)
	for _, d := range diff.Deltas {
		tbl.AddRow(
			d.Name,
			fmt.Sprintf("%.1f", d.Previous),
			fmt.Sprintf("%.1f", d.Current),
			output.DeltaArrow(d.Delta),
		)
	}
	tbl.Print()
}
