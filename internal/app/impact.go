package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/output"
)

var (
	impactAsOf string
	impactJSON bool
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Measure retention and revenue impact per activity",
	Long: `Evaluate each engagement activity against a baseline cohort of
comparable non-participants: retention lift at the measurement horizon,
incremental revenue, ROI, and an investment recommendation.`,
	RunE: runImpact,
}

func init() {
	impactCmd.Flags().StringVar(&impactAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default: now)")
	impactCmd.Flags().BoolVar(&impactJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(impactAsOf)
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

	if impactJSON || flagJSON {
		return printJSON(map[string]any{
			"as_of":   res.AsOf,
			"impacts": res.Impacts,
		})
	}

	renderImpacts(res.Impacts)
	return nil
}

func renderImpacts(impacts []impact.ActivityImpact) {
	fmt.Println(output.Section("Activity Impact"))
	fmt.Println()

	if len(impacts) == 0 {
		fmt.Println(" No activities to evaluate.")
		return
	}

	tbl := output.NewTable("Activity", "Retention", "Baseline", "Lift", "Trend", "Revenue", "ROI", "Action")
	tbl.AlignRight(1, 2, 3, 5, 6)
	for _, im := range impacts {
		tbl.AddRow(
			im.Activity.Name,
			fmt.Sprintf("%.1f%%", im.RetentionRate),
			fmt.Sprintf("%.1f%%", im.BaselineRetention),
			fmt.Sprintf("%+.1f", im.RetentionLift),
			output.TrendGlyph(im.Trend),
			output.Currency(im.RevenueAttributed),
			output.ROI(im.ROI),
			output.Recommendation(im.Recommendation),
		)
	}
	tbl.Print()

	if flagVerbose {
		fmt.Println()
		for _, im := range impacts {
			fmt.Printf(" %s: %s\n", im.Activity.Name, output.StyleMuted.Render(im.Reasoning))
			if im.PaybackPeriodDays != nil {
				fmt.Printf("   payback in ~%d days\n", *im.PaybackPeriodDays)
			}
		}
	}
}
