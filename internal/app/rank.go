package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlight-systems/engagewatch/internal/output"
	"github.com/harborlight-systems/engagewatch/internal/priority"
)

var (
	rankAsOf string
	rankTop  int
	rankJSON bool
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank initiatives by combined priority score",
	Long: `Blend each activity's ROI, retention lift, and referral economics
into a single priority score and rank all initiatives. Top-ranked
initiatives already marked for increased investment are flagged for
replication.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default: now)")
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "Show only the N highest-priority initiatives")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(rankAsOf)
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

	initiatives := res.Initiatives
	if rankTop > 0 && rankTop < len(initiatives) {
		initiatives = initiatives[:rankTop]
	}

	if rankJSON || flagJSON {
		return printJSON(map[string]any{
			"as_of":       res.AsOf,
			"initiatives": initiatives,
		})
	}

	renderRankings(initiatives)
	return nil
}

func renderRankings(initiatives []priority.PrioritizedInitiative) {
	fmt.Println(output.Section("Initiative Rankings"))
	fmt.Println()

	if len(initiatives) == 0 {
		fmt.Println(" No initiatives to rank.")
		return
	}

	tbl := output.NewTable("Rank", "Initiative", "Priority", "", "ROI", "Lift", "Referrals", "Action")
	tbl.AlignRight(0, 2, 4, 5, 6)
	for _, init := range initiatives {
		tbl.AddRow(
			fmt.Sprintf("%d", init.PriorityRank),
			init.Impact.Activity.Name,
			fmt.Sprintf("%.1f", init.PriorityScore),
			output.ScoreBar(init.PriorityScore, 10),
			output.ROI(init.Impact.ROI),
			fmt.Sprintf("%+.1f", init.Impact.RetentionLift),
			fmt.Sprintf("%d", init.Referral.Generated),
			output.Recommendation(init.Recommendation),
		)
	}
	tbl.Print()

	if flagVerbose {
		fmt.Println()
		for _, init := range initiatives {
			fmt.Printf(" #%d %s: %s\n", init.PriorityRank, init.Impact.Activity.Name,
				output.StyleMuted.Render(init.Reasoning))
		}
	}
}
