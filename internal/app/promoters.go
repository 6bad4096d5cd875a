package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harborlight-systems/engagewatch/internal/output"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

var (
	promotersAsOf   string
	promotersKind   string
	promotersTiming string
	promotersJSON   bool
)

var promotersCmd = &cobra.Command{
	Use:   "promoters",
	Short: "Score customers and suggest referral/testimonial outreach",
	Long: `Compute a 0-100 promoter score for every active customer from
satisfaction, attendance, objective completion, and feedback signals.
Customers who clear the qualification thresholds are listed with the
suggested outreach type and timing window.`,
	RunE: runPromoters,
}

func init() {
	promotersCmd.Flags().StringVar(&promotersAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default: now)")
	promotersCmd.Flags().StringVar(&promotersKind, "kind", "", "Filter by suggestion: referral, testimonial, or both")
	promotersCmd.Flags().StringVar(&promotersTiming, "timing", "", "Filter by timing: now, this-week, this-month, or later")
	promotersCmd.Flags().BoolVar(&promotersJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(promotersCmd)
}

func runPromoters(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(promotersAsOf)
	if err != nil {
		return err
	}

	if promotersKind != "" && !promoter.SuggestionKind(promotersKind).Valid() {
		return fmt.Errorf("invalid --kind %q", promotersKind)
	}
	if promotersTiming != "" && !promoter.Timing(promotersTiming).Valid() {
		return fmt.Errorf("invalid --timing %q", promotersTiming)
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

	records := filterPromoters(res.Promoters, promotersKind, promotersTiming)

	if promotersJSON || flagJSON {
		return printJSON(map[string]any{
			"as_of":     res.AsOf,
			"promoters": records,
		})
	}

	renderPromoters(records, len(res.Vectors))
	return nil
}

func filterPromoters(records []promoter.Record, kind, timing string) []promoter.Record {
	if kind == "" && timing == "" {
		return records
	}
	var out []promoter.Record
	for _, r := range records {
		if kind != "" && string(r.Kind) != kind {
			continue
		}
		if timing != "" && string(r.Timing) != timing {
			continue
		}
		out = append(out, r)
	}
	return out
}

func renderPromoters(records []promoter.Record, totalCustomers int) {
	fmt.Println(output.Section("Promoter Candidates"))
	fmt.Println()

	if len(records) == 0 {
		fmt.Println(" No customers qualify for outreach right now.")
		return
	}

	fmt.Printf(" %d of %d customers qualify\n\n", len(records), totalCustomers)

	tbl := output.NewTable("Customer", "Score", "", "Suggest", "Timing", "Why")
	tbl.AlignRight(1)
	for _, r := range records {
		tbl.AddRow(
			r.Name,
			fmt.Sprintf("%.0f", r.Score),
			output.ScoreBar(r.Score, 10),
			string(r.Kind),
			output.Timing(r.Timing),
			r.Reason,
		)
	}
	tbl.Print()

	if flagVerbose {
		fmt.Println()
		for _, r := range records {
			if len(r.Tags) > 0 {
				fmt.Printf(" %s: %s\n", r.Name, output.StyleMuted.Render(strings.Join(r.Tags, ", ")))
			}
		}
	}
}
