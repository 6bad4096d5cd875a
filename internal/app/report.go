package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/engine"
	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/output"
	"github.com/harborlight-systems/engagewatch/internal/priority"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

var (
	reportAsOf string
	reportJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Full evaluation: promoters, impact, and rankings",
	Long: `Run the complete evaluation pass and render every section:
promoter candidates, per-activity impact, and initiative rankings.
The customer and activity passes are independent and run concurrently.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default: now)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(reportAsOf)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	set, err := db.LoadFacts()
	if err != nil {
		return fmt.Errorf("loading facts: %w", err)
	}
	if len(set.Customers) == 0 {
		return fmt.Errorf("no facts imported yet; run 'engagewatch import <file>' first")
	}

	vectors, sheets, err := aggregate.Aggregate(set, asOf, cfg.Engine)
	if err != nil {
		return fmt.Errorf("aggregating facts: %w", err)
	}

	// The customer pass and the activity pass share no state, so they
	// run concurrently.
	var (
		records     []promoter.Record
		impacts     []impact.ActivityImpact
		initiatives []priority.PrioritizedInitiative
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		records = promoter.NewScorer(cfg.Engine).ScoreAll(vectors, asOf)
		return nil
	})
	g.Go(func() error {
		impacts = impact.NewEngine(cfg.Engine).EvaluateAll(sheets)
		attributions := priority.Attribute(sheets)
		initiatives = priority.NewPrioritizer(cfg.Engine).Prioritize(impacts, attributions)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if reportJSON || flagJSON {
		return printJSON(engine.Result{
			AsOf:        asOf,
			Promoters:   records,
			Impacts:     impacts,
			Initiatives: initiatives,
		})
	}

	renderPromoters(records, len(vectors))
	fmt.Println()
	renderImpacts(impacts)
	fmt.Println()
	renderRankings(initiatives)

	fmt.Println()
	fmt.Printf(" Evaluated %d customers and %d activities as of %s\n",
		len(vectors), len(sheets), asOf.Format("2006-01-02"))
	if top := topInitiative(initiatives); top != nil {
		fmt.Printf(" Top initiative: %s (priority %.1f)\n",
			output.StyleBold.Render(top.Impact.Activity.Name), top.PriorityScore)
	}
	return nil
}

func topInitiative(initiatives []priority.PrioritizedInitiative) *priority.PrioritizedInitiative {
	for i := range initiatives {
		if initiatives[i].PriorityRank == 1 {
			return &initiatives[i]
		}
	}
	return nil
}
