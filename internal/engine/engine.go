// Package engine runs the full scoring pipeline over a facts snapshot:
// aggregation, promoter scoring, activity impact evaluation, and
// initiative prioritization. Results are deterministic for a given
// snapshot, evaluation time, and configuration.
package engine

import (
	"fmt"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/facts"
	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/priority"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

// Result bundles the outputs of one evaluation pass.
type Result struct {
	AsOf        time.Time                        `json:"as_of"`
	Promoters   []promoter.Record                `json:"promoters"`
	Impacts     []impact.ActivityImpact          `json:"impacts"`
	Initiatives []priority.PrioritizedInitiative `json:"initiatives"`

	Vectors []aggregate.CustomerMetricVector `json:"-"`
	Sheets  []aggregate.ActivityFactSheet    `json:"-"`
}

// Run evaluates a facts snapshot as of the given time.
func Run(set *facts.Set, asOf time.Time, cfg config.Engine) (*Result, error) {
	vectors, sheets, err := aggregate.Aggregate(set, asOf, cfg)
	if err != nil {
		return nil, fmt.Errorf("aggregating facts: %w", err)
	}

	records := promoter.NewScorer(cfg).ScoreAll(vectors, asOf)
	impacts := impact.NewEngine(cfg).EvaluateAll(sheets)
	attributions := priority.Attribute(sheets)
	initiatives := priority.NewPrioritizer(cfg).Prioritize(impacts, attributions)

	return &Result{
		AsOf:        asOf,
		Promoters:   records,
		Impacts:     impacts,
		Initiatives: initiatives,
		Vectors:     vectors,
		Sheets:      sheets,
	}, nil
}
