package priority

import (
	"fmt"
	"sort"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/scale"
)

// replicateRankMax is the rank at or above which an increase verdict is
// promoted to replicate.
const replicateRankMax = 3

// neutralNorm is the normalized contribution of a signal that cannot be
// measured (nil ROI): the midpoint, so unmeasurable ROI neither rewards
// nor punishes the initiative.
const neutralNorm = 50.0

// Prioritizer ranks activity impacts into an initiative priority list.
type Prioritizer struct {
	weights config.PriorityWeights
	bounds  config.NormBounds
}

// NewPrioritizer builds a prioritizer from a validated configuration.
func NewPrioritizer(cfg config.Engine) *Prioritizer {
	return &Prioritizer{
		weights: cfg.PriorityWeights,
		bounds:  cfg.NormBounds,
	}
}

// Attribute computes the referral attribution for each fact sheet, in
// sheet order.
func Attribute(sheets []aggregate.ActivityFactSheet) []ReferralAttribution {
	out := make([]ReferralAttribution, len(sheets))
	for i, s := range sheets {
		attr := ReferralAttribution{
			ActivityID: s.Activity.ID,
			Generated:  s.Referrals.Generated,
			Revenue:    s.Referrals.Revenue,
		}
		if rate, ok := scale.Ratio(float64(s.Referrals.Converted)*100, float64(s.Referrals.Generated)); ok {
			attr.ConversionRate = scale.Round1(rate)
		}
		if roi, ok := scale.Ratio((s.Referrals.Revenue-s.Activity.Investment)*100, s.Activity.Investment); ok {
			roi = scale.Round1(roi)
			attr.ROI = &roi
		}
		out[i] = attr
	}
	return out
}

// Prioritize blends each activity's ROI, retention lift, and referral
// ROI into a priority score, sorts descending, and assigns dense
// 1-based ranks. Ties break on higher retention lift, then more
// participants (larger samples are statistically sturdier), then
// lexicographic activity ID, so the ranking is a total, deterministic
// order. Attributions are matched to impacts by activity ID.
func (p *Prioritizer) Prioritize(impacts []impact.ActivityImpact, attributions []ReferralAttribution) []PrioritizedInitiative {
	attrByID := make(map[string]ReferralAttribution, len(attributions))
	for _, a := range attributions {
		attrByID[a.ActivityID] = a
	}

	out := make([]PrioritizedInitiative, len(impacts))
	for i, imp := range impacts {
		attr := attrByID[imp.Activity.ID]
		attr.ActivityID = imp.Activity.ID
		out[i] = PrioritizedInitiative{
			Impact:        imp,
			Referral:      attr,
			PriorityScore: p.score(imp, attr),
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return p.less(out[j], out[i])
	})

	for i := range out {
		out[i].PriorityRank = i + 1
		out[i].Recommendation, out[i].Reasoning = finalRecommendation(out[i])
	}

	return out
}

// score is the weighted blend of the three normalized signals.
func (p *Prioritizer) score(imp impact.ActivityImpact, attr ReferralAttribution) float64 {
	roiNorm := neutralNorm
	if imp.ROI != nil {
		roiNorm = scale.NormBounds(*imp.ROI, p.bounds.ROI)
	}
	refNorm := neutralNorm
	if attr.ROI != nil {
		refNorm = scale.NormBounds(*attr.ROI, p.bounds.ReferralROI)
	}
	liftNorm := scale.NormBounds(imp.RetentionLift, p.bounds.RetentionLift)

	blended := p.weights.ROI*roiNorm +
		p.weights.RetentionLift*liftNorm +
		p.weights.ReferralROI*refNorm
	return scale.Clamp(scale.Round1(blended), 0, 100)
}

// less reports whether a ranks strictly after b (the documented
// tie-break chain).
func (p *Prioritizer) less(a, b PrioritizedInitiative) bool {
	if a.PriorityScore != b.PriorityScore {
		return a.PriorityScore < b.PriorityScore
	}
	if a.Impact.RetentionLift != b.Impact.RetentionLift {
		return a.Impact.RetentionLift < b.Impact.RetentionLift
	}
	if a.Impact.Activity.Participants != b.Impact.Activity.Participants {
		return a.Impact.Activity.Participants < b.Impact.Activity.Participants
	}
	return a.Impact.Activity.ID > b.Impact.Activity.ID
}

// finalRecommendation promotes top-ranked increase verdicts to
// replicate; every other verdict is inherited unchanged so a ranking
// position never overrides a legitimately poor ROI or retention verdict.
func finalRecommendation(init PrioritizedInitiative) (impact.Recommendation, string) {
	if init.PriorityRank <= replicateRankMax && init.Impact.Recommendation == impact.RecommendIncrease {
		return impact.RecommendReplicate, fmt.Sprintf(
			"Ranked #%d with priority score %.1f and an increase verdict: replicate this format. %s",
			init.PriorityRank, init.PriorityScore, init.Impact.Reasoning)
	}
	return init.Impact.Recommendation, init.Impact.Reasoning
}
