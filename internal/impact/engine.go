package impact

import (
	"fmt"
	"math"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/scale"
)

// Recommendation thresholds, evaluated top-down.
const (
	trendBandPoints = 1.0 // lift within +/- this band is "steady"
	reduceROIMax    = 50
	reduceLiftMax   = 2
	increaseROIMin  = 150
	increaseLiftMin = 10
)

// Engine evaluates activity fact sheets into impact verdicts.
type Engine struct {
	roiWindowDays int
}

// NewEngine builds an impact engine from a validated configuration.
func NewEngine(cfg config.Engine) *Engine {
	return &Engine{roiWindowDays: cfg.ROIWindowDays}
}

// Evaluate computes retention lift, incremental revenue, ROI, and the
// investment recommendation for one activity fact sheet.
func (e *Engine) Evaluate(sheet aggregate.ActivityFactSheet) ActivityImpact {
	out := ActivityImpact{Activity: sheet.Activity}

	out.RetentionRate = retentionRate(sheet.Cohort)
	out.BaselineRetention, out.RetentionLift = baselineAndLift(out.RetentionRate, sheet.Baseline)
	out.Trend = trendOf(out.RetentionLift)
	out.RevenueAttributed = incrementalRevenue(sheet.Cohort, sheet.Baseline)

	if roi, ok := scale.Ratio((out.RevenueAttributed-sheet.Activity.Investment)*100, sheet.Activity.Investment); ok {
		roi = scale.Round1(roi)
		out.ROI = &roi
	}
	out.PaybackPeriodDays = e.payback(sheet.Activity.Investment, out.RevenueAttributed)

	out.Recommendation, out.Reasoning = recommend(out, sheet)
	return out
}

// EvaluateAll evaluates every sheet in order.
func (e *Engine) EvaluateAll(sheets []aggregate.ActivityFactSheet) []ActivityImpact {
	impacts := make([]ActivityImpact, len(sheets))
	for i, s := range sheets {
		impacts[i] = e.Evaluate(s)
	}
	return impacts
}

// retentionRate is the share of the cohort still active at the horizon.
func retentionRate(cohort []aggregate.CohortMember) float64 {
	if len(cohort) == 0 {
		return 0
	}
	active := 0
	for _, m := range cohort {
		if m.ActiveAtHorizon {
			active++
		}
	}
	return scale.Round1(float64(active) / float64(len(cohort)) * 100)
}

// baselineAndLift returns the baseline retention and the lift over it.
// With no drawable control cohort the lift is zero: the effect is
// unmeasured, not assumed.
func baselineAndLift(rate float64, baseline []aggregate.CohortMember) (float64, float64) {
	if len(baseline) == 0 {
		return rate, 0
	}
	base := retentionRate(baseline)
	return base, scale.Round1(rate - base)
}

func trendOf(lift float64) Trend {
	switch {
	case lift > trendBandPoints:
		return TrendUp
	case lift < -trendBandPoints:
		return TrendDown
	default:
		return TrendSteady
	}
}

// incrementalRevenue is participant spend in the ROI window minus the
// baseline cohort's average spend scaled to participant count. This is
// the incremental model: revenue the customers would have generated
// anyway is not credited to the activity.
func incrementalRevenue(cohort, baseline []aggregate.CohortMember) float64 {
	gross := 0.0
	for _, m := range cohort {
		gross += m.SpendInWindow
	}
	if len(baseline) == 0 {
		return scale.Round1(gross)
	}
	baseSpend := 0.0
	for _, m := range baseline {
		baseSpend += m.SpendInWindow
	}
	avgBase := baseSpend / float64(len(baseline))
	return scale.Round1(gross - avgBase*float64(len(cohort)))
}

// payback estimates the days needed for attributed revenue to cover the
// investment, assuming the window's revenue rate holds. Nil when there
// is no investment to recoup or no positive revenue to recoup it with.
func (e *Engine) payback(investment, revenue float64) *int {
	if investment <= 0 || revenue <= 0 {
		return nil
	}
	dailyRate := revenue / float64(e.roiWindowDays)
	days := int(math.Ceil(investment / dailyRate))
	return &days
}

// recommend applies the threshold ladder top-down and builds reasoning
// from the actual numbers that crossed each threshold.
func recommend(out ActivityImpact, sheet aggregate.ActivityFactSheet) (Recommendation, string) {
	lift := out.RetentionLift

	// No measurable ROI: the verdict rests on retention lift alone.
	if out.ROI == nil {
		switch {
		case lift >= increaseLiftMin:
			return RecommendIncrease, fmt.Sprintf(
				"No investment recorded, so ROI is undefined; retention lift of %+.1f points (%.1f%% vs %.1f%% baseline) clears the %.0f-point bar on its own.",
				lift, out.RetentionRate, out.BaselineRetention, float64(increaseLiftMin))
		case lift <= 0:
			return RecommendReduce, fmt.Sprintf(
				"No investment recorded, so ROI is undefined, and retention lift is %+.1f points: no measurable benefit to keep funding effort toward.",
				lift)
		default:
			return RecommendMaintain, fmt.Sprintf(
				"No investment recorded, so ROI is undefined; retention lift of %+.1f points is positive but under the %.0f-point increase bar.",
				lift, float64(increaseLiftMin))
		}
	}

	roi := *out.ROI
	switch {
	case roi < 0 && lift <= 0:
		return RecommendDiscontinue, fmt.Sprintf(
			"ROI is %.1f%% (%.0f attributed against %.0f invested) and retention lift is %+.1f points: the activity loses money without retaining anyone.",
			roi, out.RevenueAttributed, sheet.Activity.Investment, lift)
	case roi < reduceROIMax && lift < reduceLiftMax:
		return RecommendReduce, fmt.Sprintf(
			"ROI of %.1f%% is under the %.0f%% bar and retention lift of %+.1f points is under %.0f: scale the spend back.",
			roi, float64(reduceROIMax), lift, float64(reduceLiftMax))
	case roi >= increaseROIMin || lift >= increaseLiftMin:
		return RecommendIncrease, fmt.Sprintf(
			"ROI of %.1f%% (threshold %.0f%%) with retention lift of %+.1f points (threshold %.0f): worth putting more behind.",
			roi, float64(increaseROIMin), lift, float64(increaseLiftMin))
	default:
		return RecommendMaintain, fmt.Sprintf(
			"ROI of %.1f%% and retention lift of %+.1f points sit between the reduce and increase thresholds: hold the current investment.",
			roi, lift)
	}
}
