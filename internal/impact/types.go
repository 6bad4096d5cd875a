// Package impact attributes retention and revenue effects to community
// activities and derives investment recommendations.
package impact

import (
	"github.com/harborlight-systems/engagewatch/internal/aggregate"
)

// Trend describes the direction of an activity's retention effect.
type Trend string

// Retention trends.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendSteady Trend = "steady"
)

// Valid reports whether the trend is one of the closed set.
func (t Trend) Valid() bool {
	switch t {
	case TrendUp, TrendDown, TrendSteady:
		return true
	}
	return false
}

// Recommendation is the investment verdict for an activity.
type Recommendation string

// Investment recommendations. Replicate is assigned only by the
// prioritizer, for top-ranked activities already marked increase.
const (
	RecommendIncrease    Recommendation = "increase"
	RecommendMaintain    Recommendation = "maintain"
	RecommendReduce      Recommendation = "reduce"
	RecommendDiscontinue Recommendation = "discontinue"
	RecommendReplicate   Recommendation = "replicate"
)

// Valid reports whether the recommendation is one of the closed set.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendIncrease, RecommendMaintain, RecommendReduce,
		RecommendDiscontinue, RecommendReplicate:
		return true
	}
	return false
}

// ActivityImpact is the engine's verdict for one activity. ROI and
// PaybackPeriodDays are nil when they cannot be computed (zero
// investment, no attributed revenue) rather than infinite.
type ActivityImpact struct {
	Activity          aggregate.ActivityRecord `json:"activity"`
	RetentionRate     float64                  `json:"retention_rate"`     // 0-100
	BaselineRetention float64                  `json:"baseline_retention"` // 0-100
	RetentionLift     float64                  `json:"retention_lift"`     // percentage points
	Trend             Trend                    `json:"trend"`
	RevenueAttributed float64                  `json:"revenue_attributed"`
	ROI               *float64                 `json:"roi,omitempty"` // percentage
	PaybackPeriodDays *int                     `json:"payback_period_days,omitempty"`
	Recommendation    Recommendation           `json:"recommendation"`
	Reasoning         string                   `json:"reasoning"`
}
