// Package priority merges referral, retention, and revenue signals into
// a single ranked initiative list with investment recommendations.
package priority

import (
	"github.com/harborlight-systems/engagewatch/internal/impact"
)

// ReferralAttribution is the referral performance attributed to one
// activity. ROI is nil when the activity had no investment.
type ReferralAttribution struct {
	ActivityID     string   `json:"activity_id"`
	Generated      int      `json:"referrals_generated"`
	ConversionRate float64  `json:"referral_conversion_rate"` // 0-100
	Revenue        float64  `json:"referral_revenue"`
	ROI            *float64 `json:"referral_roi,omitempty"` // percentage
}

// PrioritizedInitiative wraps one activity's impact with its referral
// attribution, priority score, and dense 1-based rank.
type PrioritizedInitiative struct {
	Impact         impact.ActivityImpact `json:"impact"`
	Referral       ReferralAttribution   `json:"referral"`
	PriorityScore  float64               `json:"priority_score"` // 0-100
	PriorityRank   int                   `json:"priority_rank"`
	Recommendation impact.Recommendation `json:"recommendation"`
	Reasoning      string                `json:"reasoning"`
}
