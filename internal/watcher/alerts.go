package watcher

import (
	"fmt"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

// Compare detects notable changes between two evaluations and returns alerts.
// It checks for critical, warning, and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical detects critical-level changes.
func compareCritical(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	// An activity's recommendation dropped to discontinue.
	for id, currImpact := range curr.impacts {
		prevImpact, existed := prev.impacts[id]
		if !existed {
			continue
		}
		if currImpact.Recommendation == impact.RecommendDiscontinue &&
			prevImpact.Recommendation != impact.RecommendDiscontinue {
			alerts = append(alerts, Alert{
				Level:   "critical",
				Title:   fmt.Sprintf("Discontinue: %s", currImpact.Activity.Name),
				Message: currImpact.Reasoning,
				Time:    now,
			})
		}
	}

	// The top-ranked initiative changed.
	if prev.TopActivityID != "" && curr.TopActivityID != prev.TopActivityID {
		alerts = append(alerts, Alert{
			Level:   "critical",
			Title:   "Top initiative changed",
			Message: fmt.Sprintf("Highest-priority initiative is now %s (was %s)", curr.TopActivityID, prev.TopActivityID),
			Time:    now,
		})
	}

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	// A customer no longer qualifies as a promoter.
	for id, prevRec := range prev.promoters {
		if _, still := curr.promoters[id]; !still {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Promoter lost: %s", prevRec.Name),
				Message: fmt.Sprintf("No longer qualifies (was %.0f, %s)", prevRec.Score, prevRec.Kind),
				Time:    now,
			})
		}
	}

	// An activity's retention trend flipped downward.
	for id, currImpact := range curr.impacts {
		prevImpact, existed := prev.impacts[id]
		if !existed {
			continue
		}
		if currImpact.Trend == impact.TrendDown && prevImpact.Trend != impact.TrendDown {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Retention turning down: %s", currImpact.Activity.Name),
				Message: fmt.Sprintf("Lift is %.1f points (was %.1f)", currImpact.RetentionLift, prevImpact.RetentionLift),
				Time:    now,
			})
		}
	}

	// A promoter's score dropped by 10 or more points.
	for id, currRec := range curr.promoters {
		prevRec, existed := prev.promoters[id]
		if !existed {
			continue
		}
		if drop := prevRec.Score - currRec.Score; drop >= 10 {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Score drop: %s", currRec.Name),
				Message: fmt.Sprintf("Promoter score fell from %.0f to %.0f", prevRec.Score, currRec.Score),
				Time:    now,
			})
		}
	}

	return alerts
}

// compareInfo detects informational changes.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	// A new promoter qualified.
	for id, currRec := range curr.promoters {
		if _, existed := prev.promoters[id]; !existed {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("New promoter: %s", currRec.Name),
				Message: fmt.Sprintf("Score %.0f, suggested for %s (%s)", currRec.Score, currRec.Kind, currRec.Timing),
				Time:    now,
			})
		}
	}

	// An existing promoter escalated to immediate outreach.
	for id, currRec := range curr.promoters {
		prevRec, existed := prev.promoters[id]
		if !existed {
			continue
		}
		if currRec.Timing == promoter.TimingNow && prevRec.Timing != promoter.TimingNow {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("Reach out now: %s", currRec.Name),
				Message: fmt.Sprintf("Outreach window moved from %s to now (score %.0f)", prevRec.Timing, currRec.Score),
				Time:    now,
			})
		}
	}

	// An activity's recommendation improved to increase or replicate.
	for id, currImpact := range curr.impacts {
		prevImpact, existed := prev.impacts[id]
		if !existed {
			continue
		}
		improved := currImpact.Recommendation == impact.RecommendIncrease ||
			currImpact.Recommendation == impact.RecommendReplicate
		was := prevImpact.Recommendation == impact.RecommendIncrease ||
			prevImpact.Recommendation == impact.RecommendReplicate
		if improved && !was {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("Recommendation raised: %s", currImpact.Activity.Name),
				Message: fmt.Sprintf("Now %s (was %s)", currImpact.Recommendation, prevImpact.Recommendation),
				Time:    now,
			})
		}
	}

	return alerts
}
