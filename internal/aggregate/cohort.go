package aggregate

import (
	"sort"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/facts"
)

// minAcquisitionWindow is the smallest acquisition window used when
// selecting a baseline cohort; very tight participant join ranges are
// padded out to this so the pool of candidate controls is not empty.
const minAcquisitionWindow = 30 * 24 * time.Hour

// buildCohort computes activity-relative figures for each participant:
// whether they were still active at the retention horizon, and what they
// spent between the activity's end and the end of the ROI window.
// Members are sorted by customer ID so cohort order is deterministic.
func buildCohort(ids []string, customers map[string]facts.Customer, payments map[string][]facts.Payment, windowStart, windowEnd, horizon time.Time) []CohortMember {
	members := make([]CohortMember, 0, len(ids))
	for _, id := range ids {
		c, ok := customers[id]
		if !ok {
			continue
		}
		members = append(members, newMember(c, payments[id], windowStart, windowEnd, horizon))
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CustomerID < members[j].CustomerID
	})
	return members
}

// buildBaseline selects a control cohort: non-participants whose join
// date falls within the participant cohort's acquisition period, so that
// general trends (seasonality, pricing changes) affect both groups
// alike. The pool is sorted by join date then ID and truncated to the
// participant count, giving an equivalent-sized, deterministic control.
func buildBaseline(cohort []CohortMember, participants map[string]bool, customers map[string]facts.Customer, payments map[string][]facts.Payment, windowStart, windowEnd, horizon time.Time) []CohortMember {
	if len(cohort) == 0 {
		return nil
	}

	earliest, latest := acquisitionPeriod(cohort)

	pool := make([]facts.Customer, 0, len(customers))
	for _, c := range customers {
		if participants[c.ID] {
			continue
		}
		if c.JoinedAt.Before(earliest) || c.JoinedAt.After(latest) {
			continue
		}
		pool = append(pool, c)
	}

	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].JoinedAt.Equal(pool[j].JoinedAt) {
			return pool[i].JoinedAt.Before(pool[j].JoinedAt)
		}
		return pool[i].ID < pool[j].ID
	})
	if len(pool) > len(cohort) {
		pool = pool[:len(cohort)]
	}

	members := make([]CohortMember, 0, len(pool))
	for _, c := range pool {
		members = append(members, newMember(c, payments[c.ID], windowStart, windowEnd, horizon))
	}
	return members
}

// acquisitionPeriod returns the participant join-date range, padded
// symmetrically to at least minAcquisitionWindow.
func acquisitionPeriod(cohort []CohortMember) (time.Time, time.Time) {
	earliest, latest := cohort[0].JoinedAt, cohort[0].JoinedAt
	for _, m := range cohort[1:] {
		if m.JoinedAt.Before(earliest) {
			earliest = m.JoinedAt
		}
		if m.JoinedAt.After(latest) {
			latest = m.JoinedAt
		}
	}
	if span := latest.Sub(earliest); span < minAcquisitionWindow {
		pad := (minAcquisitionWindow - span) / 2
		earliest = earliest.Add(-pad)
		latest = latest.Add(pad)
	}
	return earliest, latest
}

func newMember(c facts.Customer, payments []facts.Payment, windowStart, windowEnd, horizon time.Time) CohortMember {
	spend := 0.0
	for _, p := range payments {
		if p.PaidAt.After(windowStart) && !p.PaidAt.After(windowEnd) {
			spend += p.Amount
		}
	}
	return CohortMember{
		CustomerID:      c.ID,
		JoinedAt:        c.JoinedAt,
		ActiveAtHorizon: c.Active(horizon),
		SpendInWindow:   spend,
	}
}
