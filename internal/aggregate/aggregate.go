package aggregate

import (
	"sort"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/facts"
)

// Aggregate normalizes a fact snapshot into customer metric vectors and
// activity fact sheets. asOf fixes the observation instant so the run is
// a pure function of its arguments; rerunning with identical inputs
// yields identical output.
//
// Any customer or activity that violates its documented domain aborts
// the whole batch with a DataIntegrityError, since downstream ranking
// assumes a complete, consistent input set.
func Aggregate(set *facts.Set, asOf time.Time, cfg config.Engine) ([]CustomerMetricVector, []ActivityFactSheet, error) {
	vectors, customers, err := buildVectors(set.Customers, asOf)
	if err != nil {
		return nil, nil, err
	}

	sheets, err := buildSheets(set, customers, cfg)
	if err != nil {
		return nil, nil, err
	}

	return vectors, sheets, nil
}

// buildVectors validates each customer and produces its metric vector,
// sorted by customer ID.
func buildVectors(raw []facts.Customer, asOf time.Time) ([]CustomerMetricVector, map[string]facts.Customer, error) {
	vectors := make([]CustomerMetricVector, 0, len(raw))
	byID := make(map[string]facts.Customer, len(raw))

	for _, c := range raw {
		if err := validateCustomer(c, asOf); err != nil {
			return nil, nil, err
		}
		byID[c.ID] = c

		attendance := 0.0
		if c.SessionsScheduled > 0 {
			attendance = float64(c.SessionsAttended) / float64(c.SessionsScheduled) * 100
		}

		vectors = append(vectors, CustomerMetricVector{
			CustomerID:          c.ID,
			Name:                c.Name,
			SatisfactionScore:   c.SatisfactionScore,
			AttendanceRate:      attendance,
			ObjectivesCompleted: c.ObjectivesCompleted,
			TotalObjectives:     c.TotalObjectives,
			PositiveFeedback:    c.PositiveFeedback,
			DaysAsClient:        int(asOf.Sub(c.JoinedAt).Hours() / 24),
			LastSessionDate:     c.LastSessionAt,
		})
	}

	sort.Slice(vectors, func(i, j int) bool {
		return vectors[i].CustomerID < vectors[j].CustomerID
	})

	return vectors, byID, nil
}

func validateCustomer(c facts.Customer, asOf time.Time) error {
	integrity := func(field, reason string) error {
		return &DataIntegrityError{Entity: "customer", ID: c.ID, Field: field, Reason: reason}
	}

	if c.JoinedAt.IsZero() {
		return integrity("joined_at", "missing; days-as-client cannot be computed")
	}
	if c.JoinedAt.After(asOf) {
		return integrity("joined_at", "in the future relative to the observation date")
	}
	if c.SatisfactionScore < 1 || c.SatisfactionScore > 5 {
		return integrity("satisfaction_score", "outside the 1-5 domain")
	}
	if c.SessionsAttended < 0 || c.SessionsScheduled < 0 {
		return integrity("sessions", "negative count")
	}
	if c.SessionsAttended > c.SessionsScheduled {
		return integrity("sessions_attended", "exceeds sessions scheduled")
	}
	if c.ObjectivesCompleted < 0 || c.TotalObjectives < 0 {
		return integrity("objectives", "negative count")
	}
	if c.ObjectivesCompleted > c.TotalObjectives {
		return integrity("objectives_completed", "exceeds total objectives")
	}
	if c.PositiveFeedback < 0 {
		return integrity("positive_feedback", "negative count")
	}
	return nil
}

// buildSheets validates each activity and assembles its fact sheet,
// sorted by activity ID.
func buildSheets(set *facts.Set, customers map[string]facts.Customer, cfg config.Engine) ([]ActivityFactSheet, error) {
	participantsByActivity := make(map[string][]string)
	participantSet := make(map[string]map[string]bool)
	for _, p := range set.Participations {
		participantsByActivity[p.ActivityID] = append(participantsByActivity[p.ActivityID], p.CustomerID)
		if participantSet[p.ActivityID] == nil {
			participantSet[p.ActivityID] = make(map[string]bool)
		}
		participantSet[p.ActivityID][p.CustomerID] = true
	}

	paymentsByCustomer := make(map[string][]facts.Payment)
	for _, p := range set.Payments {
		paymentsByCustomer[p.CustomerID] = append(paymentsByCustomer[p.CustomerID], p)
	}

	tallies := make(map[string]ReferralTally)
	for _, r := range set.Referrals {
		if r.ActivityID == "" {
			continue
		}
		t := tallies[r.ActivityID]
		t.Generated++
		if r.ConvertedAt != nil {
			t.Converted++
			t.Revenue += r.Revenue
		}
		tallies[r.ActivityID] = t
	}

	sheets := make([]ActivityFactSheet, 0, len(set.Activities))
	for _, a := range set.Activities {
		record, err := validateActivity(a, len(participantsByActivity[a.ID]))
		if err != nil {
			return nil, err
		}

		horizon := record.EndDate.AddDate(0, 0, cfg.RetentionHorizonDays)
		windowEnd := record.EndDate.AddDate(0, 0, cfg.ROIWindowDays)

		cohort := buildCohort(participantsByActivity[a.ID], customers, paymentsByCustomer, record.EndDate, windowEnd, horizon)
		baseline := buildBaseline(cohort, participantSet[a.ID], customers, paymentsByCustomer, record.EndDate, windowEnd, horizon)

		sheets = append(sheets, ActivityFactSheet{
			Activity:  record,
			Cohort:    cohort,
			Baseline:  baseline,
			Referrals: tallies[a.ID],
		})
	}

	sort.Slice(sheets, func(i, j int) bool {
		return sheets[i].Activity.ID < sheets[j].Activity.ID
	})

	return sheets, nil
}

func validateActivity(a facts.Activity, participants int) (ActivityRecord, error) {
	integrity := func(field, reason string) error {
		return &DataIntegrityError{Entity: "activity", ID: a.ID, Field: field, Reason: reason}
	}

	if participants == 0 {
		return ActivityRecord{}, integrity("participants", "missing; retention rate cannot be computed")
	}
	if a.StartDate.IsZero() || a.EndDate.IsZero() {
		return ActivityRecord{}, integrity("dates", "start and end dates are required")
	}
	if a.EndDate.Before(a.StartDate) {
		return ActivityRecord{}, integrity("end_date", "before start date")
	}
	if a.Investment < 0 {
		return ActivityRecord{}, integrity("investment", "negative amount")
	}

	typ, err := ParseActivityType(a.Type)
	if err != nil {
		return ActivityRecord{}, integrity("type", err.Error())
	}
	status, err := ParseActivityStatus(a.Status)
	if err != nil {
		return ActivityRecord{}, integrity("status", err.Error())
	}

	return ActivityRecord{
		ID:           a.ID,
		Name:         a.Name,
		Type:         typ,
		Status:       status,
		Investment:   a.Investment,
		Participants: participants,
		StartDate:    a.StartDate,
		EndDate:      a.EndDate,
	}, nil
}
