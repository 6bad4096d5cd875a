package aggregate

import (
	"errors"
	"testing"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/facts"
)

var asOf = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func testEngineConfig() config.Engine {
	return config.Engine{
		CapFeedback:          config.DefaultCapFeedback,
		RetentionHorizonDays: config.DefaultRetentionHorizonDays,
		ROIWindowDays:        config.DefaultROIWindowDays,
		PromoterWeights:      config.DefaultPromoterWeights,
		PriorityWeights:      config.DefaultPriorityWeights,
		NormBounds:           config.DefaultNormBounds,
	}
}

func validCustomer(id string, joined time.Time) facts.Customer {
	return facts.Customer{
		ID:                  id,
		Name:                "Customer " + id,
		JoinedAt:            joined,
		SessionsAttended:    8,
		SessionsScheduled:   10,
		SatisfactionScore:   4.0,
		ObjectivesCompleted: 2,
		TotalObjectives:     4,
		PositiveFeedback:    1,
	}
}

// --- Customer vectors ---

func TestAggregate_VectorMetrics(t *testing.T) {
	joined := asOf.AddDate(0, 0, -120)
	set := &facts.Set{Customers: []facts.Customer{validCustomer("c1", joined)}}

	vectors, _, err := Aggregate(set, asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("got %d vectors, want 1", len(vectors))
	}

	v := vectors[0]
	if v.AttendanceRate != 80 {
		t.Errorf("attendance = %v, want 80", v.AttendanceRate)
	}
	if v.DaysAsClient != 120 {
		t.Errorf("days as client = %v, want 120", v.DaysAsClient)
	}
	if v.ObjectiveCompletionRatio() != 0.5 {
		t.Errorf("objective ratio = %v, want 0.5", v.ObjectiveCompletionRatio())
	}
}

func TestAggregate_ZeroScheduledSessionsMeansZeroAttendance(t *testing.T) {
	c := validCustomer("c1", asOf.AddDate(0, 0, -30))
	c.SessionsAttended = 0
	c.SessionsScheduled = 0
	set := &facts.Set{Customers: []facts.Customer{c}}

	vectors, _, err := Aggregate(set, asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors[0].AttendanceRate != 0 {
		t.Errorf("attendance = %v, want 0", vectors[0].AttendanceRate)
	}
}

func TestAggregate_VectorsSortedByID(t *testing.T) {
	joined := asOf.AddDate(0, 0, -30)
	set := &facts.Set{Customers: []facts.Customer{
		validCustomer("zeta", joined),
		validCustomer("alpha", joined),
		validCustomer("mid", joined),
	}}

	vectors, _, err := Aggregate(set, asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(vectors); i++ {
		if vectors[i-1].CustomerID > vectors[i].CustomerID {
			t.Fatalf("vectors not sorted: %s before %s", vectors[i-1].CustomerID, vectors[i].CustomerID)
		}
	}
}

// --- Integrity validation ---

func TestAggregate_RejectsBadCustomers(t *testing.T) {
	joined := asOf.AddDate(0, 0, -30)

	cases := []struct {
		name   string
		mutate func(*facts.Customer)
		field  string
	}{
		{"missing join date", func(c *facts.Customer) { c.JoinedAt = time.Time{} }, "joined_at"},
		{"future join date", func(c *facts.Customer) { c.JoinedAt = asOf.AddDate(0, 0, 7) }, "joined_at"},
		{"satisfaction below 1", func(c *facts.Customer) { c.SatisfactionScore = 0.5 }, "satisfaction_score"},
		{"satisfaction above 5", func(c *facts.Customer) { c.SatisfactionScore = 5.5 }, "satisfaction_score"},
		{"attended exceeds scheduled", func(c *facts.Customer) { c.SessionsAttended = 12 }, "sessions_attended"},
		{"completed exceeds total", func(c *facts.Customer) { c.ObjectivesCompleted = 9 }, "objectives_completed"},
		{"negative feedback", func(c *facts.Customer) { c.PositiveFeedback = -1 }, "positive_feedback"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCustomer("c1", joined)
			tc.mutate(&c)
			set := &facts.Set{Customers: []facts.Customer{c}}

			_, _, err := Aggregate(set, asOf, testEngineConfig())
			var integrity *DataIntegrityError
			if !errors.As(err, &integrity) {
				t.Fatalf("error = %v, want DataIntegrityError", err)
			}
			if integrity.Field != tc.field {
				t.Errorf("field = %q, want %q", integrity.Field, tc.field)
			}
		})
	}
}

func TestAggregate_OneBadRecordAbortsBatch(t *testing.T) {
	joined := asOf.AddDate(0, 0, -30)
	bad := validCustomer("bad", joined)
	bad.SatisfactionScore = 0

	set := &facts.Set{Customers: []facts.Customer{
		validCustomer("good", joined),
		bad,
	}}

	vectors, _, err := Aggregate(set, asOf, testEngineConfig())
	if err == nil {
		t.Fatal("expected the batch to abort")
	}
	if vectors != nil {
		t.Error("expected no partial output")
	}
}

func TestAggregate_RejectsBadActivities(t *testing.T) {
	joined := asOf.AddDate(0, 0, -200)
	start := asOf.AddDate(0, 0, -90)
	end := asOf.AddDate(0, 0, -60)

	base := facts.Activity{
		ID: "a1", Name: "Workshop", Type: "workshop", Status: "completed",
		Investment: 100, StartDate: start, EndDate: end,
	}

	cases := []struct {
		name        string
		mutate      func(*facts.Activity)
		participate bool
		field       string
	}{
		{"no participants", func(a *facts.Activity) {}, false, "participants"},
		{"missing dates", func(a *facts.Activity) { a.StartDate = time.Time{} }, true, "dates"},
		{"end before start", func(a *facts.Activity) { a.EndDate = start.AddDate(0, 0, -1) }, true, "end_date"},
		{"negative investment", func(a *facts.Activity) { a.Investment = -5 }, true, "investment"},
		{"unknown type", func(a *facts.Activity) { a.Type = "retreat" }, true, "type"},
		{"unknown status", func(a *facts.Activity) { a.Status = "paused" }, true, "status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := base
			tc.mutate(&a)
			set := &facts.Set{
				Customers:  []facts.Customer{validCustomer("c1", joined)},
				Activities: []facts.Activity{a},
			}
			if tc.participate {
				set.Participations = []facts.Participation{{ActivityID: "a1", CustomerID: "c1"}}
			}

			_, _, err := Aggregate(set, asOf, testEngineConfig())
			var integrity *DataIntegrityError
			if !errors.As(err, &integrity) {
				t.Fatalf("error = %v, want DataIntegrityError", err)
			}
			if integrity.Field != tc.field {
				t.Errorf("field = %q, want %q", integrity.Field, tc.field)
			}
		})
	}
}

// --- Fact sheets ---

func buildTestSet() *facts.Set {
	joined := asOf.AddDate(0, 0, -200)
	start := asOf.AddDate(0, 0, -180)
	end := asOf.AddDate(0, 0, -150)
	converted := end.AddDate(0, 0, 10)

	churned := end.AddDate(0, 0, 30) // before the 90-day horizon

	p1 := validCustomer("p1", joined)
	p2 := validCustomer("p2", joined.AddDate(0, 0, 5))
	p2.ChurnedAt = &churned
	n1 := validCustomer("n1", joined.AddDate(0, 0, 2))
	n2 := validCustomer("n2", joined.AddDate(0, 0, 3))
	n3 := validCustomer("n3", joined.AddDate(0, 0, 4))

	return &facts.Set{
		Customers: []facts.Customer{p1, p2, n1, n2, n3},
		Activities: []facts.Activity{{
			ID: "a1", Name: "Challenge", Type: "challenge", Status: "completed",
			Investment: 500, StartDate: start, EndDate: end,
		}},
		Participations: []facts.Participation{
			{ActivityID: "a1", CustomerID: "p1"},
			{ActivityID: "a1", CustomerID: "p2"},
		},
		Payments: []facts.Payment{
			{CustomerID: "p1", Amount: 300, PaidAt: end.AddDate(0, 0, 10)},
			{CustomerID: "p1", Amount: 100, PaidAt: end.AddDate(0, 0, 100)}, // outside 90-day window
			{CustomerID: "n1", Amount: 50, PaidAt: end.AddDate(0, 0, 10)},
		},
		Referrals: []facts.Referral{
			{ID: "r1", ActivityID: "a1", ReferrerID: "p1", ConvertedAt: &converted, Revenue: 900},
			{ID: "r2", ActivityID: "a1", ReferrerID: "p2"},
		},
	}
}

func TestAggregate_FactSheet(t *testing.T) {
	_, sheets, err := Aggregate(buildTestSet(), asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(sheets))
	}

	s := sheets[0]
	if s.Activity.Participants != 2 {
		t.Errorf("participants = %d, want 2", s.Activity.Participants)
	}
	if len(s.Cohort) != 2 {
		t.Fatalf("cohort size = %d, want 2", len(s.Cohort))
	}
	if len(s.Baseline) != 2 {
		t.Fatalf("baseline size = %d, want 2 (equivalent-sized)", len(s.Baseline))
	}

	// p1 stayed, p2 churned before the horizon.
	if !s.Cohort[0].ActiveAtHorizon || s.Cohort[1].ActiveAtHorizon {
		t.Errorf("cohort activity = %v,%v, want true,false",
			s.Cohort[0].ActiveAtHorizon, s.Cohort[1].ActiveAtHorizon)
	}

	// Only the payment inside the ROI window counts.
	if s.Cohort[0].SpendInWindow != 300 {
		t.Errorf("p1 spend = %v, want 300", s.Cohort[0].SpendInWindow)
	}

	if s.Referrals.Generated != 2 || s.Referrals.Converted != 1 || s.Referrals.Revenue != 900 {
		t.Errorf("referral tally = %+v, want 2 generated, 1 converted, 900 revenue", s.Referrals)
	}
}

func TestAggregate_BaselineExcludesParticipants(t *testing.T) {
	_, sheets, err := Aggregate(buildTestSet(), asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range sheets[0].Baseline {
		if m.CustomerID == "p1" || m.CustomerID == "p2" {
			t.Errorf("participant %s selected as baseline control", m.CustomerID)
		}
	}
}

func TestAggregate_BaselineSelectionIsDeterministic(t *testing.T) {
	cfg := testEngineConfig()
	set := buildTestSet()

	_, first, err := Aggregate(set, asOf, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 10 {
		_, again, err := Aggregate(set, asOf, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, m := range again[0].Baseline {
			if m.CustomerID != first[0].Baseline[i].CustomerID {
				t.Fatalf("baseline order changed at position %d", i)
			}
		}
	}

	// Earliest joiners win the truncation; join order is n1 then n2.
	if first[0].Baseline[0].CustomerID != "n1" || first[0].Baseline[1].CustomerID != "n2" {
		t.Errorf("baseline = %s,%s, want n1,n2",
			first[0].Baseline[0].CustomerID, first[0].Baseline[1].CustomerID)
	}
}

func TestAcquisitionPeriod_PadsTightWindows(t *testing.T) {
	join := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cohort := []CohortMember{
		{CustomerID: "a", JoinedAt: join},
		{CustomerID: "b", JoinedAt: join.AddDate(0, 0, 2)},
	}

	earliest, latest := acquisitionPeriod(cohort)
	if latest.Sub(earliest) < minAcquisitionWindow {
		t.Errorf("window %v shorter than minimum %v", latest.Sub(earliest), minAcquisitionWindow)
	}
}

func TestAggregate_SheetsSortedByActivityID(t *testing.T) {
	set := buildTestSet()
	second := set.Activities[0]
	second.ID = "a0"
	second.Name = "Earlier"
	set.Activities = append(set.Activities, second)
	set.Participations = append(set.Participations,
		facts.Participation{ActivityID: "a0", CustomerID: "p1"})

	_, sheets, err := Aggregate(set, asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheets[0].Activity.ID != "a0" || sheets[1].Activity.ID != "a1" {
		t.Errorf("sheet order = %s,%s, want a0,a1", sheets[0].Activity.ID, sheets[1].Activity.ID)
	}
}
