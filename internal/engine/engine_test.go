package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/facts"
)

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

var asOf = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func testSet() *facts.Set {
	joined := asOf.AddDate(0, 0, -200)
	start := asOf.AddDate(0, 0, -180)
	end := asOf.AddDate(0, 0, -150)

	return &facts.Set{
		Customers: []facts.Customer{
			{
				ID: "c1", Name: "Dana", JoinedAt: joined,
				SessionsAttended: 19, SessionsScheduled: 20, SatisfactionScore: 4.8,
				ObjectivesCompleted: 9, TotalObjectives: 10, PositiveFeedback: 5,
			},
			{
				ID: "c2", Name: "Rae", JoinedAt: joined.AddDate(0, 0, 3),
				SessionsAttended: 5, SessionsScheduled: 10, SatisfactionScore: 3.0,
				TotalObjectives: 4, PositiveFeedback: 1,
			},
			{
				ID: "c3", Name: "Kit", JoinedAt: joined.AddDate(0, 0, 6),
				SessionsAttended: 8, SessionsScheduled: 10, SatisfactionScore: 4.0,
				ObjectivesCompleted: 2, TotalObjectives: 4, PositiveFeedback: 3,
			},
		},
		Activities: []facts.Activity{
			{
				ID: "a1", Name: "Challenge", Type: "challenge", Status: "completed",
				Investment: 500, StartDate: start, EndDate: end,
			},
		},
		Participations: []facts.Participation{{ActivityID: "a1", CustomerID: "c1"}},
		Payments: []facts.Payment{
			{CustomerID: "c1", Amount: 900, PaidAt: end.AddDate(0, 0, 20)},
			{CustomerID: "c2", Amount: 100, PaidAt: end.AddDate(0, 0, 25)},
		},
	}
}

func TestRun_ProducesAllSections(t *testing.T) {
	res, err := Run(testSet(), asOf, testEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Vectors) != 3 {
		t.Errorf("got %d vectors, want 3", len(res.Vectors))
	}
	if len(res.Promoters) == 0 {
		t.Error("expected at least one promoter")
	}
	if len(res.Impacts) != 1 || len(res.Initiatives) != 1 {
		t.Errorf("got %d impacts, %d initiatives, want 1 and 1",
			len(res.Impacts), len(res.Initiatives))
	}
	if res.Initiatives[0].PriorityRank != 1 {
		t.Errorf("single initiative rank = %d, want 1", res.Initiatives[0].PriorityRank)
	}
}

func TestRun_DeterministicForFixedInputs(t *testing.T) {
	cfg := testEngineConfig()
	set := testSet()

	first, err := Run(set, asOf, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := Run(set, asOf, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("identical inputs produced different results")
		}
	}
}

func TestRun_PropagatesIntegrityErrors(t *testing.T) {
	set := testSet()
	set.Customers[0].SatisfactionScore = 9

	if _, err := Run(set, asOf, testEngineConfig()); err == nil {
		t.Error("expected an aggregation error to propagate")
	}
}
