package watcher

import (
	"strings"
	"testing"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

func state(mutate ...func(*WatchState)) *WatchState {
	s := &WatchState{
		Timestamp: time.Now(),
		promoters: map[string]promoter.Record{
			"c1": {CustomerID: "c1", Name: "Dana", Score: 85, Kind: promoter.KindBoth, Timing: promoter.TimingThisWeek},
		},
		impacts: map[string]impact.ActivityImpact{
			"a1": {
				Activity:       aggregate.ActivityRecord{ID: "a1", Name: "Summer Series"},
				RetentionLift:  12,
				Trend:          impact.TrendUp,
				Recommendation: impact.RecommendIncrease,
			},
		},
		TopActivityID: "a1",
		PromoterCount: 1,
	}
	for _, m := range mutate {
		m(s)
	}
	return s
}

func titles(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Title
	}
	return out
}

func hasAlert(alerts []Alert, level, titlePart string) bool {
	for _, a := range alerts {
		if a.Level == level && strings.Contains(a.Title, titlePart) {
			return true
		}
	}
	return false
}

// --- Compare ---

func TestCompare_NoChangesNoAlerts(t *testing.T) {
	if alerts := Compare(state(), state()); len(alerts) != 0 {
		t.Errorf("got alerts for identical states: %v", titles(alerts))
	}
}

func TestCompare_NewPromoter(t *testing.T) {
	curr := state(func(s *WatchState) {
		s.promoters["c2"] = promoter.Record{
			CustomerID: "c2", Name: "Rae", Score: 72,
			Kind: promoter.KindReferral, Timing: promoter.TimingThisMonth,
		}
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "info", "New promoter: Rae") {
		t.Errorf("missing new-promoter alert, got %v", titles(alerts))
	}
}

func TestCompare_PromoterLost(t *testing.T) {
	curr := state(func(s *WatchState) {
		delete(s.promoters, "c1")
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "warning", "Promoter lost: Dana") {
		t.Errorf("missing promoter-lost alert, got %v", titles(alerts))
	}
}

func TestCompare_PromoterScoreDrop(t *testing.T) {
	curr := state(func(s *WatchState) {
		r := s.promoters["c1"]
		r.Score = 70
		s.promoters["c1"] = r
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "warning", "Score drop: Dana") {
		t.Errorf("missing score-drop alert, got %v", titles(alerts))
	}
}

func TestCompare_SmallScoreDropIsQuiet(t *testing.T) {
	curr := state(func(s *WatchState) {
		r := s.promoters["c1"]
		r.Score = 80
		s.promoters["c1"] = r
	})

	if alerts := Compare(state(), curr); len(alerts) != 0 {
		t.Errorf("got alerts for a 5-point drop: %v", titles(alerts))
	}
}

func TestCompare_TimingEscalation(t *testing.T) {
	curr := state(func(s *WatchState) {
		r := s.promoters["c1"]
		r.Timing = promoter.TimingNow
		s.promoters["c1"] = r
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "info", "Reach out now: Dana") {
		t.Errorf("missing escalation alert, got %v", titles(alerts))
	}
}

func TestCompare_DiscontinueFlip(t *testing.T) {
	curr := state(func(s *WatchState) {
		im := s.impacts["a1"]
		im.Recommendation = impact.RecommendDiscontinue
		s.impacts["a1"] = im
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "critical", "Discontinue: Summer Series") {
		t.Errorf("missing discontinue alert, got %v", titles(alerts))
	}
}

func TestCompare_TopInitiativeChange(t *testing.T) {
	curr := state(func(s *WatchState) {
		s.TopActivityID = "a2"
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "critical", "Top initiative changed") {
		t.Errorf("missing top-initiative alert, got %v", titles(alerts))
	}
}

func TestCompare_TrendTurnsDown(t *testing.T) {
	curr := state(func(s *WatchState) {
		im := s.impacts["a1"]
		im.Trend = impact.TrendDown
		im.RetentionLift = -4
		s.impacts["a1"] = im
	})

	alerts := Compare(state(), curr)
	if !hasAlert(alerts, "warning", "Retention turning down: Summer Series") {
		t.Errorf("missing trend alert, got %v", titles(alerts))
	}
}

func TestCompare_RecommendationRaised(t *testing.T) {
	prev := state(func(s *WatchState) {
		im := s.impacts["a1"]
		im.Recommendation = impact.RecommendMaintain
		s.impacts["a1"] = im
	})

	alerts := Compare(prev, state())
	if !hasAlert(alerts, "info", "Recommendation raised: Summer Series") {
		t.Errorf("missing raised alert, got %v", titles(alerts))
	}
}

// --- Check dedup ---

func TestCheck_SuppressesRepeatedAlerts(t *testing.T) {
	prev := state()
	curr := state(func(s *WatchState) {
		s.TopActivityID = "a2"
	})

	w := &Watcher{lastAlertKeys: make(map[string]bool)}
	w.previous = prev

	first := Compare(w.previous, curr)
	if len(first) == 0 {
		t.Fatal("expected an alert on the first comparison")
	}

	// Simulate the dedup pass Check applies.
	keys := make(map[string]bool)
	for _, a := range first {
		keys[a.Level+":"+a.Title+":"+a.Message] = true
	}
	w.lastAlertKeys = keys
	w.previous = curr

	// Same state again: Compare against the new previous finds nothing,
	// and even a recurring identical alert would be suppressed by key.
	again := Compare(w.previous, curr)
	var emitted []Alert
	for _, a := range again {
		if !w.lastAlertKeys[a.Level+":"+a.Title+":"+a.Message] {
			emitted = append(emitted, a)
		}
	}
	if len(emitted) != 0 {
		t.Errorf("repeated alerts not suppressed: %v", titles(emitted))
	}
}
