package priority

import (
	"testing"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/impact"
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

func testImpact(id string, roi *float64, lift float64, participants int, rec impact.Recommendation) impact.ActivityImpact {
	return impact.ActivityImpact{
		Activity: aggregate.ActivityRecord{
			ID:           id,
			Name:         id,
			Participants: participants,
		},
		RetentionLift:  lift,
		ROI:            roi,
		Recommendation: rec,
	}
}

func roiPtr(v float64) *float64 { return &v }

// --- Attribute ---

func TestAttribute(t *testing.T) {
	sheets := []aggregate.ActivityFactSheet{
		{
			Activity:  aggregate.ActivityRecord{ID: "a1", Investment: 1000},
			Referrals: aggregate.ReferralTally{Generated: 4, Converted: 2, Revenue: 5000},
		},
		{
			// No investment: referral ROI is undefined, not infinite.
			Activity:  aggregate.ActivityRecord{ID: "a2", Investment: 0},
			Referrals: aggregate.ReferralTally{Generated: 2, Converted: 1, Revenue: 800},
		},
		{
			// No referrals at all.
			Activity: aggregate.ActivityRecord{ID: "a3", Investment: 500},
		},
	}

	attrs := Attribute(sheets)

	if attrs[0].ConversionRate != 50 {
		t.Errorf("a1 conversion = %v, want 50", attrs[0].ConversionRate)
	}
	if attrs[0].ROI == nil || *attrs[0].ROI != 400 {
		t.Errorf("a1 roi = %v, want 400", attrs[0].ROI)
	}

	if attrs[1].ROI != nil {
		t.Errorf("a2 roi = %v, want nil for zero investment", *attrs[1].ROI)
	}

	if attrs[2].ConversionRate != 0 {
		t.Errorf("a3 conversion = %v, want 0 with no referrals", attrs[2].ConversionRate)
	}
	if attrs[2].ROI == nil || *attrs[2].ROI != -100 {
		t.Errorf("a3 roi = %v, want -100 for spend with no referral revenue", attrs[2].ROI)
	}
}

// --- Prioritize ---

func TestPrioritize_NeutralContributionForNilROI(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	// ROI 100 normalizes to 50 within [-100,300], lift 0 to 50 within
	// [-20,20], and the missing referral ROI contributes the neutral 50,
	// so the blend is exactly 50.
	impacts := []impact.ActivityImpact{
		testImpact("a1", roiPtr(100), 0, 10, impact.RecommendMaintain),
	}

	out := p.Prioritize(impacts, nil)
	if out[0].PriorityScore != 50 {
		t.Errorf("score = %v, want 50", out[0].PriorityScore)
	}
}

func TestPrioritize_RanksAreDenseAndTotal(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	impacts := []impact.ActivityImpact{
		testImpact("a1", roiPtr(250), 15, 20, impact.RecommendIncrease),
		testImpact("a2", roiPtr(50), 3, 10, impact.RecommendMaintain),
		testImpact("a3", roiPtr(-50), -5, 5, impact.RecommendReduce),
	}

	out := p.Prioritize(impacts, nil)

	if len(out) != 3 {
		t.Fatalf("got %d initiatives, want 3", len(out))
	}
	for i, init := range out {
		if init.PriorityRank != i+1 {
			t.Errorf("rank at position %d = %d, want %d", i, init.PriorityRank, i+1)
		}
	}
	if out[0].Impact.Activity.ID != "a1" || out[2].Impact.Activity.ID != "a3" {
		t.Errorf("order = %s,%s,%s, want a1,a2,a3",
			out[0].Impact.Activity.ID, out[1].Impact.Activity.ID, out[2].Impact.Activity.ID)
	}
}

func TestPrioritize_TieBreaksOnLift(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	// Both blend to exactly 56.0: a ROI of 100 with lift 8, and a ROI of
	// 122.5 compensating for lift 5.
	impacts := []impact.ActivityImpact{
		testImpact("low-lift", roiPtr(122.5), 5, 10, impact.RecommendMaintain),
		testImpact("high-lift", roiPtr(100), 8, 10, impact.RecommendMaintain),
	}

	out := p.Prioritize(impacts, nil)

	if out[0].PriorityScore != out[1].PriorityScore {
		t.Fatalf("scores differ: %v vs %v", out[0].PriorityScore, out[1].PriorityScore)
	}
	if out[0].Impact.Activity.ID != "high-lift" {
		t.Errorf("rank 1 = %s, want high-lift", out[0].Impact.Activity.ID)
	}
}

func TestPrioritize_TieBreaksOnParticipantsThenID(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	impacts := []impact.ActivityImpact{
		testImpact("b-small", roiPtr(100), 5, 10, impact.RecommendMaintain),
		testImpact("a-large", roiPtr(100), 5, 30, impact.RecommendMaintain),
	}
	out := p.Prioritize(impacts, nil)
	if out[0].Impact.Activity.ID != "a-large" {
		t.Errorf("rank 1 = %s, want a-large (more participants)", out[0].Impact.Activity.ID)
	}

	impacts = []impact.ActivityImpact{
		testImpact("zz", roiPtr(100), 5, 10, impact.RecommendMaintain),
		testImpact("aa", roiPtr(100), 5, 10, impact.RecommendMaintain),
	}
	out = p.Prioritize(impacts, nil)
	if out[0].Impact.Activity.ID != "aa" {
		t.Errorf("rank 1 = %s, want aa (lexicographic)", out[0].Impact.Activity.ID)
	}
}

func TestPrioritize_Deterministic(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	impacts := []impact.ActivityImpact{
		testImpact("a1", roiPtr(100), 5, 10, impact.RecommendMaintain),
		testImpact("a2", roiPtr(100), 5, 10, impact.RecommendMaintain),
		testImpact("a3", roiPtr(100), 5, 10, impact.RecommendMaintain),
	}

	first := p.Prioritize(impacts, nil)
	for range 10 {
		again := p.Prioritize(impacts, nil)
		for i := range first {
			if again[i].Impact.Activity.ID != first[i].Impact.Activity.ID {
				t.Fatalf("order changed between runs at position %d", i)
			}
		}
	}
}

// --- Replicate promotion ---

func TestPrioritize_TopRankedIncreaseBecomesReplicate(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	impacts := []impact.ActivityImpact{
		testImpact("winner", roiPtr(250), 15, 20, impact.RecommendIncrease),
		testImpact("steady", roiPtr(80), 3, 10, impact.RecommendMaintain),
	}

	out := p.Prioritize(impacts, nil)

	if out[0].Impact.Activity.ID != "winner" {
		t.Fatalf("rank 1 = %s, want winner", out[0].Impact.Activity.ID)
	}
	if out[0].Recommendation != impact.RecommendReplicate {
		t.Errorf("rank 1 recommendation = %v, want replicate", out[0].Recommendation)
	}
	if out[1].Recommendation != impact.RecommendMaintain {
		t.Errorf("rank 2 recommendation = %v, want maintain (inherited)", out[1].Recommendation)
	}
}

func TestPrioritize_RankAloneDoesNotPromote(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	// Rank 1 with a maintain verdict stays maintain: ranking position
	// never overrides the impact verdict.
	impacts := []impact.ActivityImpact{
		testImpact("only", roiPtr(100), 5, 10, impact.RecommendMaintain),
	}

	out := p.Prioritize(impacts, nil)
	if out[0].Recommendation != impact.RecommendMaintain {
		t.Errorf("recommendation = %v, want maintain", out[0].Recommendation)
	}
}

func TestPrioritize_IncreaseBelowCutoffStaysIncrease(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	impacts := []impact.ActivityImpact{
		testImpact("r1", roiPtr(280), 18, 20, impact.RecommendIncrease),
		testImpact("r2", roiPtr(260), 16, 20, impact.RecommendIncrease),
		testImpact("r3", roiPtr(240), 14, 20, impact.RecommendIncrease),
		testImpact("r4", roiPtr(220), 12, 20, impact.RecommendIncrease),
	}

	out := p.Prioritize(impacts, nil)

	for _, init := range out[:3] {
		if init.Recommendation != impact.RecommendReplicate {
			t.Errorf("rank %d = %v, want replicate", init.PriorityRank, init.Recommendation)
		}
	}
	if out[3].Recommendation != impact.RecommendIncrease {
		t.Errorf("rank 4 = %v, want increase", out[3].Recommendation)
	}
}

// --- Score bounds ---

func TestPrioritize_ScoreClampedToBounds(t *testing.T) {
	p := NewPrioritizer(testEngineConfig())

	// Values far past the normalization bounds clamp rather than spill
	// outside [0,100].
	impacts := []impact.ActivityImpact{
		testImpact("huge", roiPtr(10000), 500, 10, impact.RecommendIncrease),
		testImpact("awful", roiPtr(-10000), -500, 10, impact.RecommendDiscontinue),
	}
	attrs := []ReferralAttribution{
		{ActivityID: "huge", ROI: roiPtr(10000)},
		{ActivityID: "awful", ROI: roiPtr(-10000)},
	}

	out := p.Prioritize(impacts, attrs)
	for _, init := range out {
		if init.PriorityScore < 0 || init.PriorityScore > 100 {
			t.Errorf("%s score = %v, outside [0,100]", init.Impact.Activity.ID, init.PriorityScore)
		}
	}
}
