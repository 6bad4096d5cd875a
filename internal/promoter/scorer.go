package promoter

import (
	"fmt"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/aggregate"
	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/scale"
)

// Qualification and timing thresholds. The qualification policy is
// evaluated in fixed order; the first clause that matches wins.
const (
	bothScoreMin        = 80
	bothTenureDaysMin   = 60
	referralScoreMin    = 70
	referralRatioMin    = 0.8
	testimonialScore    = 60
	testimonialFeedback = 2

	timingNowScoreMin   = 85
	timingNowFreshDays  = 3
	timingWeekScoreMin  = 75
	timingMonthScoreMin = 60
)

// Scorer converts customer metric vectors into promoter records.
type Scorer struct {
	weights     config.PromoterWeights
	capFeedback int
}

// NewScorer builds a scorer from a validated engine configuration.
func NewScorer(cfg config.Engine) *Scorer {
	return &Scorer{
		weights:     cfg.PromoterWeights,
		capFeedback: cfg.CapFeedback,
	}
}

// Score evaluates one customer. The second result is false when the
// customer does not qualify as a promoter, which is a valid outcome,
// not an error. asOf is the observation instant used only for the
// last-session freshness check, never for score math.
func (s *Scorer) Score(v aggregate.CustomerMetricVector, asOf time.Time) (Record, bool) {
	score := s.composite(v)
	ratio := v.ObjectiveCompletionRatio()

	var kind SuggestionKind
	var reason string
	switch {
	case score >= bothScoreMin && v.DaysAsClient >= bothTenureDaysMin:
		kind = KindBoth
		reason = fmt.Sprintf(
			"Score %.0f/100 after %d days as a client (satisfaction %.1f/5, %.0f%% attendance): strong candidate for both a referral ask and a testimonial.",
			score, v.DaysAsClient, v.SatisfactionScore, v.AttendanceRate)
	case score >= referralScoreMin && ratio >= referralRatioMin:
		kind = KindReferral
		reason = fmt.Sprintf(
			"Score %.0f/100 with %d of %d objectives completed: results worth referring friends for.",
			score, v.ObjectivesCompleted, v.TotalObjectives)
	case score >= testimonialScore && v.PositiveFeedback >= testimonialFeedback:
		kind = KindTestimonial
		reason = fmt.Sprintf(
			"Score %.0f/100 with %d positive feedback notes on record: likely to give a usable testimonial.",
			score, v.PositiveFeedback)
	default:
		return Record{}, false
	}

	return Record{
		CustomerID: v.CustomerID,
		Name:       v.Name,
		Score:      score,
		Kind:       kind,
		Timing:     s.timing(v, score, asOf),
		Reason:     reason,
		Tags:       tags(v),
	}, true
}

// ScoreAll evaluates every vector and returns the qualifying records in
// input order.
func (s *Scorer) ScoreAll(vectors []aggregate.CustomerMetricVector, asOf time.Time) []Record {
	var records []Record
	for _, v := range vectors {
		if r, ok := s.Score(v, asOf); ok {
			records = append(records, r)
		}
	}
	return records
}

// composite is the weighted promoter score on the 0-100 scale. The
// feedback term is capped so one chatty client cannot dominate.
func (s *Scorer) composite(v aggregate.CustomerMetricVector) float64 {
	w := s.weights
	raw := w.Satisfaction*scale.Norm(v.SatisfactionScore, 1, 5) +
		w.Attendance*v.AttendanceRate +
		w.Objectives*v.ObjectiveCompletionRatio()*100 +
		w.Feedback*scale.Norm(float64(v.PositiveFeedback), 0, float64(s.capFeedback))
	return scale.Clamp(scale.Round(raw), 0, 100)
}

func (s *Scorer) timing(v aggregate.CustomerMetricVector, score float64, asOf time.Time) Timing {
	fresh := v.LastSessionDate != nil &&
		asOf.Sub(*v.LastSessionDate) <= timingNowFreshDays*24*time.Hour
	switch {
	case fresh && score >= timingNowScoreMin:
		return TimingNow
	case score >= timingWeekScoreMin:
		return TimingThisWeek
	case score >= timingMonthScoreMin:
		return TimingThisMonth
	default:
		return TimingLater
	}
}

// tags derives descriptive labels used for filtering and display.
func tags(v aggregate.CustomerMetricVector) []string {
	var out []string
	if v.SatisfactionScore >= 4.5 {
		out = append(out, "high-satisfaction")
	}
	if v.AttendanceRate >= 95 {
		out = append(out, "consistent-attendance")
	}
	if v.ObjectiveCompletionRatio() >= 0.9 && v.TotalObjectives > 0 {
		out = append(out, "goal-achiever")
	}
	if v.DaysAsClient >= 180 {
		out = append(out, "long-tenure")
	}
	return out
}
