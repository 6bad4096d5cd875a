// Package aggregate normalizes raw customer and activity facts into the
// fixed metric vectors and fact sheets the scoring engines consume. It
// is a pure transformation: no I/O, no hidden state, and a rejected
// input aborts the whole batch.
package aggregate

import (
	"fmt"
	"time"
)

// CustomerMetricVector is the per-customer metric vector consumed by the
// promoter scorer.
type CustomerMetricVector struct {
	CustomerID          string     `json:"customer_id"`
	Name                string     `json:"name"`
	SatisfactionScore   float64    `json:"satisfaction_score"` // 1-5 average
	AttendanceRate      float64    `json:"attendance_rate"`    // 0-100
	ObjectivesCompleted int        `json:"objectives_completed"`
	TotalObjectives     int        `json:"total_objectives"`
	PositiveFeedback    int        `json:"positive_feedback"`
	DaysAsClient        int        `json:"days_as_client"`
	LastSessionDate     *time.Time `json:"last_session_date,omitempty"`
}

// ObjectiveCompletionRatio returns completed/total in [0,1], or 0 when
// no objectives are set.
func (v CustomerMetricVector) ObjectiveCompletionRatio() float64 {
	if v.TotalObjectives == 0 {
		return 0
	}
	return float64(v.ObjectivesCompleted) / float64(v.TotalObjectives)
}

// ActivityType classifies a community activity.
type ActivityType string

// Activity types.
const (
	TypeProgram     ActivityType = "program"
	TypeEvent       ActivityType = "event"
	TypeChallenge   ActivityType = "challenge"
	TypeWorkshop    ActivityType = "workshop"
	TypeWebinar     ActivityType = "webinar"
	TypeCompetition ActivityType = "competition"
	TypeNetworking  ActivityType = "networking"
	TypeCelebration ActivityType = "celebration"
)

// ParseActivityType validates a raw type string.
func ParseActivityType(s string) (ActivityType, error) {
	switch t := ActivityType(s); t {
	case TypeProgram, TypeEvent, TypeChallenge, TypeWorkshop,
		TypeWebinar, TypeCompetition, TypeNetworking, TypeCelebration:
		return t, nil
	}
	return "", fmt.Errorf("unknown activity type %q", s)
}

// ActivityStatus describes an activity's lifecycle state.
type ActivityStatus string

// Activity statuses.
const (
	StatusActive    ActivityStatus = "active"
	StatusCompleted ActivityStatus = "completed"
	StatusPlanned   ActivityStatus = "planned"
	StatusCancelled ActivityStatus = "cancelled"
)

// ParseActivityStatus validates a raw status string.
func ParseActivityStatus(s string) (ActivityStatus, error) {
	switch st := ActivityStatus(s); st {
	case StatusActive, StatusCompleted, StatusPlanned, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown activity status %q", s)
}

// ActivityRecord is the validated identity and bookkeeping of one
// activity.
type ActivityRecord struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         ActivityType   `json:"type"`
	Status       ActivityStatus `json:"status"`
	Investment   float64        `json:"investment"`
	Participants int            `json:"participants"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
}

// CohortMember is one customer's activity-relative figures, computed for
// either the participant cohort or the baseline cohort.
type CohortMember struct {
	CustomerID      string    `json:"customer_id"`
	JoinedAt        time.Time `json:"joined_at"`
	ActiveAtHorizon bool      `json:"active_at_horizon"`
	SpendInWindow   float64   `json:"spend_in_window"`
}

// ReferralTally is the raw referral attribution for one activity.
type ReferralTally struct {
	Generated int     `json:"generated"`
	Converted int     `json:"converted"`
	Revenue   float64 `json:"revenue"`
}

// ActivityFactSheet bundles everything the impact engine and the
// prioritizer need about one activity: the record, its participant
// cohort, an equivalent-sized baseline cohort of non-participants from
// the same acquisition period, and the referral tally.
type ActivityFactSheet struct {
	Activity  ActivityRecord `json:"activity"`
	Cohort    []CohortMember `json:"cohort"`
	Baseline  []CohortMember `json:"baseline"`
	Referrals ReferralTally  `json:"referrals"`
}

// DataIntegrityError reports a required field that is missing or outside
// its documented domain. It propagates unmodified to the caller; nothing
// is ever coerced to a default.
type DataIntegrityError struct {
	Entity string // "customer" or "activity"
	ID     string
	Field  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s %q: %s: %s", e.Entity, e.ID, e.Field, e.Reason)
}
