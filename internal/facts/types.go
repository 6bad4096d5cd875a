// Package facts defines the raw customer and activity facts the engine
// consumes. Facts are collected by external systems (booking, billing,
// feedback) and loaded here as immutable snapshots; no scoring logic
// lives in this package.
package facts

import "time"

// Customer is a raw per-customer fact record.
type Customer struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	JoinedAt            time.Time  `json:"joined_at"`
	ChurnedAt           *time.Time `json:"churned_at,omitempty"`
	LastSessionAt       *time.Time `json:"last_session_at,omitempty"`
	SessionsAttended    int        `json:"sessions_attended"`
	SessionsScheduled   int        `json:"sessions_scheduled"`
	SatisfactionScore   float64    `json:"satisfaction_score"` // 1-5 average
	ObjectivesCompleted int        `json:"objectives_completed"`
	TotalObjectives     int        `json:"total_objectives"`
	PositiveFeedback    int        `json:"positive_feedback"`
}

// Active reports whether the customer was still a client at the given
// instant. A customer with no churn date is considered active.
func (c Customer) Active(at time.Time) bool {
	return c.ChurnedAt == nil || c.ChurnedAt.After(at)
}

// Activity is a raw community activity record: a program, event,
// challenge, or similar initiative with a tracked investment.
type Activity struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`   // see impact.ActivityType
	Status     string    `json:"status"` // see impact.ActivityStatus
	Investment float64   `json:"investment"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// Participation links a customer to an activity they took part in.
type Participation struct {
	ActivityID string `json:"activity_id"`
	CustomerID string `json:"customer_id"`
}

// Payment is a single purchase by a customer.
type Payment struct {
	CustomerID string    `json:"customer_id"`
	Amount     float64   `json:"amount"`
	PaidAt     time.Time `json:"paid_at"`
}

// Referral records a referral made by a customer, optionally attributed
// to an activity. ConvertedAt is set when the referred lead became a
// paying customer.
type Referral struct {
	ID          string     `json:"id"`
	ActivityID  string     `json:"activity_id,omitempty"`
	ReferrerID  string     `json:"referrer_id"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	Revenue     float64    `json:"revenue"`
}

// Set is the full fact snapshot for one engine run.
type Set struct {
	Customers      []Customer      `json:"customers"`
	Activities     []Activity      `json:"activities"`
	Participations []Participation `json:"participations"`
	Payments       []Payment       `json:"payments"`
	Referrals      []Referral      `json:"referrals"`
}
