// Package promoter scores customers as referral and testimonial
// candidates from their metric vectors.
package promoter

import "fmt"

// SuggestionKind is the outreach a promoter qualifies for.
type SuggestionKind string

// Suggestion kinds.
const (
	KindReferral    SuggestionKind = "referral"
	KindTestimonial SuggestionKind = "testimonial"
	KindBoth        SuggestionKind = "both"
)

// Valid reports whether the kind is one of the closed set.
func (k SuggestionKind) Valid() bool {
	switch k {
	case KindReferral, KindTestimonial, KindBoth:
		return true
	}
	return false
}

// Timing is the suggested outreach window.
type Timing string

// Timing buckets.
const (
	TimingNow       Timing = "now"
	TimingThisWeek  Timing = "this-week"
	TimingThisMonth Timing = "this-month"
	TimingLater     Timing = "later"
)

// Valid reports whether the timing is one of the closed set.
func (t Timing) Valid() bool {
	switch t {
	case TimingNow, TimingThisWeek, TimingThisMonth, TimingLater:
		return true
	}
	return false
}

// Record is the engine's promoter verdict for one customer. It is a
// value object: recomputed wholesale on every run, never patched.
type Record struct {
	CustomerID string         `json:"customer_id"`
	Name       string         `json:"name"`
	Score      float64        `json:"score"` // 0-100
	Kind       SuggestionKind `json:"kind"`
	Timing     Timing         `json:"timing"`
	Reason     string         `json:"reason"`
	Tags       []string       `json:"tags,omitempty"`
}

func (r Record) String() string {
	return fmt.Sprintf("%s: %.0f (%s, %s)", r.CustomerID, r.Score, r.Kind, r.Timing)
}
