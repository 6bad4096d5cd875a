// Package store provides SQLite persistence for engagewatch facts and
// engine run snapshots.
package store

import "time"

// Run represents one persisted engine run.
type Run struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Command string    `json:"command"`
	Version string    `json:"version"`
}

// MetricRow is a named metric value recorded for a run.
type MetricRow struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Detail string  `json:"detail,omitempty"`
}

// RunDiff represents the comparison between two runs.
type RunDiff struct {
	Previous *Run          `json:"previous"`
	Current  *Run          `json:"current"`
	Deltas   []MetricDelta `json:"deltas"`
}

// MetricDelta represents the change in a single metric between runs.
type MetricDelta struct {
	Name     string  `json:"name"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}
