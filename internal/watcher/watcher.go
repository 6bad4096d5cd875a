// Package watcher provides background monitoring of engagement data,
// re-running the scoring engine on an interval and emitting alerts when
// promoter or initiative outcomes change between evaluations.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/engine"
	"github.com/harborlight-systems/engagewatch/internal/facts"
	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

// FactSource supplies the current facts snapshot for each check cycle.
// The SQLite store satisfies this.
type FactSource interface {
	LoadFacts() (*facts.Set, error)
}

// WatchState captures a point-in-time evaluation of the engagement data.
type WatchState struct {
	Timestamp     time.Time
	PromoterCount int
	TopActivityID string

	promoters map[string]promoter.Record
	impacts   map[string]impact.ActivityImpact
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher re-evaluates the engagement data at a regular interval and
// emits alerts when notable changes are detected.
type Watcher struct {
	source        FactSource
	cfg           config.Engine
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
}

// New creates a Watcher that evaluates facts from the given source.
func New(source FactSource, cfg config.Engine, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		source:        source,
		cfg:           cfg,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			alerts := w.Check()
			for _, a := range alerts {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check() []Alert {
	curr, err := w.Snapshot()
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Title:   "Evaluation failed",
			Message: fmt.Sprintf("Could not evaluate engagement data: %v", err),
			Time:    time.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	// Deduplicate: suppress alerts with the same title+message as last cycle.
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot loads the current facts and runs a full evaluation pass.
func (w *Watcher) Snapshot() (*WatchState, error) {
	set, err := w.source.LoadFacts()
	if err != nil {
		return nil, fmt.Errorf("loading facts: %w", err)
	}

	res, err := engine.Run(set, time.Now().UTC(), w.cfg)
	if err != nil {
		return nil, err
	}

	state := &WatchState{
		Timestamp:     res.AsOf,
		PromoterCount: len(res.Promoters),
		promoters:     make(map[string]promoter.Record, len(res.Promoters)),
		impacts:       make(map[string]impact.ActivityImpact, len(res.Impacts)),
	}
	for _, r := range res.Promoters {
		state.promoters[r.CustomerID] = r
	}
	for _, im := range res.Impacts {
		state.impacts[im.Activity.ID] = im
	}
	for _, init := range res.Initiatives {
		if init.PriorityRank == 1 {
			state.TopActivityID = init.Impact.Activity.ID
			break
		}
	}
	return state, nil
}
