package store

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/priority"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

// CreateRun inserts a new run and returns its ID.
func (db *DB) CreateRun(command, version string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, taken_at, command, version) VALUES (?, ?, ?, ?)",
		id, time.Now().UTC().Format(time.RFC3339), command, version,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetLatestRun returns the most recent run, or nil if none exist.
func (db *DB) GetLatestRun() (*Run, error) {
	return db.GetRunN(1)
}

// GetRunN returns the Nth most recent run (1 = latest, 2 = previous).
func (db *DB) GetRunN(n int) (*Run, error) {
	row := db.conn.QueryRow(
		"SELECT id, taken_at, command, version FROM runs ORDER BY rowid DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	var r Run
	var takenAt string
	err := row.Scan(&r.ID, &takenAt, &r.Command, &r.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &r, nil
}

// SaveRunOutputs persists every record a run produced, plus the summary
// metrics used by run-over-run comparison, in one transaction.
func (db *DB) SaveRunOutputs(runID string, records []promoter.Record, impacts []impact.ActivityImpact, initiatives []priority.PrioritizedInitiative) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.Exec(
			`INSERT INTO promoter_records (run_id, customer_id, name, score, kind, timing, reason, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.CustomerID, r.Name, r.Score, string(r.Kind), string(r.Timing),
			r.Reason, strings.Join(r.Tags, ","),
		); err != nil {
			return err
		}
	}

	for _, im := range impacts {
		var roi sql.NullFloat64
		if im.ROI != nil {
			roi = sql.NullFloat64{Float64: *im.ROI, Valid: true}
		}
		var payback sql.NullInt64
		if im.PaybackPeriodDays != nil {
			payback = sql.NullInt64{Int64: int64(*im.PaybackPeriodDays), Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO activity_impacts
			(run_id, activity_id, retention_rate, baseline_retention, retention_lift,
			 trend, revenue_attributed, roi, payback_days, recommendation, reasoning)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, im.Activity.ID, im.RetentionRate, im.BaselineRetention,
			im.RetentionLift, string(im.Trend), im.RevenueAttributed,
			roi, payback, string(im.Recommendation), im.Reasoning,
		); err != nil {
			return err
		}
	}

	for _, init := range initiatives {
		var refROI sql.NullFloat64
		if init.Referral.ROI != nil {
			refROI = sql.NullFloat64{Float64: *init.Referral.ROI, Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO initiatives
			(run_id, activity_id, priority_score, priority_rank, referrals,
			 conversion_rate, referral_revenue, referral_roi, recommendation, reasoning)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, init.Impact.Activity.ID, init.PriorityScore, init.PriorityRank,
			init.Referral.Generated, init.Referral.ConversionRate,
			init.Referral.Revenue, refROI, string(init.Recommendation), init.Reasoning,
		); err != nil {
			return err
		}
	}

	for _, m := range summaryMetrics(records, initiatives) {
		if _, err := tx.Exec(
			"INSERT INTO run_metrics (run_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
			runID, m.Name, m.Value, m.Detail,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// summaryMetrics computes the per-run roll-ups tracked across runs.
func summaryMetrics(records []promoter.Record, initiatives []priority.PrioritizedInitiative) []MetricRow {
	kinds := map[promoter.SuggestionKind]int{}
	totalScore := 0.0
	for _, r := range records {
		kinds[r.Kind]++
		totalScore += r.Score
	}
	avgScore := 0.0
	if len(records) > 0 {
		avgScore = totalScore / float64(len(records))
	}

	metrics := []MetricRow{
		{Name: "promoter_count", Value: float64(len(records))},
		{Name: "promoter_avg_score", Value: avgScore},
		{Name: "promoter_both", Value: float64(kinds[promoter.KindBoth])},
		{Name: "promoter_referral", Value: float64(kinds[promoter.KindReferral])},
		{Name: "promoter_testimonial", Value: float64(kinds[promoter.KindTestimonial])},
		{Name: "initiative_count", Value: float64(len(initiatives))},
	}

	for _, init := range initiatives {
		if init.PriorityRank == 1 {
			metrics = append(metrics, MetricRow{
				Name:   "top_initiative_score",
				Value:  init.PriorityScore,
				Detail: init.Impact.Activity.ID,
			})
		}
	}

	return metrics
}

// GetRunMetrics returns all summary metrics for a run.
func (db *DB) GetRunMetrics(runID string) ([]MetricRow, error) {
	rows, err := db.conn.Query(
		"SELECT metric_name, metric_value, detail FROM run_metrics WHERE run_id = ? ORDER BY metric_name",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []MetricRow
	for rows.Next() {
		var m MetricRow
		var detail sql.NullString
		if err := rows.Scan(&m.Name, &m.Value, &detail); err != nil {
			return nil, err
		}
		m.Detail = detail.String
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// DiffRuns compares the summary metrics of two runs.
func (db *DB) DiffRuns(previous, current *Run) (*RunDiff, error) {
	prevMetrics, err := db.GetRunMetrics(previous.ID)
	if err != nil {
		return nil, err
	}
	curMetrics, err := db.GetRunMetrics(current.ID)
	if err != nil {
		return nil, err
	}

	prevByName := make(map[string]float64, len(prevMetrics))
	for _, m := range prevMetrics {
		prevByName[m.Name] = m.Value
	}

	names := make(map[string]bool)
	curByName := make(map[string]float64, len(curMetrics))
	for _, m := range curMetrics {
		curByName[m.Name] = m.Value
		names[m.Name] = true
	}
	for name := range prevByName {
		names[name] = true
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	diff := &RunDiff{Previous: previous, Current: current}
	for _, name := range sorted {
		prev, cur := prevByName[name], curByName[name]
		diff.Deltas = append(diff.Deltas, MetricDelta{
			Name:     name,
			Previous: prev,
			Current:  cur,
			Delta:    cur - prev,
		})
	}
	return diff, nil
}
