package store

import (
	"database/sql"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/facts"
)

// ReplaceFacts swaps the stored fact snapshot for the given one in a
// single transaction. Facts are always replaced wholesale; the engine
// never sees a partially imported set.
func (db *DB) ReplaceFacts(set *facts.Set) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"payments", "participations", "referrals", "customers", "activities"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for _, c := range set.Customers {
		if _, err := tx.Exec(
			`INSERT INTO customers
			(id, name, joined_at, churned_at, last_session_at, sessions_attended,
			 sessions_scheduled, satisfaction_score, objectives_completed,
			 total_objectives, positive_feedback)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, formatTime(c.JoinedAt), formatTimePtr(c.ChurnedAt),
			formatTimePtr(c.LastSessionAt), c.SessionsAttended, c.SessionsScheduled,
			c.SatisfactionScore, c.ObjectivesCompleted, c.TotalObjectives, c.PositiveFeedback,
		); err != nil {
			return err
		}
	}

	for _, a := range set.Activities {
		if _, err := tx.Exec(
			`INSERT INTO activities (id, name, type, status, investment, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Type, a.Status, a.Investment,
			formatTime(a.StartDate), formatTime(a.EndDate),
		); err != nil {
			return err
		}
	}

	for _, p := range set.Participations {
		if _, err := tx.Exec(
			"INSERT INTO participations (activity_id, customer_id) VALUES (?, ?)",
			p.ActivityID, p.CustomerID,
		); err != nil {
			return err
		}
	}

	for _, p := range set.Payments {
		if _, err := tx.Exec(
			"INSERT INTO payments (customer_id, amount, paid_at) VALUES (?, ?, ?)",
			p.CustomerID, p.Amount, formatTime(p.PaidAt),
		); err != nil {
			return err
		}
	}

	for _, r := range set.Referrals {
		activityID := sql.NullString{String: r.ActivityID, Valid: r.ActivityID != ""}
		if _, err := tx.Exec(
			`INSERT INTO referrals (id, activity_id, referrer_id, converted_at, revenue)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, activityID, r.ReferrerID, formatTimePtr(r.ConvertedAt), r.Revenue,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFacts reads the stored fact snapshot.
func (db *DB) LoadFacts() (*facts.Set, error) {
	set := &facts.Set{}

	rows, err := db.conn.Query(
		`SELECT id, name, joined_at, churned_at, last_session_at, sessions_attended,
		 sessions_scheduled, satisfaction_score, objectives_completed,
		 total_objectives, positive_feedback
		 FROM customers ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var c facts.Customer
		var joined string
		var churned, lastSession sql.NullString
		if err := rows.Scan(
			&c.ID, &c.Name, &joined, &churned, &lastSession,
			&c.SessionsAttended, &c.SessionsScheduled, &c.SatisfactionScore,
			&c.ObjectivesCompleted, &c.TotalObjectives, &c.PositiveFeedback,
		); err != nil {
			return nil, err
		}
		c.JoinedAt = parseTime(joined)
		c.ChurnedAt = parseTimePtr(churned)
		c.LastSessionAt = parseTimePtr(lastSession)
		set.Customers = append(set.Customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.conn.Query(
		"SELECT id, name, type, status, investment, start_date, end_date FROM activities ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var a facts.Activity
		var start, end string
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Status, &a.Investment, &start, &end); err != nil {
			return nil, err
		}
		a.StartDate = parseTime(start)
		a.EndDate = parseTime(end)
		set.Activities = append(set.Activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.conn.Query("SELECT activity_id, customer_id FROM participations ORDER BY activity_id, customer_id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p facts.Participation
		if err := rows.Scan(&p.ActivityID, &p.CustomerID); err != nil {
			return nil, err
		}
		set.Participations = append(set.Participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.conn.Query("SELECT customer_id, amount, paid_at FROM payments ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p facts.Payment
		var paidAt string
		if err := rows.Scan(&p.CustomerID, &p.Amount, &paidAt); err != nil {
			return nil, err
		}
		p.PaidAt = parseTime(paidAt)
		set.Payments = append(set.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.conn.Query("SELECT id, activity_id, referrer_id, converted_at, revenue FROM referrals ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r facts.Referral
		var activityID, convertedAt sql.NullString
		if err := rows.Scan(&r.ID, &activityID, &r.ReferrerID, &convertedAt, &r.Revenue); err != nil {
			return nil, err
		}
		r.ActivityID = activityID.String
		r.ConvertedAt = parseTimePtr(convertedAt)
		set.Referrals = append(set.Referrals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return set, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
