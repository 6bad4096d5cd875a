package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		// Raw facts, replaced wholesale on each import.
		`CREATE TABLE IF NOT EXISTS customers (
			id                   TEXT PRIMARY KEY,
			name                 TEXT NOT NULL,
			joined_at            TEXT NOT NULL,
			churned_at           TEXT,
			last_session_at      TEXT,
			sessions_attended    INTEGER NOT NULL,
			sessions_scheduled   INTEGER NOT NULL,
			satisfaction_score   REAL NOT NULL,
			objectives_completed INTEGER NOT NULL,
			total_objectives     INTEGER NOT NULL,
			positive_feedback    INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS activities (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL,
			status     TEXT NOT NULL,
			investment REAL NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS participations (
			activity_id TEXT NOT NULL REFERENCES activities(id),
			customer_id TEXT NOT NULL REFERENCES customers(id),
			PRIMARY KEY (activity_id, customer_id)
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			amount      REAL NOT NULL,
			paid_at     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS referrals (
			id           TEXT PRIMARY KEY,
			activity_id  TEXT,
			referrer_id  TEXT NOT NULL REFERENCES customers(id),
			converted_at TEXT,
			revenue      REAL NOT NULL
		)`,

		// Engine runs and their outputs.
		`CREATE TABLE IF NOT EXISTS runs (
			id       TEXT PRIMARY KEY,
			taken_at TEXT NOT NULL,
			command  TEXT NOT NULL,
			version  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS run_metrics (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES runs(id),
			metric_name  TEXT NOT NULL,
			metric_value REAL NOT NULL,
			detail       TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS promoter_records (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(id),
			customer_id TEXT NOT NULL,
			name        TEXT NOT NULL,
			score       REAL NOT NULL,
			kind        TEXT NOT NULL,
			timing      TEXT NOT NULL,
			reason      TEXT NOT NULL,
			tags        TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS activity_impacts (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT NOT NULL REFERENCES runs(id),
			activity_id        TEXT NOT NULL,
			retention_rate     REAL NOT NULL,
			baseline_retention REAL NOT NULL,
			retention_lift     REAL NOT NULL,
			trend              TEXT NOT NULL,
			revenue_attributed REAL NOT NULL,
			roi                REAL,
			payback_days       INTEGER,
			recommendation     TEXT NOT NULL,
			reasoning          TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS initiatives (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL REFERENCES runs(id),
			activity_id     TEXT NOT NULL,
			priority_score  REAL NOT NULL,
			priority_rank   INTEGER NOT NULL,
			referrals       INTEGER NOT NULL,
			conversion_rate REAL NOT NULL,
			referral_revenue REAL NOT NULL,
			referral_roi    REAL,
			recommendation  TEXT NOT NULL,
			reasoning       TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_payments_customer ON payments(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participations_customer ON participations(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_activity ON referrals(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_run_metrics_run ON run_metrics(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_promoter_records_run ON promoter_records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_impacts_run ON activity_impacts(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_initiatives_run ON initiatives(run_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
