package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/engine"
	"github.com/harborlight-systems/engagewatch/internal/output"
	"github.com/harborlight-systems/engagewatch/internal/store"
)

// setup loads configuration and applies the output flags.
func setup() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	output.AutoDetect()
	if flagNoColor || !cfg.Output.Color {
		output.SetNoColor(true)
	}
	return cfg, nil
}

// openDB opens the local database at the configured path.
func openDB() (*store.DB, error) {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// parseAsOf resolves the evaluation time from an --as-of flag value.
// An empty value means the current time. Accepts a date or RFC3339.
func parseAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: use YYYY-MM-DD or RFC3339", value)
	}
	return t.UTC(), nil
}

// evaluate loads the stored facts and runs a full evaluation pass.
func evaluate(db *store.DB, cfg *config.Config, asOf time.Time) (*engine.Result, error) {
	set, err := db.LoadFacts()
	if err != nil {
		return nil, fmt.Errorf("loading facts: %w", err)
	}
	if len(set.Customers) == 0 {
		return nil, fmt.Errorf("no facts imported yet; run 'engagewatch import <file>' first")
	}
	return engine.Run(set, asOf, cfg.Engine)
}

// printJSON writes a value to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
