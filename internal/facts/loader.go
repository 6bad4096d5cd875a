package facts

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a facts snapshot from a JSON file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading facts file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a facts snapshot from JSON and checks basic shape:
// identifiers present and cross-references resolvable. Domain-level
// validation (ranges, required-for-math fields) is the aggregator's job.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing facts: %w", err)
	}

	customers := make(map[string]bool, len(set.Customers))
	for i, c := range set.Customers {
		if c.ID == "" {
			return nil, fmt.Errorf("customer at index %d has no id", i)
		}
		if customers[c.ID] {
			return nil, fmt.Errorf("duplicate customer id %q", c.ID)
		}
		customers[c.ID] = true
	}

	activities := make(map[string]bool, len(set.Activities))
	for i, a := range set.Activities {
		if a.ID == "" {
			return nil, fmt.Errorf("activity at index %d has no id", i)
		}
		if activities[a.ID] {
			return nil, fmt.Errorf("duplicate activity id %q", a.ID)
		}
		activities[a.ID] = true
	}

	for _, p := range set.Participations {
		if !activities[p.ActivityID] {
			return nil, fmt.Errorf("participation references unknown activity %q", p.ActivityID)
		}
		if !customers[p.CustomerID] {
			return nil, fmt.Errorf("participation references unknown customer %q", p.CustomerID)
		}
	}
	for _, p := range set.Payments {
		if !customers[p.CustomerID] {
			return nil, fmt.Errorf("payment references unknown customer %q", p.CustomerID)
		}
	}
	for _, r := range set.Referrals {
		if !customers[r.ReferrerID] {
			return nil, fmt.Errorf("referral %q references unknown customer %q", r.ID, r.ReferrerID)
		}
		if r.ActivityID != "" && !activities[r.ActivityID] {
			return nil, fmt.Errorf("referral %q references unknown activity %q", r.ID, r.ActivityID)
		}
	}

	return &set, nil
}
