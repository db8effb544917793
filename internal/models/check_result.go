package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// CheckResult is the outcome of one compliance rule executed against one
// article.
type CheckResult struct {
	Rule       string    `json:"rule"`
	Validator  string    `json:"validator"`
	Passed     bool      `json:"passed"`
	Message    string    `json:"message"`
	Details    JSONMap   `json:"details,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// ResultSet holds per-rule compliance results in execution order
// (rule priority ascending).
type ResultSet []CheckResult

// Get returns the result for the named rule.
func (rs ResultSet) Get(rule string) (CheckResult, bool) {
	for _, r := range rs {
		if r.Rule == rule {
			return r, true
		}
	}
	return CheckResult{}, false
}

// AllPassed reports whether every result in the set passed. An empty set
// passes vacuously.
func (rs ResultSet) AllPassed() bool {
	for _, r := range rs {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failed returns only the failing results, keyed by rule name.
func (rs ResultSet) Failed() map[string]CheckResult {
	failed := make(map[string]CheckResult)
	for _, r := range rs {
		if !r.Passed {
			failed[r.Rule] = r
		}
	}
	return failed
}

// RuleNames returns the rule names in execution order.
func (rs ResultSet) RuleNames() []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Rule)
	}
	return names
}

// Value implements driver.Valuer. Results are stored as a JSON array so
// execution order survives the round trip.
func (rs ResultSet) Value() (driver.Value, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]CheckResult(rs))
}

// Scan implements sql.Scanner.
func (rs *ResultSet) Scan(src any) error {
	if src == nil {
		*rs = nil
		return nil
	}
	data, err := jsonColumnBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*rs = nil
		return nil
	}
	return json.Unmarshal(data, (*[]CheckResult)(rs))
}
