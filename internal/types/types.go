package types

import (
	"fmt"
	"time"
)

// Role is the fixed job of a worker for its whole life.
type Role string

const (
	RoleMapper  Role = "mapper"
	RoleReducer Role = "reducer"
)

// Config holds the pipeline settings collected by the command line.
type Config struct {
	Mappers   int
	Reducers  int
	Manifest  string
	OutputDir string
	LogLevel  string
	LedgerDir string
}

// Workers returns the size of the worker pool.
func (c Config) Workers() int {
	return c.Mappers + c.Reducers
}

// Validate rejects configurations no pool can run.
func (c Config) Validate() error {
	if c.Mappers < 0 {
		return fmt.Errorf("mapper count must not be negative, got %d", c.Mappers)
	}
	if c.Reducers < 0 {
		return fmt.Errorf("reducer count must not be negative, got %d", c.Reducers)
	}
	if c.Workers() == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	if c.Manifest == "" {
		return fmt.Errorf("manifest path cannot be empty")
	}
	return nil
}

// RunRecord summarizes one finished pipeline run.
type RunRecord struct {
	ID        string      `json:"id"`
	Mappers   int         `json:"mappers"`
	Reducers  int         `json:"reducers"`
	Manifest  string      `json:"manifest"`
	Counts    map[int]int `json:"counts"` // exponent -> distinct perfect powers
	Timestamp time.Time   `json:"timestamp"`
}

// Key identifies runs that must produce identical counts.
func (r RunRecord) Key() string {
	return fmt.Sprintf("%s|%d|%d", r.Manifest, r.Mappers, r.Reducers)
}

// SameCounts reports whether two records agree on every exponent.
func (r RunRecord) SameCounts(other RunRecord) bool {
	if len(r.Counts) != len(other.Counts) {
		return false
	}
	for exp, n := range r.Counts {
		if m, ok := other.Counts[exp]; !ok || m != n {
			return false
		}
	}
	return true
}
