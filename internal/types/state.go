package types

import "time"

// LedgerState is the state replicated by the run ledger.
type LedgerState struct {
	Runs    map[string]*RunRecord `json:"runs"`
	Latest  map[string]string     `json:"latest"` // RunRecord.Key() -> run id
	Version int64                 `json:"version"`
}

// LogEntry represents an entry in the ledger's Raft log
type LogEntry struct {
	Type      string     `json:"type"`      // "run"
	Operation string     `json:"operation"` // "record"
	Run       *RunRecord `json:"run,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
