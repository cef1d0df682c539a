package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	raft "github.com/hashicorp/raft"

	"PowerReduce/internal/logger"
	"PowerReduce/internal/types"
)

// FSM implements raft.FSM over the set of recorded runs.
type FSM struct {
	mu     sync.RWMutex
	state  *types.LedgerState
	logger *logger.Logger
}

func newState() *types.LedgerState {
	return &types.LedgerState{
		Runs:   make(map[string]*types.RunRecord),
		Latest: make(map[string]string),
	}
}

// NewFSM creates an FSM with no runs.
func NewFSM(lg *logger.Logger) *FSM {
	return &FSM{
		state:  newState(),
		logger: lg,
	}
}

// Apply implements raft.FSM - processes a log entry committed by Raft
func (f *FSM) Apply(log *raft.Log) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entry types.LogEntry
	if err := json.Unmarshal(log.Data, &entry); err != nil {
		f.logger.Error("Failed to unmarshal log entry: %v", err)
		return fmt.Errorf("failed to unmarshal log entry: %w", err)
	}

	switch {
	case entry.Type == "run" && entry.Operation == "record":
		if entry.Run == nil || entry.Run.ID == "" {
			return fmt.Errorf("run record without id")
		}
		run := *entry.Run
		f.state.Runs[run.ID] = &run
		f.state.Latest[run.Key()] = run.ID
		f.state.Version++
		f.logger.Debug("Run recorded: run_id=%s key=%s", run.ID, run.Key())
		return nil
	default:
		f.logger.Warn("Unknown log entry: type=%s operation=%s", entry.Type, entry.Operation)
		return fmt.Errorf("unknown log entry: %s/%s", entry.Type, entry.Operation)
	}
}

// Snapshot implements raft.FSM - creates a snapshot of the current state
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return &snapshot{state: f.copyState()}, nil
}

// Restore implements raft.FSM - restores state from a snapshot
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	state := newState()
	if err := json.NewDecoder(rc).Decode(state); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
	return nil
}

func (f *FSM) copyState() *types.LedgerState {
	c := newState()
	c.Version = f.state.Version
	for id, run := range f.state.Runs {
		r := *run
		c.Runs[id] = &r
	}
	for k, id := range f.state.Latest {
		c.Latest[k] = id
	}
	return c
}

// Runs returns every recorded run, oldest first.
func (f *FSM) Runs() []types.RunRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()

	runs := make([]types.RunRecord, 0, len(f.state.Runs))
	for _, run := range f.state.Runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs
}

// Latest returns the most recent run recorded under key.
func (f *FSM) Latest(key string) (types.RunRecord, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	id, ok := f.state.Latest[key]
	if !ok {
		return types.RunRecord{}, false
	}
	return *f.state.Runs[id], true
}

type snapshot struct {
	state *types.LedgerState
}

// Persist writes the snapshot to a sink
func (s *snapshot) Persist(sink raft.SnapshotSink) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		sink.Cancel()
		return err
	}

	if _, err := sink.Write(data); err != nil {
		sink.Cancel()
		return err
	}

	return sink.Close()
}

func (s *snapshot) Release() {}
