// Package ledger keeps a durable history of pipeline runs in a single-node
// Raft log backed by BoltDB.
package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	raft "github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb/v2"

	"PowerReduce/internal/logger"
	"PowerReduce/internal/types"
)

// Config for opening a ledger
type Config struct {
	NodeID  string        // defaults to "ledger"
	DataDir string        // directory for log store and snapshots
	Timeout time.Duration // leadership and apply timeout, defaults to 5s
	Logger  *logger.Logger
}

// Ledger records RunRecords through Raft.
type Ledger struct {
	raft        *raft.Raft
	fsm         *FSM
	logStore    *raftboltdb.BoltStore
	stableStore *raftboltdb.BoltStore
	transport   *raft.InmemTransport
	timeout     time.Duration
	logger      *logger.Logger
}

// Open starts the ledger node, bootstrapping it on first use, and returns
// once it leads and has replayed its log.
func Open(cfg Config) (*Ledger, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("DataDir cannot be empty")
	}
	if cfg.NodeID == "" {
		cfg.NodeID = "ledger"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.New("INFO")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	l := &Ledger{
		fsm:     NewFSM(lg),
		timeout: cfg.Timeout,
		logger:  lg,
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-logs.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create log store: %w", err)
	}
	l.logStore = logStore

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-stable.db"))
	if err != nil {
		logStore.Close()
		return nil, fmt.Errorf("failed to create stable store: %w", err)
	}
	l.stableStore = stableStore

	snapshotStore, err := raft.NewFileSnapshotStore(cfg.DataDir, 3, io.Discard)
	if err != nil {
		l.closeStores()
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	addr, transport := raft.NewInmemTransport(raft.ServerAddress(cfg.NodeID))
	l.transport = transport

	raftCfg := raft.DefaultConfig()
	raftCfg.LocalID = raft.ServerID(cfg.NodeID)
	raftCfg.HeartbeatTimeout = 200 * time.Millisecond
	raftCfg.ElectionTimeout = 200 * time.Millisecond
	raftCfg.LeaderLeaseTimeout = 100 * time.Millisecond
	raftCfg.SnapshotThreshold = 64
	raftCfg.LogOutput = io.Discard

	existing, err := raft.HasExistingState(logStore, stableStore, snapshotStore)
	if err != nil {
		l.closeStores()
		return nil, fmt.Errorf("failed to inspect ledger state: %w", err)
	}

	r, err := raft.NewRaft(raftCfg, l.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		l.closeStores()
		return nil, fmt.Errorf("failed to create raft: %w", err)
	}
	l.raft = r

	if !existing {
		configuration := raft.Configuration{
			Servers: []raft.Server{
				{
					Suffrage: raft.Voter,
					ID:       raft.ServerID(cfg.NodeID),
					Address:  addr,
				},
			},
		}
		if err := r.BootstrapCluster(configuration).Error(); err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to bootstrap ledger: %w", err)
		}
		lg.Info("Ledger bootstrapped: dir=%s", cfg.DataDir)
	}

	if err := l.waitForLeader(); err != nil {
		l.Close()
		return nil, err
	}
	if err := r.Barrier(l.timeout).Error(); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to replay ledger: %w", err)
	}

	lg.Debug("Ledger open: dir=%s runs=%d", cfg.DataDir, len(l.fsm.Runs()))
	return l, nil
}

func (l *Ledger) waitForLeader() error {
	deadline := time.Now().Add(l.timeout)

	for time.Now().Before(deadline) {
		if l.raft.State() == raft.Leader {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}

	return fmt.Errorf("ledger did not become leader within %v", l.timeout)
}

// Record appends a run to the ledger.
func (l *Ledger) Record(run types.RunRecord) error {
	entry := &types.LogEntry{
		Type:      "run",
		Operation: "record",
		Run:       &run,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	f := l.raft.Apply(data, l.timeout)
	if err := f.Error(); err != nil {
		return fmt.Errorf("failed to apply log: %w", err)
	}
	if err, ok := f.Response().(error); ok {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}

	l.logger.Info("Run recorded in ledger: run_id=%s", run.ID)
	return nil
}

// Runs returns every recorded run, oldest first.
func (l *Ledger) Runs() []types.RunRecord {
	return l.fsm.Runs()
}

// Latest returns the most recent run with the same manifest and pool shape.
func (l *Ledger) Latest(key string) (types.RunRecord, bool) {
	return l.fsm.Latest(key)
}

// Close shuts the node down and releases its stores.
func (l *Ledger) Close() error {
	if l.raft != nil {
		if err := l.raft.Shutdown().Error(); err != nil {
			return err
		}
	}
	if err := l.transport.Close(); err != nil {
		return err
	}
	return l.closeStores()
}

func (l *Ledger) closeStores() error {
	var first error
	if l.logStore != nil {
		if err := l.logStore.Close(); err != nil && first == nil {
			first = err
		}
	}
	if l.stableStore != nil {
		if err := l.stableStore.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
