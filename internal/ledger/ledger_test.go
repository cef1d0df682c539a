package ledger

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"PowerReduce/internal/logger"
	"PowerReduce/internal/types"
)

func testConfig(t *testing.T, dir string) Config {
	lg := logger.New("ERROR")
	lg.SetOutput(io.Discard)
	return Config{NodeID: "ledger-test", DataDir: dir, Logger: lg}
}

func sampleRun(id string, counts map[int]int) types.RunRecord {
	return types.RunRecord{
		ID:        id,
		Mappers:   2,
		Reducers:  len(counts),
		Manifest:  "test.txt",
		Counts:    counts,
		Timestamp: time.Now(),
	}
}

// TestLedgerRecordAndRead tests that runs are applied through Raft
func TestLedgerRecordAndRead(t *testing.T) {
	l, err := Open(testConfig(t, filepath.Join(t.TempDir(), "ledger")))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer l.Close()

	first := sampleRun("run-1", map[int]int{2: 4, 3: 2})
	if err := l.Record(first); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	second := sampleRun("run-2", map[int]int{2: 4, 3: 2})
	second.Timestamp = first.Timestamp.Add(time.Second)
	if err := l.Record(second); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	runs := l.Runs()
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-1" || runs[1].ID != "run-2" {
		t.Fatalf("Runs out of order: %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Counts[2] != 4 || runs[0].Counts[3] != 2 {
		t.Fatalf("Counts mismatch: %v", runs[0].Counts)
	}

	latest, ok := l.Latest(first.Key())
	if !ok || latest.ID != "run-2" {
		t.Fatalf("Latest = %+v, %v; want run-2", latest, ok)
	}
	if !latest.SameCounts(first) {
		t.Fatalf("Identical runs should have identical counts")
	}

	if _, ok := l.Latest("other.txt|1|1"); ok {
		t.Fatalf("Unexpected run for unknown key")
	}

	t.Logf("✓ Runs replicated through Raft: %d", len(runs))
}

func TestLedgerRejectsRunWithoutID(t *testing.T) {
	l, err := Open(testConfig(t, filepath.Join(t.TempDir(), "ledger")))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer l.Close()

	if err := l.Record(types.RunRecord{Manifest: "test.txt"}); err == nil {
		t.Fatalf("Expected error for run without id")
	}
	if len(l.Runs()) != 0 {
		t.Fatalf("Invalid run should not be stored")
	}
}

// TestLedgerReopen tests that runs survive a restart from the same directory
func TestLedgerReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")

	l, err := Open(testConfig(t, dir))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	if err := l.Record(sampleRun("run-persisted", map[int]int{2: 7})); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Failed to close ledger: %v", err)
	}

	reopened, err := Open(testConfig(t, dir))
	if err != nil {
		t.Fatalf("Failed to reopen ledger: %v", err)
	}
	defer reopened.Close()

	runs := reopened.Runs()
	if len(runs) != 1 || runs[0].ID != "run-persisted" || runs[0].Counts[2] != 7 {
		t.Fatalf("Run not restored: %+v", runs)
	}

	t.Logf("✓ Ledger state persists across restarts")
}

func TestLedgerRequiresDataDir(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatalf("Expected error without data dir")
	}
}
