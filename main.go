package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"PowerReduce/internal/input"
	"PowerReduce/internal/ledger"
	"PowerReduce/internal/logger"
	"PowerReduce/internal/mapreduce"
	"PowerReduce/internal/types"
)

const usage = `Usage: powerreduce [flags] <mapper_count> <reducer_count> <manifest_path>

Counts the distinct perfect powers of exponents 2..reducer_count+1 found in
the files listed by the manifest, writing one out<exponent>.txt per exponent.

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	lg := logger.New(cfg.LogLevel)
	lg.SetOutput(stderr)

	if err := execute(cfg, lg); err != nil {
		lg.Error("%v", err)
		return 1
	}
	return 0
}

func parseConfig(args []string, stderr io.Writer) (types.Config, error) {
	var cfg types.Config

	fs := flag.NewFlagSet("powerreduce", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.OutputDir, "out", ".", "directory for the out<exponent>.txt files")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "INFO"), "DEBUG, INFO, WARN or ERROR")
	fs.StringVar(&cfg.LedgerDir, "ledger", "", "record runs in a ledger stored in this directory")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if fs.NArg() < 3 {
		fs.Usage()
		return cfg, fmt.Errorf("need 3 arguments, got %d", fs.NArg())
	}

	mappers, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fs.Usage()
		return cfg, fmt.Errorf("invalid mapper count %q", fs.Arg(0))
	}
	reducers, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		fs.Usage()
		return cfg, fmt.Errorf("invalid reducer count %q", fs.Arg(1))
	}

	cfg.Mappers = mappers
	cfg.Reducers = reducers
	cfg.Manifest = fs.Arg(2)

	if err := cfg.Validate(); err != nil {
		fs.Usage()
		return cfg, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func execute(cfg types.Config, lg *logger.Logger) error {
	runID := "run-" + uuid.New().String()[:8]
	lg = lg.WithFields(map[string]interface{}{"run": runID})

	manifest, err := input.ReadManifest(cfg.Manifest)
	if err != nil {
		return err
	}
	if manifest.Declared != len(manifest.Files) {
		lg.Warn("Manifest declares %d files but lists %d", manifest.Declared, len(manifest.Files))
	}

	sink, err := mapreduce.NewFileSink(cfg.OutputDir)
	if err != nil {
		return err
	}

	engine := mapreduce.NewEngine(cfg.Mappers, cfg.Reducers, input.FileLoader{}, sink, lg)
	result, err := engine.Execute(manifest.Files)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	record := types.RunRecord{
		ID:        runID,
		Mappers:   cfg.Mappers,
		Reducers:  cfg.Reducers,
		Manifest:  cfg.Manifest,
		Counts:    result.CountsByExponent(),
		Timestamp: time.Now(),
	}
	for exp := 2; exp < 2+cfg.Reducers; exp++ {
		lg.Info("Exponent %d: %d distinct perfect powers -> %s", exp, record.Counts[exp], sink.Path(exp))
	}

	if cfg.LedgerDir == "" {
		return nil
	}
	return recordRun(cfg.LedgerDir, record, lg)
}

// recordRun stores the run and warns when an earlier run over the same
// manifest and pool shape produced different counts.
func recordRun(dir string, record types.RunRecord, lg *logger.Logger) error {
	l, err := ledger.Open(ledger.Config{DataDir: dir, Logger: lg})
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer l.Close()

	if prev, ok := l.Latest(record.Key()); ok && !prev.SameCounts(record) {
		lg.Warn("Counts differ from run %s: previous=%v current=%v", prev.ID, prev.Counts, record.Counts)
	}

	return l.Record(record)
}
