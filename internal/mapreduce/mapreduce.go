package mapreduce

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"PowerReduce/internal/barrier"
	"PowerReduce/internal/logger"
	"PowerReduce/internal/power"
	"PowerReduce/internal/queue"
	"PowerReduce/internal/results"
	"PowerReduce/internal/types"
)

// Loader supplies the numbers of one input file.
type Loader interface {
	Load(filename string) ([]int64, error)
}

// Sink receives the distinct perfect power count of one exponent.
type Sink interface {
	Write(exponent, count int) error
}

// RoleOf derives a worker's role from its id. Reducers also get the index of
// the bucket they own; mappers get -1.
func RoleOf(id, mappers int) (types.Role, int) {
	if id < mappers {
		return types.RoleMapper, -1
	}
	return types.RoleReducer, id - mappers
}

// Engine runs the perfect power pipeline on a fixed pool of workers.
type Engine struct {
	mappers  int
	reducers int
	loader   Loader
	sink     Sink
	logger   *logger.Logger
}

// Result summarizes one Execute call.
type Result struct {
	Counts  []int // indexed by bucket, exponent = index + 2
	Files   int
	Skipped int
}

// CountsByExponent returns the counts keyed by exponent.
func (r *Result) CountsByExponent() map[int]int {
	out := make(map[int]int, len(r.Counts))
	for idx, n := range r.Counts {
		out[results.Exponent(idx)] = n
	}
	return out
}

// NewEngine creates a new engine with the given pool shape.
func NewEngine(mappers, reducers int, loader Loader, sink Sink, lg *logger.Logger) *Engine {
	if lg == nil {
		lg = logger.New("INFO")
	}
	return &Engine{
		mappers:  mappers,
		reducers: reducers,
		loader:   loader,
		sink:     sink,
		logger:   lg,
	}
}

// run is the state shared by the workers of one Execute call.
type run struct {
	queue     *queue.WorkQueue
	matrix    *results.Matrix
	barrier   *barrier.Barrier
	counts    []int
	processed atomic.Int64
	skipped   atomic.Int64
}

// Execute processes files and hands one count per exponent to the sink.
// It returns after every worker has finished.
func (e *Engine) Execute(files []string) (*Result, error) {
	workers := e.mappers + e.reducers

	if e.mappers == 0 && len(files) > 0 {
		e.logger.Warn("No mappers configured, %d files will not be read", len(files))
	}
	if e.reducers == 0 {
		e.logger.Warn("No reducers configured, no exponent will be reported")
	}

	matrix := results.NewMatrix(e.reducers)
	r := &run{
		queue:   queue.New(files...),
		matrix:  matrix,
		barrier: barrier.New(workers, matrix.Seal),
		counts:  make([]int, e.reducers),
	}

	e.logger.Info("Starting pipeline: mappers=%d reducers=%d files=%d", e.mappers, e.reducers, len(files))

	var g errgroup.Group
	for id := 0; id < workers; id++ {
		g.Go(func() error {
			return e.worker(id, r)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Counts:  r.counts,
		Files:   int(r.processed.Load()),
		Skipped: int(r.skipped.Load()),
	}
	e.logger.Info("Pipeline finished: files=%d skipped=%d", res.Files, res.Skipped)
	return res, nil
}

// worker is the body of every pool member. All of them meet at the barrier,
// so mappers never fail before reaching it.
func (e *Engine) worker(id int, r *run) error {
	role, bucket := RoleOf(id, e.mappers)
	lg := e.logger.WithFields(map[string]interface{}{"worker": id, "role": role})

	if role == types.RoleMapper {
		e.mapPhase(r, lg)
	}

	r.barrier.Wait()

	if role == types.RoleReducer {
		return e.reducePhase(id, bucket, r, lg)
	}
	return nil
}

// mapPhase drains the work queue, classifying every number of every file.
func (e *Engine) mapPhase(r *run, lg *logger.Logger) {
	classified := make([][]int64, e.reducers)

	for {
		filename, ok := r.queue.TryPop()
		if !ok {
			break
		}

		numbers, err := e.loader.Load(filename)
		if err != nil {
			lg.Warn("Skipping file: %v", err)
			r.skipped.Add(1)
			continue
		}
		r.processed.Add(1)
		lg.Debug("Read %s: %d numbers", filename, len(numbers))

		for idx := 0; idx < e.reducers; idx++ {
			exponent := results.Exponent(idx)

			var found []int64
			for _, n := range numbers {
				if power.IsPerfectPower(n, exponent) {
					found = append(found, n)
				}
			}

			r.matrix.Append(idx, found...)
			classified[idx] = append(classified[idx], found...)
		}
	}

	for idx, found := range classified {
		lg.Info("Exponent %d: %v", results.Exponent(idx), found)
	}
}

// reducePhase counts the distinct values of the worker's own bucket.
func (e *Engine) reducePhase(id, bucket int, r *run, lg *logger.Logger) error {
	unique := r.matrix.Unique(bucket)
	exponent := results.Exponent(bucket)

	r.counts[bucket] = len(unique)
	if err := e.sink.Write(exponent, len(unique)); err != nil {
		lg.Error("Failed to write exponent %d: %v", exponent, err)
		return fmt.Errorf("reducer %d: %w", id, err)
	}

	lg.Debug("Exponent %d: %d distinct perfect powers", exponent, len(unique))
	return nil
}
