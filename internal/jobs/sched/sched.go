// Package sched executes parallel-for work: n indices cut into chunks of a
// fixed size and spread over a bounded set of worker goroutines. The caller
// blocks in Handle.Complete until every chunk has run.
package sched

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

var (
	ErrChunkSize = errors.New("sched: chunk size must be positive")
	ErrCount     = errors.New("sched: negative item count")
)

// Body processes indices [start, end).
type Body func(start, end int)

// Scheduler is the parallel-for primitive job dispatchers submit to.
type Scheduler interface {
	Schedule(n, chunk int, body Body) (Handle, error)
}

// Handle is returned by Schedule. Complete blocks until all chunks are done
// and re-raises, on the calling goroutine, the first panic a chunk raised.
type Handle interface {
	Complete()
}

// PanicError carries a panic recovered from a worker.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("sched: worker panic: %v\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it is an error, so safety violations
// raised inside a job can be matched with errors.As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func validate(n, chunk int) error {
	if chunk <= 0 {
		return fmt.Errorf("%w: got %d", ErrChunkSize, chunk)
	}
	if n < 0 {
		return fmt.Errorf("%w: got %d", ErrCount, n)
	}
	return nil
}

// runChunk executes one chunk and converts a panic into a *PanicError.
func runChunk(body Body, start, end int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	body(start, end)
	return nil
}

type done struct{}

func (done) Complete() {}

// ── Pool ──────────────────────────────────────────────────────────

type workerStat struct {
	chunks atomic.Uint64
	_      cpu.CacheLinePad
}

// Pool fans a dispatch out to at most Workers goroutines. Each goroutine
// claims chunk indices from a shared counter until none are left, so a slow
// chunk never holds up the others.
type Pool struct {
	workers int
	stats   []workerStat
	log     *zap.Logger
}

// NewPool creates a pool with the given fan-out; workers <= 0 means one per CPU.
func NewPool(workers int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		workers: workers,
		stats:   make([]workerStat, workers),
		log:     log,
	}
}

func (p *Pool) Workers() int { return p.workers }

// Chunks returns how many chunks each worker slot has executed so far.
func (p *Pool) Chunks() []uint64 {
	out := make([]uint64, len(p.stats))
	for i := range p.stats {
		out[i] = p.stats[i].chunks.Load()
	}
	return out
}

func (p *Pool) Schedule(n, chunk int, body Body) (Handle, error) {
	if err := validate(n, chunk); err != nil {
		return nil, err
	}
	if n == 0 {
		return done{}, nil
	}
	chunk = min(chunk, n)
	chunks := n / chunk
	if n%chunk != 0 {
		chunks++
	}
	fan := min(p.workers, chunks)

	var next atomic.Int64
	g := new(errgroup.Group)
	for w := 0; w < fan; w++ {
		stat := &p.stats[w]
		g.Go(func() error {
			for {
				c := int(next.Add(1) - 1)
				if c >= chunks {
					return nil
				}
				start := c * chunk
				if err := runChunk(body, start, min(start+chunk, n)); err != nil {
					// drain so the other workers stop claiming chunks
					next.Store(int64(chunks))
					return err
				}
				stat.chunks.Add(1)
			}
		})
	}
	p.log.Debug("parallel-for scheduled",
		zap.Int("items", n), zap.Int("chunk", chunk), zap.Int("chunks", chunks), zap.Int("workers", fan))
	return &poolHandle{g: g}, nil
}

type poolHandle struct {
	g    *errgroup.Group
	once sync.Once
	err  error
}

func (h *poolHandle) Complete() {
	h.once.Do(func() { h.err = h.g.Wait() })
	if h.err != nil {
		panic(h.err)
	}
}

// ── Inline ────────────────────────────────────────────────────────

// Inline runs every chunk on the scheduling goroutine, in order. It honours
// the same contract as Pool and is meant for debugging jobs.
type Inline struct{}

func (Inline) Schedule(n, chunk int, body Body) (Handle, error) {
	if err := validate(n, chunk); err != nil {
		return nil, err
	}
	chunk = min(chunk, max(n, 1))
	for start := 0; start < n; start += chunk {
		if err := runChunk(body, start, min(start+chunk, n)); err != nil {
			return failed{err: err}, nil
		}
	}
	return done{}, nil
}

type failed struct{ err error }

func (f failed) Complete() { panic(f.err) }
