// Package jobs runs per-entity component work as parallel-for jobs.
//
// A job system declares one to four component types and a job struct. Every
// tick it aliases the current component columns and the matching entity list
// as native views, hands them to a fresh job, runs the job over all matched
// entities on a sched.Scheduler, waits, and releases the views.
package jobs

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/core/event"
	"github.com/l1jgo/ecsjobs/internal/core/system"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
	"github.com/l1jgo/ecsjobs/internal/jobs/sched"
)

var (
	ErrChunkSize      = errors.New("jobs: chunk size must be positive")
	ErrNotInitialized = errors.New("jobs: system used before Init")
	ErrShortFilter    = errors.New("jobs: filter reported more entities than it holds")
)

// Options configures a job system.
type Options struct {
	// Name identifies the system in logs, events and view names. Defaults to
	// the job type's name.
	Name string
	// WorldName selects the pipeline world; "" is the default world.
	WorldName string
	// World overrides how storage is found. Defaults to PipelineWorld(WorldName).
	World func(*system.Pipeline) (Storage, error)
	// ChunkSize is the number of entities a worker claims at a time.
	ChunkSize int
	// Include and Exclude narrow the filter beyond the job's own component types.
	Include []reflect.Type
	Exclude []reflect.Type
	// Scheduler runs the parallel-for. Defaults to sched.NewPool(0, Log).
	Scheduler sched.Scheduler
	// Bus receives an event.JobCompleted after every dispatch when set.
	Bus *event.Bus
	Log *zap.Logger
}

// binding is the dispatcher's lifecycle: unresolved until the first tick
// finds storage, then *resolved for the rest of its life.
type binding interface{ bound() bool }

type unresolved struct{}

func (unresolved) bound() bool { return false }

type resolved struct {
	storage Storage
	filter  Filter
	columns []Column
	names   []string // names[0] is the entity view, names[i+1] column i
	blocks  []native.Block
}

func (*resolved) bound() bool { return true }

// dispatcher implements the per-tick algorithm shared by every arity.
type dispatcher struct {
	opts     Options
	types    []reflect.Type
	pipeline *system.Pipeline
	state    binding
	runner   sched.Scheduler
	log      *zap.Logger
}

func newDispatcher(opts Options, types ...reflect.Type) dispatcher {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.World == nil {
		opts.World = PipelineWorld(opts.WorldName)
	}
	s := opts.Scheduler
	if s == nil {
		s = sched.NewPool(0, opts.Log)
	}
	return dispatcher{
		opts:   opts,
		types:  types,
		state:  unresolved{},
		runner: s,
		log:    opts.Log.With(zap.String("system", opts.Name)),
	}
}

func (d *dispatcher) Name() string        { return d.opts.Name }
func (d *dispatcher) Phase() system.Phase { return system.PhaseUpdate }

// Init remembers the pipeline. Storage is resolved lazily on the first tick.
func (d *dispatcher) Init(p *system.Pipeline) error {
	d.pipeline = p
	return nil
}

// Resolved reports whether the first tick has cached filter and columns.
func (d *dispatcher) Resolved() bool { return d.state.bound() }

func (d *dispatcher) resolve() (*resolved, error) {
	if r, ok := d.state.(*resolved); ok {
		return r, nil
	}
	storage, err := d.opts.World(d.pipeline)
	if err != nil {
		return nil, fmt.Errorf("resolve world: %w", err)
	}
	r := &resolved{
		storage: storage,
		columns: make([]Column, len(d.types)),
		names:   make([]string, len(d.types)+1),
		blocks:  make([]native.Block, 0, len(d.types)),
	}
	r.names[0] = d.opts.Name + ".entities"
	for i, t := range d.types {
		c, err := storage.Column(t)
		if err != nil {
			return nil, fmt.Errorf("resolve column %s: %w", t, err)
		}
		r.columns[i] = c
		r.names[i+1] = d.opts.Name + "." + t.Name()
	}
	include := append(append(make([]reflect.Type, 0, len(d.types)+len(d.opts.Include)), d.types...), d.opts.Include...)
	r.filter, err = storage.Filter(include, d.opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("resolve filter: %w", err)
	}
	d.state = r
	d.log.Debug("job system resolved", zap.Int("columns", len(r.columns)), zap.Int("chunk", d.opts.ChunkSize))
	return r, nil
}

// binder types the column blocks, builds and configures a job, and returns
// the body each scheduled chunk runs.
type binder func(entities native.Array[ecs.Entity], columns []native.Block) (sched.Body, error)

func (d *dispatcher) run(bind binder) error {
	if d.opts.ChunkSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrChunkSize, d.opts.ChunkSize)
	}
	r, err := d.resolve()
	if err != nil {
		return err
	}

	n := r.filter.Count()
	raw := r.filter.RawEntities()
	if len(raw) < n {
		return fmt.Errorf("%w: count %d, len %d", ErrShortFilter, n, len(raw))
	}
	entities, err := native.Wrap[ecs.Entity, ecs.Entity](raw[:n], r.names[0], r.filter)
	if err != nil {
		return err
	}
	defer entities.Release()

	r.blocks = r.blocks[:0]
	defer func() {
		blocks := r.blocks
		r.blocks = r.blocks[:0]
		releaseAll(blocks)
	}()
	for i, c := range r.columns {
		buf := c.Buffer()
		b, err := native.Alias(native.Raw{
			Ptr:    buf.Ptr,
			Len:    buf.Len,
			Stride: buf.Stride,
			Offset: buf.Offset,
		}, r.names[i+1], c)
		if err != nil {
			return err
		}
		r.blocks = append(r.blocks, b)
	}

	body, err := bind(entities, r.blocks)
	if err != nil {
		return err
	}
	start := time.Now()
	h, err := d.runner.Schedule(n, d.opts.ChunkSize, body)
	if err != nil {
		return err
	}
	h.Complete()
	elapsed := time.Since(start)

	if d.opts.Bus != nil {
		event.Emit(d.opts.Bus, event.JobCompleted{
			System:    d.opts.Name,
			Entities:  n,
			ChunkSize: d.opts.ChunkSize,
			Elapsed:   elapsed,
		})
	}
	return nil
}

// releaseAll releases every block, then re-raises the first release panic.
func releaseAll(blocks []native.Block) {
	var first any
	for _, b := range blocks {
		func() {
			defer func() {
				if v := recover(); v != nil && first == nil {
					first = v
				}
			}()
			b.Release()
		}()
	}
	if first != nil {
		panic(first)
	}
}

// bodyOf runs exec over a chunk on a private copy of job.
func bodyOf[J any](job J, exec func(*J, int)) sched.Body {
	return func(start, end int) {
		local := job
		for i := start; i < end; i++ {
			exec(&local, i)
		}
	}
}

func nameOr[J any](name string) string {
	if name != "" {
		return name
	}
	return reflect.TypeFor[J]().Name()
}
