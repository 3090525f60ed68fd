package system

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick.
type Runner struct {
	pipeline *Pipeline
	systems  []System
	sorted   bool
	log      *zap.Logger
}

func NewRunner(p *Pipeline, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		pipeline: p,
		systems:  make([]System, 0, 16),
		log:      log,
	}
}

func (r *Runner) Pipeline() *Pipeline { return r.pipeline }

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Init calls Init on every system that implements Initer, in phase order.
func (r *Runner) Init() error {
	r.ensureSorted()
	for _, s := range r.systems {
		if in, ok := s.(Initer); ok {
			if err := in.Init(r.pipeline); err != nil {
				return fmt.Errorf("init %s: %w", nameOf(s), err)
			}
		}
	}
	return nil
}

// Tick runs every system once. The first failing system stops the tick.
func (r *Runner) Tick(dt time.Duration) error {
	r.ensureSorted()
	for _, s := range r.systems {
		if err := r.update(s, dt); err != nil {
			return err
		}
	}
	return nil
}

// TickPhase runs only the systems of the given phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) error {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() != phase {
			continue
		}
		if err := r.update(s, dt); err != nil {
			return err
		}
	}
	return nil
}

// Destroy tears systems down in reverse order.
func (r *Runner) Destroy() {
	r.ensureSorted()
	for i := len(r.systems) - 1; i >= 0; i-- {
		if d, ok := r.systems[i].(Destroyer); ok {
			d.Destroy(r.pipeline)
		}
	}
	r.systems = r.systems[:0]
}

func (r *Runner) update(s System, dt time.Duration) error {
	if err := s.Update(dt); err != nil {
		r.log.Error("system failed",
			zap.String("system", nameOf(s)), zap.Stringer("phase", s.Phase()), zap.Error(err))
		return fmt.Errorf("%s: %w", nameOf(s), err)
	}
	return nil
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}

func nameOf(s System) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
