package system

import (
	"time"

	"github.com/l1jgo/ecsjobs/internal/core/event"
	coresys "github.com/l1jgo/ecsjobs/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Name() string         { return "events" }
func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}

// JobStats accumulates event.JobCompleted per job system.
type JobStats struct {
	bySystem map[string]*JobTotals
	order    []string
}

// JobTotals is the running total for one job system.
type JobTotals struct {
	Dispatches int
	Entities   int
	Elapsed    time.Duration
}

// NewJobStats subscribes a collector to bus.
func NewJobStats(bus *event.Bus) *JobStats {
	s := &JobStats{bySystem: make(map[string]*JobTotals)}
	event.Subscribe(bus, s.record)
	return s
}

func (s *JobStats) record(ev event.JobCompleted) {
	t, ok := s.bySystem[ev.System]
	if !ok {
		t = &JobTotals{}
		s.bySystem[ev.System] = t
		s.order = append(s.order, ev.System)
	}
	t.Dispatches++
	t.Entities += ev.Entities
	t.Elapsed += ev.Elapsed
}

// Each calls fn for every system seen, in order of first completion.
func (s *JobStats) Each(fn func(name string, t JobTotals)) {
	for _, name := range s.order {
		fn(name, *s.bySystem[name])
	}
}

// Get returns the totals of one system.
func (s *JobStats) Get(name string) (JobTotals, bool) {
	t, ok := s.bySystem[name]
	if !ok {
		return JobTotals{}, false
	}
	return *t, true
}
