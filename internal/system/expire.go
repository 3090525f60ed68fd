package system

import (
	"time"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/core/event"
	coresys "github.com/l1jgo/ecsjobs/internal/core/system"
)

// ExpireSystem queues entities whose lifetime ran out or whose health reached
// zero for destruction, and announces each one on the bus.
// Phase 2 (PostUpdate): runs after every job of the tick has completed.
type ExpireSystem struct {
	world   *ecs.World
	bus     *event.Bus
	expired int
}

func NewExpireSystem(world *ecs.World, bus *event.Bus) *ExpireSystem {
	return &ExpireSystem{world: world, bus: bus}
}

func (s *ExpireSystem) Name() string         { return "expire" }
func (s *ExpireSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Expired returns how many entities this system has queued so far.
func (s *ExpireSystem) Expired() int { return s.expired }

func (s *ExpireSystem) Update(_ time.Duration) error {
	lifetimes := ecs.GetPool[component.Lifetime](s.world)
	health := ecs.GetPool[component.Health](s.world)

	lifetimes.Each(func(e ecs.Entity, l *component.Lifetime) {
		if l.Expired() {
			s.expire(e)
		}
	})
	health.Each(func(e ecs.Entity, h *component.Health) {
		if h.HP > 0 {
			return
		}
		// already queued above
		if l, ok := lifetimes.Get(e); ok && l.Expired() {
			return
		}
		s.expire(e)
	})
	return nil
}

func (s *ExpireSystem) expire(e ecs.Entity) {
	id, ok := s.world.Entities().ID(e)
	if !ok {
		return
	}
	s.world.MarkForDestruction(id)
	s.expired++
	if s.bus != nil {
		event.Emit(s.bus, event.EntityExpired{Entity: id})
	}
}
