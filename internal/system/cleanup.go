package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	coresys "github.com/l1jgo/ecsjobs/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	log       *zap.Logger
	destroyed int
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Name() string         { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

// Destroyed returns the number of entities destroyed so far.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }

func (s *CleanupSystem) Update(_ time.Duration) error {
	if n := s.world.FlushDestroyQueue(); n > 0 {
		s.destroyed += n
		s.log.Debug("entities destroyed", zap.Int("count", n), zap.Int("alive", s.world.Entities().Count()))
	}
	return nil
}
