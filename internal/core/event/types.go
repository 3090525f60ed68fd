package event

import (
	"time"

	"github.com/l1jgo/ecsjobs/internal/core/ecs"
)

// JobCompleted is emitted by a job dispatcher after its parallel-for returns.
type JobCompleted struct {
	System    string
	Entities  int
	ChunkSize int
	Elapsed   time.Duration
}

// EntityExpired is emitted when an entity is queued for destruction because
// its lifetime ran out.
type EntityExpired struct {
	Entity ecs.EntityID
}
