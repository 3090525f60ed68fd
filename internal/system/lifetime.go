package system

import (
	"time"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/jobs"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
)

// LifetimeJob counts lifetimes down by the tick's duration, stopping at zero.
type LifetimeJob struct {
	entities  native.Array[ecs.Entity]
	lifetimes native.Column[component.Lifetime]
	dt        float32
}

func (j *LifetimeJob) Init(entities native.Array[ecs.Entity], l native.Column[component.Lifetime]) {
	j.entities = entities
	j.lifetimes = l
}

func (j *LifetimeJob) Execute(i int) {
	l := j.lifetimes.Ref(int(j.entities.At(i)))
	if l.Forever {
		return
	}
	l.Remaining = max(l.Remaining-j.dt, 0)
}

type LifetimeSystem = jobs.System1[LifetimeJob, component.Lifetime, *LifetimeJob]

func NewLifetimeSystem(opts jobs.Options) *LifetimeSystem {
	if opts.Name == "" {
		opts.Name = "lifetime"
	}
	s := jobs.NewSystem1[LifetimeJob, component.Lifetime](opts)
	s.Configure = func(j *LifetimeJob, dt time.Duration) {
		j.dt = float32(dt.Seconds())
	}
	return s
}
