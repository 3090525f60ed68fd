package system

import (
	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/jobs"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
)

// BoundsJob keeps entities inside their box. An entity that left it is put
// back on the edge, its velocity on that axis is reversed, and it loses the
// box's Damage in health per bounce.
type BoundsJob struct {
	entities   native.Array[ecs.Entity]
	positions  native.Column[component.Position]
	velocities native.Column[component.Velocity]
	bounds     native.Column[component.Bounds]
	health     native.Column[component.Health]
}

func (j *BoundsJob) Init(entities native.Array[ecs.Entity], p native.Column[component.Position], v native.Column[component.Velocity],
	b native.Column[component.Bounds], h native.Column[component.Health]) {
	j.entities = entities
	j.positions = p
	j.velocities = v
	j.bounds = b
	j.health = h
}

func (j *BoundsJob) Execute(i int) {
	e := int(j.entities.At(i))
	b := j.bounds.At(e)
	p := j.positions.Ref(e)
	if b.Contains(*p) {
		return
	}
	v := j.velocities.Ref(e)
	bounces := 0
	p.X, v.X, bounces = bounce(p.X, v.X, b.MinX, b.MaxX, bounces)
	p.Y, v.Y, bounces = bounce(p.Y, v.Y, b.MinY, b.MaxY, bounces)

	h := j.health.Ref(e)
	h.HP = max(h.HP-b.Damage*float32(bounces), 0)
}

func bounce(pos, vel, lo, hi float32, bounces int) (float32, float32, int) {
	switch {
	case pos < lo:
		return lo, abs(vel), bounces + 1
	case pos > hi:
		return hi, -abs(vel), bounces + 1
	}
	return pos, vel, bounces
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

type BoundsSystem = jobs.System4[BoundsJob, component.Position, component.Velocity, component.Bounds, component.Health, *BoundsJob]

// NewBoundsSystem must run after movement in registration order.
func NewBoundsSystem(opts jobs.Options) *BoundsSystem {
	if opts.Name == "" {
		opts.Name = "bounds"
	}
	return jobs.NewSystem4[BoundsJob, component.Position, component.Velocity, component.Bounds, component.Health](opts)
}
