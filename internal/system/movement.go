package system

import (
	"time"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/jobs"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
	"github.com/l1jgo/ecsjobs/internal/scripting"
)

// MovementJob integrates velocity into position, slowing velocity by the
// tick's drag factor first.
type MovementJob struct {
	entities   native.Array[ecs.Entity]
	positions  native.Column[component.Position]
	velocities native.Column[component.Velocity]
	dt         float32
	drag       float32
}

func (j *MovementJob) Init(entities native.Array[ecs.Entity], p native.Column[component.Position], v native.Column[component.Velocity]) {
	j.entities = entities
	j.positions = p
	j.velocities = v
	j.drag = 1
}

func (j *MovementJob) Execute(i int) {
	e := int(j.entities.At(i))
	v := j.velocities.Ref(e)
	v.X *= j.drag
	v.Y *= j.drag
	p := j.positions.Ref(e)
	p.X += v.X * j.dt
	p.Y += v.Y * j.dt
}

type MovementSystem = jobs.System2[MovementJob, component.Position, component.Velocity, *MovementJob]

// NewMovementSystem moves every entity with a position and a velocity.
// Drag comes from the movement_drag Lua function when lua is set.
func NewMovementSystem(opts jobs.Options, lua *scripting.Engine) *MovementSystem {
	if opts.Name == "" {
		opts.Name = "movement"
	}
	if lua != nil && !lua.Has("movement_drag") {
		warnMissing(opts.Log, opts.Name, "movement_drag")
		lua = nil
	}
	s := jobs.NewSystem2[MovementJob, component.Position, component.Velocity](opts)
	s.Configure = func(j *MovementJob, dt time.Duration) {
		sec := dt.Seconds()
		j.dt = float32(sec)
		if lua != nil {
			j.drag = float32(lua.Drag(sec))
		}
	}
	return s
}
