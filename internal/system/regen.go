package system

import (
	"time"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/jobs"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
	"github.com/l1jgo/ecsjobs/internal/scripting"
)

// RegenJob heals entities toward MaxHP. Expired entities and the dead
// (HP <= 0) do not regenerate.
type RegenJob struct {
	entities  native.Array[ecs.Entity]
	health    native.Column[component.Health]
	regen     native.Column[component.Regen]
	lifetimes native.Column[component.Lifetime]
	amount    float32 // seconds × rate
}

func (j *RegenJob) Init(entities native.Array[ecs.Entity], h native.Column[component.Health], r native.Column[component.Regen], l native.Column[component.Lifetime]) {
	j.entities = entities
	j.health = h
	j.regen = r
	j.lifetimes = l
}

func (j *RegenJob) Execute(i int) {
	e := int(j.entities.At(i))
	if j.lifetimes.At(e).Expired() {
		return
	}
	h := j.health.Ref(e)
	if h.HP <= 0 || h.HP >= h.MaxHP {
		return
	}
	h.HP = min(h.HP+j.regen.At(e).PerSecond*j.amount, h.MaxHP)
}

type RegenSystem = jobs.System3[RegenJob, component.Health, component.Regen, component.Lifetime, *RegenJob]

// NewRegenSystem heals every entity with health, regen and a lifetime. The
// per-tick rate comes from the regen_rate Lua function when lua is set.
func NewRegenSystem(opts jobs.Options, lua *scripting.Engine) *RegenSystem {
	if opts.Name == "" {
		opts.Name = "regen"
	}
	if lua != nil && !lua.Has("regen_rate") {
		warnMissing(opts.Log, opts.Name, "regen_rate")
		lua = nil
	}
	var elapsed time.Duration
	s := jobs.NewSystem3[RegenJob, component.Health, component.Regen, component.Lifetime](opts)
	s.Configure = func(j *RegenJob, dt time.Duration) {
		rate := 1.0
		if lua != nil {
			rate = lua.RegenRate(scripting.RegenContext{
				Elapsed:  elapsed.Seconds(),
				DT:       dt.Seconds(),
				Entities: j.entities.Len(),
			})
		}
		elapsed += dt
		j.amount = float32(dt.Seconds() * rate)
	}
	return s
}
