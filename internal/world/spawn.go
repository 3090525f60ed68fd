// Package world fills an ecs.World from a spawn list.
package world

import (
	"math/rand/v2"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/data"
)

// Register creates the pools of every demo component so job systems can
// resolve them even before anything is spawned.
func Register(w *ecs.World) {
	ecs.GetPool[component.Position](w)
	ecs.GetPool[component.Velocity](w)
	ecs.GetPool[component.Health](w)
	ecs.GetPool[component.Regen](w)
	ecs.GetPool[component.Lifetime](w)
	ecs.GetPool[component.Bounds](w)
}

// Populate spawns every group of list into w and returns the number of
// entities created. Equal seeds give equal worlds.
func Populate(w *ecs.World, list *data.SpawnList) int {
	Register(w)
	rng := rand.New(rand.NewPCG(list.Seed, list.Seed^0x9e3779b97f4a7c15))
	n := 0
	for i := range list.Groups {
		g := &list.Groups[i]
		for k := 0; k < g.Count; k++ {
			Spawn(w, g, rng)
			n++
		}
	}
	return n
}

// Spawn creates one entity of group g.
func Spawn(w *ecs.World, g *data.SpawnGroup, rng *rand.Rand) ecs.EntityID {
	id := w.CreateEntity()
	e := id.Index()

	pos := component.Position{
		X: g.Origin.X + spread(rng, g.Spread),
		Y: g.Origin.Y + spread(rng, g.Spread),
	}
	if g.Bounds != nil {
		pos.X = clamp(pos.X, g.Bounds.Min.X, g.Bounds.Max.X)
		pos.Y = clamp(pos.Y, g.Bounds.Min.Y, g.Bounds.Max.Y)
	}
	ecs.GetPool[component.Position](w).Set(e, pos)
	ecs.GetPool[component.Velocity](w).Set(e, component.Velocity{
		X: g.Velocity.X + spread(rng, g.Jitter),
		Y: g.Velocity.Y + spread(rng, g.Jitter),
	})

	if g.HP > 0 {
		ecs.GetPool[component.Health](w).Set(e, component.Health{HP: g.HP, MaxHP: g.HP})
		if g.Regen > 0 {
			ecs.GetPool[component.Regen](w).Set(e, component.Regen{PerSecond: g.Regen})
		}
	}
	ecs.GetPool[component.Lifetime](w).Set(e, component.Lifetime{
		Remaining: g.Lifetime,
		Forever:   g.Lifetime <= 0,
	})
	if b := g.Bounds; b != nil {
		ecs.GetPool[component.Bounds](w).Set(e, component.Bounds{
			MinX: b.Min.X, MinY: b.Min.Y,
			MaxX: b.Max.X, MaxY: b.Max.Y,
			Damage: g.BumpDmg,
		})
	}
	return id
}

func spread(rng *rand.Rand, r float32) float32 {
	if r == 0 {
		return 0
	}
	return (rng.Float32()*2 - 1) * r
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
