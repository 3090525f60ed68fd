package world

import (
	"testing"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/data"
)

func testList() *data.SpawnList {
	return &data.SpawnList{
		Seed: 3,
		Groups: []data.SpawnGroup{
			{Name: "free", Count: 5, Spread: 10, Velocity: data.Vec2{X: 1}},
			{
				Name:     "boxed",
				Count:    7,
				Spread:   100,
				Jitter:   2,
				HP:       50,
				Regen:    1,
				Lifetime: 4,
				Bounds:   &data.Box{Min: data.Vec2{X: -5, Y: -5}, Max: data.Vec2{X: 5, Y: 5}},
				BumpDmg:  3,
			},
		},
	}
}

func TestPopulateAttachesGroupComponents(t *testing.T) {
	w := ecs.NewWorld(4)
	if n := Populate(w, testList()); n != 12 {
		t.Fatalf("spawned %d", n)
	}
	if w.Entities().Count() != 12 {
		t.Fatalf("world holds %d entities", w.Entities().Count())
	}
	if got := ecs.GetPool[component.Position](w).Len(); got != 12 {
		t.Fatalf("positions %d", got)
	}
	if got := ecs.GetPool[component.Health](w).Len(); got != 7 {
		t.Fatalf("health %d", got)
	}
	if got := ecs.GetPool[component.Regen](w).Len(); got != 7 {
		t.Fatalf("regen %d", got)
	}

	bounds := ecs.GetPool[component.Bounds](w)
	positions := ecs.GetPool[component.Position](w)
	bounds.Each(func(e ecs.Entity, b *component.Bounds) {
		p, _ := positions.Get(e)
		if !b.Contains(*p) {
			t.Fatalf("entity %d spawned outside its bounds: %+v", e, *p)
		}
		if b.Damage != 3 {
			t.Fatalf("bump damage %v", b.Damage)
		}
	})

	forever := 0
	ecs.GetPool[component.Lifetime](w).Each(func(_ ecs.Entity, l *component.Lifetime) {
		if l.Forever {
			forever++
		}
	})
	if forever != 5 {
		t.Fatalf("%d immortal entities, want 5", forever)
	}
}

func TestPopulateIsDeterministic(t *testing.T) {
	a, b := ecs.NewWorld(16), ecs.NewWorld(16)
	Populate(a, testList())
	Populate(b, testList())
	pa, pb := ecs.GetPool[component.Velocity](a), ecs.GetPool[component.Velocity](b)
	pa.Each(func(e ecs.Entity, v *component.Velocity) {
		if w, _ := pb.Get(e); *w != *v {
			t.Fatalf("entity %d: %+v vs %+v", e, *v, *w)
		}
	})
}

func TestRegisterMakesColumnsResolvable(t *testing.T) {
	w := ecs.NewWorld(4)
	Register(w)
	if _, err := w.Column(ecs.GetPool[component.Bounds](w).Type()); err != nil {
		t.Fatal(err)
	}
}
