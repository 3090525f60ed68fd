package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/l1jgo/ecsjobs/internal/component"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/core/event"
	coresys "github.com/l1jgo/ecsjobs/internal/core/system"
	"github.com/l1jgo/ecsjobs/internal/jobs"
	"github.com/l1jgo/ecsjobs/internal/jobs/sched"
	"github.com/l1jgo/ecsjobs/internal/scripting"
	"github.com/l1jgo/ecsjobs/internal/world"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func newWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(8)
	world.Register(w)
	return w
}

func opts() jobs.Options {
	return jobs.Options{ChunkSize: 2, Scheduler: sched.NewPool(2, nil)}
}

func runOnce(t *testing.T, w *ecs.World, dt time.Duration, systems ...coresys.System) {
	t.Helper()
	r := coresys.NewRunner(coresys.NewPipeline(w), nil)
	for _, s := range systems {
		r.Register(s)
	}
	if err := r.Init(); err != nil {
		t.Fatal(err)
	}
	if err := r.Tick(dt); err != nil {
		t.Fatal(err)
	}
}

func TestMovementIntegratesVelocity(t *testing.T) {
	w := newWorld(t)
	var es []ecs.Entity
	for i := 0; i < 5; i++ {
		e := w.CreateEntity().Index()
		ecs.GetPool[component.Position](w).Set(e, component.Position{X: float32(i)})
		ecs.GetPool[component.Velocity](w).Set(e, component.Velocity{X: 2, Y: -4})
		es = append(es, e)
	}
	// no velocity: must not move
	still := w.CreateEntity().Index()
	ecs.GetPool[component.Position](w).Set(still, component.Position{X: 9, Y: 9})

	runOnce(t, w, 500*time.Millisecond, NewMovementSystem(opts(), nil))

	for i, e := range es {
		p, _ := ecs.GetPool[component.Position](w).Get(e)
		if !near(p.X, float32(i)+1) || !near(p.Y, -2) {
			t.Fatalf("entity %d at %+v", e, *p)
		}
	}
	if p, _ := ecs.GetPool[component.Position](w).Get(still); p.X != 9 || p.Y != 9 {
		t.Fatalf("entity without velocity moved to %+v", *p)
	}
}

func TestMovementUsesLuaDrag(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "drag.lua"), []byte("function movement_drag(dt) return 0.5 end"), 0o644); err != nil {
		t.Fatal(err)
	}
	lua, err := scripting.NewEngine(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer lua.Close()

	w := newWorld(t)
	e := w.CreateEntity().Index()
	ecs.GetPool[component.Position](w).Set(e, component.Position{})
	ecs.GetPool[component.Velocity](w).Set(e, component.Velocity{X: 10})

	runOnce(t, w, time.Second, NewMovementSystem(opts(), lua))

	v, _ := ecs.GetPool[component.Velocity](w).Get(e)
	p, _ := ecs.GetPool[component.Position](w).Get(e)
	if !near(v.X, 5) || !near(p.X, 5) {
		t.Fatalf("velocity %+v position %+v", *v, *p)
	}
}

func TestLifetimeCountsDownToZero(t *testing.T) {
	w := newWorld(t)
	lifetimes := ecs.GetPool[component.Lifetime](w)
	short := w.CreateEntity().Index()
	lifetimes.Set(short, component.Lifetime{Remaining: 0.25})
	long := w.CreateEntity().Index()
	lifetimes.Set(long, component.Lifetime{Remaining: 3})
	forever := w.CreateEntity().Index()
	lifetimes.Set(forever, component.Lifetime{Forever: true})

	runOnce(t, w, time.Second, NewLifetimeSystem(opts()))

	if l, _ := lifetimes.Get(short); l.Remaining != 0 || !l.Expired() {
		t.Fatalf("short = %+v", *l)
	}
	if l, _ := lifetimes.Get(long); !near(l.Remaining, 2) {
		t.Fatalf("long = %+v", *l)
	}
	if l, _ := lifetimes.Get(forever); l.Expired() {
		t.Fatalf("forever = %+v", *l)
	}
}

func TestRegenHealsLivingEntities(t *testing.T) {
	w := newWorld(t)
	health := ecs.GetPool[component.Health](w)
	add := func(hp float32, lifetime component.Lifetime) ecs.Entity {
		e := w.CreateEntity().Index()
		health.Set(e, component.Health{HP: hp, MaxHP: 10})
		ecs.GetPool[component.Regen](w).Set(e, component.Regen{PerSecond: 4})
		ecs.GetPool[component.Lifetime](w).Set(e, lifetime)
		return e
	}
	wounded := add(5, component.Lifetime{Forever: true})
	almost := add(9, component.Lifetime{Forever: true})
	dead := add(0, component.Lifetime{Forever: true})
	expired := add(5, component.Lifetime{})

	runOnce(t, w, 500*time.Millisecond, NewRegenSystem(opts(), nil))

	for e, want := range map[ecs.Entity]float32{wounded: 7, almost: 10, dead: 0, expired: 5} {
		if h, _ := health.Get(e); !near(h.HP, want) {
			t.Fatalf("entity %d HP %v, want %v", e, h.HP, want)
		}
	}
}

func TestBoundsReflectAndDamage(t *testing.T) {
	w := newWorld(t)
	box := component.Bounds{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1, Damage: 2}
	add := func(p component.Position, v component.Velocity) ecs.Entity {
		e := w.CreateEntity().Index()
		ecs.GetPool[component.Position](w).Set(e, p)
		ecs.GetPool[component.Velocity](w).Set(e, v)
		ecs.GetPool[component.Bounds](w).Set(e, box)
		ecs.GetPool[component.Health](w).Set(e, component.Health{HP: 10, MaxHP: 10})
		return e
	}
	inside := add(component.Position{}, component.Velocity{X: 1})
	right := add(component.Position{X: 3}, component.Velocity{X: 1})
	corner := add(component.Position{X: -2, Y: -5}, component.Velocity{X: -1, Y: -3})

	runOnce(t, w, time.Second, NewBoundsSystem(opts()))

	pos := ecs.GetPool[component.Position](w)
	vel := ecs.GetPool[component.Velocity](w)
	hp := ecs.GetPool[component.Health](w)

	if h, _ := hp.Get(inside); h.HP != 10 {
		t.Fatal("entity inside its box was damaged")
	}
	if p, _ := pos.Get(right); p.X != 1 {
		t.Fatalf("right not clamped: %+v", *p)
	}
	if v, _ := vel.Get(right); v.X != -1 {
		t.Fatalf("right not reflected: %+v", *v)
	}
	if h, _ := hp.Get(right); h.HP != 8 {
		t.Fatalf("right HP %v", h.HP)
	}
	if p, _ := pos.Get(corner); p.X != -1 || p.Y != -1 {
		t.Fatalf("corner not clamped: %+v", *p)
	}
	if v, _ := vel.Get(corner); v.X != 1 || v.Y != 3 {
		t.Fatalf("corner not reflected: %+v", *v)
	}
	if h, _ := hp.Get(corner); h.HP != 6 {
		t.Fatalf("corner HP %v", h.HP)
	}
}

func TestExpireAndCleanupDestroyEntities(t *testing.T) {
	w := newWorld(t)
	bus := event.NewBus()
	var expired []ecs.EntityID
	event.Subscribe(bus, func(ev event.EntityExpired) { expired = append(expired, ev.Entity) })

	lifetimes := ecs.GetPool[component.Lifetime](w)
	health := ecs.GetPool[component.Health](w)
	old := w.CreateEntity()
	lifetimes.Set(old.Index(), component.Lifetime{})
	health.Set(old.Index(), component.Health{HP: 0, MaxHP: 1}) // both expired and dead
	killed := w.CreateEntity()
	lifetimes.Set(killed.Index(), component.Lifetime{Forever: true})
	health.Set(killed.Index(), component.Health{HP: 0, MaxHP: 1})
	alive := w.CreateEntity()
	lifetimes.Set(alive.Index(), component.Lifetime{Remaining: 1})

	expire := NewExpireSystem(w, bus)
	cleanup := NewCleanupSystem(w, nil)
	runOnce(t, w, time.Millisecond, cleanup, expire, NewEventDispatchSystem(bus))

	if expire.Expired() != 2 || cleanup.Destroyed() != 2 {
		t.Fatalf("expired %d destroyed %d", expire.Expired(), cleanup.Destroyed())
	}
	if w.Alive(old) || w.Alive(killed) || !w.Alive(alive) {
		t.Fatal("wrong entities destroyed")
	}
	if len(expired) != 0 {
		t.Fatal("events delivered in the tick they were emitted")
	}
	NewEventDispatchSystem(bus).Update(time.Millisecond)
	if len(expired) != 2 {
		t.Fatalf("got %d expiry events", len(expired))
	}
}

func TestJobStatsCollectsCompletions(t *testing.T) {
	bus := event.NewBus()
	stats := NewJobStats(bus)
	w := newWorld(t)
	e := w.CreateEntity().Index()
	ecs.GetPool[component.Lifetime](w).Set(e, component.Lifetime{Remaining: 10})

	o := opts()
	o.Bus = bus
	lifetime := NewLifetimeSystem(o)
	r := coresys.NewRunner(coresys.NewPipeline(w), nil)
	r.Register(NewEventDispatchSystem(bus))
	r.Register(lifetime)
	if err := r.Init(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := r.Tick(time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	// the third completion is still in the back buffer
	got, ok := stats.Get("lifetime")
	if !ok || got.Dispatches != 2 || got.Entities != 2 {
		t.Fatalf("stats %+v %v", got, ok)
	}
	n := 0
	stats.Each(func(string, JobTotals) { n++ })
	if n != 1 {
		t.Fatalf("%d systems recorded", n)
	}
}

func TestMissingTuningFunctionsFallBackWithWarning(t *testing.T) {
	lua, err := scripting.NewEngine(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer lua.Close()

	core, logs := observer.New(zap.WarnLevel)
	o := opts()
	o.Log = zap.New(core)
	movement := NewMovementSystem(o, lua)
	regen := NewRegenSystem(o, lua)

	if n := logs.FilterMessage("lua tuning function missing, using default").Len(); n != 2 {
		t.Fatalf("got %d warnings, want 2", n)
	}
	if logs.FilterField(zap.String("func", "movement_drag")).Len() != 1 {
		t.Fatal("movement_drag not reported")
	}

	w := newWorld(t)
	e := w.CreateEntity().Index()
	ecs.GetPool[component.Position](w).Set(e, component.Position{})
	ecs.GetPool[component.Velocity](w).Set(e, component.Velocity{X: 4})
	ecs.GetPool[component.Health](w).Set(e, component.Health{HP: 1, MaxHP: 10})
	ecs.GetPool[component.Regen](w).Set(e, component.Regen{PerSecond: 2})
	ecs.GetPool[component.Lifetime](w).Set(e, component.Lifetime{Forever: true})

	runOnce(t, w, time.Second, movement, regen)

	if p, _ := ecs.GetPool[component.Position](w).Get(e); !near(p.X, 4) {
		t.Fatalf("position %+v, want undragged move", *p)
	}
	if h, _ := ecs.GetPool[component.Health](w).Get(e); !near(h.HP, 3) {
		t.Fatalf("HP %v, want base regen", h.HP)
	}
}
