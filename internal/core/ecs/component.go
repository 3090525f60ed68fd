package ecs

import (
	"reflect"
	"unsafe"
)

// Slot is one element of a component column: a presence tag followed by the
// component value. Columns hold one slot per entity index, used or not.
type Slot[T any] struct {
	used byte
	Data T
}

// Used reports whether the slot holds a component.
func (s *Slot[T]) Used() bool { return s.used != 0 }

// Buffer describes the memory under a column: Len elements Stride bytes apart,
// the component value Offset bytes into each element.
type Buffer struct {
	Ptr    unsafe.Pointer
	Len    int
	Stride uintptr
	Offset uintptr
}

// Column is the type-erased view of a Pool that the World and job dispatchers use.
type Column interface {
	Type() reflect.Type
	Has(e Entity) bool
	Len() int
	Buffer() Buffer
	Version() uint64
	id() uint8
	remove(e Entity)
	grow(capacity int)
}

// Pool is a dense column of T components indexed by entity. The backing array
// is reallocated only when the world grows; Version changes on every add,
// remove and reallocation.
type Pool[T any] struct {
	world   *World
	typ     reflect.Type
	items   []Slot[T]
	count   int
	version uint64
	cid     uint8
}

// GetPool returns the pool for T in w, registering it on first use.
func GetPool[T any](w *World) *Pool[T] {
	typ := reflect.TypeFor[T]()
	if c, ok := w.registry.byType[typ]; ok {
		return c.(*Pool[T])
	}
	p := &Pool[T]{
		world: w,
		typ:   typ,
		items: make([]Slot[T], w.capacity),
	}
	p.cid = w.registry.register(p)
	return p
}

func (p *Pool[T]) Type() reflect.Type { return p.typ }
func (p *Pool[T]) Version() uint64    { return p.version }
func (p *Pool[T]) id() uint8          { return p.cid }

// Len returns the number of entities that have T.
func (p *Pool[T]) Len() int { return p.count }

// Set stores c for entity e, adding the component if e does not have it yet.
func (p *Pool[T]) Set(e Entity, c T) {
	*p.Add(e) = c
}

// Add attaches a zero T to e (keeping the current value if already present)
// and returns a pointer into the column. The pointer is invalidated when the
// world grows.
func (p *Pool[T]) Add(e Entity) *T {
	if !p.world.entities.AliveIndex(e) {
		panic("ecs: component added to dead entity")
	}
	s := &p.items[e]
	if s.used == 0 {
		s.used = 1
		p.count++
		p.version++
		p.world.componentChanged(e, p.cid, true)
	}
	return &s.Data
}

func (p *Pool[T]) Get(e Entity) (*T, bool) {
	if e < 0 || int(e) >= len(p.items) || p.items[e].used == 0 {
		return nil, false
	}
	return &p.items[e].Data, true
}

func (p *Pool[T]) Has(e Entity) bool {
	return e >= 0 && int(e) < len(p.items) && p.items[e].used != 0
}

// Remove detaches T from e. Removing a missing component is a no-op.
func (p *Pool[T]) Remove(e Entity) {
	if !p.Has(e) {
		return
	}
	p.remove(e)
}

func (p *Pool[T]) remove(e Entity) {
	p.items[e] = Slot[T]{}
	p.count--
	p.version++
	p.world.componentChanged(e, p.cid, false)
}

// Each calls fn for every entity that has T, in index order.
func (p *Pool[T]) Each(fn func(Entity, *T)) {
	for i := range p.items {
		if p.items[i].used != 0 {
			fn(Entity(i), &p.items[i].Data)
		}
	}
}

// Items returns the raw column: one slot per entity index.
func (p *Pool[T]) Items() []Slot[T] { return p.items }

func (p *Pool[T]) Buffer() Buffer {
	var s Slot[T]
	return Buffer{
		Ptr:    unsafe.Pointer(unsafe.SliceData(p.items)),
		Len:    len(p.items),
		Stride: unsafe.Sizeof(s),
		Offset: unsafe.Offsetof(s.Data),
	}
}

func (p *Pool[T]) grow(capacity int) {
	if capacity <= len(p.items) {
		return
	}
	items := make([]Slot[T], capacity)
	copy(items, p.items)
	p.items = items
	p.version++
}
