package ecs

// filterKey identifies a filter by its include/exclude signature.
type filterKey struct {
	include mask
	exclude mask
}

// Filter is the live set of entities whose components contain every included
// type and none of the excluded ones. Membership is updated as components are
// added and removed; the order of RawEntities is unspecified and changes when
// entities leave.
type Filter struct {
	entities []Entity
	index    []int32 // entity -> position+1, 0 when absent
	include  mask
	exclude  mask
	version  uint64
}

func newFilter(key filterKey, capacity int) *Filter {
	return &Filter{
		entities: make([]Entity, 0, 64),
		index:    make([]int32, capacity),
		include:  key.include,
		exclude:  key.exclude,
	}
}

// Count returns the number of matched entities.
func (f *Filter) Count() int { return len(f.entities) }

// RawEntities returns the matched entities, Count long. The slice is owned by
// the filter and is rewritten whenever membership changes.
func (f *Filter) RawEntities() []Entity { return f.entities }

// Version changes whenever membership changes.
func (f *Filter) Version() uint64 { return f.version }

func (f *Filter) Has(e Entity) bool {
	return e >= 0 && int(e) < len(f.index) && f.index[e] != 0
}

// Each calls fn for every matched entity. fn must not change membership.
func (f *Filter) Each(fn func(Entity)) {
	for _, e := range f.entities {
		fn(e)
	}
}

func (f *Filter) matches(m mask) bool {
	return m.contains(f.include) && !m.intersects(f.exclude)
}

func (f *Filter) update(e Entity, m mask) {
	switch in := f.Has(e); {
	case !in && f.matches(m):
		f.entities = append(f.entities, e)
		f.index[e] = int32(len(f.entities))
		f.version++
	case in && !f.matches(m):
		pos := f.index[e] - 1
		last := len(f.entities) - 1
		if int(pos) < last {
			moved := f.entities[last]
			f.entities[pos] = moved
			f.index[moved] = pos + 1
		}
		f.entities = f.entities[:last]
		f.index[e] = 0
		f.version++
	}
}

func (f *Filter) grow(capacity int) {
	if capacity <= len(f.index) {
		return
	}
	index := make([]int32, capacity)
	copy(index, f.index)
	f.index = index
}
