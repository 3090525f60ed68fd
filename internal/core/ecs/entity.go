package ecs

// Entity is an entity's slot index. Every component column is indexed by it.
type Entity = int32

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
type EntityID uint64

func NewEntityID(index Entity, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(uint32(index)))
}

func (id EntityID) Index() Entity      { return Entity(uint32(id)) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool manages entity allocation with generational indices and a free list.
// Generations start at 1, so no live entity has the zero ID.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []Entity
	nextIndex   Entity
}

func NewEntityPool(capacity int) *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, capacity),
		alive:       make([]bool, 0, capacity),
		freeList:    make([]Entity, 0, 256),
	}
}

func (p *EntityPool) Create() EntityID {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.alive[idx] = true
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	p.generations = append(p.generations, 1)
	p.alive = append(p.alive, true)
	return NewEntityID(idx, 1)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return p.AliveIndex(idx) && p.generations[idx] == id.Generation()
}

// AliveIndex reports whether the slot idx currently holds a live entity.
func (p *EntityPool) AliveIndex(idx Entity) bool {
	return idx >= 0 && idx < p.nextIndex && p.alive[idx]
}

// ID returns the current ID of the live entity in slot idx.
func (p *EntityPool) ID(idx Entity) (EntityID, bool) {
	if !p.AliveIndex(idx) {
		return 0, false
	}
	return NewEntityID(idx, p.generations[idx]), true
}

func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false // already destroyed (stale reference)
	}
	idx := id.Index()
	p.generations[idx]++
	p.alive[idx] = false
	p.freeList = append(p.freeList, idx)
	return true
}

// Slots returns the number of slots ever handed out, live or free.
func (p *EntityPool) Slots() int { return int(p.nextIndex) }

// Count returns the number of live entities.
func (p *EntityPool) Count() int { return int(p.nextIndex) - len(p.freeList) }
