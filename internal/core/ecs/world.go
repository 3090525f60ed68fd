package ecs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrUnknownComponent = errors.New("ecs: component type not registered")
	ErrEmptyFilter      = errors.New("ecs: filter must include at least one component")
)

// World is the top-level ECS container. It owns the entity pool, one column
// per registered component type, the cached filters, and a deferred
// destruction queue flushed by the cleanup system each tick.
type World struct {
	entities     *EntityPool
	registry     registry
	masks        []mask
	filters      map[filterKey]*Filter
	watchers     [MaxComponentTypes][]*Filter
	destroyQueue []EntityID
	capacity     int
}

// NewWorld creates a world whose columns start with room for capacity entities.
func NewWorld(capacity int) *World {
	if capacity <= 0 {
		capacity = 64
	}
	return &World{
		entities:     NewEntityPool(capacity),
		registry:     newRegistry(),
		masks:        make([]mask, capacity),
		filters:      make(map[filterKey]*Filter),
		destroyQueue: make([]EntityID, 0, 64),
		capacity:     capacity,
	}
}

func (w *World) Entities() *EntityPool { return w.entities }

// Capacity is the current length of every column.
func (w *World) Capacity() int { return w.capacity }

func (w *World) CreateEntity() EntityID {
	id := w.entities.Create()
	if idx := int(id.Index()); idx >= w.capacity {
		w.grow(max(w.capacity*2, idx+1))
	}
	return id
}

func (w *World) Alive(id EntityID) bool {
	return w.entities.Alive(id)
}

// DestroyEntity removes every component of id and frees its slot.
func (w *World) DestroyEntity(id EntityID) {
	if !w.entities.Alive(id) {
		return
	}
	idx := id.Index()
	w.registry.removeAll(idx, w.masks[idx])
	w.entities.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// It returns how many were still alive.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.entities.Alive(id) {
			w.DestroyEntity(id)
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// Column returns the registered column for component type t.
func (w *World) Column(t reflect.Type) (Column, error) {
	c, ok := w.registry.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, t)
	}
	return c, nil
}

// Filter returns the filter for the given signature, creating and filling it
// on first request. Filters are shared between callers with equal signatures.
func (w *World) Filter(include, exclude []reflect.Type) (*Filter, error) {
	inc, err := w.registry.mask(include)
	if err != nil {
		return nil, fmt.Errorf("filter include: %w", err)
	}
	if inc.empty() {
		return nil, ErrEmptyFilter
	}
	exc, err := w.registry.mask(exclude)
	if err != nil {
		return nil, fmt.Errorf("filter exclude: %w", err)
	}
	key := filterKey{include: inc, exclude: exc}
	if f, ok := w.filters[key]; ok {
		return f, nil
	}
	f := newFilter(key, w.capacity)
	for i := 0; i < w.entities.Slots(); i++ {
		if w.entities.AliveIndex(Entity(i)) {
			f.update(Entity(i), w.masks[i])
		}
	}
	w.filters[key] = f
	for _, c := range w.registry.columns {
		if inc.has(c.id()) || exc.has(c.id()) {
			w.watchers[c.id()] = append(w.watchers[c.id()], f)
		}
	}
	return f, nil
}

func (w *World) componentChanged(e Entity, id uint8, added bool) {
	if added {
		w.masks[e].set(id)
	} else {
		w.masks[e].unset(id)
	}
	for _, f := range w.watchers[id] {
		f.update(e, w.masks[e])
	}
}

func (w *World) grow(capacity int) {
	masks := make([]mask, capacity)
	copy(masks, w.masks)
	w.masks = masks
	w.registry.grow(capacity)
	for _, f := range w.filters {
		f.grow(capacity)
	}
	w.capacity = capacity
}
