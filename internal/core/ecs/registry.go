package ecs

import (
	"fmt"
	"reflect"
)

// registry tracks every column of a World and supports bulk cleanup on
// entity destroy.
type registry struct {
	columns []Column
	byType  map[reflect.Type]Column
}

func newRegistry() registry {
	return registry{
		columns: make([]Column, 0, 16),
		byType:  make(map[reflect.Type]Column, 16),
	}
}

// register adds a column and returns its component ID.
func (r *registry) register(c Column) uint8 {
	if len(r.columns) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: cannot register %s: %d component types already registered", c.Type(), MaxComponentTypes))
	}
	id := uint8(len(r.columns))
	r.columns = append(r.columns, c)
	r.byType[c.Type()] = c
	return id
}

// removeAll clears entity e from every column set in m.
func (r *registry) removeAll(e Entity, m mask) {
	for _, c := range r.columns {
		if m.has(c.id()) {
			c.remove(e)
		}
	}
}

func (r *registry) grow(capacity int) {
	for _, c := range r.columns {
		c.grow(capacity)
	}
}

func (r *registry) mask(types []reflect.Type) (mask, error) {
	var m mask
	for _, t := range types {
		c, ok := r.byType[t]
		if !ok {
			return mask{}, fmt.Errorf("%w: %s", ErrUnknownComponent, t)
		}
		m.set(c.id())
	}
	return m, nil
}
