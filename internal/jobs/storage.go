package jobs

import (
	"reflect"

	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/core/system"
)

// Column is the part of a component column a dispatcher needs: the memory to
// alias and a version that changes whenever that memory or its contents are
// restructured.
type Column interface {
	Buffer() ecs.Buffer
	Version() uint64
}

// Filter is a set of distinct entity indices matching a component signature.
// RawEntities must hold at least Count entries.
type Filter interface {
	Count() int
	RawEntities() []ecs.Entity
	Version() uint64
}

// Storage is the ECS storage/filter provider behind a dispatcher.
type Storage interface {
	Column(t reflect.Type) (Column, error)
	Filter(include, exclude []reflect.Type) (Filter, error)
}

// WorldStorage exposes an ecs.World as Storage.
func WorldStorage(w *ecs.World) Storage { return worldStorage{w: w} }

type worldStorage struct{ w *ecs.World }

func (s worldStorage) Column(t reflect.Type) (Column, error) {
	c, err := s.w.Column(t)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s worldStorage) Filter(include, exclude []reflect.Type) (Filter, error) {
	f, err := s.w.Filter(include, exclude)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// PipelineWorld resolves the pipeline world registered under name.
func PipelineWorld(name string) func(*system.Pipeline) (Storage, error) {
	return func(p *system.Pipeline) (Storage, error) {
		if p == nil {
			return nil, ErrNotInitialized
		}
		w, err := p.World(name)
		if err != nil {
			return nil, err
		}
		return WorldStorage(w), nil
	}
}
