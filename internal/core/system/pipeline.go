package system

import (
	"errors"
	"fmt"

	"github.com/l1jgo/ecsjobs/internal/core/ecs"
)

var ErrNoWorld = errors.New("system: world not found")

// Pipeline is what systems see of the runner: the default world plus any
// named worlds registered at build time.
type Pipeline struct {
	def    *ecs.World
	worlds map[string]*ecs.World
}

func NewPipeline(def *ecs.World) *Pipeline {
	return &Pipeline{def: def, worlds: make(map[string]*ecs.World)}
}

// AddWorld registers w under name. The empty name is the default world.
func (p *Pipeline) AddWorld(name string, w *ecs.World) {
	if name == "" {
		p.def = w
		return
	}
	p.worlds[name] = w
}

// World returns the world registered under name ("" for the default).
func (p *Pipeline) World(name string) (*ecs.World, error) {
	w := p.def
	if name != "" {
		w = p.worlds[name]
	}
	if w == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoWorld, name)
	}
	return w, nil
}
