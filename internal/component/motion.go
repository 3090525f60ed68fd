package component

// Components here are plain data: job workers read and write them through
// aliased views, so none may hold pointers, strings, slices or maps.

// Position is an entity's location in world units.
type Position struct {
	X, Y float32
}

// Velocity is in world units per second.
type Velocity struct {
	X, Y float32
}

// Bounds is the box an entity bounces inside. A bounce costs Damage health.
type Bounds struct {
	MinX, MinY float32
	MaxX, MaxY float32
	Damage     float32
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}
