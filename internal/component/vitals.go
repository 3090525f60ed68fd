package component

// Health is current and maximum hit points.
type Health struct {
	HP    float32
	MaxHP float32
}

// Regen heals PerSecond hit points per second, scaled by the tick's regen rate.
type Regen struct {
	PerSecond float32
}

// Lifetime counts down in seconds. The expire system destroys entities whose
// Remaining reached zero; Forever entities never expire.
type Lifetime struct {
	Remaining float32
	Forever   bool
}

// Expired reports whether the lifetime has run out.
func (l Lifetime) Expired() bool { return !l.Forever && l.Remaining <= 0 }
