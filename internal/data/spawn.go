package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrSpawnGroup = errors.New("spawn: invalid group")

// Vec2 is a YAML-friendly pair of coordinates.
type Vec2 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// Box is an axis-aligned rectangle.
type Box struct {
	Min Vec2 `yaml:"min"`
	Max Vec2 `yaml:"max"`
}

// SpawnGroup describes Count entities created together at startup.
// Zero-valued optional sections leave the matching component off.
type SpawnGroup struct {
	Name     string  `yaml:"name"`
	Count    int     `yaml:"count"`
	Origin   Vec2    `yaml:"origin"`
	Spread   float32 `yaml:"spread"` // positions are uniform in origin ± spread
	Velocity Vec2    `yaml:"velocity"`
	Jitter   float32 `yaml:"jitter"` // velocity components vary by ± jitter

	HP       float32 `yaml:"hp"`       // 0 = no Health
	Regen    float32 `yaml:"regen"`    // HP per second; needs hp
	Lifetime float32 `yaml:"lifetime"` // seconds; 0 = lives forever
	Bounds   *Box    `yaml:"bounds"`   // nil = unbounded
	BumpDmg  float32 `yaml:"bump_dmg"` // health lost per bounce
}

// SpawnList is the ordered set of groups spawned into the world.
type SpawnList struct {
	Seed   uint64       `yaml:"seed"`
	Groups []SpawnGroup `yaml:"groups"`
}

// Total returns the number of entities the list spawns.
func (l *SpawnList) Total() int {
	n := 0
	for _, g := range l.Groups {
		n += g.Count
	}
	return n
}

// Get returns the group with the given name, or nil if not found.
func (l *SpawnList) Get(name string) *SpawnGroup {
	for i := range l.Groups {
		if l.Groups[i].Name == name {
			return &l.Groups[i]
		}
	}
	return nil
}

func (g *SpawnGroup) validate() error {
	switch {
	case g.Name == "":
		return fmt.Errorf("%w: missing name", ErrSpawnGroup)
	case g.Count < 0:
		return fmt.Errorf("%w: %s: negative count %d", ErrSpawnGroup, g.Name, g.Count)
	case g.Spread < 0 || g.Jitter < 0:
		return fmt.Errorf("%w: %s: negative spread or jitter", ErrSpawnGroup, g.Name)
	case g.Regen != 0 && g.HP <= 0:
		return fmt.Errorf("%w: %s: regen without hp", ErrSpawnGroup, g.Name)
	case g.Bounds != nil && (g.Bounds.Min.X > g.Bounds.Max.X || g.Bounds.Min.Y > g.Bounds.Max.Y):
		return fmt.Errorf("%w: %s: inverted bounds", ErrSpawnGroup, g.Name)
	case g.Bounds != nil && g.HP <= 0:
		return fmt.Errorf("%w: %s: bounds without hp", ErrSpawnGroup, g.Name)
	}
	return nil
}

// --- YAML loading ---

// LoadSpawnList loads spawn groups from YAML.
func LoadSpawnList(path string) (*SpawnList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("spawn: read %s: %w", path, err)
	}

	var l SpawnList
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("spawn: parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(l.Groups))
	for i := range l.Groups {
		g := &l.Groups[i]
		if err := g.validate(); err != nil {
			return nil, fmt.Errorf("spawn: %s: %w", path, err)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("spawn: %s: %w: duplicate name %q", path, ErrSpawnGroup, g.Name)
		}
		seen[g.Name] = true
	}
	return &l, nil
}
