package ecs

// MaxComponentTypes is the number of distinct component types one World can hold.
const MaxComponentTypes = 256

// mask is a set of up to 256 component IDs. Bit i is set when the entity (or
// filter) involves the component with ID i.
type mask [4]uint64

func (m *mask) set(bit uint8) {
	m[bit>>6] |= uint64(1) << (bit & 63)
}

func (m *mask) unset(bit uint8) {
	m[bit>>6] &^= uint64(1) << (bit & 63)
}

func (m mask) has(bit uint8) bool {
	return m[bit>>6]&(uint64(1)<<(bit&63)) != 0
}

// contains reports whether every bit of sub is set in m.
func (m mask) contains(sub mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

func (m mask) intersects(o mask) bool {
	return m[0]&o[0] != 0 || m[1]&o[1] != 0 || m[2]&o[2] != 0 || m[3]&o[3] != 0
}

func (m mask) empty() bool {
	return m == mask{}
}
