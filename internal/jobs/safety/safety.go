// Package safety guards aliased views handed to job workers.
//
// Every view acquires a Token when it is created and releases it exactly once
// when the dispatch that created it is over. In the default build a token
// catches double release, use after release, two live views over the same
// memory, and storage that was mutated behind the view's back. Building with
// -tags ecsrelease replaces Token with an empty struct whose methods do
// nothing; callers then carry those invariants themselves.
package safety

import "fmt"

// Kind classifies a Violation.
type Kind uint8

const (
	DoubleRelease   Kind = iota + 1 // Release called on a released token
	UseAfterRelease                 // view accessed after its token was released
	Overlap                         // second live view over the same base address
	Stale                           // source version moved while the view was live
)

func (k Kind) String() string {
	switch k {
	case DoubleRelease:
		return "double release"
	case UseAfterRelease:
		return "use after release"
	case Overlap:
		return "overlapping view"
	case Stale:
		return "stale view"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Violation is the panic value raised by a checked Token.
type Violation struct {
	Kind  Kind
	View  string // name of the offending view
	Other string // for Overlap: the view already holding the memory
}

func (v *Violation) Error() string {
	if v.Kind == Overlap {
		return fmt.Sprintf("safety: %s %q (memory held by %q)", v.Kind, v.View, v.Other)
	}
	return fmt.Sprintf("safety: %s %q", v.Kind, v.View)
}

// Versioned is implemented by storage that bumps a counter whenever its backing
// memory or membership changes. A token remembers the version seen at Acquire
// and compares it on Release.
type Versioned interface {
	Version() uint64
}
