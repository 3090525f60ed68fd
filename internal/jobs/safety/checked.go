//go:build !ecsrelease

package safety

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Enabled reports whether tokens are checked in this build.
const Enabled = true

type guard struct {
	name     string
	base     uintptr
	src      Versioned
	version  uint64
	released atomic.Bool
}

// Token guards one aliased view. The zero Token guards nothing.
type Token struct {
	g *guard
}

var live = struct {
	sync.Mutex
	bases map[uintptr]*guard
}{bases: make(map[uintptr]*guard)}

// Acquire registers a view named name over memory starting at base. A nil base
// (empty view) is never considered overlapping. src may be nil.
func Acquire(name string, base unsafe.Pointer, src Versioned) Token {
	g := &guard{name: name, base: uintptr(base), src: src}
	if src != nil {
		g.version = src.Version()
	}
	if g.base != 0 {
		live.Lock()
		if held, ok := live.bases[g.base]; ok {
			live.Unlock()
			panic(&Violation{Kind: Overlap, View: name, Other: held.name})
		}
		live.bases[g.base] = g
		live.Unlock()
	}
	return Token{g: g}
}

// Check panics if the token has been released.
func (t Token) Check() {
	if t.g != nil && t.g.released.Load() {
		panic(&Violation{Kind: UseAfterRelease, View: t.g.name})
	}
}

// Release ends the view's lifetime. It panics on a second call and when the
// source version differs from the one seen at Acquire. The memory is
// unregistered before the version check so a Stale panic leaves no live entry.
func (t Token) Release() {
	g := t.g
	if g == nil {
		return
	}
	if !g.released.CompareAndSwap(false, true) {
		panic(&Violation{Kind: DoubleRelease, View: g.name})
	}
	if g.base != 0 {
		live.Lock()
		if live.bases[g.base] == g {
			delete(live.bases, g.base)
		}
		live.Unlock()
	}
	if g.src != nil && g.src.Version() != g.version {
		panic(&Violation{Kind: Stale, View: g.name})
	}
}

// Live returns the number of acquired, unreleased tokens over non-empty memory.
func Live() int {
	live.Lock()
	defer live.Unlock()
	return len(live.bases)
}
