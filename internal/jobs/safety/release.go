//go:build ecsrelease

package safety

import "unsafe"

// Enabled reports whether tokens are checked in this build.
const Enabled = false

// Token is empty in release builds.
type Token struct{}

func Acquire(string, unsafe.Pointer, Versioned) Token { return Token{} }

func (Token) Check()   {}
func (Token) Release() {}

func Live() int { return 0 }
