package runtime

import (
	_ "unsafe" // for go:linkname
)

// Uint32 returns a fast random uint32 value.
//
//go:linkname Uint32 runtime.fastrand
func Uint32() uint32

// Uint32n returns a fast random uint32 value in [0, n).
//
//go:linkname Uint32n runtime.fastrandn
func Uint32n(n uint32) uint32

// Between returns a random int in the closed range [lo, hi] drawn from
// next, which must return values in [0, n). If hi <= lo it returns lo.
// next is usually Uint32n; tests pass a deterministic source.
func Between(next func(n uint32) uint32, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(next(uint32(hi-lo+1)))
}
