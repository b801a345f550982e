// Package hash seals byte frames with a fixed-width xxhash64 digest.
package hash

import (
	"github.com/cespare/xxhash/v2"
)

// HexLen is the number of characters AppendHex writes.
const HexLen = 16

const hexDigits = "0123456789abcdef"

// Sum64 returns the xxhash64 digest of b. The digest is stable across
// processes, so frames sealed by one process verify in another.
func Sum64(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Sum64String is Sum64 for a string.
func Sum64String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// AppendHex appends v as HexLen lower-case hex digits, zero padded.
func AppendHex(dst []byte, v uint64) []byte {
	for shift := 60; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(v>>uint(shift))&0xf])
	}
	return dst
}

// ParseHex parses exactly HexLen lower-case hex digits.
func ParseHex(b []byte) (uint64, bool) {
	if len(b) != HexLen {
		return 0, false
	}
	var v uint64
	for _, ch := range b {
		var d byte
		switch {
		case ch >= '0' && ch <= '9':
			d = ch - '0'
		case ch >= 'a' && ch <= 'f':
			d = ch - 'a' + 10
		default:
			return 0, false
		}
		v = v<<4 | uint64(d)
	}
	return v, true
}
