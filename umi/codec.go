// Package umi implements the bit-packed UMI primitive that the
// deduplication engine treats as an external collaborator: encoding a
// short DNA barcode into a fixed-width integer and computing Hamming
// distance between two codes in constant time.
package umi

import (
	"fmt"
	"strings"
)

// maxBases is the largest UMI length that fits in the 64-bit packed
// representation at 2 bits/base.
const maxBases = 32

// Code is a UMI packed 2 bits per base, high base first. Two Codes
// compare equal iff their source strings were identical up to letter
// case; Code is safe to
// use as a map key.
type Code struct {
	bits   uint64
	length uint8
}

// alphabetBits maps each DNA base to its 2-bit code, following the byte
// classification github.com/grailbio/bio/umi uses for its known-UMI
// alphabet check.
var alphabetBits = map[byte]uint64{
	'A': 0,
	'C': 1,
	'G': 2,
	'T': 3,
}

// Encode packs an upper- or lower-case A/C/G/T string into a Code. It
// fails on empty input, input longer than 32 bases, or any base outside
// {A,C,G,T}.
func Encode(seq string) (Code, error) {
	if len(seq) == 0 {
		return Code{}, fmt.Errorf("umi: empty UMI")
	}
	if len(seq) > maxBases {
		return Code{}, fmt.Errorf("umi: %q exceeds maximum length %d", seq, maxBases)
	}
	var bits uint64
	for i := 0; i < len(seq); i++ {
		b, ok := alphabetBits[upper(seq[i])]
		if !ok {
			return Code{}, fmt.Errorf("umi: invalid base %q in %q", seq[i], seq)
		}
		bits = bits<<2 | b
	}
	return Code{bits: bits, length: uint8(len(seq))}, nil
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// Len returns the number of bases encoded in c.
func (c Code) Len() int { return int(c.length) }

// Decode returns the upper-case base string c was encoded from.
func (c Code) Decode() string {
	var b strings.Builder
	b.Grow(int(c.length))
	letters := [4]byte{'A', 'C', 'G', 'T'}
	bits := c.bits
	buf := make([]byte, c.length)
	for i := int(c.length) - 1; i >= 0; i-- {
		buf[i] = letters[bits&0x3]
		bits >>= 2
	}
	b.Write(buf)
	return b.String()
}

// Hamming returns the number of base positions at which a and b differ.
// a and b must have been encoded from equal-length strings; this is an
// invariant of a single locus's UMI set (spec.md §3), not a runtime
// condition, so a violation panics rather than returning an error.
func Hamming(a, b Code) int {
	if a.length != b.length {
		panic(fmt.Sprintf("umi: Hamming distance undefined for UMIs of length %d and %d", a.length, b.length))
	}
	x := a.bits ^ b.bits
	// Fold each 2-bit lane down to a single indicator bit, then popcount.
	diff := (x | (x >> 1)) & 0x5555555555555555
	return popcount(diff)
}

func popcount(x uint64) int {
	x -= (x >> 1) & 0x5555555555555555
	x = (x & 0x3333333333333333) + ((x >> 2) & 0x3333333333333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f0f0f0f0f
	return int((x * 0x0101010101010101) >> 56)
}
