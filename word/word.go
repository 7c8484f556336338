// Package word implements the two algebraic representations of a 64-bit
// Keccak word and the combinatorial splitting of a word into parts that stay
// consistent under bit rotation.
//
// A word is represented either densely (one field element holding the
// integer value) or sparsely (one field element whose base-8 digits each
// hold one bit of the word), so that bitwise operations on words reduce to
// digit-wise lookups.
package word

import (
	"math/big"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	NumBitsPerByte  = 8
	NumBytesPerWord = 8
	NumBitsPerWord  = NumBytesPerWord * NumBitsPerByte
	// BitCount is the number of bits used per word bit in the sparse
	// representation.
	BitCount = 3
	// BitSize is the base of a digit in the sparse representation.
	BitSize = 1 << BitCount
)

// A sparse word occupies NumBitsPerWord*BitCount = 192 bits and must not
// wrap around the field modulus.
const _ = uint(fr.Bits - NumBitsPerWord*BitCount)

// Pack packs bits in the range [0, BitSize) into a sparse keccak word.
func Pack(bits []uint8) fr.Element {
	return PackWithBase(bits, BitSize)
}

// PackWithBase packs bits in the range [0, BitSize) into a sparse keccak
// word with the given digit base, so that bit i contributes bits[i]*base^i.
func PackWithBase(bits []uint8, base int) fr.Element {
	var b, v, acc fr.Element
	b.SetUint64(uint64(base))
	for i := len(bits) - 1; i >= 0; i-- {
		v.SetUint64(uint64(bits[i]))
		acc.Mul(&acc, &b).Add(&acc, &v)
	}
	return acc
}

// PackPart folds the bits at the positions named by info into a plain
// integer, in sparse base order.
func PackPart(bits []uint8, info PartInfo) uint64 {
	var acc uint64
	for i := len(info.Bits) - 1; i >= 0; i-- {
		acc = acc*BitSize + uint64(bits[info.Bits[i]])
	}
	return acc
}

// PackU64 packs the bits of a dense 64-bit word into its sparse form.
func PackU64(w uint64) fr.Element {
	var bits [NumBitsPerWord]uint8
	for i := range bits {
		bits[i] = uint8((w >> i) & 1)
	}
	return Pack(bits[:])
}

// Unpack expands a sparse keccak word into its base-8 digits. The digit
// stream, re-packed, must reproduce the original element; a value that does
// not round-trip was never a well-formed sparse word, which is a programming
// error, so Unpack panics on it.
func Unpack(packed fr.Element) [NumBitsPerWord]uint8 {
	var bits [NumBitsPerWord]uint8
	var v big.Int
	packed.BigInt(&v)
	for i := range bits {
		for j := 0; j < BitCount; j++ {
			bits[i] |= uint8(v.Bit(i*BitCount+j)) << j
		}
	}
	repacked := Pack(bits[:])
	if !repacked.Equal(&packed) {
		panic("word: sparse unpack does not round-trip")
	}
	return bits
}

// UnpackU64 projects a normalized sparse word back to its dense value,
// keeping the low bit of every digit.
func UnpackU64(packed fr.Element) uint64 {
	bits := Unpack(packed)
	var w uint64
	for i, b := range bits {
		w |= uint64(b&1) << i
	}
	return w
}
