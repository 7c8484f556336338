// Package instance converts raw hash inputs to and from the field elements
// of the circuit's public-input column.
package instance

import (
	"encoding/binary"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"

	keccak "github.com/ElusAegis/keccak-gnark"
)

// Pack packs each input into public-input slots, one little-endian 64-bit
// word (up to 8 bytes, zero-padded) per field element. All slots of one
// input precede those of the next, matching the binding order of the
// circuit's instance column.
func Pack(inputs [][]byte) []fr.Element {
	var packed []fr.Element
	for _, input := range inputs {
		for start := 0; start < len(input); start += keccak.NumBytesPerWord {
			var buf [keccak.NumBytesPerWord]byte
			copy(buf[:], input[start:])
			var el fr.Element
			el.SetUint64(binary.LittleEndian.Uint64(buf[:]))
			packed = append(packed, el)
		}
	}
	return packed
}

// Unpack projects field elements back to bytes, taking the lowest-order
// byte of each element. This is the legacy one-byte-per-element layout of
// the proof input map.
//
// TODO: recover up to NumBytesPerWord bytes per element once the proof
// input map moves to the packed layout; until then Unpack(Pack(...)) is
// lossy beyond the first byte of each word.
func Unpack(els []fr.Element) []byte {
	out := make([]byte, len(els))
	for i := range els {
		b := els[i].Bytes()
		out[i] = b[len(b)-1]
	}
	return out
}
