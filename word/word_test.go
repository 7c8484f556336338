package word

import (
	"testing"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func bitsOf(v uint64) []uint8 {
	bits := make([]uint8, NumBitsPerWord)
	for i := range bits {
		bits[i] = uint8((v >> i) & 1)
	}
	return bits
}

func TestPackUnpackRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("unpack(pack(digits)) == digits", prop.ForAll(
		func(a, b, c uint64) bool {
			digits := make([]uint8, NumBitsPerWord)
			for i := range digits {
				digits[i] = uint8((a>>i)&1) | uint8((b>>i)&1)<<1 | uint8((c>>i)&1)<<2
			}
			got := Unpack(Pack(digits))
			for i := range digits {
				if got[i] != digits[i] {
					return false
				}
			}
			return true
		},
		gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))

	properties.Property("dense round trip through the sparse form", prop.ForAll(
		func(v uint64) bool {
			return UnpackU64(PackU64(v)) == v
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestPackWithBaseTwoIsDense(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("base-2 packing equals the integer value", prop.ForAll(
		func(v uint64) bool {
			var want fr.Element
			want.SetUint64(v)
			got := PackWithBase(bitsOf(v), 2)
			return got.Equal(&want)
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestPackZero(t *testing.T) {
	var zero fr.Element
	packed := Pack(make([]uint8, NumBitsPerWord))
	require.True(t, packed.Equal(&zero))
	require.Equal(t, [NumBitsPerWord]uint8{}, Unpack(packed))
}

func TestPackPartIdentitySplit(t *testing.T) {
	// A single part holding all positions folds to the full sparse word,
	// which for 0/1 bits fits a uint64 only when the high bits are clear.
	info := PartInfo{Bits: make([]int, 21)}
	for i := range info.Bits {
		info.Bits[i] = i
	}
	bits := bitsOf(0x1FFFFF)
	require.Equal(t, uint64(0o111111111111111111111), PackPart(bits, info))
}

func TestUnpackRejectsOverflow(t *testing.T) {
	// A value with digits beyond the 64 sparse slots cannot round-trip.
	var bad fr.Element
	bad.SetString("21888242871839275222246405745257275088548364400416034343698204186575808495616")
	require.Panics(t, func() { Unpack(bad) })
}
