// Package circuit binds keccak witness rows to a PLONK constraint system:
// the packed input words live on the public-input column, the digest halves
// are private witness cells, and the sponge is re-derived in-circuit from
// the public words so the two can only agree on a correct hash.
package circuit

import (
	"github.com/consensys/gnark-crypto/ecc"
	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/std/permutation/keccakf"

	keccak "github.com/ElusAegis/keccak-gnark"
)

// Circuit proves one keccak-256 computation. The shape is fixed by the
// input length at compile time; padding bytes are constants folded into the
// absorbed lanes.
type Circuit struct {
	// Words holds the input bytes packed 8 little-endian bytes per element,
	// in instance-column order.
	Words []frontend.Variable `gnark:",public"`
	// DigestLo and DigestHi are the digest halves produced by the witness
	// engine, split at byte 16 of the big-endian digest.
	DigestLo frontend.Variable
	DigestHi frontend.Variable

	inputLen int
}

// NewCircuit returns the circuit shape for one input of inputLen bytes.
func NewCircuit(inputLen int) *Circuit {
	numWords := (inputLen + keccak.NumBytesPerWord - 1) / keccak.NumBytesPerWord
	return &Circuit{
		Words:    make([]frontend.Variable, numWords),
		inputLen: inputLen,
	}
}

// NewAssignment returns the witness assignment matching NewCircuit's shape.
func NewAssignment(words []fr.Element, digestLo, digestHi fr.Element) *Circuit {
	ws := make([]frontend.Variable, len(words))
	for i := range words {
		ws[i] = words[i]
	}
	return &Circuit{
		Words:    ws,
		DigestLo: digestLo,
		DigestHi: digestHi,
	}
}

// Compile compiles the circuit for one input length into a PLONK constraint
// system over BN254.
func Compile(inputLen int) (constraint.ConstraintSystem, error) {
	return frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, NewCircuit(inputLen))
}

// Define absorbs the public words block by block, applies the Keccak-f
// permutation and constrains the squeezed digest halves against the private
// witness. uints.New registers the byte lookup tables the permutation
// gadget relies on.
func (c *Circuit) Define(api frontend.API) error {
	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return err
	}

	blocks := c.inputLen/keccak.RateInBytes + 1

	var state [25]uints.U64
	for i := range state {
		state[i] = uints.NewU64(0)
	}
	for b := 0; b < blocks; b++ {
		for l := 0; l < keccak.NumWordsToAbsorb; l++ {
			lane := c.lane(api, uapi, b*keccak.NumWordsToAbsorb+l, blocks)
			state[l] = uapi.Xor(state[l], lane)
		}
		state = keccakf.Permute(uapi, state)
	}

	digest := make([]uints.U8, 0, keccak.DigestBytes)
	for l := 0; l < keccak.DigestBytes/keccak.NumBytesPerWord; l++ {
		digest = append(digest, uapi.UnpackLSB(state[l])...)
	}
	api.AssertIsEqual(composeBE(api, digest[:keccak.DigestBytes/2]), c.DigestHi)
	api.AssertIsEqual(composeBE(api, digest[keccak.DigestBytes/2:]), c.DigestLo)
	return nil
}

// lane returns the w-th absorbed lane of the padded message. Lanes fully
// inside the input are public words, lanes past the input are padding
// constants, and the lane straddling the input end is the public word with
// the pad constant added in (disjoint byte positions, so plain addition).
func (c *Circuit) lane(api frontend.API, uapi *uints.BinaryField[uints.U64], w, blocks int) uints.U64 {
	start := w * keccak.NumBytesPerWord
	total := blocks * keccak.RateInBytes

	var padConst uint64
	for p := start; p < start+keccak.NumBytesPerWord; p++ {
		var v uint64
		if p == c.inputLen {
			v |= 0x01
		}
		if p == total-1 {
			v |= 0x80
		}
		padConst |= v << (8 * (p - start))
	}

	switch {
	case start+keccak.NumBytesPerWord <= c.inputLen:
		return uapi.ValueOf(c.Words[w])
	case start < c.inputLen:
		return uapi.ValueOf(api.Add(c.Words[w], padConst))
	default:
		return uints.NewU64(padConst)
	}
}

// composeBE folds bytes into one variable, most significant byte first.
func composeBE(api frontend.API, bts []uints.U8) frontend.Variable {
	acc := frontend.Variable(0)
	for _, b := range bts {
		acc = api.Add(api.Mul(acc, 256), b.Val)
	}
	return acc
}
