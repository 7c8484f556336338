package circuit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	keccak "github.com/ElusAegis/keccak-gnark"
	"github.com/ElusAegis/keccak-gnark/witness"
	"github.com/ElusAegis/keccak-gnark/word"
)

// ErrInconsistentWitness reports witness cells that contradict the keccak
// computation of the inputs. It always indicates a bug in the witness
// engine or the codecs, never a bad proof.
var ErrInconsistentWitness = errors.New("witness cells do not match the keccak computation")

// Keccak orchestrates one proof instance: it requests witness rows for the
// padded inputs, optionally cross-checks them against the raw bytes, and
// binds the word cells carrying payload to the public-input column.
type Keccak struct {
	params       keccak.Params
	numRows      int
	inputs       [][]byte
	verifyOutput bool
	useInstance  bool
}

// New creates a binding layer over the given inputs. verifyOutput enables
// the prover-side self-checks; useInstance enables public-input binding.
func New(params keccak.Params, numRows int, inputs [][]byte, verifyOutput, useInstance bool) *Keccak {
	return &Keccak{
		params:       params,
		numRows:      numRows,
		inputs:       inputs,
		verifyOutput: verifyOutput,
		useInstance:  useInstance,
	}
}

// Assign delegates row computation to the engine and, when self-checks are
// enabled, validates the returned cells against the raw inputs.
func (c *Keccak) Assign(engine witness.Engine) ([]witness.Row, error) {
	rows, err := engine.Rows(c.inputs, keccak.Capacity(c.numRows, c.params.RowsPerRound))
	if err != nil {
		return nil, fmt.Errorf("witness engine: %w", err)
	}
	if c.verifyOutput {
		if err := c.verifyOutputWitnesses(rows); err != nil {
			return nil, err
		}
		if err := c.verifyInputWitnesses(rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// numBlocks derives the block count from the row matrix, discounting the
// leading dummy round group.
func (c *Keccak) numBlocks(rows []witness.Row) int {
	return (len(rows)/c.params.RowsPerRound - 1) / (keccak.NumRounds + 1)
}

// roundRowIndex returns the index of the exposed row of one round group.
func (c *Keccak) roundRowIndex(block, round int) int {
	return (1 + block*(keccak.NumRounds+1) + round) * c.params.RowsPerRound
}

// squeezeRow returns the row exposing the output cells of one block.
func (c *Keccak) squeezeRow(rows []witness.Row, block int) witness.Row {
	return rows[c.roundRowIndex(block, keccak.NumRounds)]
}

// verifyOutputWitnesses recomputes every digest independently of the
// circuit and compares it against the exposed digest halves.
func (c *Keccak) verifyOutputWitnesses(rows []witness.Row) error {
	inputOffset := 0
	for b := 0; b < c.numBlocks(rows); b++ {
		row := c.squeezeRow(rows, b)
		if row.IsFinal.IsZero() || inputOffset >= len(c.inputs) {
			continue
		}

		sum := reference256(c.inputs[inputOffset])
		lo, hi := splitDigest(sum)
		if !row.HashLo.Equal(&lo) || !row.HashHi.Equal(&hi) {
			return fmt.Errorf("%w: digest mismatch for input %d", ErrInconsistentWitness, inputOffset)
		}

		// The sparse squeeze lanes must decode to the same digest.
		for l := 0; l < len(row.State) && l < keccak.DigestBytes/keccak.NumBytesPerWord; l++ {
			lane := word.UnpackU64(row.State[l])
			if lane != binary.LittleEndian.Uint64(sum[l*keccak.NumBytesPerWord:]) {
				return fmt.Errorf("%w: sparse state lane %d of input %d", ErrInconsistentWitness, l, inputOffset)
			}
		}
		inputOffset++
	}
	return nil
}

// verifyInputWitnesses walks every absorption block with a byte cursor per
// input and checks the exposed word and remaining-byte cells. Rows past the
// last input must be all zero.
func (c *Keccak) verifyInputWitnesses(rows []witness.Row) error {
	inputOffset, byteOffset := 0, 0
	for b := 0; b < c.numBlocks(rows); b++ {
		absorbed := false
		for r := 0; r <= keccak.NumRounds; r++ {
			row := rows[c.roundRowIndex(b, r)]

			if inputOffset >= len(c.inputs) {
				if !row.WordValue.IsZero() || !row.BytesLeft.IsZero() {
					return fmt.Errorf("%w: padding row not empty (block %d, round %d)", ErrInconsistentWitness, b, r)
				}
				continue
			}

			inputLen := len(c.inputs[inputOffset])
			if r == keccak.NumRounds && !row.IsFinal.IsZero() {
				absorbed = true
			}

			var bytesLeft fr.Element
			bytesLeft.SetUint64(uint64(inputLen - byteOffset))
			if !row.BytesLeft.Equal(&bytesLeft) {
				return fmt.Errorf("%w: bytes-left counter (block %d, round %d)", ErrInconsistentWitness, b, r)
			}

			end := byteOffset
			if r < keccak.NumWordsToAbsorb {
				end = min(byteOffset+keccak.NumBytesPerWord, inputLen)
			}
			var buf [keccak.NumBytesPerWord]byte
			copy(buf[:], c.inputs[inputOffset][byteOffset:end])
			var wordValue fr.Element
			wordValue.SetUint64(binary.LittleEndian.Uint64(buf[:]))
			if !row.WordValue.Equal(&wordValue) {
				return fmt.Errorf("%w: word value (block %d, round %d)", ErrInconsistentWitness, b, r)
			}
			byteOffset = end
		}
		if absorbed {
			inputOffset++
			byteOffset = 0
		}
	}
	return nil
}

// Binding ties one witness cell to one slot of the public-input column.
type Binding struct {
	// Row indexes the bound word cell's row in the matrix.
	Row int
	// Slot indexes the public-input column.
	Slot int
}

// BindPublicInputs walks the block structure exactly like the input
// self-check and binds the word cell of every absorb round that still
// carries payload bytes to the next instance slot. The resulting slot order
// is the proof's external contract and must match instance.Pack.
func (c *Keccak) BindPublicInputs(rows []witness.Row, instanceCol []fr.Element) ([]Binding, error) {
	if !c.useInstance {
		return nil, nil
	}

	var bindings []Binding
	inputOffset, byteOffset, slot := 0, 0, 0
	for b := 0; b < c.numBlocks(rows); b++ {
		absorbed := false
		for r := 0; r <= keccak.NumRounds; r++ {
			rowIdx := c.roundRowIndex(b, r)
			row := rows[rowIdx]

			if inputOffset >= len(c.inputs) {
				continue
			}
			inputLen := len(c.inputs[inputOffset])
			if r == keccak.NumRounds && !row.IsFinal.IsZero() {
				absorbed = true
			}
			if r >= keccak.NumWordsToAbsorb || byteOffset >= inputLen {
				continue
			}

			if slot >= len(instanceCol) {
				return nil, fmt.Errorf("public-input column too short: need slot %d, have %d", slot, len(instanceCol))
			}
			if !row.WordValue.Equal(&instanceCol[slot]) {
				return nil, fmt.Errorf("%w: word cell at row %d differs from instance slot %d", ErrInconsistentWitness, rowIdx, slot)
			}
			bindings = append(bindings, Binding{Row: rowIdx, Slot: slot})
			slot++
			byteOffset = min(byteOffset+keccak.NumBytesPerWord, inputLen)
		}
		if absorbed {
			inputOffset++
			byteOffset = 0
		}
	}
	return bindings, nil
}

// Digest returns the digest halves of one input, as exposed on its squeeze
// row.
func (c *Keccak) Digest(rows []witness.Row, inputIndex int) (lo, hi fr.Element, err error) {
	inputOffset := 0
	for b := 0; b < c.numBlocks(rows); b++ {
		row := c.squeezeRow(rows, b)
		if row.IsFinal.IsZero() {
			continue
		}
		if inputOffset == inputIndex {
			return row.HashLo, row.HashHi, nil
		}
		inputOffset++
	}
	return lo, hi, fmt.Errorf("no squeeze row for input %d", inputIndex)
}

// reference256 computes the reference Keccak-256 digest.
func reference256(input []byte) [keccak.DigestBytes]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(input)
	var sum [keccak.DigestBytes]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// splitDigest splits a big-endian digest into its field-element halves.
func splitDigest(sum [keccak.DigestBytes]byte) (lo, hi fr.Element) {
	var v big.Int
	hi.SetBigInt(v.SetBytes(sum[:keccak.DigestBytes/2]))
	lo.SetBigInt(v.SetBytes(sum[keccak.DigestBytes/2:]))
	return lo, hi
}
