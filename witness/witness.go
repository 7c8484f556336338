// Package witness produces the per-row cell assignments consumed by the
// circuit binding layer.
//
// The row matrix layout is fixed: one leading dummy round group (round
// "-1"), then NumRounds+1 round groups per absorbed rate-sized block,
// RowsPerRound rows per group. The cells the binding layer reads live on the
// first row of each group; every other cell of a group is zero here.
package witness

import (
	"encoding/binary"
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	keccak "github.com/ElusAegis/keccak-gnark"
	"github.com/ElusAegis/keccak-gnark/word"
)

// Row holds the witness cells of one circuit row that the binding layer
// reads.
type Row struct {
	// IsFinal marks the squeeze row of an input's last block.
	IsFinal fr.Element
	// HashLo and HashHi are the digest halves, split at byte 16 of the
	// big-endian digest. Valid only where IsFinal is set.
	HashLo fr.Element
	HashHi fr.Element
	// WordValue is the round's absorbed word restricted to real payload
	// bytes, packed little-endian.
	WordValue fr.Element
	// BytesLeft counts the input bytes not yet absorbed before this round.
	BytesLeft fr.Element
	// State holds the sparse-packed state lanes after the block's
	// permutation; set only on squeeze rows.
	State []fr.Element
}

// Engine is the witness-engine contract: given the inputs of one circuit
// instance and the block capacity, produce the full row matrix.
type Engine interface {
	Rows(inputs [][]byte, capacity int) ([]Row, error)
}

// MultiKeccak is the reference engine. It absorbs every input with the
// standard pad10*1 padding and pads unused capacity with empty-input blocks.
type MultiKeccak struct {
	params keccak.Params
}

// NewMultiKeccak returns a reference engine for the given row geometry.
func NewMultiKeccak(params keccak.Params) *MultiKeccak {
	return &MultiKeccak{params: params}
}

// Rows lays out the row matrix for the given inputs. Inputs are processed
// independently and stitched back in order, so the per-input sponge runs in
// parallel.
func (m *MultiKeccak) Rows(inputs [][]byte, capacity int) ([]Row, error) {
	used := 0
	for _, input := range inputs {
		used += numBlocks(len(input))
	}
	if used > capacity {
		return nil, fmt.Errorf("inputs need %d blocks, capacity is %d", used, capacity)
	}

	perInput := make([][]Row, len(inputs))
	var g errgroup.Group
	for i := range inputs {
		g.Go(func() error {
			perInput[i] = inputRows(inputs[i], m.params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]Row, m.params.RowsPerRound, (1+capacity*(keccak.NumRounds+1))*m.params.RowsPerRound)
	for _, r := range perInput {
		rows = append(rows, r...)
	}
	padding := inputRows(nil, m.params)
	for b := used; b < capacity; b++ {
		rows = append(rows, padding...)
	}
	return rows, nil
}

// inputRows runs the sponge over one padded input and exposes the cells of
// each round group.
func inputRows(input []byte, params keccak.Params) []Row {
	padded := pad(input)
	blocks := len(padded) / keccak.RateInBytes

	rows := make([]Row, 0, blocks*(keccak.NumRounds+1)*params.RowsPerRound)
	var st state
	cursor := 0
	for b := 0; b < blocks; b++ {
		for l := 0; l < keccak.NumWordsToAbsorb; l++ {
			st[l] ^= binary.LittleEndian.Uint64(padded[b*keccak.RateInBytes+l*keccak.NumBytesPerWord:])
		}
		st = keccakF1600(st)

		for r := 0; r <= keccak.NumRounds; r++ {
			var row Row
			row.BytesLeft.SetUint64(uint64(len(input) - cursor))
			if r < keccak.NumWordsToAbsorb {
				end := min(cursor+keccak.NumBytesPerWord, len(input))
				var buf [keccak.NumBytesPerWord]byte
				copy(buf[:], input[cursor:end])
				row.WordValue.SetUint64(binary.LittleEndian.Uint64(buf[:]))
				cursor = end
			}
			if r == keccak.NumRounds && b == blocks-1 {
				row.IsFinal.SetOne()
				row.HashLo, row.HashHi = digestHalves(st)
				row.State = sparseState(st)
			}
			rows = append(rows, row)
			rows = append(rows, make([]Row, params.RowsPerRound-1)...)
		}
	}
	return rows
}

// pad applies the legacy keccak pad10*1 padding (domain byte 0x01).
func pad(input []byte) []byte {
	q := keccak.RateInBytes - len(input)%keccak.RateInBytes
	padded := make([]byte, len(input)+q)
	copy(padded, input)
	padded[len(input)] = 0x01
	padded[len(padded)-1] |= 0x80
	return padded
}

func numBlocks(inputLen int) int {
	return inputLen/keccak.RateInBytes + 1
}

// digestHalves squeezes the 256-bit digest out of the state and splits its
// big-endian byte representation at the 16-byte boundary.
func digestHalves(st state) (lo, hi fr.Element) {
	var digest [keccak.DigestBytes]byte
	for l := 0; l < keccak.DigestBytes/keccak.NumBytesPerWord; l++ {
		binary.LittleEndian.PutUint64(digest[l*keccak.NumBytesPerWord:], st[l])
	}
	var v big.Int
	hi.SetBigInt(v.SetBytes(digest[:keccak.DigestBytes/2]))
	lo.SetBigInt(v.SetBytes(digest[keccak.DigestBytes/2:]))
	return lo, hi
}

func sparseState(st state) []fr.Element {
	lanes := make([]fr.Element, len(st))
	for i, lane := range st {
		lanes[i] = word.PackU64(lane)
	}
	return lanes
}
