package circuit_test

import (
	"fmt"
	"math/big"
	"testing"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	keccak "github.com/ElusAegis/keccak-gnark"
	"github.com/ElusAegis/keccak-gnark/circuit"
	"github.com/ElusAegis/keccak-gnark/instance"
	"github.com/ElusAegis/keccak-gnark/witness"
)

var testParams = keccak.Params{K: 12, RowsPerRound: 2}

func testInput(n int) []byte {
	input := make([]byte, n)
	for i := range input {
		input[i] = byte(i*3 + 5)
	}
	return input
}

// corruptEngine wraps the reference engine and mutates one row before
// handing the matrix to the binding layer.
type corruptEngine struct {
	inner  witness.Engine
	row    int
	mutate func(*witness.Row)
}

func (c corruptEngine) Rows(inputs [][]byte, capacity int) ([]witness.Row, error) {
	rows, err := c.inner.Rows(inputs, capacity)
	if err != nil {
		return nil, err
	}
	c.mutate(&rows[c.row])
	return rows, nil
}

func TestAssignSelfChecksPass(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 135, 136, 137} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			k := circuit.New(testParams, testParams.NumRows(), [][]byte{testInput(n)}, true, false)
			_, err := k.Assign(witness.NewMultiKeccak(testParams))
			require.NoError(t, err)
		})
	}
}

func TestAssignSelfChecksMultipleInputs(t *testing.T) {
	inputs := [][]byte{testInput(30), nil, testInput(200), testInput(136)}
	k := circuit.New(testParams, testParams.NumRows(), inputs, true, false)
	_, err := k.Assign(witness.NewMultiKeccak(testParams))
	require.NoError(t, err)
}

func TestAssignDetectsCorruptedDigest(t *testing.T) {
	// Squeeze row of the single input's only block.
	squeeze := (1 + keccak.NumRounds) * testParams.RowsPerRound
	engine := corruptEngine{
		inner: witness.NewMultiKeccak(testParams),
		row:   squeeze,
		mutate: func(r *witness.Row) {
			var one fr.Element
			one.SetOne()
			r.HashLo.Add(&r.HashLo, &one)
		},
	}
	k := circuit.New(testParams, testParams.NumRows(), [][]byte{testInput(30)}, true, false)
	_, err := k.Assign(engine)
	require.ErrorIs(t, err, circuit.ErrInconsistentWitness)
}

func TestAssignDetectsCorruptedWord(t *testing.T) {
	// Second absorb round of the first block.
	engine := corruptEngine{
		inner: witness.NewMultiKeccak(testParams),
		row:   2 * testParams.RowsPerRound,
		mutate: func(r *witness.Row) {
			r.WordValue.SetUint64(42)
		},
	}
	k := circuit.New(testParams, testParams.NumRows(), [][]byte{testInput(30)}, true, false)
	_, err := k.Assign(engine)
	require.ErrorIs(t, err, circuit.ErrInconsistentWitness)
}

func TestAssignDetectsDirtyPadding(t *testing.T) {
	// First round of the second block, which is capacity padding here.
	engine := corruptEngine{
		inner: witness.NewMultiKeccak(testParams),
		row:   (1 + keccak.NumRounds + 1) * testParams.RowsPerRound,
		mutate: func(r *witness.Row) {
			r.BytesLeft.SetUint64(1)
		},
	}
	k := circuit.New(testParams, testParams.NumRows(), [][]byte{testInput(30)}, true, false)
	_, err := k.Assign(engine)
	require.ErrorIs(t, err, circuit.ErrInconsistentWitness)
}

func TestAssignSkipsChecksWhenDisabled(t *testing.T) {
	engine := corruptEngine{
		inner: witness.NewMultiKeccak(testParams),
		row:   2 * testParams.RowsPerRound,
		mutate: func(r *witness.Row) {
			r.WordValue.SetUint64(42)
		},
	}
	k := circuit.New(testParams, testParams.NumRows(), [][]byte{testInput(30)}, false, false)
	_, err := k.Assign(engine)
	require.NoError(t, err)
}

func TestBindPublicInputsOrder(t *testing.T) {
	for _, n := range []int{1, 30, 136, 137, 300} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			inputs := [][]byte{testInput(n)}
			k := circuit.New(testParams, testParams.NumRows(), inputs, true, true)
			rows, err := k.Assign(witness.NewMultiKeccak(testParams))
			require.NoError(t, err)

			instanceCol := instance.Pack(inputs)
			bindings, err := k.BindPublicInputs(rows, instanceCol)
			require.NoError(t, err)

			// Every instance slot is bound exactly once, in packing order.
			require.Len(t, bindings, len(instanceCol))
			for i, b := range bindings {
				require.Equal(t, i, b.Slot)
				var want fr.Element
				want.Set(&instanceCol[i])
				require.True(t, rows[b.Row].WordValue.Equal(&want))
			}
		})
	}
}

func TestBindPublicInputsMismatch(t *testing.T) {
	inputs := [][]byte{testInput(30)}
	k := circuit.New(testParams, testParams.NumRows(), inputs, false, true)
	rows, err := k.Assign(witness.NewMultiKeccak(testParams))
	require.NoError(t, err)

	instanceCol := instance.Pack(inputs)
	var one fr.Element
	one.SetOne()
	instanceCol[1].Add(&instanceCol[1], &one)
	_, err = k.BindPublicInputs(rows, instanceCol)
	require.ErrorIs(t, err, circuit.ErrInconsistentWitness)
}

func TestBindPublicInputsShortColumn(t *testing.T) {
	inputs := [][]byte{testInput(30)}
	k := circuit.New(testParams, testParams.NumRows(), inputs, false, true)
	rows, err := k.Assign(witness.NewMultiKeccak(testParams))
	require.NoError(t, err)

	_, err = k.BindPublicInputs(rows, instance.Pack(inputs)[:1])
	require.ErrorContains(t, err, "too short")
}

func TestBindPublicInputsDisabled(t *testing.T) {
	inputs := [][]byte{testInput(30)}
	k := circuit.New(testParams, testParams.NumRows(), inputs, false, false)
	rows, err := k.Assign(witness.NewMultiKeccak(testParams))
	require.NoError(t, err)

	bindings, err := k.BindPublicInputs(rows, instance.Pack(inputs))
	require.NoError(t, err)
	require.Nil(t, bindings)
}

func TestDigest(t *testing.T) {
	inputs := [][]byte{testInput(30), testInput(137)}
	k := circuit.New(testParams, testParams.NumRows(), inputs, true, false)
	rows, err := k.Assign(witness.NewMultiKeccak(testParams))
	require.NoError(t, err)

	for i, input := range inputs {
		h := sha3.NewLegacyKeccak256()
		h.Write(input)
		sum := h.Sum(nil)
		var lo, hi fr.Element
		hi.SetBigInt(new(big.Int).SetBytes(sum[:16]))
		lo.SetBigInt(new(big.Int).SetBytes(sum[16:]))

		gotLo, gotHi, err := k.Digest(rows, i)
		require.NoError(t, err)
		require.True(t, gotLo.Equal(&lo))
		require.True(t, gotHi.Equal(&hi))
	}
}

func TestConfigPartTables(t *testing.T) {
	cfg := circuit.NewConfig(testParams)
	require.Equal(t, 0, cfg.NormalizeParts.Parts[0].Bits[0])
	for _, wp := range cfg.RhoParts {
		require.Equal(t, 0, wp.Parts[0].Bits[0])
		total := 0
		for _, p := range wp.Parts {
			total += len(p.Bits)
		}
		require.Equal(t, 64, total)
	}
}
