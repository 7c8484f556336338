// Package prover runs the end-to-end proof pipeline: named inputs in,
// public-input vector and serialized proof bytes out, PLONK over BN254 with
// KZG commitments and a Blake2b Fiat-Shamir transcript.
//
// SRS, proving key and verifying key are opaque external material produced
// by a setup ceremony outside this module.
package prover

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/kzg"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/plonk"
	gnarkwitness "github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"golang.org/x/crypto/blake2b"

	keccak "github.com/ElusAegis/keccak-gnark"
	"github.com/ElusAegis/keccak-gnark/circuit"
	"github.com/ElusAegis/keccak-gnark/instance"
	"github.com/ElusAegis/keccak-gnark/logger"
	"github.com/ElusAegis/keccak-gnark/witness"
)

// InputKey names the proof-input entry holding the hashed bytes.
const InputKey = "in"

// ErrMissingInput is returned when the proof input map lacks the "in"
// entry. This is a caller error, recoverable by retrying with a corrected
// input map.
var ErrMissingInput = errors.New(`"in" value not found in proof input`)

// Setup derives the proving and verifying keys for a compiled circuit from
// an externally produced SRS.
func Setup(ccs constraint.ConstraintSystem, srs, srsLagrange kzg.SRS) (plonk.ProvingKey, plonk.VerifyingKey, error) {
	log := logger.Logger()
	start := time.Now()
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, nil, fmt.Errorf("plonk setup: %w", err)
	}
	log.Debug().Dur("took", time.Since(start)).Msg("plonk setup done")
	return pk, vk, nil
}

// Prove generates a proof that the bytes carried by inputs[InputKey] hash
// to the digest committed in the witness. It returns the public-input
// vector (the packed input words, in binding order) together with the
// serialized proof.
//
// The input map follows the legacy one-byte-per-element layout; see
// instance.Unpack.
func Prove(inputs map[string][]fr.Element, ccs constraint.ConstraintSystem, pk plonk.ProvingKey, params keccak.Params) ([]fr.Element, []byte, error) {
	log := logger.Logger()

	raw, ok := inputs[InputKey]
	if !ok {
		return nil, nil, ErrMissingInput
	}
	in := instance.Unpack(raw)
	publicInputs := instance.Pack([][]byte{in})

	// Prover-side self-checks and instance binding both enabled.
	k := circuit.New(params, params.NumRows(), [][]byte{in}, true, true)
	rows, err := k.Assign(witness.NewMultiKeccak(params))
	if err != nil {
		return nil, nil, fmt.Errorf("assign witness: %w", err)
	}
	if _, err := k.BindPublicInputs(rows, publicInputs); err != nil {
		return nil, nil, fmt.Errorf("bind public inputs: %w", err)
	}
	digestLo, digestHi, err := k.Digest(rows, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("read digest: %w", err)
	}

	assignment := circuit.NewAssignment(publicInputs, digestLo, digestHi)
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("build witness: %w", err)
	}

	hFunc, err := blake2b.New256(nil)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	proof, err := plonk.Prove(ccs, pk, fullWitness, backend.WithProverChallengeHashFunction(hFunc))
	if err != nil {
		return nil, nil, fmt.Errorf("create proof: %w", err)
	}
	log.Debug().
		Dur("took", time.Since(start)).
		Int("instance", len(publicInputs)).
		Int("bytes", len(in)).
		Msg("keccak proof generated")

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("serialize proof: %w", err)
	}
	return publicInputs, buf.Bytes(), nil
}

// Verify checks proof bytes against the public-input vector and the
// verifying key. Malformed or invalid proofs yield false, never a panic.
func Verify(proofBytes []byte, publicInputs []fr.Element, vk plonk.VerifyingKey) bool {
	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false
	}
	public, err := publicWitness(publicInputs)
	if err != nil {
		return false
	}
	hFunc, err := blake2b.New256(nil)
	if err != nil {
		return false
	}
	return plonk.Verify(proof, vk, public, backend.WithVerifierChallengeHashFunction(hFunc)) == nil
}

// publicWitness rebuilds a gnark public witness from the raw field-element
// vector, so Verify does not depend on the circuit type.
func publicWitness(publicInputs []fr.Element) (gnarkwitness.Witness, error) {
	w, err := gnarkwitness.New(ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}
	values := make(chan any, len(publicInputs))
	for _, v := range publicInputs {
		values <- v
	}
	close(values)
	if err := w.Fill(len(publicInputs), 0, values); err != nil {
		return nil, err
	}
	return w, nil
}
