// Package keccak arithmetizes the Keccak-256 hash function as a PLONK
// circuit over BN254: a variable-length byte input is laid out on a fixed
// per-round row matrix, the words carrying payload bytes are exposed on the
// public-input column, and the resulting relation is proven with a KZG-based
// polynomial commitment argument.
//
// The root package holds the sponge layout parameters shared by the
// subpackages:
//
//   - word: sparse bit-base word encoding and rotation-consistent bit-part
//     splitting
//   - instance: packing of raw input bytes into public-input field elements
//   - witness: the witness-engine contract and the reference row generator
//   - circuit: the binding layer tying witness rows to the public-input
//     column, and the constraint-level sponge
//   - prover: the end-to-end prove/verify pipeline
package keccak
