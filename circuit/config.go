package circuit

import (
	keccak "github.com/ElusAegis/keccak-gnark"
	"github.com/ElusAegis/keccak-gnark/word"
)

// partSize is the bit granularity of the word-part lookup decompositions.
const partSize = 8

// rhoOffsets lists the rotation constant of each state lane used by the rho
// step, in lane order (x + 5y).
var rhoOffsets = [25]int{
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

// Config carries the per-parameter-set data the gate layer consumes: the
// row geometry and the word-part decompositions driving gate construction
// and witness packing. Built once, immutable afterwards.
type Config struct {
	Params keccak.Params

	// NormalizeParts is the uniform split shared by lookups that do not
	// rotate (theta normalization, chi).
	NormalizeParts word.WordParts
	// RhoParts holds one rotation-consistent split per state lane of the
	// rho step.
	RhoParts [25]word.WordParts
}

// NewConfig precomputes the part decompositions for the given parameters.
func NewConfig(params keccak.Params) Config {
	cfg := Config{
		Params:         params,
		NormalizeParts: word.NewWordParts(partSize, 0, true),
	}
	for i, rot := range rhoOffsets {
		cfg.RhoParts[i] = word.NewWordParts(partSize, rot, false)
	}
	return cfg
}
