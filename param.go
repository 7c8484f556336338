package keccak

// Keccak-f[1600] with rate 1088 bits and a 256-bit digest.
const (
	// NumRounds is the number of rounds of the Keccak-f permutation.
	NumRounds = 24
	// NumWordsToAbsorb is the number of 64-bit words absorbed per block.
	NumWordsToAbsorb = 17
	// NumBytesPerWord is the input bytes packed into one word.
	NumBytesPerWord = 8
	// RateInBytes is the sponge rate.
	RateInBytes = NumWordsToAbsorb * NumBytesPerWord
	// DigestBytes is the Keccak-256 output size.
	DigestBytes = 32
)

// Params fixes the row geometry of one circuit instance.
type Params struct {
	// K is the log2 of the circuit's row budget.
	K uint32
	// RowsPerRound is the number of rows assigned per permutation round.
	RowsPerRound int
}

// DefaultParams matches the reference circuit's default configuration.
var DefaultParams = Params{K: 14, RowsPerRound: 28}

// NumRows returns the row budget 2^K.
func (p Params) NumRows() int { return 1 << p.K }

// Capacity returns how many rate-sized blocks can be absorbed within
// numRows rows, after the leading dummy round group is accounted for.
func Capacity(numRows, rowsPerRound int) int {
	return (numRows/rowsPerRound - 1) / (NumRounds + 1)
}
