package word

import "fmt"

// PartInfo describes which bit positions one part of a split word contains.
type PartInfo struct {
	// Bits holds the bit positions of the part.
	Bits []int
}

// WordParts describes how a word is split into parts. After construction the
// part containing bit position 0 is always first, so rotating the part list
// by RotateCount parts equals rotating the word bits by the rotation amount.
type WordParts struct {
	// Parts holds the parts of the word.
	Parts []PartInfo
}

// TargetPartSizes returns the size in bits of each part when splitting a
// keccak word into uniform chunks of partSize bits.
func TargetPartSizes(partSize int) []int {
	numFullChunks := NumBitsPerWord / partSize
	partialChunkSize := NumBitsPerWord % partSize
	partSizes := make([]int, numFullChunks, numFullChunks+1)
	for i := range partSizes {
		partSizes[i] = partSize
	}
	if partialChunkSize > 0 {
		partSizes = append(partSizes, partialChunkSize)
	}
	return partSizes
}

// RotateCount returns the rotation count expressed in parts.
func RotateCount(count, partSize int) int {
	return (count + partSize - 1) / partSize
}

// Rotate rotates the parts of a split word to the right.
func Rotate[T any](parts []T, count, partSize int) []T {
	return rotatedRight(parts, RotateCount(count, partSize))
}

// RotateRev rotates the parts of a split word to the left.
func RotateRev[T any](parts []T, count, partSize int) []T {
	return rotatedRight(parts, len(parts)-RotateCount(count, partSize))
}

func rotatedRight[T any](parts []T, n int) []T {
	l := len(parts)
	if l == 0 {
		return nil
	}
	n %= l
	rotated := make([]T, 0, l)
	rotated = append(rotated, parts[l-n:]...)
	return append(rotated, parts[:l-n]...)
}

// NewWordParts returns a description of how a word will be split into parts
// for the given rotation. With normalize set, the parts of all words end up
// at the same positions regardless of rotation; without it the split only
// minimizes the number of parts, using independent uniform runs on each side
// of the rotation boundary.
//
// A new part is started whenever bit position 0 (the rotation seam) is
// reached, even mid-part, and the part list is cyclically rotated so the
// seam part comes first.
func NewWordParts(partSize, rot int, normalize bool) WordParts {
	if partSize <= 0 || partSize > NumBitsPerWord {
		panic("word: part size out of range")
	}
	if rot < 0 || rot >= NumBitsPerWord {
		panic("word: rotation out of range")
	}

	// Bit positions rotated right by rot, so that index 0 holds the bit
	// that ends up at position 0 after an actual right rotation.
	bits := make([]int, NumBitsPerWord)
	for i := range bits {
		bits[i] = (i - rot + NumBitsPerWord) % NumBitsPerWord
	}

	var targetSizes []int
	if normalize {
		targetSizes = TargetPartSizes(partSize)
	} else {
		numPartsA, partialA := rot/partSize, rot%partSize
		numPartsB, partialB := (NumBitsPerWord-rot)/partSize, (NumBitsPerWord-rot)%partSize

		for i := 0; i < numPartsA; i++ {
			targetSizes = append(targetSizes, partSize)
		}
		if partialA > 0 {
			targetSizes = append(targetSizes, partialA)
		}
		for i := 0; i < numPartsB; i++ {
			targetSizes = append(targetSizes, partSize)
		}
		if partialB > 0 {
			targetSizes = append(targetSizes, partialB)
		}
	}

	var parts []PartInfo
	rotIdx := 0
	idx := 0
	for _, size := range targetSizes {
		numConsumed := 0
		for numConsumed < size {
			var partBits []int
			for numConsumed < size {
				if len(partBits) > 0 && bits[idx] == 0 {
					break
				}
				if bits[idx] == 0 {
					rotIdx = len(parts)
				}
				partBits = append(partBits, bits[idx])
				idx++
				numConsumed++
			}
			parts = append(parts, PartInfo{Bits: partBits})
		}
	}

	if got := RotateCount(rot, partSize); got != rotIdx {
		panic(fmt.Sprintf("word: seam part index %d does not match rotate count %d", rotIdx, got))
	}

	parts = rotatedRight(parts, len(parts)-rotIdx)
	if parts[0].Bits[0] != 0 {
		panic("word: seam part is not first after rotation")
	}

	return WordParts{Parts: parts}
}
