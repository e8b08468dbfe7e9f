package piece

import (
	bitmap "github.com/boljen/go-bitmap"
)

// Blocks holds, for every piece, how many of its blocks a peer has.
type Blocks []int

func Empty(numPieces int) Blocks {
	return make(Blocks, numPieces)
}

func Full(numPieces, blocksPerPiece int) Blocks {
	b := make(Blocks, numPieces)
	for i := range b {
		b[i] = blocksPerPiece
	}
	return b
}

func (b Blocks) Copy() Blocks {
	c := make(Blocks, len(b))
	copy(c, b)
	return c
}

func (b Blocks) Complete(pieceIndex, blocksPerPiece int) bool {
	return b[pieceIndex] == blocksPerPiece
}

// Done reports whether every piece is complete.
func (b Blocks) Done(blocksPerPiece int) bool {
	for _, blocks := range b {
		if blocks < blocksPerPiece {
			return false
		}
	}
	return true
}

// Needed returns the indices of the pieces that are not complete yet.
func (b Blocks) Needed(blocksPerPiece int) []int {
	needed := []int{}
	for pieceIndex, blocks := range b {
		if blocks < blocksPerPiece {
			needed = append(needed, pieceIndex)
		}
	}
	return needed
}

func (b Blocks) NumComplete(blocksPerPiece int) int {
	n := 0
	for _, blocks := range b {
		if blocks == blocksPerPiece {
			n++
		}
	}
	return n
}

// Bitfield sets a bit for every complete piece.
func (b Blocks) Bitfield(blocksPerPiece int) bitmap.Bitmap {
	bitfield := bitmap.New(len(b))
	for pieceIndex, blocks := range b {
		if blocks == blocksPerPiece {
			bitfield.Set(pieceIndex, true)
		}
	}
	return bitfield
}
