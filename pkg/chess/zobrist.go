package chess

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Zobrist keys are derived from xxhash of a fixed label instead of a
// seeded PRNG: deterministic across runs (needed so that Perft and
// repetition tests are reproducible) while still exercising a real
// hashing dependency rather than hand-rolling one.
var (
	sideKey        uint64
	enpassantKey   [8]uint64
	castlingKey    [16]uint64
	pieceSquareKey [PieceNB * 2 * 64]uint64
	castleMask     [64]int
)

func hashSeed(label string) uint64 {
	return xxhash.Sum64String("corvid-zobrist:" + label)
}

func PieceSquareKey(piece int, white bool, square int) uint64 {
	return pieceSquareKey[makePieceIndex(piece, white)*64+square]
}

func makePieceIndex(piece int, white bool) int {
	if white {
		return piece
	}
	return piece + PieceNB
}

func init() {
	sideKey = hashSeed("side")
	for i := range enpassantKey {
		enpassantKey[i] = hashSeed("ep" + strconv.Itoa(i))
	}
	for i := range pieceSquareKey {
		pieceSquareKey[i] = hashSeed("psq" + strconv.Itoa(i))
	}

	var castle [4]uint64
	for i := range castle {
		castle[i] = hashSeed("castle" + strconv.Itoa(i))
	}
	for i := range castlingKey {
		for j := 0; j < 4; j++ {
			if i&(1<<uint(j)) != 0 {
				castlingKey[i] ^= castle[j]
			}
		}
	}

	for i := range castleMask {
		castleMask[i] = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
	}
	castleMask[SquareA1] &^= WhiteQueenSide
	castleMask[SquareE1] &^= WhiteQueenSide | WhiteKingSide
	castleMask[SquareH1] &^= WhiteKingSide
	castleMask[SquareA8] &^= BlackQueenSide
	castleMask[SquareE8] &^= BlackQueenSide | BlackKingSide
	castleMask[SquareH8] &^= BlackKingSide
}
