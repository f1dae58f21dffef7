package network

import (
	. "github.com/corvidchess/corvid/pkg/chess"
)

// score packs a middlegame/endgame pair into one int64, the same
// trick pesto's Score type uses, so tapering never needs a struct
// with two separately-added fields.
type score int64

func s(mg, eg int) score {
	return score(mg)<<32 + score(int32(eg))
}

func (v score) mg() int { return int(int32((v + 1<<31) >> 32)) }
func (v score) eg() int { return int(int32(v)) }

const (
	minorPhase = 4
	rookPhase  = 6
	queenPhase = 12
	totalPhase = 2 * (4*minorPhase + 2*rookPhase + queenPhase)
)

var pieceValue = [PieceNB]score{
	Pawn:   s(100, 120),
	Knight: s(320, 300),
	Bishop: s(330, 320),
	Rook:   s(500, 530),
	Queen:  s(900, 950),
}

// pst holds one piece's placement table indexed by square, white's
// point of view (a8=0 ... h1=63 layout). At lookup time a white
// piece's square is flipped (sq^56) into that layout and a black
// piece's square is used as is, which mirrors the table for black.
// Values are the well-known "simplified evaluation function"
// tables, filling in for the trained weights a real network would
// carry.
var pst = [PieceNB][64]score{
	Pawn: {
		s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0),
		s(50, 80), s(50, 80), s(50, 80), s(50, 80), s(50, 80), s(50, 80), s(50, 80), s(50, 80),
		s(10, 50), s(10, 50), s(20, 50), s(30, 50), s(30, 50), s(20, 50), s(10, 50), s(10, 50),
		s(5, 30), s(5, 30), s(10, 30), s(25, 30), s(25, 30), s(10, 30), s(5, 30), s(5, 30),
		s(0, 15), s(0, 15), s(0, 15), s(20, 15), s(20, 15), s(0, 15), s(0, 15), s(0, 15),
		s(5, 5), s(-5, 5), s(-10, 5), s(0, 5), s(0, 5), s(-10, 5), s(-5, 5), s(5, 5),
		s(5, 0), s(10, 0), s(10, 0), s(-20, 0), s(-20, 0), s(10, 0), s(10, 0), s(5, 0),
		s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0),
	},
	Knight: {
		s(-50, -50), s(-40, -30), s(-30, -30), s(-30, -30), s(-30, -30), s(-30, -30), s(-40, -30), s(-50, -50),
		s(-40, -30), s(-20, -20), s(0, 0), s(5, 0), s(5, 0), s(0, 0), s(-20, -20), s(-40, -30),
		s(-30, -30), s(5, 0), s(10, 15), s(15, 15), s(15, 15), s(10, 15), s(5, 0), s(-30, -30),
		s(-30, -30), s(0, 0), s(15, 15), s(20, 20), s(20, 20), s(15, 15), s(0, 0), s(-30, -30),
		s(-30, -30), s(5, 0), s(15, 15), s(20, 20), s(20, 20), s(15, 15), s(5, 0), s(-30, -30),
		s(-30, -30), s(0, 0), s(10, 15), s(15, 15), s(15, 15), s(10, 15), s(0, 0), s(-30, -30),
		s(-40, -30), s(-20, -20), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(-20, -20), s(-40, -30),
		s(-50, -50), s(-40, -30), s(-30, -30), s(-30, -30), s(-30, -30), s(-30, -30), s(-40, -30), s(-50, -50),
	},
	Bishop: {
		s(-20, -14), s(-10, -8), s(-10, -8), s(-10, -8), s(-10, -8), s(-10, -8), s(-10, -8), s(-20, -14),
		s(-10, -8), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(-10, -8),
		s(-10, -8), s(0, 0), s(5, 4), s(10, 8), s(10, 8), s(5, 4), s(0, 0), s(-10, -8),
		s(-10, -8), s(5, 4), s(5, 4), s(10, 8), s(10, 8), s(5, 4), s(5, 4), s(-10, -8),
		s(-10, -8), s(0, 4), s(10, 8), s(10, 8), s(10, 8), s(10, 8), s(0, 4), s(-10, -8),
		s(-10, -8), s(10, 4), s(10, 4), s(10, 8), s(10, 8), s(10, 4), s(10, 4), s(-10, -8),
		s(-10, -8), s(5, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(5, 0), s(-10, -8),
		s(-20, -14), s(-10, -8), s(-10, -8), s(-10, -8), s(-10, -8), s(-10, -8), s(-10, -8), s(-20, -14),
	},
	Rook: {
		s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4),
		s(5, 8), s(10, 8), s(10, 8), s(10, 8), s(10, 8), s(10, 8), s(10, 8), s(5, 8),
		s(-5, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(-5, 4),
		s(-5, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(-5, 4),
		s(-5, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(-5, 4),
		s(-5, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(0, 4), s(-5, 4),
		s(-5, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(-5, 0),
		s(0, 0), s(0, 0), s(0, 0), s(5, 0), s(5, 0), s(0, 0), s(0, 0), s(0, 0),
	},
	Queen: {
		s(-20, -20), s(-10, -10), s(-10, -10), s(-5, -5), s(-5, -5), s(-10, -10), s(-10, -10), s(-20, -20),
		s(-10, -10), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(-10, -10),
		s(-10, -10), s(0, 0), s(5, 5), s(5, 5), s(5, 5), s(5, 5), s(0, 0), s(-10, -10),
		s(-5, -5), s(0, 0), s(5, 5), s(5, 10), s(5, 10), s(5, 5), s(0, 0), s(-5, -5),
		s(0, -5), s(0, 0), s(5, 5), s(5, 10), s(5, 10), s(5, 5), s(0, 0), s(-5, -5),
		s(-10, -10), s(5, 0), s(5, 5), s(5, 5), s(5, 5), s(5, 5), s(0, 0), s(-10, -10),
		s(-10, -10), s(0, 0), s(5, 0), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(-10, -10),
		s(-20, -20), s(-10, -10), s(-10, -10), s(-5, -5), s(-5, -5), s(-10, -10), s(-10, -10), s(-20, -20),
	},
	King: {
		s(-30, -50), s(-40, -30), s(-40, -30), s(-50, -30), s(-50, -30), s(-40, -30), s(-40, -30), s(-30, -50),
		s(-30, -30), s(-40, -10), s(-40, -10), s(-50, -10), s(-50, -10), s(-40, -10), s(-40, -10), s(-30, -30),
		s(-30, -30), s(-40, -10), s(-40, 20), s(-50, 30), s(-50, 30), s(-40, 20), s(-40, -10), s(-30, -30),
		s(-30, -30), s(-40, -10), s(-40, 30), s(-50, 40), s(-50, 40), s(-40, 30), s(-40, -10), s(-30, -30),
		s(-20, -30), s(-30, -10), s(-30, 30), s(-40, 40), s(-40, 40), s(-30, 30), s(-30, -10), s(-20, -30),
		s(-10, -30), s(-20, -10), s(-20, 20), s(-20, 30), s(-20, 30), s(-20, 20), s(-20, -10), s(-10, -30),
		s(20, -20), s(20, -10), s(0, 0), s(0, 0), s(0, 0), s(0, 0), s(20, -10), s(20, -20),
		s(20, -30), s(30, -20), s(10, -10), s(0, 0), s(0, 0), s(10, -10), s(30, -20), s(20, -30),
	},
}

// PSQTNetwork is a stateless, table-driven stand-in for a trained
// network: material, tapered piece-square placement and a bishop-pair
// bonus for psqt, and a bonus for rooks on files without own pawns for
// positional. Real incremental feature updates would live behind the
// same Network interface; this implementation recomputes from the
// board whenever the Accumulator holds no cached result for the
// current ply, and uses the Accumulator as a pure result cache.
type PSQTNetwork struct{}

func NewPSQTNetwork() *PSQTNetwork {
	return &PSQTNetwork{}
}

func (n *PSQTNetwork) Evaluate(p *Position, acc *Accumulator) (psqt, positional int32) {
	if cachedPsqt, cachedPositional, ok := acc.cached(); ok {
		return cachedPsqt, cachedPositional
	}

	var total score
	var phase int
	var bishops [2]int
	var rooksOnOpenFile [2]int
	var pawnFiles [2]uint8

	for side := 0; side < 2; side++ {
		var white = side == SideWhite
		var pieces = p.PiecesByColor(white)
		for x := pieces; x != 0; x &= x - 1 {
			var sq = FirstOne(x)
			var piece = p.WhatPiece(sq)
			var pstSq = sq
			if white {
				pstSq = sq ^ 56
			}
			var value = pieceValue[piece] + pst[piece][pstSq]
			if white {
				total += value
			} else {
				total -= value
			}
			switch piece {
			case Bishop:
				bishops[side]++
				phase += minorPhaseFor(piece)
			case Knight, Rook:
				phase += minorPhaseFor(piece)
			case Queen:
				phase += queenPhase
			}
			if piece == Pawn {
				pawnFiles[side] |= 1 << uint(File(sq))
			}
		}
	}

	if bishops[SideWhite] >= 2 {
		total += s(30, 45)
	}
	if bishops[SideBlack] >= 2 {
		total -= s(30, 45)
	}

	for x := p.Rooks; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		var file = File(sq)
		var white = (SquareMask[sq] & p.White) != 0
		var ownPawns = pawnFiles[SideBlack]
		if white {
			ownPawns = pawnFiles[SideWhite]
		}
		if ownPawns&(1<<uint(file)) == 0 {
			if white {
				rooksOnOpenFile[SideWhite]++
			} else {
				rooksOnOpenFile[SideBlack]++
			}
		}
	}

	if phase > totalPhase {
		phase = totalPhase
	}
	var tapered = (total.mg()*phase + total.eg()*(totalPhase-phase)) / totalPhase

	var positionalScore = 15 * (rooksOnOpenFile[SideWhite] - rooksOnOpenFile[SideBlack])

	acc.store(int32(tapered), int32(positionalScore))
	return int32(tapered), int32(positionalScore)
}

func minorPhaseFor(piece int) int {
	if piece == Rook {
		return rookPhase
	}
	return minorPhase
}
