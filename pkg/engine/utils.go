package engine

import (
	. "github.com/corvidchess/corvid/pkg/chess"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
	valueNone     = valueMate + 2
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

// valueToTT and valueFromTT translate a mate score between the search
// height it was found at and a height-independent form for storage, so
// a TT hit from a different height in the tree doesn't misreport the
// distance to mate (spec §4.1).
func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}
	if v <= valueLoss {
		return v - height
	}
	return v
}

// valueFromTT undoes valueToTT's height shift, and additionally
// demotes a mate score to the highest non-terminal bound when rule50
// is close enough to claiming a draw that the stored mate distance may
// no longer survive to the root - without this a TT hit from a
// different, since-drawn line can report a mate that the current line
// cannot actually deliver (the graph-history-interaction bug).
func valueFromTT(v, height, rule50 int) int {
	if v >= valueWin {
		if valueMate-v > 100-rule50 {
			return valueWin - 1
		}
		return v - height
	}
	if v <= valueLoss {
		if valueMate+v > 100-rule50 {
			return valueLoss + 1
		}
		return v + height
	}
	return v
}

func newUciScore(v int) UciScore {
	if v >= valueWin {
		return UciScore{Mate: (valueMate - v + 1) / 2}
	} else if v <= valueLoss {
		return UciScore{Mate: (-valueMate - v) / 2}
	} else {
		return UciScore{Centipawns: v}
	}
}

func isLateEndgame(p *Position, side bool) bool {
	var ownPieces = p.PiecesByColor(side)
	return ((p.Rooks|p.Queens)&ownPieces) == 0 &&
		!MoreThanOne((p.Knights|p.Bishops)&ownPieces)
}

func isCaptureOrPromotion(move Move) bool {
	return move.CapturedPiece() != Empty || move.Promotion() != Empty
}

