package engine

import (
	. "github.com/corvidchess/corvid/pkg/chess"
)

// seeValue prices each piece kind for the swap-off calculation below;
// it's a coarse ladder tuned only well enough to rank an exchange, not
// the search's real material weights.
var seeValue = [PieceNB]int{Pawn: 1, Knight: 4, Bishop: 4, Rook: 6, Queen: 12, King: 120}

func seeGEZero(p *Position, move Move) bool {
	return SeeGE(p, move, 0)
}

// SeeGE reports whether the static exchange evaluation of move on pos
// meets or beats threshold. It walks the classic swap-off sequence on
// the destination square, always bringing in the least valuable
// attacker next, and bails out the moment either side can tell the
// running balance no longer favors continuing.
func SeeGE(pos *Position, move Move, threshold int) bool {
	var to = move.To()
	var capturedPiece = move.CapturedPiece()
	var promotionPiece = move.Promotion()

	var nextVictim = move.MovingPiece()
	var swapOff = seeValue[capturedPiece]
	if promotionPiece != Empty {
		swapOff += seeValue[promotionPiece] - seeValue[Pawn]
		nextVictim = promotionPiece
	}
	swapOff -= threshold

	if swapOff < 0 {
		return false
	}

	swapOff -= seeValue[nextVictim]
	if swapOff >= 0 {
		return true
	}

	var occupied = seeOccupancyAfter(pos, move)
	var attackers = attackersTo(pos, to, occupied) & occupied
	var diagonalSliders = pos.Bishops | pos.Queens
	var straightSliders = pos.Rooks | pos.Queens

	var side = sideToMove(pos) ^ 1
	for {
		var ownAttackers = attackers & pos.Colours(side)
		if ownAttackers == 0 {
			break
		}

		var attackerType, attackerFrom = leastValuableAttacker(pos, ownAttackers)
		occupied &^= SquareMask[attackerFrom]

		if attackerType == Pawn || attackerType == Bishop || attackerType == Queen {
			attackers |= BishopAttacks(to, occupied) & diagonalSliders
		}
		if attackerType == Rook || attackerType == Queen {
			attackers |= RookAttacks(to, occupied) & straightSliders
		}
		attackers &= occupied

		side ^= 1
		swapOff = -swapOff - 1 - seeValue[attackerType]
		if swapOff >= 0 {
			if attackerType == King && attackers&pos.Colours(side) != 0 {
				side ^= 1
			}
			break
		}
	}

	return side != sideToMove(pos)
}

// seeOccupancyAfter reconstructs the board occupancy after move plays
// out, including the en-passant victim's square when the move is an
// ep capture - the swap-off walk needs this once, up front, since
// every attacker it discovers afterward is relative to this board.
func seeOccupancyAfter(pos *Position, move Move) uint64 {
	var occupied = pos.AllPieces()&^SquareMask[move.From()] | SquareMask[move.To()]
	if move.MovingPiece() == Pawn && move.To() == pos.EpSquare {
		var capSq = move.To() - 8
		if !pos.WhiteMove {
			capSq = move.To() + 8
		}
		occupied &^= SquareMask[capSq]
	}
	return occupied
}

func sideToMove(p *Position) int {
	if p.WhiteMove {
		return SideWhite
	}
	return SideBlack
}

func attackersTo(pos *Position, sq int, occ uint64) uint64 {
	return (PawnAttacks(sq, true) & pos.Pawns & pos.Black) |
		(PawnAttacks(sq, false) & pos.Pawns & pos.White) |
		(KnightAttacks[sq] & pos.Knights) |
		(KingAttacks[sq] & pos.Kings) |
		(BishopAttacks(sq, occ) & (pos.Bishops | pos.Queens)) |
		(RookAttacks(sq, occ) & (pos.Rooks | pos.Queens))
}

var seeAttackerOrder = [...]int{Pawn, Knight, Bishop, Rook, Queen, King}

// leastValuableAttacker picks the cheapest piece in attackers to move
// next, per seeValue's ladder, rather than the classic if-chain -
// bitboardFor below is the only piece this needs from Position, kept
// as a closure so the ladder itself stays a plain data table.
func leastValuableAttacker(p *Position, attackers uint64) (piece, from int) {
	var bitboardFor = func(pt int) uint64 {
		switch pt {
		case Pawn:
			return p.Pawns
		case Knight:
			return p.Knights
		case Bishop:
			return p.Bishops
		case Rook:
			return p.Rooks
		case Queen:
			return p.Queens
		default:
			return p.Kings
		}
	}
	for _, pt := range seeAttackerOrder {
		if bb := bitboardFor(pt) & attackers; bb != 0 {
			return pt, FirstOne(bb)
		}
	}
	return Empty, SquareNone
}
