package chess

import "strings"

// Move is the opaque 16-bit-equivalent encoding from spec §3: from (6
// bits), to (6 bits), moving piece (3 bits), captured piece (3 bits)
// and promotion piece (3 bits) packed into a 32-bit word. MoveEmpty and
// MoveNull are the distinguished sentinels; a Move is trivially
// copyable.
type Move int32

const MoveEmpty = Move(0)

// MoveNull is never produced by move generation; the search uses it as
// the "pass" pseudo-move for null-move pruning.
const MoveNull = Move(-1)

// The four castling moves are constructed once so both move generation
// and UCI formatting can compare against them directly.
var (
	whiteKingSideCastle  = makeMove(SquareE1, SquareG1, King, Empty)
	whiteQueenSideCastle = makeMove(SquareE1, SquareC1, King, Empty)
	blackKingSideCastle  = makeMove(SquareE8, SquareG8, King, Empty)
	blackQueenSideCastle = makeMove(SquareE8, SquareC8, King, Empty)
)

func makeMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(from ^ (to << 6) ^ (movingPiece << 12) ^ (capturedPiece << 15))
}

func makePawnMove(from, to, capturedPiece, promotion int) Move {
	return Move(from ^ (to << 6) ^ (Pawn << 12) ^ (capturedPiece << 15) ^ (promotion << 18))
}

func (m Move) From() int         { return int(m & 63) }
func (m Move) To() int           { return int((m >> 6) & 63) }
func (m Move) MovingPiece() int  { return int((m >> 12) & 7) }
func (m Move) CapturedPiece() int { return int((m >> 15) & 7) }
func (m Move) Promotion() int    { return int((m >> 18) & 7) }

func (m Move) IsCaptureOrPromotion() bool {
	return m.CapturedPiece() != Empty || m.Promotion() != Empty
}

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var sPromotion = ""
	if m.Promotion() != Empty {
		sPromotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + sPromotion
}

// UCI formats the move the way the "position ... moves" / "bestmove"
// grammar expects it, honoring Chess960 king-captures-rook notation for
// the two castling moves this engine's move generator produces (spec
// §6). Since the move generator only ever sets up the standard a/h-file
// rook squares, Chess960 formatting here degrades to that assumption -
// Chess960 starting arrays with the rooks on other files are not
// supported.
func (m Move) UCI(chess960 bool) string {
	if !chess960 || m.MovingPiece() != King {
		return m.String()
	}
	switch m {
	case whiteKingSideCastle:
		return "e1h1"
	case whiteQueenSideCastle:
		return "e1a1"
	case blackKingSideCastle:
		return "e8h8"
	case blackQueenSideCastle:
		return "e8a8"
	default:
		return m.String()
	}
}

func (p *Position) MakeMoveLAN(lan string) (Position, bool) {
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateMoves(buffer[:])
	for i := range ml {
		var mv = ml[i].Move
		if strings.EqualFold(mv.String(), lan) {
			var newPosition = Position{}
			if p.MakeMove(mv, &newPosition) {
				return newPosition, true
			}
			return Position{}, false
		}
	}
	return Position{}, false
}
