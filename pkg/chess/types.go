// Package chess implements the position/move representation and move
// generator that the search core treats as an external collaborator
// (spec §1, §3, §6): Zobrist-hashed bitboard position, legal-move
// enumeration, do/undo with a caller-owned state record, and the
// predicates the search needs (check, capture, repetition-adjacent
// equality).
package chess

import "time"

const (
	FileA = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	Rank1 = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const SquareNone = -1

const (
	SquareA1 = iota
	SquareB1
	SquareC1
	SquareD1
	SquareE1
	SquareF1
	SquareG1
	SquareH1
	SquareA2
	SquareB2
	SquareC2
	SquareD2
	SquareE2
	SquareF2
	SquareG2
	SquareH2
	SquareA3
	SquareB3
	SquareC3
	SquareD3
	SquareE3
	SquareF3
	SquareG3
	SquareH3
	SquareA4
	SquareB4
	SquareC4
	SquareD4
	SquareE4
	SquareF4
	SquareG4
	SquareH4
	SquareA5
	SquareB5
	SquareC5
	SquareD5
	SquareE5
	SquareF5
	SquareG5
	SquareH5
	SquareA6
	SquareB6
	SquareC6
	SquareD6
	SquareE6
	SquareF6
	SquareG6
	SquareH6
	SquareA7
	SquareB7
	SquareC7
	SquareD7
	SquareE7
	SquareF7
	SquareG7
	SquareH7
	SquareA8
	SquareB8
	SquareC8
	SquareD8
	SquareE8
	SquareF8
	SquareG8
	SquareH8
)

const (
	Empty = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
	PieceNB
)

const (
	SideWhite = iota
	SideBlack
)

const (
	WhiteKingSide = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

const MaxMoves = 256

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is the external collaborator described in spec §3: bitboard
// piece placement, side to move, castling/ep/rule-50 state and a
// 64-bit Zobrist key. Copying a Position by value is the do/undo
// mechanism: MakeMove writes into a caller-owned destination instead of
// mutating in place, so a whole search stack of positions is just an
// array.
type Position struct {
	Pawns, Knights, Bishops, Rooks, Queens, Kings, White, Black, Checkers uint64
	WhiteMove                                                             bool
	CastleRights, Rule50, EpSquare                                        int
	Key                                                                   uint64
	LastMove                                                              Move
}

// AllPieces returns the combined occupancy bitboard.
func (p *Position) AllPieces() uint64 {
	return p.White | p.Black
}

// Colours returns the occupancy bitboard for one side, side being
// SideWhite or SideBlack.
func (p *Position) Colours(side int) uint64 {
	if side == SideWhite {
		return p.White
	}
	return p.Black
}

func (p *Position) PiecesByColor(white bool) uint64 {
	if white {
		return p.White
	}
	return p.Black
}

// OrderedMove pairs a pseudo-legal move with a caller-assigned ordering
// key; the move picker sorts slices of these in place.
type OrderedMove struct {
	Move Move
	Key  int32
}

// LimitsType mirrors the "go" command's optional fields (spec §6).
type LimitsType struct {
	Ponder         bool
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MoveTime       int
	MovesToGo      int
	Depth          int
	Nodes          int
	Mate           int
	SearchMoves    []Move
}

// UciScore is either a centipawn score or a mate-in-N count, never both.
type UciScore struct {
	Centipawns int
	Mate       int
}

// SearchParams bundles a search request: the position history (needed
// for repetition detection), the "go" limits, and an optional progress
// callback for "info" lines.
type SearchParams struct {
	Positions []Position
	Limits    LimitsType
	Progress  func(SearchInfo)
}

// SearchInfo is one snapshot of search progress, matching the fields a
// UCI "info" line reports.
type SearchInfo struct {
	Score    UciScore
	Depth    int
	SelDepth int
	Nodes    int64
	Hashfull int
	TbHits   int64
	Time     time.Duration
	MainLine []Move
	Lines    []SearchLine
}

// SearchLine is one ranked MultiPV line: the search's Nth-best root
// move together with the score and continuation it read for it. Lines
// is only populated when the search ran more than one MultiPV line
// (MultiPV above 1, or a SkillLevel below 20, which raises the line
// count to 4) and more than one of them produced a move; Index is
// 1-based to match the UCI "multipv" field.
type SearchLine struct {
	Index    int
	Score    UciScore
	MainLine []Move
}
