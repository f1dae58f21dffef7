package engine

import . "github.com/corvidchess/corvid/pkg/chess"

const sortTableKeyImportant = 100000

// moveIteratorQS drives quiescence search's move set: evasions when in
// check, otherwise captures and promotions only (no quiet checking
// moves are generated), ordered by MVV/LVA (spec §4.5).
type moveIteratorQS struct {
	position *Position
	buffer   []OrderedMove
	count    int
	index    int
}

func (mi *moveIteratorQS) Init() {
	if mi.position.IsCheck() {
		mi.count = len(mi.position.GenerateMoves(mi.buffer))
	} else {
		mi.count = len(mi.position.GenerateCaptures(mi.buffer, false))
	}

	for i := 0; i < mi.count; i++ {
		var m = mi.buffer[i].Move
		var score int
		if isCaptureOrPromotion(m) {
			score = 29000 + mvvlva(m)
		} else {
			score = 0
		}
		mi.buffer[i].Key = int32(score)
	}

	sortMoves(mi.buffer[:mi.count])
}

func (mi *moveIteratorQS) Reset() {
	mi.index = 0
}

func (mi *moveIteratorQS) Next() Move {
	if mi.index >= mi.count {
		return MoveEmpty
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

// moveIterator drives the main search's staged move order: TT move,
// good captures (MVV/LVA plus capture history, gated by SEE), killers
// and the counter move, then history-scored quiets. Captures that fail
// SEE get no stage bonus, so they sort by their raw capture score in
// among the quiets rather than after all of them (spec §4.3).
type moveIterator struct {
	position    *Position
	buffer      []OrderedMove
	history     historyContext
	transMove   Move
	killer1     Move
	killer2     Move
	counterMove Move
	count       int
	index       int
}

func (mi *moveIterator) Init() {
	mi.count = len(mi.position.GenerateMoves(mi.buffer))

	for i := 0; i < mi.count; i++ {
		var m = mi.buffer[i].Move
		var score int
		switch {
		case m == mi.transMove:
			score = sortTableKeyImportant + 2000
		case isCaptureOrPromotion(m):
			var captureScore = mvvlva(m) + mi.history.ReadCapture(m)/64
			if seeGEZero(mi.position, m) {
				score = sortTableKeyImportant + 1000 + captureScore
			} else {
				score = captureScore
			}
		case m == mi.killer1:
			score = sortTableKeyImportant + 3
		case m == mi.killer2:
			score = sortTableKeyImportant + 2
		case m == mi.counterMove:
			score = sortTableKeyImportant + 1
		default:
			score = mi.history.ReadQuiet(mi.position, m)
		}
		mi.buffer[i].Key = int32(score)
	}
}

func (mi *moveIterator) Reset() {
	mi.index = 0
}

func (mi *moveIterator) Next() Move {
	if mi.index >= mi.count {
		return MoveEmpty
	}
	const sortMovesIndex = 1
	if mi.index <= sortMovesIndex {
		if mi.index == sortMovesIndex {
			sortMoves(mi.buffer[mi.index:mi.count])
		} else {
			moveToTop(mi.buffer[mi.index:mi.count])
		}
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

var sortPieceValues = [...]int{Empty: 0, Pawn: 1, Knight: 2, Bishop: 3, Rook: 4, Queen: 5, King: 6}

func mvvlva(move Move) int {
	return 8*(sortPieceValues[move.CapturedPiece()]+
		sortPieceValues[move.Promotion()]) -
		sortPieceValues[move.MovingPiece()]
}

func sortMoves(moves []OrderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].Key < t.Key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func moveToTop(ml []OrderedMove) {
	var bestIndex = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].Key > ml[bestIndex].Key {
			bestIndex = i
		}
	}
	if bestIndex != 0 {
		ml[0], ml[bestIndex] = ml[bestIndex], ml[0]
	}
}
