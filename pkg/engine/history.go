package engine

import . "github.com/corvidchess/corvid/pkg/chess"

const historyMax = 1 << 14

// historyService holds every history table a thread accumulates over
// the course of a search: butterfly main history, capture history,
// a continuation-history chain keyed by (piece,to) at previous plies,
// pawn-structure history, counter-move refutations and a static-eval
// correction table (spec §4.3/§4.4).
type historyService struct {
	mainHistory         [1 << 13]int16
	captureHistory      [PieceNB * 64 * PieceNB]int16
	continuationHistory [PieceNB * 2 * 64][PieceNB * 2 * 64]int16
	pawnHistory         [1 << 13]int16
	counterMoves        [PieceNB * 2 * 64]Move
	correctionHistory   [2][1 << 14]int16
}

func (t *thread) clearHistory() {
	var h = &t.history
	for i := range h.mainHistory {
		h.mainHistory[i] = 0
	}
	for i := range h.captureHistory {
		h.captureHistory[i] = 0
	}
	for i := range h.continuationHistory {
		for j := range h.continuationHistory[i] {
			h.continuationHistory[i][j] = 0
		}
	}
	for i := range h.pawnHistory {
		h.pawnHistory[i] = 0
	}
	for i := range h.counterMoves {
		h.counterMoves[i] = MoveEmpty
	}
	for side := range h.correctionHistory {
		for i := range h.correctionHistory[side] {
			h.correctionHistory[side][i] = 0
		}
	}
}

type historyContext struct {
	thread     *thread
	sideToMove bool
	cont1      int
	cont2      int
	cont4      int
}

// continuationIndices returns the continuationHistory row indices for
// plies -1, -2 and -4 relative to height (the moves that led to the
// positions at height, height-1 and height-3), or -1 where no such ply
// exists or it held no move. Reaching back to -4 rather than the full
// -1..-6 span some engines use keeps the per-node cost down while
// still capturing "same piece came back" and "opponent's last quiet
// reply" (documented open-question decision, see DESIGN.md).
func (t *thread) continuationIndices(height int) (c1, c2, c4 int) {
	c1, c2, c4 = -1, -1, -1
	var sideToMove = t.stack[height].position.WhiteMove
	if m := t.stack[height].position.LastMove; m != MoveEmpty && m != MoveNull {
		c1 = pieceSquareIndex(!sideToMove, m)
	}
	if height >= 1 {
		if m := t.stack[height-1].position.LastMove; m != MoveEmpty && m != MoveNull {
			c2 = pieceSquareIndex(sideToMove, m)
		}
	}
	if height >= 3 {
		if m := t.stack[height-3].position.LastMove; m != MoveEmpty && m != MoveNull {
			c4 = pieceSquareIndex(sideToMove, m)
		}
	}
	return
}

func (t *thread) getHistoryContext(height int) historyContext {
	var cont1, cont2, cont4 = t.continuationIndices(height)
	return historyContext{
		thread:     t,
		sideToMove: t.stack[height].position.WhiteMove,
		cont1:      cont1,
		cont2:      cont2,
		cont4:      cont4,
	}
}

// ReadQuiet returns the combined quiet-move ordering score: butterfly
// history, every populated continuation-history slot, and pawn
// history.
func (h *historyContext) ReadQuiet(p *Position, m Move) int {
	var t = h.thread
	var score = int(t.history.mainHistory[sideFromToIndex(h.sideToMove, m)])
	var pieceToIndex = pieceSquareIndex(h.sideToMove, m)
	if h.cont1 != -1 {
		score += int(t.history.continuationHistory[h.cont1][pieceToIndex])
	}
	if h.cont2 != -1 {
		score += int(t.history.continuationHistory[h.cont2][pieceToIndex])
	}
	if h.cont4 != -1 {
		score += int(t.history.continuationHistory[h.cont4][pieceToIndex])
	}
	score += int(t.history.pawnHistory[pawnHistoryIndex(p, h.sideToMove, m)])
	return score
}

// ReadCapture scores a capture by capture history, keyed by moving
// piece, destination square and captured piece.
func (h *historyContext) ReadCapture(m Move) int {
	return int(h.thread.history.captureHistory[captureHistoryIndex(m)])
}

func (h *historyContext) UpdateQuiet(p *Position, quietsSearched []Move, bestMove Move, depth int) {
	var bonus = Min(depth*depth, 400)
	var t = h.thread

	for _, m := range quietsSearched {
		var good = m == bestMove

		updateHistory(&t.history.mainHistory[sideFromToIndex(h.sideToMove, m)], bonus, good)

		var pieceToIndex = pieceSquareIndex(h.sideToMove, m)
		if h.cont1 != -1 {
			updateHistory(&t.history.continuationHistory[h.cont1][pieceToIndex], bonus, good)
		}
		if h.cont2 != -1 {
			updateHistory(&t.history.continuationHistory[h.cont2][pieceToIndex], bonus, good)
		}
		if h.cont4 != -1 {
			updateHistory(&t.history.continuationHistory[h.cont4][pieceToIndex], bonus, good)
		}

		updateHistory(&t.history.pawnHistory[pawnHistoryIndex(p, h.sideToMove, m)], bonus, good)

		if good {
			break
		}
	}
}

func (h *historyContext) UpdateCapture(capturesSearched []Move, bestMove Move, depth int) {
	var bonus = Min(depth*depth, 400)
	var t = h.thread
	for _, m := range capturesSearched {
		var good = m == bestMove
		updateHistory(&t.history.captureHistory[captureHistoryIndex(m)], bonus, good)
		if good {
			break
		}
	}
}

// updateHistory nudges v toward +historyMax on a good move or
// -historyMax otherwise, at a rate proportional to bonus - the
// saturating exponential moving average every table here shares.
func updateHistory(v *int16, bonus int, good bool) {
	var newVal int
	if good {
		newVal = historyMax
	} else {
		newVal = -historyMax
	}
	*v += int16((newVal - int(*v)) * bonus / 512)
}

func pieceSquareIndex(side bool, move Move) int {
	var result = (move.MovingPiece() << 6) | move.To()
	if side {
		result |= 1 << 9
	}
	return result
}

func sideFromToIndex(side bool, move Move) int {
	var result = (move.From() << 6) | move.To()
	if side {
		result |= 1 << 12
	}
	return result
}

func captureHistoryIndex(move Move) int {
	return (move.MovingPiece() << 9) | (move.To() << 3) | move.CapturedPiece()
}

// pawnHistoryIndex folds the pawn-only occupancy into the quiet-move
// key so the pawn history table specializes ordering by pawn
// structure rather than by full position.
func pawnHistoryIndex(p *Position, side bool, move Move) int {
	var pawnKey = uint32(p.Pawns) ^ uint32(p.Pawns>>32)
	return (int(pawnKey) ^ sideFromToIndex(side, move)) & (1<<13 - 1)
}

func counterMoveIndex(side bool, prev Move) int {
	return pieceSquareIndex(side, prev)
}

func (t *thread) counterMove(height int) Move {
	if height == 0 {
		return MoveEmpty
	}
	var prev = t.stack[height].position.LastMove
	if prev == MoveEmpty || prev == MoveNull {
		return MoveEmpty
	}
	return t.history.counterMoves[counterMoveIndex(t.stack[height].position.WhiteMove, prev)]
}

func (t *thread) updateCounterMove(height int, move Move) {
	if height == 0 {
		return
	}
	var prev = t.stack[height].position.LastMove
	if prev == MoveEmpty || prev == MoveNull {
		return
	}
	t.history.counterMoves[counterMoveIndex(t.stack[height].position.WhiteMove, prev)] = move
}

const correctionHistoryLimit = 32 * 256

// correctionHistoryIndex buckets by pawn structure - the static eval's
// biggest blind spot - independent of the rest of the position.
func correctionHistoryIndex(p *Position) int {
	var key = p.Pawns * 0x9E3779B97F4A7C15
	return int(key & (1<<14 - 1))
}

// correctionFor returns the accumulated static-eval correction for the
// side to move's pawn structure, scaled down into centipawns.
func (t *thread) correctionFor(p *Position) int {
	var side = correctionHistorySide(p)
	return int(t.history.correctionHistory[side][correctionHistoryIndex(p)]) / 256
}

func correctionHistorySide(p *Position) int {
	if p.WhiteMove {
		return 0
	}
	return 1
}

// updateCorrection nudges the correction table toward the observed gap
// between the search result and the static eval, weighted down for
// shallow searches so a single noisy result can't saturate it.
func (t *thread) updateCorrection(p *Position, depth, diff int) {
	var side = correctionHistorySide(p)
	var v = &t.history.correctionHistory[side][correctionHistoryIndex(p)]
	var weight = Min(depth+1, 16)
	var newVal = (int(*v)*(256-weight) + diff*256*weight) / 256
	*v = int16(Max(Min(newVal, correctionHistoryLimit), -correctionHistoryLimit))
}
