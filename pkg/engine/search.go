package engine

import (
	"sync/atomic"

	. "github.com/corvidchess/corvid/pkg/chess"
)

const pawnValue = 100

// aspirationWindow narrows the root search window around the previous
// iteration's score, widening geometrically on each fail rather than
// falling straight open to +-infinity: delta grows with the square of
// the score itself (a confident, decisive score can afford a wider
// starting guess than one near zero). On a fail-high the re-search depth
// backs off one ply (never below depth-5) so a stubborn fail-high
// doesn't keep repeating the same, apparently-wrong, full-depth search;
// a fail-low puts the re-search back at full depth.
func aspirationWindow(t *thread, ml []Move, depth, prevScore int) int {
	t.rootDepth = depth
	if t.engine.Options.AspirationWindows &&
		depth >= 5 && !(prevScore <= valueLoss || prevScore >= valueWin) {
		var delta = 10 + prevScore*prevScore/12493
		var alpha = Max(-valueInfinity, prevScore-delta)
		var beta = Min(valueInfinity, prevScore+delta)
		var researchDepth = depth
		for {
			var score = searchRoot(t, ml, alpha, beta, researchDepth)
			if score > alpha && score < beta {
				return score
			}
			delta += delta / 3
			if score >= beta {
				beta = Min(valueInfinity, score+delta)
				researchDepth = Max(researchDepth-1, depth-5)
			} else if score <= alpha {
				beta = (alpha + beta) / 2
				alpha = Max(-valueInfinity, score-delta)
				researchDepth = depth
			}
			if alpha <= -valueInfinity && beta >= valueInfinity {
				return searchRoot(t, ml, -valueInfinity, valueInfinity, depth)
			}
		}
	}
	return searchRoot(t, ml, -valueInfinity, valueInfinity, depth)
}

func searchRoot(t *thread, ml []Move, alpha, beta, depth int) int {
	const height = 0
	var p = &t.stack[height].position
	t.evaluator.Init(p)
	return t.alphaBeta(alpha, beta, depth, height, 0)
}

// alphaBeta is the main search: PVS with the usual menu of pruning,
// reduction and extension techniques. Most of them are gated behind an
// Options toggle so any one of them can be isolated during tuning;
// late-move reductions, mate-distance pruning and the TT cutoff have
// no toggle.
func (t *thread) alphaBeta(alpha, beta, depth, height int, skipMove Move) int {
	if depth <= 0 {
		return t.quiescence(alpha, beta, height)
	}
	t.clearPV(height)

	var rootNode = height == 0
	var pvNode = beta != alpha+1
	var position = &t.stack[height].position
	var isCheck = position.IsCheck()
	var ttMoveIsSingular = false

	if !rootNode {
		if height >= maxHeight {
			return t.evaluator.EvaluateQuick(position)
		}
		if t.isRepeat(height) {
			return valueDraw
		}
		if isDraw(position) {
			return valueDraw
		}
		// mate distance pruning
		if winIn(height+1) <= alpha {
			return alpha
		}
		if lossIn(height+2) >= beta && !isCheck {
			return beta
		}
	}

	// tablebase probe: only in the interior, only where the 50-move
	// counter can't have already erased a captured pawn's relevance
	if !rootNode && skipMove == 0 && t.engine.tablebase != nil &&
		depth >= t.engine.SyzygyProbeDepth && position.Rule50 == 0 {
		if wdl, ok := t.engine.tablebase.ProbeWDL(position); ok {
			atomic.AddInt64(&t.engine.tbHits, 1)
			var score int
			switch {
			case wdl > 0:
				score = winIn(height)
			case wdl < 0:
				score = lossIn(height)
			default:
				score = valueDraw
			}
			t.engine.transTable.Update(position.Key, depth, valueToTT(score, height), boundExact, MoveEmpty)
			return score
		}
	}

	// transposition table
	var (
		ttDepth, ttValue, ttBound, ttEval int
		ttMove                            Move
		ttPv, ttHit                       bool
	)
	if skipMove == 0 {
		ttDepth, ttValue, ttBound, ttMove, ttEval, ttPv, ttHit = t.engine.transTable.ReadWithEval(position.Key)
	}
	if ttHit {
		ttValue = valueFromTT(ttValue, height, position.Rule50)
		if ttDepth >= depth && !pvNode && !(position.LastMove == MoveEmpty) && position.Rule50 < 90 {
			if ttValue >= beta && (ttBound&boundLower) != 0 {
				if ttMove != MoveEmpty && !isCaptureOrPromotion(ttMove) {
					t.updateKiller(ttMove, height)
				}
				return ttValue
			}
			if ttValue <= alpha && (ttBound&boundUpper) != 0 {
				return ttValue
			}
		}
	}
	var options = &t.engine.Options

	// internal iterative reduction: without a TT move to seed ordering,
	// this node's move loop is searching mostly blind, so shrink depth
	// rather than spend a full-depth pass discovering that themselves.
	if options.IIR && !rootNode && skipMove == 0 {
		if pvNode && ttMove == MoveEmpty {
			depth -= 2
		}
		if !pvNode && depth >= 6 && ttMove == MoveEmpty {
			depth -= 2
		}
		if depth <= 0 {
			return t.quiescence(alpha, beta, height)
		}
	}

	var staticEval int
	if ttHit && ttEval != valueNone {
		staticEval = ttEval
	} else {
		staticEval = t.evaluator.EvaluateQuick(position)
	}
	staticEval += t.correctionFor(position)
	t.stack[height].staticEval = staticEval
	var improving = height < 2 || staticEval > t.stack[height-2].staticEval

	if height+2 <= maxHeight {
		t.stack[height+2].killer1 = MoveEmpty
		t.stack[height+2].killer2 = MoveEmpty
	}
	var child = &t.stack[height+1].position

	if !rootNode && skipMove == 0 {

		// razoring: the static eval is so far under alpha that only a
		// tactical shot could save this node, so drop straight to
		// quiescence and trust its verdict.
		if options.Razoring && !pvNode && !isCheck && depth <= 7 &&
			staticEval < alpha-488-289*depth*depth {
			var razorAlpha = alpha - 1
			var score = t.quiescence(razorAlpha, razorAlpha+1, height)
			if score <= razorAlpha {
				return score
			}
		}

		// reverse futility pruning
		if options.ReverseFutility && !pvNode && depth <= 8 && !isCheck {
			var score = staticEval - pawnValue*depth
			if score >= beta {
				return staticEval
			}
		}

		// null-move pruning
		if options.NullMovePruning && !pvNode && depth >= 2 && !isCheck &&
			position.LastMove != MoveEmpty &&
			(height <= 1 || t.stack[height-1].position.LastMove != MoveEmpty) &&
			beta < valueWin &&
			!(ttHit && ttValue < beta && (ttBound&boundUpper) != 0) &&
			!isLateEndgame(position, position.WhiteMove) &&
			staticEval >= beta {
			var reduction = 4 + depth/6 + Min(2, (staticEval-beta)/200)
			t.MakeMove(MoveEmpty, height)
			var score = -t.alphaBeta(-beta, -(beta - 1), depth-reduction, height+1, 0)
			t.UnmakeMove()
			if score >= beta {
				if score >= valueWin {
					score = beta
				}
				return score
			}
		}

		var probcutBeta = Min(valueWin-1, beta+150)
		if options.Probcut && !pvNode && depth >= 5 && !isCheck &&
			beta > valueLoss && beta < valueWin &&
			!(ttHit && ttDepth >= depth-4 && ttValue < probcutBeta && (ttBound&boundUpper) != 0) {

			var mi = moveIteratorQS{
				position: position,
				buffer:   t.stack[height].moveList[:],
			}
			mi.Init()

			for mi.Reset(); ; {
				var move = mi.Next()
				if move == MoveEmpty {
					break
				}
				if !seeGEZero(position, move) {
					continue
				}
				if !t.MakeMove(move, height) {
					continue
				}
				var score = -t.quiescence(-probcutBeta, -probcutBeta+1, height+1)
				if score >= probcutBeta {
					score = -t.alphaBeta(-probcutBeta, -probcutBeta+1, depth-4, height+1, 0)
				}
				t.UnmakeMove()
				if score >= probcutBeta {
					return score
				}
			}
		}

		// singular extension
		if options.SingularExt && depth >= 8 &&
			ttHit && ttMove != MoveEmpty &&
			(ttBound&boundLower) != 0 && ttDepth >= depth-3 &&
			ttValue > valueLoss && ttValue < valueWin {
			var singularBeta = Max(-valueInfinity, ttValue-depth)
			var score = t.alphaBeta(singularBeta-1, singularBeta, depth/2, height, ttMove)
			ttMoveIsSingular = score < singularBeta
		}
	}

	var historyContext = t.getHistoryContext(height)

	var mi = t.initMoveIterator(height, ttMove)
	var killer1 = t.stack[height].killer1
	var killer2 = t.stack[height].killer2

	var movesSearched = 0
	var hasLegalMove = false
	var quietsSeen = 0

	var quietsSearched = t.stack[height].quietsSearched[:0]
	var capturesSearched = t.stack[height].capturesSearched[:0]
	var bestMove Move

	var lmp = 5 + (depth-1)*depth
	if !improving {
		lmp /= 2
	}

	var best = -valueInfinity
	var oldAlpha = alpha

	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		if move == skipMove {
			continue
		}
		if rootNode && containsMove(t.rootExclude, move) {
			// already reported as an earlier, better-scoring MultiPV line
			continue
		}
		var isNoisy = isCaptureOrPromotion(move)
		if !isNoisy {
			quietsSeen++
		}

		if depth <= 8 && best > valueLoss && hasLegalMove && !isCheck && !rootNode {
			// late-move pruning
			if options.Lmp && !(isNoisy ||
				move == killer1 ||
				move == killer2) &&
				quietsSeen > lmp {
				continue
			}

			// futility pruning
			if options.Futility && !(isNoisy ||
				move == killer1 ||
				move == killer2) &&
				staticEval+100+pawnValue*depth <= alpha {
				continue
			}

			// SEE pruning
			if options.See {
				var seeMargin int
				if isNoisy {
					seeMargin = Max(depth, (staticEval+pawnValue-alpha)/pawnValue)
				} else {
					seeMargin = depth / 2
				}
				if !SeeGE(position, move, -seeMargin) {
					continue
				}
			}
		}

		if !t.MakeMove(move, height) {
			continue
		}
		hasLegalMove = true

		movesSearched++

		var extension, reduction int

		if options.CheckExt && child.IsCheck() && depth >= 3 {
			extension = 1
		}
		if move == ttMove && ttMoveIsSingular {
			extension = 1
		}

		if depth >= 3 && movesSearched > 1 &&
			!(isNoisy) {
			reduction = options.Lmr(depth, movesSearched)
			if move == killer1 || move == killer2 {
				reduction--
			}
			if !isCheck {
				var history = historyContext.ReadQuiet(position, move)
				reduction -= Max(-2, Min(2, history/5000))

				if !improving {
					reduction++
				}
			}
			if pvNode {
				reduction -= 2
			}
			if isCheck || child.IsCheck() {
				reduction--
			}
			reduction = Max(reduction, 0) + extension
			reduction = Max(0, Min(depth-2, reduction))
		}

		if isNoisy {
			capturesSearched = append(capturesSearched, move)
		} else {
			quietsSearched = append(quietsSearched, move)
		}

		var newDepth = depth - 1 + extension

		var score = alpha + 1
		// LMR
		if reduction > 0 {
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction, height+1, 0)
		}
		// PVS
		if score > alpha && beta != alpha+1 && movesSearched > 1 && newDepth > 0 {
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1, 0)
		}
		// full search
		if score > alpha {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, 0)
		}

		t.UnmakeMove()

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}

	if !hasLegalMove {
		if !isCheck && skipMove == 0 {
			return valueDraw
		}
		return lossIn(height)
	}

	if alpha > oldAlpha && bestMove != MoveEmpty {
		if isCaptureOrPromotion(bestMove) {
			historyContext.UpdateCapture(capturesSearched, bestMove, depth)
		} else {
			historyContext.UpdateQuiet(position, quietsSearched, bestMove, depth)
			t.updateKiller(bestMove, height)
			t.updateCounterMove(height, bestMove)
		}
	}

	if skipMove == 0 {
		ttBound = 0
		if best > oldAlpha {
			ttBound |= boundLower
		}
		if best < beta {
			ttBound |= boundUpper
		}
		if !(rootNode && ttBound == boundUpper) {
			t.engine.transTable.UpdateWithEval(position.Key, depth, valueToTT(best, height), ttBound, bestMove, staticEval, pvNode || ttPv)
		}

		// correction history learns the gap between the static eval and
		// what the search actually found for this pawn structure, but
		// only when the bound tells us the gap is real rather than an
		// artifact of alpha/beta cutting the search short.
		if !isCheck && best > valueLoss && best < valueWin &&
			(ttBound == boundExact ||
				(ttBound == boundLower && best > staticEval) ||
				(ttBound == boundUpper && best < staticEval)) {
			t.updateCorrection(position, depth, best-staticEval)
		}
	}

	return best
}

func (t *thread) quiescence(alpha, beta, height int) int {
	t.clearPV(height)
	var position = &t.stack[height].position
	if isDraw(position) {
		return valueDraw
	}
	if height >= maxHeight {
		return t.evaluator.EvaluateQuick(position)
	}
	if t.isRepeat(height) {
		return valueDraw
	}

	var _, ttValue, ttBound, _, ttEval, _, ttHit = t.engine.transTable.ReadWithEval(position.Key)
	if ttHit {
		ttValue = valueFromTT(ttValue, height, position.Rule50)
		if ttBound == boundExact ||
			ttBound == boundLower && ttValue >= beta ||
			ttBound == boundUpper && ttValue <= alpha {
			return ttValue
		}
	}

	var isCheck = position.IsCheck()
	var best = -valueInfinity
	if !isCheck {
		var eval int
		if ttHit && ttEval != valueNone {
			eval = ttEval
		} else {
			eval = t.evaluator.EvaluateQuick(position)
		}
		eval += t.correctionFor(position)
		best = Max(best, eval)
		if eval > alpha {
			alpha = eval
			if alpha >= beta {
				t.engine.transTable.UpdateWithEval(position.Key, 0, valueToTT(alpha, height), boundLower, MoveEmpty, eval, false)
				return alpha
			}
		}
	}
	var mi = moveIteratorQS{
		position: position,
		buffer:   t.stack[height].moveList[:],
	}
	mi.Init()
	var hasLegalMove = false
	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		if !isCheck && !seeGEZero(position, move) {
			continue
		}
		if !t.MakeMove(move, height) {
			continue
		}
		hasLegalMove = true
		var score = -t.quiescence(-beta, -alpha, height+1)
		t.UnmakeMove()
		best = Max(best, score)
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}
	if isCheck && !hasLegalMove {
		return lossIn(height)
	}
	return best
}

func (t *thread) incNodes() {
	t.nodes++
	if t.nodes&255 == 0 {
		//fixed nodes search only in single threaded mode
		if t.engine.Threads == 1 {
			t.engine.timeManager.OnNodesChanged(int(t.engine.mainLine.nodes + t.nodes))
		}
		if t.engine.timeManager.IsDone() {
			panic(errSearchTimeout)
		}
	}
}

func isDraw(p *Position) bool {
	if p.Rule50 > 100 {
		return true
	}

	if (p.Pawns|p.Rooks|p.Queens) == 0 &&
		!MoreThanOne(p.Knights|p.Bishops) {
		return true
	}

	return false
}

func (t *thread) isRepeat(height int) bool {
	var p = &t.stack[height].position

	if p.Rule50 == 0 || p.LastMove == MoveEmpty {
		return false
	}
	for i := height - 1; i >= 0; i-- {
		var temp = &t.stack[i].position
		if temp.Key == p.Key {
			return true
		}
		if temp.Rule50 == 0 || temp.LastMove == MoveEmpty {
			return false
		}
	}

	return t.engine.historyKeys[p.Key] >= 2
}

func containsMove(moves []Move, move Move) bool {
	for _, m := range moves {
		if m == move {
			return true
		}
	}
	return false
}

func findMoveIndex(ml []Move, move Move) int {
	for i := range ml {
		if ml[i] == move {
			return i
		}
	}
	return -1
}

func moveToBegin(ml []Move, index int) {
	if index == 0 {
		return
	}
	var item = ml[index]
	for i := index; i > 0; i-- {
		ml[i] = ml[i-1]
	}
	ml[0] = item
}

func cloneMoves(ml []Move) []Move {
	var result = make([]Move, len(ml))
	copy(result, ml)
	return result
}

func (e *Engine) genRootMoves() []Move {
	var t = &e.threads[0]
	const height = 0
	var p = &t.stack[height].position
	_, _, _, transMove, _ := e.transTable.Read(p.Key)

	var mi = t.initMoveIterator(height, transMove)

	var result []Move
	var child = &t.stack[height+1].position
	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		if p.MakeMove(move, child) {
			result = append(result, move)
		}
	}
	return result
}

func (t *thread) updateKiller(move Move, height int) {
	if t.stack[height].killer1 != move {
		t.stack[height].killer2 = t.stack[height].killer1
		t.stack[height].killer1 = move
	}
}

// initMoveIterator wires the staged move picker for the node at height:
// TT move, killers, the counter-move reply to the opponent's last move,
// then history-scored quiets (moveiterator.go).
func (t *thread) initMoveIterator(height int, ttMove Move) moveIterator {
	var mi = moveIterator{
		position:    &t.stack[height].position,
		buffer:      t.stack[height].moveList[:],
		history:     t.getHistoryContext(height),
		transMove:   ttMove,
		killer1:     t.stack[height].killer1,
		killer2:     t.stack[height].killer2,
		counterMove: t.counterMove(height),
	}
	mi.Init()
	return mi
}

func (t *thread) clearPV(height int) {
	t.stack[height].pv.clear()
}

func (t *thread) assignPV(height int, move Move) {
	t.stack[height].pv.assign(move, &t.stack[height+1].pv)
}

func (t *thread) MakeMove(move Move, height int) bool {
	var pos = &t.stack[height].position
	var child = &t.stack[height+1].position
	if move == MoveEmpty {
		pos.MakeNullMove(child)
	} else {
		t.engine.transTable.Prefetch(pos.KeyAfter(move))
		if !pos.MakeMove(move, child) {
			return false
		}
	}
	t.evaluator.MakeMove(pos, move)
	t.incNodes()
	return true
}

func (t *thread) UnmakeMove() {
	t.evaluator.UnmakeMove()
}
