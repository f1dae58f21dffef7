package engine

import (
	"errors"

	"golang.org/x/sync/errgroup"

	. "github.com/corvidchess/corvid/pkg/chess"
)

var errSearchTimeout = errors.New("search timeout")

type searchTask struct {
	depth         int
	startingMove  Move //for move ordering
	startingScore int   //for aspirationWindow
}

// lazySmp runs the root move list through e.Threads worker goroutines,
// each iteratively deepening on its own schedule (lazy SMP: no shared
// split points, threads just race the same tree at loosely staggered
// depths and the coordinator keeps whichever result reached furthest).
func lazySmp(e *Engine) {
	var ml = e.genRootMoves()
	if e.tablebase != nil {
		ml = e.tablebase.RankRootMoves(&e.threads[0].stack[0].position, ml)
	}
	if len(ml) != 0 {
		e.mainLine = mainLine{
			depth: 0,
			score: 0,
			nodes: 0,
			moves: []Move{ml[0]},
		}
	}
	if len(ml) <= 1 {
		e.multiPV = []mainLine{e.mainLine}
		return
	}

	var tasks = make(chan searchTask)
	var taskResults = make(chan mainLine)

	var g = &errgroup.Group{}

	for i := 0; i < e.Threads; i++ {
		var t = &e.threads[i]
		var threadMoves = cloneMoves(ml)
		g.Go(func() error {
			searchDepth(t, threadMoves, tasks, taskResults)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(taskResults)
	}()

	iterativeDeepening(e, tasks, taskResults)
}

func iterativeDeepening(
	e *Engine,
	tasks chan<- searchTask,
	taskResults <-chan mainLine,
) {
	var searchCountByDepth [stackSize]int
	e.multiPV = make([]mainLine, e.effectiveMultiPV)
	for {
		var task = searchTask{
			depth:         e.mainLine.depth + 1, // next iteration
			startingMove:  e.mainLine.moves[0],
			startingScore: e.mainLine.score,
		}
		if task.depth < len(searchCountByDepth) &&
			searchCountByDepth[task.depth] >= (e.Threads+1)/2 {
			// some threads search deeper
			task.depth = e.mainLine.depth + 2
		}

		if task.depth > maxHeight ||
			e.timeManager.IsDone() {
			// no new iterations
			if tasks != nil {
				close(tasks)
				tasks = nil
			}
		}

		select {
		case taskResult, ok := <-taskResults:
			if !ok {
				// all searches finished
				return
			}
			e.mainLine.nodes += taskResult.nodes
			if taskResult.pvIndex == 0 && taskResult.depth > e.mainLine.depth {
				e.mainLine.depth = taskResult.depth
				e.mainLine.score = taskResult.score
				e.mainLine.moves = taskResult.moves
				if len(e.multiPV) > 0 {
					e.multiPV[0] = e.mainLine
				}
				e.timeManager.OnIterationComplete(e.mainLine)
				if e.progress != nil && e.mainLine.nodes >= int64(e.ProgressMinNodes) {
					e.progress(e.currentSearchResult())
				}
			}
			if taskResult.pvIndex > 0 && taskResult.pvIndex < len(e.multiPV) &&
				taskResult.depth > e.multiPV[taskResult.pvIndex].depth {
				e.multiPV[taskResult.pvIndex] = taskResult
			}
		case tasks <- task:
			searchCountByDepth[task.depth]++
		}
	}
}

func searchDepth(
	t *thread,
	ml []Move,
	tasks <-chan searchTask,
	taskResults chan<- mainLine,
) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	const height = 0
	for h := 0; h <= 2; h++ {
		t.stack[h].killer1 = MoveEmpty
		t.stack[h].killer2 = MoveEmpty
	}
	t.rootExclude = t.rootExclude[:0]
	t.multiPVScores = t.multiPVScores[:0]

	for task := range tasks {
		if task.startingMove != MoveEmpty {
			var index = findMoveIndex(ml, task.startingMove)
			if index >= 0 {
				moveToBegin(ml, index)
			}
		}

		var multiPV = t.engine.effectiveMultiPV
		if multiPV > len(ml) {
			multiPV = len(ml)
		}
		if multiPV < 1 {
			multiPV = 1
		}

		t.rootExclude = t.rootExclude[:0]
		for pvIdx := 0; pvIdx < multiPV; pvIdx++ {
			var startingScore = task.startingScore
			if pvIdx > 0 {
				startingScore = 0
			}
			if pvIdx < len(t.multiPVScores) {
				startingScore = t.multiPVScores[pvIdx]
			}
			var score = aspirationWindow(t, ml, task.depth, startingScore)
			var moves = t.stack[height].pv.toSlice()
			if pvIdx < len(t.multiPVScores) {
				t.multiPVScores[pvIdx] = score
			} else {
				t.multiPVScores = append(t.multiPVScores, score)
			}
			taskResults <- mainLine{
				depth:   task.depth,
				score:   score,
				moves:   moves,
				nodes:   t.nodes,
				pvIndex: pvIdx,
			}
			t.nodes = 0
			if len(moves) != 0 {
				t.rootExclude = append(t.rootExclude, moves[0])
			}
		}
		t.rootExclude = t.rootExclude[:0]
	}
}
