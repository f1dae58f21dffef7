// Package engine implements the search core: iterative-deepening
// alpha-beta over a lazy-SMP thread pool, backed by a shared
// transposition table and per-thread history state.
package engine

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	. "github.com/corvidchess/corvid/pkg/chess"
)

type Engine struct {
	Hash               int
	Threads            int
	MultiPV            int
	SkillLevel         int
	SyzygyProbeDepth   int
	ExperimentSettings bool
	ProgressMinNodes   int
	Options            Options
	evalBuilder        func() interface{}
	timeManager        TimeManager
	transTable         TransTable
	book               Book
	tablebase          Tablebase
	historyKeys        map[uint64]int
	threads            []thread
	progress           func(SearchInfo)
	mainLine           mainLine
	multiPV            []mainLine
	effectiveMultiPV   int
	tbHits             int64
	start              time.Time
}

type thread struct {
	engine        *Engine
	history       historyService
	evaluator     IUpdatableEvaluator
	nodes         int64
	rootDepth     int
	rootExclude   []Move
	multiPVScores []int
	stack         [stackSize]struct {
		position         Position
		moveList         [MaxMoves]OrderedMove
		quietsSearched   [MaxMoves]Move
		capturesSearched [MaxMoves]Move
		pv               pv
		staticEval       int
		killer1          Move
		killer2          Move
	}
}

type pv struct {
	items [stackSize]Move
	size  int
}

// mainLine is one line of a MultiPV search result: pvIndex 0 is the
// engine's actual best move, pvIndex 1..N-1 are the runner-up lines
// requested via MultiPV, tracked to whichever depth each has reached
// independently.
type mainLine struct {
	moves   []Move
	score   int
	depth   int
	nodes   int64
	pvIndex int
}

// TimeManager decides when the current iterative-deepening search
// should stop, per spec §5.
type TimeManager interface {
	IsDone() bool
	OnNodesChanged(nodes int)
	OnIterationComplete(line mainLine)
	Close()
}

// IEvaluator is the stateless evaluation contract (spec §4.2): a pure
// function of the position.
type IEvaluator interface {
	Evaluate(p *Position) int
}

// IUpdatableEvaluator additionally supports incremental accumulator
// maintenance across do/undo, the shape a NNUE-style network needs.
type IUpdatableEvaluator interface {
	Init(p *Position)
	MakeMove(p *Position, m Move)
	UnmakeMove()
	EvaluateQuick(p *Position) int
}

// TransTable is the shared, concurrently-accessed transposition table
// (spec §4.1). ReadWithEval/UpdateWithEval additionally carry the raw
// static eval and the PV flag a cluster-based entry stores alongside
// depth/score/bound/move.
type TransTable interface {
	Size() (megabytes int)
	IncDate()
	Clear()
	Read(key uint64) (depth, score, bound int, move Move, found bool)
	Update(key uint64, depth, score, bound int, move Move)
	ReadWithEval(key uint64) (depth, score, bound int, move Move, eval int, pv, found bool)
	UpdateWithEval(key uint64, depth, score, bound int, move Move, eval int, pv bool)
	Prefetch(key uint64)
	Hashfull() int
}

// Book is the external opening-book/experience collaborator (spec §7
// supplemented feature); a nil Book disables probing.
type Book interface {
	Probe(key uint64) (Move, bool)
}

// Tablebase is the external endgame-tablebase collaborator (spec §1
// Non-goals list it as out of scope for evaluation but the root move
// filter it enables is worth carrying); a nil Tablebase disables
// probing.
type Tablebase interface {
	ProbeWDL(p *Position) (wdl int, ok bool)
	RankRootMoves(p *Position, moves []Move) []Move
}

func NewEngine(evalBuilder func() interface{}) *Engine {
	return &Engine{
		Hash:               16,
		Threads:            1,
		MultiPV:            1,
		SkillLevel:         20,
		SyzygyProbeDepth:   1,
		ExperimentSettings: false,
		ProgressMinNodes:   200000,
		Options:            NewOptions(),
		evalBuilder:        evalBuilder,
	}
}

func (e *Engine) SetBook(b Book)             { e.book = b }
func (e *Engine) SetTablebase(tb Tablebase)  { e.tablebase = tb }

func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Hash)
	}
	if len(e.threads) != e.Threads {
		e.threads = make([]thread, e.Threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.engine = e
			t.evaluator = e.buildEvaluator()
		}
	}
}

func (e *Engine) Search(ctx context.Context, searchParams SearchParams) SearchInfo {
	e.start = time.Now()
	e.Prepare()
	var p = &searchParams.Positions[len(searchParams.Positions)-1]

	if e.book != nil {
		if bookMove, ok := e.book.Probe(p.Key); ok {
			return SearchInfo{
				Depth:    1,
				MainLine: []Move{bookMove},
				Score:    UciScore{},
				Time:     time.Since(e.start),
			}
		}
	}

	e.timeManager = newTimeManager(ctx, e.start, searchParams.Limits, p)
	defer e.timeManager.Close()
	e.transTable.IncDate()
	atomic.StoreInt64(&e.tbHits, 0)
	e.historyKeys = getHistoryKeys(searchParams.Positions)
	e.effectiveMultiPV = Max(1, e.MultiPV)
	if e.SkillLevel < 20 && e.effectiveMultiPV < 4 {
		// a weakened engine picks its move from a pool of genuinely
		// searched candidates, so it needs more than one PV line even
		// when the user only asked for the best move.
		e.effectiveMultiPV = 4
	}
	e.multiPV = nil
	for i := range e.threads {
		var t = &e.threads[i]
		t.nodes = 0
		t.rootExclude = t.rootExclude[:0]
		t.multiPVScores = t.multiPVScores[:0]
		t.stack[0].position = *p
	}
	e.progress = searchParams.Progress
	lazySmp(e)
	if e.SkillLevel < 20 && len(e.mainLine.moves) != 0 {
		var pool = e.multiPVRootMoves()
		if len(pool) == 0 {
			var ml = e.genRootMoves()
			if idx := findMoveIndex(ml, e.mainLine.moves[0]); idx >= 0 {
				moveToBegin(ml, idx)
			}
			pool = ml
		}
		if len(pool) != 0 {
			e.mainLine.moves[0] = e.applySkillLevel(pool, p.Key, len(searchParams.Positions)-1)
		}
	}
	return e.currentSearchResult()
}

// multiPVRootMoves ranks the searched MultiPV lines by score and
// returns their first moves, best first - the candidate pool
// applySkillLevel draws from instead of the raw, unsearched move
// ordering.
func (e *Engine) multiPVRootMoves() []Move {
	var lines = e.rankedMultiPV()
	var moves = make([]Move, 0, len(lines))
	for _, l := range lines {
		moves = append(moves, l.moves[0])
	}
	return moves
}

func (e *Engine) rankedMultiPV() []mainLine {
	var lines = make([]mainLine, 0, len(e.multiPV))
	for _, l := range e.multiPV {
		if len(l.moves) != 0 {
			lines = append(lines, l)
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].score > lines[j].score })
	return lines
}

func getHistoryKeys(positions []Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		var t = &e.threads[i]
		t.clearHistory()
	}
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.mainLine.nodes,
		Hashfull: e.transTable.Hashfull(),
		TbHits:   atomic.LoadInt64(&e.tbHits),
		Time:     time.Since(e.start),
		Lines:    e.searchLines(),
	}
}

// searchLines reports one SearchLine per searched MultiPV line, best
// score first. It's empty whenever effectiveMultiPV never rose above
// 1, so a plain single-PV search doesn't grow an "info multipv 1" line
// nobody asked for.
func (e *Engine) searchLines() []SearchLine {
	if e.effectiveMultiPV <= 1 {
		return nil
	}
	var ranked = e.rankedMultiPV()
	if len(ranked) <= 1 {
		return nil
	}
	var result = make([]SearchLine, len(ranked))
	for i, l := range ranked {
		result[i] = SearchLine{Index: i + 1, Score: newUciScore(l.score), MainLine: l.moves}
	}
	return result
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

// EvaluatorAdapter wraps a stateless IEvaluator so it satisfies
// IUpdatableEvaluator without maintaining any accumulator state - the
// fallback for evaluators that don't need incremental updates.
type EvaluatorAdapter struct {
	evaluator IEvaluator
}

func (e *EvaluatorAdapter) Init(p *Position)          {}
func (e *EvaluatorAdapter) MakeMove(p *Position, m Move) {}
func (e *EvaluatorAdapter) UnmakeMove()                {}

func (e *EvaluatorAdapter) EvaluateQuick(p *Position) int {
	return e.evaluator.Evaluate(p)
}

func (e *Engine) buildEvaluator() IUpdatableEvaluator {
	var evaluationService = e.evalBuilder()
	if ue, ok := evaluationService.(IUpdatableEvaluator); ok {
		return ue
	}
	if ev, ok := evaluationService.(IEvaluator); ok {
		return &EvaluatorAdapter{evaluator: ev}
	}
	panic(errors.New("engine: bad eval builder"))
}
