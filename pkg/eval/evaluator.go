// Package eval implements the search's evaluation function: a thin
// blend layer over a pluggable eval/network.Network, matching the
// shape engine.IUpdatableEvaluator expects.
package eval

import (
	"strings"

	. "github.com/corvidchess/corvid/pkg/chess"
	"github.com/corvidchess/corvid/pkg/eval/network"
)

// Style biases the blend toward sharper or quieter positions. It's a
// UCI-exposed knob (Style option), not something the search picks on
// its own.
type Style int

const (
	StyleDefault Style = iota
	StyleAggressive
	StyleDefensive
	StylePositional
)

var styleNames = [...]string{"Default", "Aggressive", "Defensive", "Positional"}

func (s Style) String() string {
	if int(s) < 0 || int(s) >= len(styleNames) {
		return styleNames[StyleDefault]
	}
	return styleNames[s]
}

func ParseStyle(s string) Style {
	for i, name := range styleNames {
		if strings.EqualFold(name, s) {
			return Style(i)
		}
	}
	return StyleDefault
}

const (
	psqtWeight       = 125
	positionalWeight = 131
	nnueDivisor      = 128
	smallNetGate     = 962
	bigNetFallback   = 236
	evalClamp        = 20000
	fullPhase        = 24
	optimismScale    = 468
	nnueComplexScale = 18000
	materialScale    = 77777
	pawnMaterial     = 535
)

// nonPawnValue prices the pieces the material term counts, independent
// of network.pieceValue - that table carries the network's own
// tapered mg/eg weights, this one only feeds the nnue/optimism blend
// ratio.
var nonPawnValue = [PieceNB]int{
	Knight: 320,
	Bishop: 330,
	Rook:   500,
	Queen:  900,
}

// Config holds the UCI-tunable knobs every per-thread Evaluator reads
// from, so a "setoption" takes effect on the next search without
// forcing Engine.Prepare to rebuild the thread pool. Materialistic and
// Positional are percentages (100 = unscaled) matching the
// MaterialisticEvaluationStrategy/PositionalEvaluationStrategy
// options; Style is the Style option itself.
type Config struct {
	Style         Style
	Dynamic       bool
	Materialistic int
	Positional    int
}

func NewConfig() *Config {
	return &Config{Style: StyleDefault, Materialistic: 100, Positional: 100}
}

// Evaluator composes a network.Network and its per-thread accumulator
// into engine.IUpdatableEvaluator: Init/MakeMove/UnmakeMove track the
// accumulator's do/undo stack, EvaluateQuick runs the blend.
type Evaluator struct {
	cfg *Config
	net network.Network
	acc network.Accumulator
}

func New(net network.Network, cfg *Config) *Evaluator {
	return &Evaluator{net: net, cfg: cfg}
}

func (e *Evaluator) Init(p *Position) {
	e.acc.Reset()
}

func (e *Evaluator) MakeMove(p *Position, m Move) {
	e.acc.Push()
}

func (e *Evaluator) UnmakeMove() {
	e.acc.Pop()
}

// Evaluate satisfies IEvaluator for callers that don't need the
// incremental accumulator (EvaluatorAdapter's fallback path).
func (e *Evaluator) Evaluate(p *Position) int {
	return e.EvaluateQuick(p)
}

func (e *Evaluator) EvaluateQuick(p *Position) int {
	var netPsqt, netPositional = e.net.Evaluate(p, &e.acc)
	var psqt = int(netPsqt) * e.cfg.Materialistic / 100
	var positional = int(netPositional) * e.cfg.Positional / 100

	var phase = gamePhase(p)

	var nnue int
	if abs(psqt) > smallNetGate {
		// small-net gate: material alone already decides positions
		// this lopsided, so skip paying for the positional term.
		nnue = psqt
	} else {
		// posWeight carries up to fullPhase extra with every piece
		// still on the board, leaning on the positional term while
		// there's material left to maneuver and easing off it as the
		// position simplifies toward a phase-24 endgame.
		var posWeight = positionalWeight + (fullPhase - phase)
		nnue = (psqt*psqtWeight + positional*posWeight) / nnueDivisor
		if abs(nnue) < bigNetFallback {
			// big-net fallback: close positions trust the full,
			// unweighted sum instead of the blend ratio above.
			nnue = psqt + positional
		}
	}

	// optimism stands in for the confidence a purely material read of
	// the position would have; complexity (how far psqt and positional
	// disagree) pulls optimism up and nnue down, the same tension a
	// sharp, unclear position creates for any single number.
	var optimism = psqt
	var complexity = abs(psqt - positional)
	optimism += optimism * complexity / optimismScale
	nnue -= nnue * complexity / nnueComplexScale

	var material = pawnMaterial*pawnCount(p) + nonPawnMaterial(p)
	var mixed = (nnue*(materialScale+material) + optimism*(7777+material)) / materialScale

	var style = e.cfg.Style
	if e.cfg.Dynamic {
		style = dynamicStyle(positional)
	}
	mixed += styleBonus(p, style, positional)
	mixed = dampShuffling(mixed, p.Rule50)

	if !p.WhiteMove {
		mixed = -mixed
	}

	return clamp(mixed, -evalClamp, evalClamp)
}

// gamePhase reads 0 with every minor, rook and queen still on the
// board and rises toward fullPhase as they're traded off, so it's an
// "how far into the endgame are we" counter rather than a material
// total.
func gamePhase(p *Position) int {
	var minors = PopCount(p.Knights | p.Bishops)
	var rooks = PopCount(p.Rooks)
	var queens = PopCount(p.Queens)
	var phase = fullPhase - minors - 2*rooks - 4*queens
	return clamp(phase, 0, fullPhase)
}

func pawnCount(p *Position) int {
	return PopCount(p.Pawns)
}

func nonPawnMaterial(p *Position) int {
	return nonPawnValue[Knight]*PopCount(p.Knights) +
		nonPawnValue[Bishop]*PopCount(p.Bishops) +
		nonPawnValue[Rook]*PopCount(p.Rooks) +
		nonPawnValue[Queen]*PopCount(p.Queens)
}

// dynamicStyle switches between aggressive and defensive automatically:
// a sharp, unbalanced position (large positional term) is worth
// pressing, a quiet one calls for caution instead of manufacturing
// complications.
func dynamicStyle(positional int) Style {
	if abs(positional) > 40 {
		return StyleAggressive
	}
	return StyleDefensive
}

// styleBonus adds a small, hand-picked score for the position traits
// each style cares about, computed once from White's point of view
// (own/enemy below always mean White/Black) and left for the caller's
// final side-to-move negation to orient.
func styleBonus(p *Position, style Style, positional int) int {
	switch style {
	case StyleAggressive:
		return aggressiveBonus(p)
	case StyleDefensive:
		return 40*castlingBonus(p, true) - 40*castlingBonus(p, false) -
			15*(isolatedPawns(p, true)-isolatedPawns(p, false)) -
			aggressiveBonus(p)
	case StylePositional:
		return 10*(bishopCount(p, true)-bishopCount(p, false)) +
			15*(rooksOnSeventh(p, true)-rooksOnSeventh(p, false))
	default:
		return 10*(developedMinors(p, true)-developedMinors(p, false)) +
			5*(centralPawns(p, true)-centralPawns(p, false))
	}
}

func aggressiveBonus(p *Position) int {
	return 20*(knightsNearKing(p, true)-knightsNearKing(p, false)) +
		10*(advancedPawns(p, true)-advancedPawns(p, false))
}

func castlingBonus(p *Position, white bool) int {
	var mask = BlackKingSide | BlackQueenSide
	if white {
		mask = WhiteKingSide | WhiteQueenSide
	}
	if p.CastleRights&mask != 0 {
		return 1
	}
	return 0
}

func knightsNearKing(p *Position, white bool) int {
	var ownKnights = p.Knights & p.PiecesByColor(white)
	var enemyKing = FirstOne(p.Kings & p.PiecesByColor(!white))
	var count = 0
	for x := ownKnights; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		if FileDistance(sq, enemyKing) <= 2 && RankDistance(sq, enemyKing) <= 2 {
			count++
		}
	}
	return count
}

func advancedPawns(p *Position, white bool) int {
	var ownPawns = p.Pawns & p.PiecesByColor(white)
	var count = 0
	for x := ownPawns; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		var rank = Rank(sq)
		if white && rank >= Rank5 || !white && rank <= Rank4 {
			count++
		}
	}
	return count
}

func isolatedPawns(p *Position, white bool) int {
	var ownPawns = p.Pawns & p.PiecesByColor(white)
	var count = 0
	for x := ownPawns; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		var file = File(sq)
		var neighborFiles uint64
		if file > 0 {
			neighborFiles |= fileMask[file-1]
		}
		if file < 7 {
			neighborFiles |= fileMask[file+1]
		}
		if ownPawns&neighborFiles == 0 {
			count++
		}
	}
	return count
}

func bishopCount(p *Position, white bool) int {
	return PopCount(p.Bishops & p.PiecesByColor(white))
}

func rooksOnSeventh(p *Position, white bool) int {
	var ownRooks = p.Rooks & p.PiecesByColor(white)
	var relRank = Rank7
	if !white {
		relRank = Rank2
	}
	var count = 0
	for x := ownRooks; x != 0; x &= x - 1 {
		if Rank(FirstOne(x)) == relRank {
			count++
		}
	}
	return count
}

func developedMinors(p *Position, white bool) int {
	var minors = (p.Knights | p.Bishops) & p.PiecesByColor(white)
	var homeSquares = whiteMinorHome
	if !white {
		homeSquares = blackMinorHome
	}
	var count = 0
	for x := minors; x != 0; x &= x - 1 {
		if homeSquares&SquareMask[FirstOne(x)] == 0 {
			count++
		}
	}
	return count
}

func centralPawns(p *Position, white bool) int {
	var ownPawns = p.Pawns & p.PiecesByColor(white)
	return PopCount(ownPawns & (FileDMask | FileEMask))
}

var fileMask = [8]uint64{FileAMask, FileBMask, FileCMask, FileDMask, FileEMask, FileFMask, FileGMask, FileHMask}

var (
	whiteMinorHome = SquareMask[SquareB1] | SquareMask[SquareC1] | SquareMask[SquareF1] | SquareMask[SquareG1]
	blackMinorHome = SquareMask[SquareB8] | SquareMask[SquareC8] | SquareMask[SquareF8] | SquareMask[SquareG8]
)

// dampShuffling shrinks the score as the 50-move counter climbs, so a
// position that's been shuffling toward a draw claim stops reporting
// a confident advantage.
func dampShuffling(score, rule50 int) int {
	return score - score*rule50/212
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
