package engine

import (
	"math"
	"math/rand"

	. "github.com/corvidchess/corvid/pkg/chess"
	"github.com/corvidchess/corvid/pkg/eval"
)

// applySkillLevel picks the move actually played when SkillLevel is
// below full strength from rootMoves, a candidate pool ordered best
// first: Search passes the first moves of the searched MultiPV lines
// ranked by score, or, when no such line was recorded, the ordered
// root move list with the search's best move moved to the front.
// SkillLevel maps to a target win probability, and that
// probability's equivalent centipawn margin (via eval's WDL model)
// sets how sharply the pool favors the top move: a confident level
// concentrates almost all the weight on rootMoves[0], a low one
// spreads it out. The PRNG is seeded from the position key and the
// level itself, so replaying the same position at the same level
// always makes the same choice.
func (e *Engine) applySkillLevel(rootMoves []Move, key uint64, ply int) Move {
	if e.SkillLevel >= 20 || len(rootMoves) <= 1 {
		return rootMoves[0]
	}

	var poolSize = 1 + (20-e.SkillLevel)/2
	if poolSize > len(rootMoves) {
		poolSize = len(rootMoves)
	}

	var winProb = 0.5 + 0.5*float64(e.SkillLevel)/20
	var margin = eval.CentipawnsForWinProb(winProb, ply)
	var sharpness = 1 + float64(margin)/50

	var rnd = rand.New(rand.NewSource(int64(key) ^ int64(e.SkillLevel)<<32))

	var weights = make([]float64, poolSize)
	var totalWeight float64
	for i := range weights {
		weights[i] = math.Pow(float64(poolSize-i), sharpness)
		totalWeight += weights[i]
	}

	var pick = rnd.Float64() * totalWeight
	for i, w := range weights {
		if pick < w {
			return rootMoves[i]
		}
		pick -= w
	}
	return rootMoves[0]
}
