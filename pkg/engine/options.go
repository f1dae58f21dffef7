package engine

import (
	"math"

	. "github.com/corvidchess/corvid/pkg/chess"
)

// Options gathers the search's feature toggles and the late-move
// reduction table. Most pruning and extension techniques in alphaBeta
// check one of these before firing, so turning one off is enough to
// isolate its effect during tuning; late-move reductions, mate-distance
// pruning and the TT cutoff have no toggle.
type Options struct {
	AspirationWindows bool
	ReverseFutility   bool
	NullMovePruning   bool
	Probcut           bool
	SingularExt       bool
	CheckExt          bool
	Lmp               bool
	Futility          bool
	See               bool
	Razoring          bool
	IIR               bool
	reductions        [64][64]int
}

func NewOptions() Options {
	var o = Options{
		AspirationWindows: true,
		ReverseFutility:   true,
		NullMovePruning:   true,
		Probcut:           true,
		SingularExt:       true,
		CheckExt:          true,
		Lmp:               true,
		Futility:          true,
		See:               true,
		Razoring:          true,
		IIR:               true,
	}
	o.InitLmr(lmrMult)
	return o
}

func (o *Options) Lmr(d, m int) int {
	return o.reductions[Min(d, 63)][Min(m, 63)]
}

func (o *Options) InitLmr(f func(d, m float64) float64) {
	initLmr(&o.reductions, f)
}

func initLmr(reductions *[64][64]int, f func(d, m float64) float64) {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			reductions[d][m] = int(f(float64(d), float64(m)))
		}
	}
}

func lmrMult(d, m float64) float64 {
	return lirp(math.Log(d)*math.Log(m), math.Log(5)*math.Log(22), math.Log(63)*math.Log(63), 3, 8)
}

func lirp(x, x1, x2, y1, y2 float64) float64 {
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}
