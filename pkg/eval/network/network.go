// Package network defines the pluggable evaluation collaborator that
// eval.Evaluator composes: a Network turns a position into a
// (material+placement, everything-else) pair of centipawn subscores,
// caching whatever per-ply state it needs in an Accumulator so the
// search's MakeMove/UnmakeMove churn doesn't force full recomputation
// at every node.
package network

import (
	. "github.com/corvidchess/corvid/pkg/chess"
)

const maxPly = 128

// Accumulator holds one Network's cached subscores per search ply.
// Push/Pop track the do/undo stack; a Network is free to leave a ply's
// slot unpopulated and recompute lazily on the next Evaluate.
type Accumulator struct {
	psqt       [maxPly]int32
	positional [maxPly]int32
	valid      [maxPly]bool
	ply        int
}

func (a *Accumulator) Reset() {
	a.ply = 0
	for i := range a.valid {
		a.valid[i] = false
	}
}

func (a *Accumulator) Push() {
	a.ply++
	if a.ply < maxPly {
		a.valid[a.ply] = false
	}
}

func (a *Accumulator) Pop() {
	if a.ply > 0 {
		a.ply--
	}
}

func (a *Accumulator) cached() (psqt, positional int32, ok bool) {
	if a.ply >= maxPly {
		return 0, 0, false
	}
	return a.psqt[a.ply], a.positional[a.ply], a.valid[a.ply]
}

func (a *Accumulator) store(psqt, positional int32) {
	if a.ply >= maxPly {
		return
	}
	a.psqt[a.ply] = psqt
	a.positional[a.ply] = positional
	a.valid[a.ply] = true
}

// Network is the external evaluation collaborator. psqt covers
// material and piece placement (tapered by game phase); positional
// covers everything a network layers on top of that (pawn structure,
// king safety, mobility). Both are centipawns from white's point of
// view.
type Network interface {
	Evaluate(pos *Position, acc *Accumulator) (psqt, positional int32)
}
