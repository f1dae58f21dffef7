// Package tb implements the engine's endgame-tablebase collaborator.
// Parsing the Syzygy WDL/DTZ binary formats is out of scope here (the
// same class of exclusion as the search's protocol grammar minutiae):
// what this package provides is the wiring — a Probe that the engine
// can call unconditionally, a configurable path/depth/50-move policy
// bound to UCI options, and a root-move ranking hook — with an
// optional Resolver a real table reader would plug into to make Probe
// actually answer from disk.
package tb

import (
	. "github.com/corvidchess/corvid/pkg/chess"
)

// WDL mirrors the Syzygy probe result: win, cursed win (win but
// unprovable inside the 50-move rule), draw, blessed loss, loss.
type WDL int

const (
	Loss WDL = iota - 2
	BlessedLoss
	Draw
	CursedWin
	Win
)

// Probe is the engine.Tablebase implementation. Path and Rule50 are
// bound directly to the corresponding UCI options (SyzygyPath,
// Syzygy50MoveRule) - SyzygyProbeDepth lives on engine.Engine itself,
// since it gates whether the search calls ProbeWDL at all rather than
// anything Probe needs to know about. Resolver, when set, is what
// actually answers ProbeWDL - without one, Probe reports every
// position as unresolved, which is a legitimate answer for "no
// tablebase files configured" and keeps the engine falling back to
// its own search.
type Probe struct {
	Path     string
	Rule50   bool
	Resolver func(p *Position) (WDL, bool)
}

func New() *Probe {
	return &Probe{Rule50: true}
}

// ProbeWDL implements engine.Tablebase.
func (tb *Probe) ProbeWDL(p *Position) (wdl int, ok bool) {
	if tb.Resolver == nil || tb.Path == "" {
		return 0, false
	}
	if PopCount(p.AllPieces()) > 6 {
		return 0, false
	}
	result, found := tb.Resolver(p)
	if !found {
		return 0, false
	}
	if !tb.Rule50 && (result == CursedWin || result == BlessedLoss) {
		result = Draw
	}
	return int(result), true
}

// RankRootMoves implements engine.Tablebase. Without a Resolver this
// is a no-op: the move order the search already produced stands.
func (tb *Probe) RankRootMoves(p *Position, moves []Move) []Move {
	if tb.Resolver == nil || tb.Path == "" || PopCount(p.AllPieces()) > 6 {
		return moves
	}
	var ranked = make([]Move, 0, len(moves))
	var rest = make([]Move, 0, len(moves))
	for _, m := range moves {
		var child Position
		if !p.MakeMove(m, &child) {
			rest = append(rest, m)
			continue
		}
		if result, found := tb.Resolver(&child); found && result <= Loss {
			// a losing WDL for the side to move after our move is a
			// winning move for us: keep it at the front.
			ranked = append(ranked, m)
			continue
		}
		rest = append(rest, m)
	}
	return append(ranked, rest...)
}
