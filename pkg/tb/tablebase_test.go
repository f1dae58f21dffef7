package tb

import (
	"testing"

	. "github.com/corvidchess/corvid/pkg/chess"
)

func mustPosition(t *testing.T, fen string) Position {
	t.Helper()
	var p, err = NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProbeWDLWithoutPathIsUnresolved(t *testing.T) {
	var probe = New()
	probe.Resolver = func(p *Position) (WDL, bool) { return Win, true }
	var p = mustPosition(t, InitialPositionFen)
	if _, ok := probe.ProbeWDL(&p); ok {
		t.Error("ProbeWDL should report unresolved with an empty Path")
	}
}

func TestProbeWDLWithoutResolverIsUnresolved(t *testing.T) {
	var probe = New()
	probe.Path = "/tmp/syzygy"
	var p = mustPosition(t, InitialPositionFen)
	if _, ok := probe.ProbeWDL(&p); ok {
		t.Error("ProbeWDL should report unresolved with a nil Resolver")
	}
}

func TestProbeWDLTooManyPieces(t *testing.T) {
	var probe = New()
	probe.Path = "/tmp/syzygy"
	probe.Resolver = func(p *Position) (WDL, bool) { return Win, true }
	var p = mustPosition(t, InitialPositionFen)
	if _, ok := probe.ProbeWDL(&p); ok {
		t.Error("ProbeWDL should refuse to probe a 32-piece position")
	}
}

func TestProbeWDLResolves(t *testing.T) {
	var probe = New()
	probe.Path = "/tmp/syzygy"
	probe.Resolver = func(p *Position) (WDL, bool) { return Win, true }
	var p = mustPosition(t, "8/8/8/4k3/8/8/4P3/4K3 w - - 0 1")
	var wdl, ok = probe.ProbeWDL(&p)
	if !ok || WDL(wdl) != Win {
		t.Errorf("ProbeWDL = (%d, %v), want (%d, true)", wdl, ok, Win)
	}
}

func TestProbeWDLIgnoresRule50WhenDisabled(t *testing.T) {
	var probe = New()
	probe.Path = "/tmp/syzygy"
	probe.Rule50 = false
	probe.Resolver = func(p *Position) (WDL, bool) { return CursedWin, true }
	var p = mustPosition(t, "8/8/8/4k3/8/8/4P3/4K3 w - - 0 1")
	var wdl, ok = probe.ProbeWDL(&p)
	if !ok || WDL(wdl) != Draw {
		t.Errorf("with Rule50=false, CursedWin should demote to Draw, got %d", wdl)
	}
}

func TestRankRootMovesPromotesWinningMoves(t *testing.T) {
	var probe = New()
	probe.Path = "/tmp/syzygy"
	// every white move leaves black to move, which the resolver reports
	// as lost, so whichever move ranks first must lead to a loss for black.
	probe.Resolver = func(p *Position) (WDL, bool) {
		if p.WhiteMove {
			return Draw, true
		}
		return Loss, true
	}
	var p = mustPosition(t, "8/8/8/4k3/8/8/3KP3/8 w - - 0 1")
	var moves = p.GenerateLegalMoves()
	if len(moves) == 0 {
		t.Fatal("expected legal moves")
	}
	var ranked = probe.RankRootMoves(&p, moves)
	if len(ranked) != len(moves) {
		t.Fatalf("RankRootMoves changed move count: %d -> %d", len(moves), len(ranked))
	}
	var child Position
	if !p.MakeMove(ranked[0], &child) {
		t.Fatal("top ranked move should be legal")
	}
	if result, _ := probe.Resolver(&child); result != Loss {
		t.Errorf("top ranked move should lead to a resolved loss for the opponent, got %v", result)
	}
}
