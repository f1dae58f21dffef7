package eval

import (
	"testing"

	. "github.com/corvidchess/corvid/pkg/chess"
	"github.com/corvidchess/corvid/pkg/eval/network"
)

// fakeNetwork returns fixed subscores regardless of position, so tests
// exercise the blend logic in isolation from any real weight table.
type fakeNetwork struct {
	psqt, positional int32
}

func (n *fakeNetwork) Evaluate(p *Position, acc *network.Accumulator) (int32, int32) {
	return n.psqt, n.positional
}

func mustPosition(t *testing.T, fen string) Position {
	t.Helper()
	var p, err = NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEvaluateQuickSideToMove(t *testing.T) {
	var cfg = NewConfig()
	var e = New(&fakeNetwork{psqt: 200, positional: 10}, cfg)

	var white = mustPosition(t, InitialPositionFen)
	var whiteScore = e.EvaluateQuick(&white)

	var black = white
	black.WhiteMove = false
	var blackScore = e.EvaluateQuick(&black)

	if whiteScore != -blackScore {
		t.Errorf("EvaluateQuick should flip sign with side to move: white=%d black=%d", whiteScore, blackScore)
	}
}

func TestEvaluateQuickClamped(t *testing.T) {
	var cfg = NewConfig()
	var e = New(&fakeNetwork{psqt: 1 << 20, positional: 1 << 20}, cfg)
	var p = mustPosition(t, InitialPositionFen)
	var score = e.EvaluateQuick(&p)
	if score != evalClamp {
		t.Errorf("EvaluateQuick(%d) = %d, want clamp %d", 1<<20, score, evalClamp)
	}
}

func TestEvaluateQuickMaterialisticStrategyScales(t *testing.T) {
	var p = mustPosition(t, InitialPositionFen)

	var full = New(&fakeNetwork{psqt: 2000, positional: 0}, NewConfig())
	var fullScore = full.EvaluateQuick(&p)

	var halfCfg = NewConfig()
	halfCfg.Materialistic = 50
	var half = New(&fakeNetwork{psqt: 2000, positional: 0}, halfCfg)
	var halfScore = half.EvaluateQuick(&p)

	if halfScore >= fullScore {
		t.Errorf("halving Materialistic should lower the score: full=%d half=%d", fullScore, halfScore)
	}
}

func TestGamePhaseRisesAsMaterialComesOff(t *testing.T) {
	var start = mustPosition(t, InitialPositionFen)
	if got := gamePhase(&start); got != 0 {
		t.Errorf("gamePhase(start) = %d, want 0 (full material)", got)
	}

	var bare = mustPosition(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if got := gamePhase(&bare); got != fullPhase {
		t.Errorf("gamePhase(bare kings) = %d, want %d", got, fullPhase)
	}
}

func TestStyleBonusRooksOnSeventhFavorsPositional(t *testing.T) {
	var p = mustPosition(t, "4k3/RR6/8/8/8/8/8/4K3 w - - 0 1")
	var withRooks = styleBonus(&p, StylePositional, 0)

	var q = mustPosition(t, "4k3/8/8/8/8/8/RR6/4K3 w - - 0 1")
	var withoutRooks = styleBonus(&q, StylePositional, 0)

	if withRooks <= withoutRooks {
		t.Errorf("rooks on the 7th should score higher under StylePositional: with=%d without=%d", withRooks, withoutRooks)
	}
}

func TestStyleBonusIsolatedPawnsPenalizeDefensive(t *testing.T) {
	var isolated = mustPosition(t, "4k3/8/8/8/8/8/P1P1P3/4K3 w - - 0 1")
	var connected = mustPosition(t, "4k3/8/8/8/8/8/PPP5/4K3 w - - 0 1")

	if got := isolatedPawns(&isolated, true); got != 3 {
		t.Errorf("isolatedPawns = %d, want 3 for pawns on a, c and e with empty neighbor files", got)
	}
	if got := isolatedPawns(&connected, true); got != 0 {
		t.Errorf("isolatedPawns = %d, want 0 for three adjacent pawns", got)
	}
}

func TestDynamicStyleSwitchesOnPositionalMagnitude(t *testing.T) {
	if dynamicStyle(0) != StyleDefensive {
		t.Error("dynamicStyle(0) should stay defensive")
	}
	if dynamicStyle(41) != StyleAggressive {
		t.Error("dynamicStyle(41) should switch to aggressive")
	}
	if dynamicStyle(-41) != StyleAggressive {
		t.Error("dynamicStyle(-41) should switch to aggressive regardless of sign")
	}
}

func TestParseStyleRoundTrip(t *testing.T) {
	for _, s := range []Style{StyleDefault, StyleAggressive, StyleDefensive, StylePositional} {
		if got := ParseStyle(s.String()); got != s {
			t.Errorf("ParseStyle(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if ParseStyle("nonsense") != StyleDefault {
		t.Error("ParseStyle should default on unknown input")
	}
}

func TestComputeWDLSymmetric(t *testing.T) {
	var draw = ComputeWDL(0, 20)
	if draw.Win != draw.Loss {
		t.Errorf("ComputeWDL(0, _) should be symmetric: win=%d loss=%d", draw.Win, draw.Loss)
	}

	var ahead = ComputeWDL(300, 20)
	if ahead.Win <= ahead.Loss {
		t.Errorf("ComputeWDL(300, _) should favor a win: win=%d loss=%d", ahead.Win, ahead.Loss)
	}
}

func TestCentipawnsForWinProbInvertsComputeWDL(t *testing.T) {
	var cp = CentipawnsForWinProb(0.5, 20)
	if cp < -5 || cp > 55 {
		t.Errorf("CentipawnsForWinProb(0.5, 20) = %d, want near 0", cp)
	}

	var hopeful = CentipawnsForWinProb(0.9, 20)
	var evens = CentipawnsForWinProb(0.5, 20)
	if hopeful <= evens {
		t.Errorf("higher target win probability should need more centipawns: %d <= %d", hopeful, evens)
	}
}
