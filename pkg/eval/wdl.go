package eval

import (
	corvidmath "github.com/corvidchess/corvid/internal/math"
)

// WDL is a win/draw/loss percentage triple, out of 1000, matching the
// UCI "wdl" info-line field.
type WDL struct {
	Win  int
	Draw int
	Loss int
}

// wdlScale grows with ply, the same shape Stockfish's own model uses:
// the same centipawn score means less as the game goes on and pieces
// come off, so the win/loss curves flatten.
func wdlScale(ply int) float64 {
	var clamped = float64(ply)
	if clamped > 240 {
		clamped = 240
	}
	return 90 + clamped/6
}

// ComputeWDL turns a centipawn score at a given ply into a win/draw/
// loss estimate via two logistic curves straddling zero.
func ComputeWDL(centipawns, ply int) WDL {
	var scale = wdlScale(ply)
	var winProb = logistic(float64(centipawns)-25, scale)
	var lossProb = logistic(-float64(centipawns)-25, scale)
	var drawProb = 1 - winProb - lossProb
	if drawProb < 0 {
		drawProb = 0
	}
	return WDL{
		Win:  int(winProb * 1000),
		Draw: int(drawProb * 1000),
		Loss: int(lossProb * 1000),
	}
}

func logistic(x, scale float64) float64 {
	return corvidmath.Sigmoid(x / scale)
}

// CentipawnsForWinProb is ComputeWDL's inverse for the win side: given
// a target win probability (0,1) at a given ply, it returns the
// centipawn score that would produce it. Used by the skill-level
// noise model to translate a target strength into a score margin
// worth gambling within.
func CentipawnsForWinProb(winProb float64, ply int) int {
	var scale = wdlScale(ply)
	return int(corvidmath.ReverseSigmoid(winProb)*scale) + 25
}
