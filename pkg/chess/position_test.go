package chess

import "testing"

func TestNewPositionFromFENInitial(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	if !p.WhiteMove {
		t.Errorf("initial position should have white to move")
	}
	if p.CastleRights != WhiteKingSide|WhiteQueenSide|BlackKingSide|BlackQueenSide {
		t.Errorf("initial position should have all castle rights, got %d", p.CastleRights)
	}
	if p.EpSquare != SquareNone {
		t.Errorf("initial position should have no en-passant square")
	}
	if PopCount(p.AllPieces()) != 32 {
		t.Errorf("initial position should have 32 pieces, got %d", PopCount(p.AllPieces()))
	}
	if p.String() != InitialPositionFen {
		t.Errorf("round-tripped fen = %q, want %q", p.String(), InitialPositionFen)
	}
}

func TestNewPositionFromFENRejectsIllegalCheck(t *testing.T) {
	// White to move with black's king already attacked down the open
	// e-file: black would have had to already be in check on white's
	// previous move, which is not a reachable chess position.
	var _, err = NewPositionFromFEN("4k3/8/8/8/8/8/8/4R2K w - - 0 1")
	if err == nil {
		t.Fatalf("expected error for a position where the side not to move is in check")
	}
}

func TestMakeMoveUpdatesKeyIncrementally(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateMoves(buffer[:])

	var found = false
	for _, om := range ml {
		if om.Move.String() == "e2e4" {
			found = true
			var child Position
			if !p.MakeMove(om.Move, &child) {
				t.Fatal("e2e4 should be legal from the initial position")
			}
			var recomputed = child.computeKey()
			if child.Key != recomputed {
				t.Errorf("incremental key %d does not match recomputed key %d", child.Key, recomputed)
			}
			if child.KeyAfter(MoveNull) == 0 {
				t.Errorf("KeyAfter(null) should not be zero")
			}
		}
	}
	if !found {
		t.Fatal("e2e4 not found in initial move list")
	}
}

func TestKeyAfterMatchesMakeMove(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateMoves(buffer[:])

	for _, om := range ml {
		var child Position
		if !p.MakeMove(om.Move, &child) {
			continue
		}
		if got := p.KeyAfter(om.Move); got != child.Key {
			t.Errorf("KeyAfter(%s) = %d, want %d", om.Move, got, child.Key)
		}
	}
}

func TestIsRepetition(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var g1f3, _ = p.MakeMoveLAN("g1f3")
	var g8f6, _ = g1f3.MakeMoveLAN("g8f6")
	var f3g1, _ = g8f6.MakeMoveLAN("f3g1")
	var f6g8, _ = f3g1.MakeMoveLAN("f6g8")

	if !p.IsRepetition(&f6g8) {
		t.Errorf("position should repeat after knights return home")
	}
}
