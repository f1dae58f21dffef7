package engine

import (
	"testing"

	. "github.com/corvidchess/corvid/pkg/chess"
)

func TestTransTableUpdateThenRead(t *testing.T) {
	var tt = newTransTable(4)
	var key uint64 = 0x1122334455667788
	tt.Update(key, 8, 120, boundExact, Move(42))

	var depth, score, bnd int
	var move Move
	var ok bool
	depth, score, bnd, move, ok = tt.Read(key)
	if !ok {
		t.Fatal("Read should find the entry just written")
	}
	if depth != 8 || score != 120 || bnd != boundExact || move != Move(42) {
		t.Errorf("Read = (%d, %d, %d, %v), want (8, 120, %d, 42)", depth, score, bnd, move, boundExact)
	}
}

func TestTransTableUpdateWithEvalRoundTrips(t *testing.T) {
	var tt = newTransTable(4)
	var key uint64 = 0xaabbccdd11223344
	tt.UpdateWithEval(key, 6, -55, boundUpper, MoveEmpty, 37, true)

	depth, score, bnd, move, eval, pv, ok := tt.ReadWithEval(key)
	if !ok {
		t.Fatal("ReadWithEval should find the entry just written")
	}
	if depth != 6 || score != -55 || bnd != boundUpper || move != MoveEmpty || eval != 37 || !pv {
		t.Errorf("ReadWithEval = (%d, %d, %d, %v, %d, %v), want (6, -55, %d, empty, 37, true)",
			depth, score, bnd, move, eval, pv, boundUpper)
	}
}

func TestTransTableKeepsMoveWhenOverwriteHasNoMove(t *testing.T) {
	var tt = newTransTable(4)
	var key uint64 = 0x0102030405060708
	tt.Update(key, 4, 10, boundLower, Move(7))
	tt.Update(key, 5, 20, boundExact, MoveEmpty)

	_, _, _, move, ok := tt.Read(key)
	if !ok {
		t.Fatal("Read should still find the entry")
	}
	if move != Move(7) {
		t.Errorf("Update with an empty move should preserve the prior move, got %v", move)
	}
}

func TestTransTableReadMissKeyCollision(t *testing.T) {
	var tt = newTransTable(4)
	tt.Update(0x1000000000000001, 5, 0, boundExact, Move(1))
	// Different high 32 bits land in the same cluster (a small table has
	// few clusters) but must never be reported as a hit for the wrong key.
	if _, _, _, _, ok := tt.Read(0x1000000100000001); ok {
		t.Error("Read should not report a hit for a different key hashing to the same cluster")
	}
}

func TestTransTableClearResetsHashfull(t *testing.T) {
	var tt = newTransTable(4)
	tt.Update(1, 5, 0, boundExact, Move(1))
	if tt.Hashfull() == 0 {
		t.Fatal("expected a nonzero hashfull after a write")
	}
	tt.Clear()
	if tt.Hashfull() != 0 {
		t.Errorf("Hashfull() = %d after Clear, want 0", tt.Hashfull())
	}
}

func TestTransTableHashfullTracksGeneration(t *testing.T) {
	var tt = newTransTable(4)
	tt.Update(1, 5, 0, boundExact, Move(1))
	if got := tt.Hashfull(); got == 0 {
		t.Fatal("expected a nonzero hashfull for the current generation")
	}
	tt.IncDate()
	if got := tt.Hashfull(); got != 0 {
		t.Errorf("Hashfull() = %d after IncDate with no new writes, want 0 (entries are now stale)", got)
	}
}

func TestTransTableClusterHoldsMultipleKeysWithoutEviction(t *testing.T) {
	var tt = newTransTable(1)
	// The multiplicative index is dominated by the key's high bits, so
	// sharing the top 20 bits lands all three probes in the same
	// cluster while the differing bits within [32,44) still give each
	// one a distinct 32-bit verification key.
	var keys = []uint64{
		0xabcd000000000001,
		0xabcd000100000001,
		0xabcd000200000001,
	}
	for i, k := range keys {
		tt.Update(k, 3+i, i, boundExact, Move(i+1))
	}
	for i, k := range keys {
		depth, _, _, move, ok := tt.Read(k)
		if !ok {
			t.Fatalf("key %d: expected a hit within the cluster", i)
		}
		if depth != 3+i || move != Move(i+1) {
			t.Errorf("key %d: Read = (%d, %v), want (%d, %v)", i, depth, move, 3+i, Move(i+1))
		}
	}
}
