package book

import (
	"encoding/json"
	"testing"

	"github.com/dgraph-io/badger/v4"

	. "github.com/corvidchess/corvid/pkg/chess"
)

func openTestBook(t *testing.T) *Book {
	t.Helper()
	var b, err = Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func legalMove(t *testing.T, lan string) Move {
	t.Helper()
	var p, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var child, ok = p.MakeMoveLAN(lan)
	if !ok {
		t.Fatalf("MakeMoveLAN(%q) failed", lan)
	}
	return child.LastMove
}

func TestProbeMissingKey(t *testing.T) {
	var b = openTestBook(t)
	if _, ok := b.Probe(0x1234); ok {
		t.Error("Probe on an empty book should report not found")
	}
}

func TestRecordThenProbe(t *testing.T) {
	var b = openTestBook(t)
	var move = legalMove(t, "e2e4")
	if err := b.Record(0xabcd, move, 25, 10); err != nil {
		t.Fatal(err)
	}
	var got, ok = b.Probe(0xabcd)
	if !ok {
		t.Fatal("Probe should find the recorded move")
	}
	if got != move {
		t.Errorf("Probe = %v, want %v", got, move)
	}
}

func TestRecordPrefersDeeperLine(t *testing.T) {
	var b = openTestBook(t)
	var shallow = legalMove(t, "e2e4")
	var deep = legalMove(t, "d2d4")

	if err := b.Record(0x1, shallow, 10, 5); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(0x1, deep, 15, 12); err != nil {
		t.Fatal(err)
	}

	var got, ok = b.Probe(0x1)
	if !ok {
		t.Fatal("Probe should find a recorded move")
	}
	if got != deep {
		t.Errorf("Record should keep the deeper line's move: got %v, want %v", got, deep)
	}
}

func TestRecordAccumulatesGameCount(t *testing.T) {
	var b = openTestBook(t)
	var move = legalMove(t, "e2e4")
	for i := 0; i < 3; i++ {
		if err := b.Record(0x2, move, 20, 8); err != nil {
			t.Fatal(err)
		}
	}

	var e = readEntry(t, b, 0x2)
	if e.Games != 3 {
		t.Errorf("Games = %d, want 3", e.Games)
	}
}

func readEntry(t *testing.T, b *Book, key uint64) entry {
	t.Helper()
	var e entry
	var err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBytes(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}
