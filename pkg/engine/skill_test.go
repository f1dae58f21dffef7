package engine

import (
	"testing"

	. "github.com/corvidchess/corvid/pkg/chess"
)

func TestApplySkillLevelFullStrengthAlwaysPicksBest(t *testing.T) {
	var e = &Engine{SkillLevel: 20}
	var moves = []Move{Move(1), Move(2), Move(3)}
	for i := 0; i < 20; i++ {
		if got := e.applySkillLevel(moves, uint64(i), 20); got != moves[0] {
			t.Fatalf("SkillLevel 20 should always play the top move, got %v", got)
		}
	}
}

func TestApplySkillLevelSingleMove(t *testing.T) {
	var e = &Engine{SkillLevel: 0}
	var moves = []Move{Move(7)}
	if got := e.applySkillLevel(moves, 123, 10); got != moves[0] {
		t.Errorf("a single-move pool must return that move regardless of level")
	}
}

func TestApplySkillLevelDeterministic(t *testing.T) {
	var e = &Engine{SkillLevel: 5}
	var moves = []Move{Move(1), Move(2), Move(3), Move(4), Move(5)}
	var first = e.applySkillLevel(moves, 0xdeadbeef, 30)
	for i := 0; i < 10; i++ {
		if got := e.applySkillLevel(moves, 0xdeadbeef, 30); got != first {
			t.Fatalf("applySkillLevel should be deterministic for a fixed key/level, got %v want %v", got, first)
		}
	}
}

func TestApplySkillLevelStaysWithinPool(t *testing.T) {
	var e = &Engine{SkillLevel: 2}
	var moves = []Move{Move(1), Move(2), Move(3), Move(4), Move(5), Move(6)}
	var seen = map[Move]bool{}
	for key := uint64(0); key < 200; key++ {
		seen[e.applySkillLevel(moves, key, 20)] = true
	}
	for m := range seen {
		var found bool
		for _, want := range moves {
			if m == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("applySkillLevel returned %v, not in the root move list", m)
		}
	}
	if len(seen) < 2 {
		t.Error("a low skill level over many keys should eventually pick more than one move")
	}
}
