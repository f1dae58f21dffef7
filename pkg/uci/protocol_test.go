package uci

import (
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/corvidchess/corvid/pkg/chess"
)

type fakeEngine struct {
	prepared bool
	cleared  bool
	result   SearchInfo
}

func (e *fakeEngine) Prepare() { e.prepared = true }
func (e *fakeEngine) Clear()   { e.cleared = true }
func (e *fakeEngine) Search(ctx context.Context, params SearchParams) SearchInfo {
	return e.result
}

func newTestProtocol() (*Protocol, *fakeEngine, *int, *bool) {
	var hash = 16
	var ponder = false
	var eng = &fakeEngine{}
	var p = New("Corvid", "corvidchess", "test", eng, []Option{
		&IntOption{Name: "Hash", Min: 4, Max: 1024, Value: &hash},
		&BoolOption{Name: "Skill Level Enabled", Value: &ponder},
	})
	return p, eng, &hash, &ponder
}

func TestSetOptionSingleWordName(t *testing.T) {
	var p, _, hash, _ = newTestProtocol()
	if err := p.setOptionCommand(strings.Fields("name Hash value 256")); err != nil {
		t.Fatal(err)
	}
	if *hash != 256 {
		t.Errorf("Hash = %d, want 256", *hash)
	}
}

func TestSetOptionMultiWordOptionName(t *testing.T) {
	var p, _, _, ponder = newTestProtocol()
	if err := p.setOptionCommand(strings.Fields("name Skill Level Enabled value true")); err != nil {
		t.Fatal(err)
	}
	if !*ponder {
		t.Error("multi-word option name should still resolve to the right option")
	}
}

func TestSetOptionChess960TracksFlag(t *testing.T) {
	var p, _, _, _ = newTestProtocol()
	if err := p.setOptionCommand(strings.Fields("name UCI_Chess960 value true")); err != nil {
		t.Fatal(err)
	}
	if !p.chess960 {
		t.Error("setoption UCI_Chess960 true should set Protocol.chess960")
	}
}

func TestSetOptionUnknownNameFails(t *testing.T) {
	var p, _, _, _ = newTestProtocol()
	if err := p.setOptionCommand(strings.Fields("name Nonexistent value 1")); err == nil {
		t.Error("setOptionCommand should fail for an unregistered option")
	}
}

func TestParseLimitsBasicFields(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var limits = parseLimits(strings.Fields("wtime 60000 btime 55000 winc 1000 movestogo 20 depth 12"), &p)
	if limits.WhiteTime != 60000 || limits.BlackTime != 55000 || limits.WhiteIncrement != 1000 ||
		limits.MovesToGo != 20 || limits.Depth != 12 {
		t.Errorf("parseLimits = %+v", limits)
	}
}

func TestParseLimitsSearchMoves(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var limits = parseLimits(strings.Fields("searchmoves e2e4 d2d4 depth 10"), &p)
	if len(limits.SearchMoves) != 2 {
		t.Fatalf("SearchMoves = %v, want 2 moves", limits.SearchMoves)
	}
	if limits.Depth != 10 {
		t.Errorf("searchmoves parsing should not swallow the trailing depth field, got %d", limits.Depth)
	}
}

func TestSearchInfoToUciIncludesWdlAndHashfull(t *testing.T) {
	var si = SearchInfo{
		Depth:    10,
		SelDepth: 14,
		Score:    UciScore{Centipawns: 40},
		Nodes:    12345,
		Hashfull: 250,
		TbHits:   3,
		Time:     500 * time.Millisecond,
		MainLine: []Move{},
	}
	var lines = searchInfoToUci(si, 20, false)
	if len(lines) != 1 {
		t.Fatalf("single-PV SearchInfo should render exactly one info line, got %d", len(lines))
	}
	for _, want := range []string{"depth 10", "seldepth 14", "score cp 40", "hashfull 250", "tbhits 3", "wdl "} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("info line %q missing %q", lines[0], want)
		}
	}
	if strings.Contains(lines[0], "multipv") {
		t.Errorf("single-PV info line should omit multipv: %q", lines[0])
	}
}

func TestSearchInfoToUciOmitsWdlOnMateScore(t *testing.T) {
	var si = SearchInfo{Depth: 5, Score: UciScore{Mate: 3}, Time: time.Second}
	var lines = searchInfoToUci(si, 5, false)
	if strings.Contains(lines[0], "wdl") {
		t.Errorf("mate scores should not carry a wdl field: %q", lines[0])
	}
	if !strings.Contains(lines[0], "score mate 3") {
		t.Errorf("info line %q missing mate score", lines[0])
	}
}

func TestSearchInfoToUciRendersOneLinePerMultiPVEntry(t *testing.T) {
	var si = SearchInfo{
		Depth: 12,
		Score: UciScore{Centipawns: 55},
		Time:  time.Second,
		Lines: []SearchLine{
			{Index: 1, Score: UciScore{Centipawns: 55}, MainLine: []Move{}},
			{Index: 2, Score: UciScore{Centipawns: 20}, MainLine: []Move{}},
		},
	}
	var lines = searchInfoToUci(si, 20, false)
	if len(lines) != 2 {
		t.Fatalf("expected one info line per MultiPV entry, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "multipv 1") || !strings.Contains(lines[0], "score cp 55") {
		t.Errorf("first line %q should report multipv 1 and its own score", lines[0])
	}
	if !strings.Contains(lines[1], "multipv 2") || !strings.Contains(lines[1], "score cp 20") {
		t.Errorf("second line %q should report multipv 2 and its own score", lines[1])
	}
}

func TestFindIndexString(t *testing.T) {
	var fields = strings.Fields("name Skill Level value 10")
	if idx := findIndexString(fields, "value"); idx != 3 {
		t.Errorf("findIndexString = %d, want 3", idx)
	}
	if idx := findIndexString(fields, "missing"); idx != -1 {
		t.Errorf("findIndexString = %d, want -1", idx)
	}
}
