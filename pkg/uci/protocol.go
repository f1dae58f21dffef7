// Package uci implements the text protocol a GUI speaks to the
// engine: a line-oriented command loop reading uci/setoption/position/
// go/stop/ucinewgame/ponderhit/quit from stdin and writing id/option/
// info/bestmove lines to stdout.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	. "github.com/corvidchess/corvid/pkg/chess"
	"github.com/corvidchess/corvid/pkg/eval"
)

// Engine is what the protocol needs from the search core; it's the
// same shape engine.Engine already satisfies.
type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, searchParams SearchParams) SearchInfo
}

// BookRecorder lets a finished search's own result feed back into an
// opening book/experience store, matching book.Book's write side.
type BookRecorder interface {
	Record(key uint64, move Move, score, depth int) error
}

type Protocol struct {
	name         string
	author       string
	version      string
	options      []Option
	engine       Engine
	recorder     BookRecorder
	positions    []Position
	chess960     bool
	thinking     bool
	engineOutput chan SearchInfo
	cancel       context.CancelFunc
	lastRootKey  uint64
}

func (uci *Protocol) SetBookRecorder(r BookRecorder) {
	uci.recorder = r
}

func New(name, author, version string, engine Engine, options []Option) *Protocol {
	var initPosition, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		panic(err)
	}
	return &Protocol{
		name:      name,
		author:    author,
		version:   version,
		engine:    engine,
		options:   options,
		positions: []Position{initPosition},
	}
}

func (uci *Protocol) Run(logger *log.Logger) {
	var commands = make(chan string)

	go func() {
		defer close(commands)
		readCommands(commands)
	}()

	var searchResult SearchInfo
	for {
		select {
		case si, ok := <-uci.engineOutput:
			if ok {
				for _, line := range searchInfoToUci(si, len(uci.positions)-1, uci.chess960) {
					fmt.Println(line)
				}
				searchResult = si
			} else {
				if len(searchResult.MainLine) != 0 {
					fmt.Printf("bestmove %v\n", searchResult.MainLine[0].UCI(uci.chess960))
					if uci.recorder != nil {
						_ = uci.recorder.Record(uci.lastRootKey, searchResult.MainLine[0],
							searchResult.Score.Centipawns, searchResult.Depth)
					}
				}
				uci.thinking = false
				uci.cancel = nil
				uci.engineOutput = nil
				searchResult = SearchInfo{}
			}
		case commandLine, ok := <-commands:
			if !ok {
				//uci quit
				return
			}
			var err = uci.handle(commandLine)
			if err != nil {
				logger.Println(err)
			}
		}
	}
}

func readCommands(commands chan<- string) {
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var commandLine = scanner.Text()
		if commandLine == "quit" {
			return
		}
		if commandLine != "" {
			commands <- commandLine
		}
	}
}

func (uci *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	if uci.thinking {
		switch commandName {
		case "stop":
			uci.cancel()
			return nil
		case "ponderhit":
			return uci.ponderhitCommand(fields)
		}
		return errors.New("search still run")
	}

	var h func(fields []string) error

	switch commandName {
	case "uci":
		h = uci.uciCommand
	case "setoption":
		h = uci.setOptionCommand
	case "isready":
		h = uci.isReadyCommand
	case "position":
		h = uci.positionCommand
	case "go":
		h = uci.goCommand
	case "ucinewgame":
		h = uci.uciNewGameCommand
	case "ponderhit":
		h = uci.ponderhitCommand
	}

	if h == nil {
		return errors.New("command not found")
	}

	return h(fields)
}

func (uci *Protocol) uciCommand(fields []string) error {
	fmt.Printf("id name %s %s\n", uci.name, uci.version)
	fmt.Printf("id author %s\n", uci.author)
	for _, option := range uci.options {
		fmt.Println(option.UciString())
	}
	fmt.Println("uciok")
	return nil
}

func (uci *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 || fields[0] != "name" {
		return errors.New("invalid setoption arguments")
	}
	var valueIndex = findIndexString(fields, "value")
	var name, value string
	if valueIndex == -1 {
		name = strings.Join(fields[1:], " ")
	} else {
		name = strings.Join(fields[1:valueIndex], " ")
		value = strings.Join(fields[valueIndex+1:], " ")
	}
	if strings.EqualFold(name, "UCI_Chess960") {
		uci.chess960, _ = strconv.ParseBool(value)
	}
	for _, option := range uci.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	if strings.EqualFold(name, "UCI_Chess960") {
		return nil
	}
	return errors.New("unhandled option")
}

func (uci *Protocol) isReadyCommand(fields []string) error {
	uci.engine.Prepare()
	fmt.Println("readyok")
	return nil
}

func (uci *Protocol) positionCommand(fields []string) error {
	var args = fields
	if len(args) == 0 {
		return errors.New("empty position command")
	}
	var token = args[0]
	var fen string
	var movesIndex = findIndexString(args, "moves")
	if token == "startpos" {
		fen = InitialPositionFen
	} else if token == "fen" {
		if movesIndex == -1 {
			fen = strings.Join(args[1:], " ")
		} else {
			fen = strings.Join(args[1:movesIndex], " ")
		}
	} else {
		return errors.New("unknown position command")
	}
	var p, err = NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	var positions = []Position{p}
	if movesIndex >= 0 && movesIndex+1 < len(args) {
		for _, smove := range args[movesIndex+1:] {
			var newPos, ok = positions[len(positions)-1].MakeMoveLAN(smove)
			if !ok {
				return errors.New("parse move failed")
			}
			positions = append(positions, newPos)
		}
	}
	uci.positions = positions
	return nil
}

func (uci *Protocol) goCommand(fields []string) error {
	if len(fields) != 0 && fields[0] == "perft" {
		return uci.perftCommand(fields[1:])
	}

	var limits = parseLimits(fields, uci.currentPosition())
	var ctx, cancel = context.WithCancel(context.Background())
	uci.cancel = cancel
	uci.thinking = true
	uci.engineOutput = make(chan SearchInfo, 3)
	uci.lastRootKey = uci.currentPosition().Key
	var positions = uci.positions
	go func() {
		var searchResult = uci.engine.Search(ctx, SearchParams{
			Positions: positions,
			Limits:    limits,
			Progress: func(si SearchInfo) {
				select {
				case uci.engineOutput <- si:
				default:
				}
			},
		})
		uci.engineOutput <- searchResult
		close(uci.engineOutput)
	}()
	return nil
}

func (uci *Protocol) perftCommand(fields []string) error {
	var depth = 5
	if len(fields) != 0 {
		if d, err := strconv.Atoi(fields[0]); err == nil {
			depth = d
		}
	}
	var start = time.Now()
	var nodes = Perft(uci.currentPosition(), depth)
	var elapsed = time.Since(start)
	fmt.Printf("perft %v nodes %v time %v\n", depth, nodes, elapsed.Milliseconds())
	return nil
}

func (uci *Protocol) currentPosition() *Position {
	return &uci.positions[len(uci.positions)-1]
}

func (uci *Protocol) uciNewGameCommand(fields []string) error {
	uci.engine.Clear()
	return nil
}

func (uci *Protocol) ponderhitCommand(fields []string) error {
	return nil
}

// searchInfoToUci renders one "info" line per MultiPV line requested:
// a plain single-line search returns exactly one, with no "multipv"
// field at all (most GUIs treat its absence as multipv 1); a MultiPV
// search returns one tagged line per si.Lines entry, best score first.
func searchInfoToUci(si SearchInfo, ply int, chess960 bool) []string {
	if len(si.Lines) == 0 {
		return []string{searchInfoLineToUci(si.Depth, si.SelDepth, 0, si.Score, si.MainLine, si.Nodes, si.Hashfull, si.TbHits, si.Time, ply, chess960)}
	}
	var result = make([]string, len(si.Lines))
	for i, line := range si.Lines {
		result[i] = searchInfoLineToUci(si.Depth, si.SelDepth, line.Index, line.Score, line.MainLine, si.Nodes, si.Hashfull, si.TbHits, si.Time, ply, chess960)
	}
	return result
}

func searchInfoLineToUci(depth, selDepth, multiPV int, score UciScore, mainLine []Move, nodes int64, hashfull int, tbHits int64, elapsed time.Duration, ply int, chess960 bool) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v", depth)
	if selDepth != 0 {
		fmt.Fprintf(sb, " seldepth %v", selDepth)
	}
	if multiPV != 0 {
		fmt.Fprintf(sb, " multipv %v", multiPV)
	}
	if score.Mate != 0 {
		fmt.Fprintf(sb, " score mate %v", score.Mate)
	} else {
		fmt.Fprintf(sb, " score cp %v", score.Centipawns)
	}
	var timeMs = elapsed.Milliseconds()
	var nps = nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v hashfull %v", nodes, timeMs, nps, hashfull)
	if tbHits != 0 {
		fmt.Fprintf(sb, " tbhits %v", tbHits)
	}
	if score.Mate == 0 {
		var wdl = eval.ComputeWDL(score.Centipawns, ply)
		fmt.Fprintf(sb, " wdl %v %v %v", wdl.Win, wdl.Draw, wdl.Loss)
	}
	if len(mainLine) != 0 {
		fmt.Fprintf(sb, " pv")
		for _, move := range mainLine {
			sb.WriteString(" ")
			sb.WriteString(move.UCI(chess960))
		}
	}
	return sb.String()
}

func parseLimits(args []string, p *Position) (result LimitsType) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			result.Ponder = true
		case "wtime":
			result.WhiteTime, _ = strconv.Atoi(args[i+1])
			i++
		case "btime":
			result.BlackTime, _ = strconv.Atoi(args[i+1])
			i++
		case "winc":
			result.WhiteIncrement, _ = strconv.Atoi(args[i+1])
			i++
		case "binc":
			result.BlackIncrement, _ = strconv.Atoi(args[i+1])
			i++
		case "movestogo":
			result.MovesToGo, _ = strconv.Atoi(args[i+1])
			i++
		case "depth":
			result.Depth, _ = strconv.Atoi(args[i+1])
			i++
		case "nodes":
			result.Nodes, _ = strconv.Atoi(args[i+1])
			i++
		case "mate":
			result.Mate, _ = strconv.Atoi(args[i+1])
			i++
		case "movetime":
			result.MoveTime, _ = strconv.Atoi(args[i+1])
			i++
		case "infinite":
			result.Infinite = true
		case "searchmoves":
			var j = i + 1
			for j < len(args) {
				if _, ok := p.MakeMoveLAN(args[j]); !ok {
					break
				}
				j++
			}
			result.SearchMoves = parseSearchMoves(p, args[i+1:j])
			i = j - 1
		}
	}
	return
}

func parseSearchMoves(p *Position, lans []string) []Move {
	var moves = make([]Move, 0, len(lans))
	for _, lan := range lans {
		if child, ok := p.MakeMoveLAN(lan); ok {
			moves = append(moves, child.LastMove)
		}
	}
	return moves
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}
