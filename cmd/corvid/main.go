package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/corvidchess/corvid/pkg/book"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/eval/network"
	"github.com/corvidchess/corvid/pkg/tb"
	"github.com/corvidchess/corvid/pkg/uci"
)

const (
	name   = "Corvid"
	author = "corvidchess"
)

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
	flgBookPath string
)

func main() {
	flag.StringVar(&flgBookPath, "book", "", "path to the opening-book database")
	flag.Parse()

	var logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

	logger.Println(name,
		"VersionName", versionName,
		"BuildDate", buildDate,
		"GitRevision", gitRevision,
		"RuntimeVersion", runtime.Version(),
		"GOARCH", runtime.GOARCH,
		"GOOS", runtime.GOOS,
		"NumCPU", runtime.NumCPU(),
	)

	var evalConfig = eval.NewConfig()
	var eng = engine.NewEngine(func() interface{} {
		return eval.New(network.NewPSQTNetwork(), evalConfig)
	})

	var tablebase = tb.New()
	eng.SetTablebase(tablebase)

	var bookStore *book.Book
	if flgBookPath != "" {
		var err error
		bookStore, err = book.Open(flgBookPath)
		if err != nil {
			logger.Fatal(err)
		}
		defer bookStore.Close()
		eng.SetBook(bookStore)
	}

	var styleName = evalConfig.Style.String()
	var protocol = uci.New(name, author, versionName, eng,
		[]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 4, Max: 1 << 16, Value: &eng.Hash},
			&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Threads},
			&uci.IntOption{Name: "MultiPV", Min: 1, Max: 32, Value: &eng.MultiPV},
			&uci.BoolOption{Name: "Ponder", Value: new(bool)},
			&uci.IntOption{Name: "Skill Level", Min: 0, Max: 20, Value: &eng.SkillLevel},
			&uci.BoolOption{Name: "UCI_LimitStrength", Value: new(bool)},
			&uci.IntOption{Name: "UCI_Elo", Min: 400, Max: 3200, Value: new(int)},
			&uci.BoolOption{Name: "UCI_Chess960", Value: new(bool)},
			&uci.ComboOption{Name: "Style", Combos: []string{"Default", "Aggressive", "Defensive", "Positional"},
				Value: &styleName, OnSet: func(s string) { evalConfig.Style = eval.ParseStyle(s) }},
			&uci.BoolOption{Name: "Dynamic Strategy", Value: &evalConfig.Dynamic},
			&uci.IntOption{Name: "MaterialisticEvaluationStrategy", Min: 0, Max: 200, Value: &evalConfig.Materialistic},
			&uci.IntOption{Name: "PositionalEvaluationStrategy", Min: 0, Max: 200, Value: &evalConfig.Positional},
			&uci.StringOption{Name: "SyzygyPath", Value: &tablebase.Path},
			&uci.IntOption{Name: "SyzygyProbeDepth", Min: 0, Max: 100, Value: &eng.SyzygyProbeDepth},
			&uci.BoolOption{Name: "Syzygy50MoveRule", Value: &tablebase.Rule50},
			&uci.BoolOption{Name: "ExperimentSettings", Value: &eng.ExperimentSettings},
		},
	)

	if bookStore != nil {
		protocol.SetBookRecorder(bookStore)
	}

	protocol.Run(logger)
}
