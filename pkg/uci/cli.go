package uci

import (
	"bufio"
	"context"
	"log"
	"os"
)

// CommandHandler is a synchronous alternative to Protocol.Run, for
// scripted command feeds (regression scripts, perft batches) where
// blocking on each line instead of racing an async search goroutine
// is what's wanted.
type CommandHandler interface {
	Handle(ctx context.Context, command string) error
}

// Handle implements CommandHandler by dispatching the command inline
// through the same handler table Run uses; it does not drain
// engineOutput, so it's meant for non-search commands like perft.
func (uci *Protocol) Handle(ctx context.Context, command string) error {
	return uci.handle(command)
}

func RunCli(logger *log.Logger, handler CommandHandler) {
	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var commandLine = scanner.Text()
		if commandLine == "quit" {
			return
		}
		var err = handler.Handle(ctx, commandLine)
		if err != nil {
			logger.Println(err)
		}
	}
}
