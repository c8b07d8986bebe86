package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arabah/arabah-cli/internal/cmd"
	"github.com/arabah/arabah-cli/internal/debug"
)

var (
	executeCmd  = cmd.Execute
	mapExitCode = cmd.ExitCode
	terminate   = os.Exit
)

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := executeCmd(ctx, args); err != nil {
		return mapExitCode(err)
	}
	return 0
}

func main() {
	// Warnings before flag parsing still reach stderr.
	debug.SetupLogger(false)
	terminate(run(os.Args[1:]))
}
