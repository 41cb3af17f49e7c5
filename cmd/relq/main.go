// Command relq evaluates query relations over dataset files and SQLite
// databases.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/relq/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
