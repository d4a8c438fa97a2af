// Command idorch runs identification modules over a workspace until they stop
// finding new decision models.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/idorch/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
