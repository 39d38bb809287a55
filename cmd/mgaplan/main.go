package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := newCLIApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		if exit, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, exit.Error())
			os.Exit(exit.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
