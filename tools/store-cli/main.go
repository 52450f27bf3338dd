package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run with `go run ./tools/store-cli`

func main() {
	app := &cli.App{
		Name:     "Sable Store Toolbox",
		HelpName: "store",
		Usage:    "A set of utilities to inspect store directories",
		Flags:    []cli.Flag{},
		Commands: []*cli.Command{
			&getInfoCommand,
			&getValueCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
