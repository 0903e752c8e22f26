// Package main is the calibeval command itself.
package main

import (
	"os"

	"go.viam.com/calibeval/cli"
	"go.viam.com/calibeval/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Fatal(err)
	}
}
