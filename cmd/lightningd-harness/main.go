package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/RCasatta/lightningd/pkg/logging"
)

func main() {
	app := cli.NewApp()
	app.Name = "lightningd-harness"
	app.Usage = "spin up disposable lightningd nodes against a running bitcoind"
	app.Commands = []*cli.Command{spawnCommand}
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "v", Usage: "verbose output (info)"},
		&cli.BoolFlag{Name: "vv", Usage: "very verbose output (debug)"},
	}
	app.HideVersion = true
	app.Before = func(c *cli.Context) error {
		configureLogging(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func configureLogging(c *cli.Context) {
	switch {
	case c.Bool("vv"):
		logging.SetLevel(zapcore.DebugLevel)
	case c.Bool("v"):
		logging.SetLevel(zapcore.InfoLevel)
	}
}
