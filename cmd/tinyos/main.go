package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// VERSION is injected by build flags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "tinyos"
	myApp.Usage = "walk a teaching kernel through one of its documented scenarios"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "scenario, s",
			Value: "socket-echo",
			Usage: "pipe-backpressure, pipe-eof, pipe-broken, socket-echo, connect-timeout, process-reap, thread-detach",
		},
		cli.IntFlag{
			Name:  "timeout",
			Value: 1000,
			Usage: "connect timeout in milliseconds, for scenarios that connect",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "suppress the pass/fail banner",
		},
		cli.StringFlag{
			Name:  "c",
			Usage: "optional JSON config file overriding the flags above",
		},
	}

	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Scenario = c.String("scenario")
		config.Timeout = c.Int("timeout")
		config.Quiet = c.Bool("quiet")

		if c.String("c") != "" {
			if err := parseJSONConfig(&config, c.String("c")); err != nil {
				checkError(err)
			}
		}

		name, err := runScenario(config.Scenario, time.Duration(config.Timeout)*time.Millisecond)
		if !config.Quiet {
			if err != nil {
				color.Red("FAIL %s: %v", name, err)
			} else {
				color.Green("PASS %s", name)
			}
		}
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("%s failed: %v", name, err), 1)
		}
		return nil
	}

	if err := myApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", errors.WithStack(err))
		os.Exit(1)
	}
}
