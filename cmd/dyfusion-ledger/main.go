package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dyfusion/dyfusion-ledger/pkg/repo"
)

var BuildVersion = "dev"

func main() {
	app := cli.NewApp()
	app.Name = repo.AppName
	app.Usage = "A tax-and-reward token ledger"
	app.Compiled = time.Now()

	// global flags
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "repo",
			Usage: "Work path",
		},
	}

	app.Commands = []*cli.Command{
		configCMD,
		genesisCMD,
		tokenCMD,
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "Show code version",
			Action: func(ctx *cli.Context) error {
				fmt.Printf("%s version: %s\n", repo.AppName, BuildVersion)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
	}
}
