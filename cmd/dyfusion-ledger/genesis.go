package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dyfusion/dyfusion-ledger/cmd/dyfusion-ledger/common"
	"github.com/dyfusion/dyfusion-ledger/internal/executor/system"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
)

var genesisCMD = &cli.Command{
	Name:  "genesis",
	Usage: "The genesis manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "init",
			Usage:  "Initialize the ledger from the genesis config",
			Action: genesisInit,
		},
	},
}

func genesisInit(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil || r == nil {
		return err
	}
	if err := common.InitLogger(r); err != nil {
		return err
	}
	if err := r.GenesisConfig.Validate(); err != nil {
		return err
	}

	lg, err := ledger.New(r)
	if err != nil {
		return err
	}
	defer func() {
		_ = lg.Close()
	}()

	if err := system.InitGenesisData(r.GenesisConfig, lg); err != nil {
		return err
	}
	if err := lg.Commit(); err != nil {
		return err
	}

	fmt.Printf("genesis initialized in %s\n", r.RepoRoot)
	return nil
}
