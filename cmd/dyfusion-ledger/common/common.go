package common

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dyfusion/dyfusion-ledger/pkg/loggers"
	"github.com/dyfusion/dyfusion-ledger/pkg/repo"
)

func Exist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func Pretty(d any) error {
	res, err := json.MarshalIndent(d, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(res))
	return nil
}

func InitLogger(rep *repo.Repo) error {
	return loggers.Initialize(map[string]string{
		loggers.App:            rep.Config.Log.Module.App,
		loggers.Storage:        rep.Config.Log.Module.Storage,
		loggers.Executor:       rep.Config.Log.Module.Executor,
		loggers.SystemContract: rep.Config.Log.Module.SystemContract,
	})
}
