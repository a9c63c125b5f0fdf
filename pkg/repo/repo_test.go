package repo

import (
	"math/big"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultGenesisConfig(t *testing.T) {
	t.Parallel()

	genesis := DefaultGenesisConfig()
	require.Nil(t, genesis.Validate())
	require.Equal(t, uint64(DefaultTaxRateBps), genesis.TaxRateBps)
	require.Equal(t, DefaultTokenSymbol, genesis.Token.Symbol)

	expected, _ := new(big.Int).SetString("100000000000000000000000000", 10)
	require.Equal(t, expected.String(), genesis.InitialSupplyUnits().String())
}

func TestGenesisConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("invalid treasury", func(t *testing.T) {
		genesis := DefaultGenesisConfig()
		genesis.Treasury = "not-an-address"
		require.NotNil(t, genesis.Validate())
	})

	t.Run("zero treasury", func(t *testing.T) {
		genesis := DefaultGenesisConfig()
		genesis.Treasury = "0x0000000000000000000000000000000000000000"
		require.NotNil(t, genesis.Validate())
	})

	t.Run("invalid reward manager", func(t *testing.T) {
		genesis := DefaultGenesisConfig()
		genesis.RewardManagers = []string{"0x123"}
		require.NotNil(t, genesis.Validate())
	})

	t.Run("empty reservoir allowed", func(t *testing.T) {
		genesis := DefaultGenesisConfig()
		genesis.Reservoir = ""
		require.Nil(t, genesis.Validate())
	})

	t.Run("invalid initial supply", func(t *testing.T) {
		genesis := DefaultGenesisConfig()
		genesis.Token.InitialSupply = "many"
		require.NotNil(t, genesis.Validate())
	})
}

func TestFlushAndLoad(t *testing.T) {
	repoRoot := t.TempDir()

	rep, err := Default(repoRoot)
	require.Nil(t, err)
	rep.GenesisConfig.TaxRateBps = 300
	require.Nil(t, rep.Flush())

	require.FileExists(t, path.Join(repoRoot, CfgFileName))
	require.FileExists(t, path.Join(repoRoot, genesisCfgFileName))

	loaded, err := Load(repoRoot)
	require.Nil(t, err)
	require.Equal(t, uint64(300), loaded.GenesisConfig.TaxRateBps)
	require.Equal(t, KVStorageTypeLeveldb, loaded.Config.Storage.KvType)
}

func TestLoadRepoRootFromEnv(t *testing.T) {
	root, err := LoadRepoRootFromEnv("/tmp/custom")
	require.Nil(t, err)
	require.Equal(t, "/tmp/custom", root)

	require.Nil(t, os.Setenv(rootPathEnvVar, "/tmp/from-env"))
	defer func() {
		require.Nil(t, os.Unsetenv(rootPathEnvVar))
	}()
	root, err = LoadRepoRootFromEnv("")
	require.Nil(t, err)
	require.Equal(t, "/tmp/from-env", root)
}
