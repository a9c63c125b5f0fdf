package token

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/dyfusion/dyfusion-ledger/internal/executor/system/common"
	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
	"github.com/dyfusion/dyfusion-ledger/pkg/loggers"
)

var (
	admin    = ethcommon.HexToAddress("0x9fA0d3d6D1a3E152f1fdF2677cBD0f714Ae90519")
	treasury = ethcommon.HexToAddress("0x0E55cF6530e2971E72B5D1273f2BCf12BE6b1FD7")
	alice    = ethcommon.HexToAddress("0xA46DBCa426e2AC83Ba528c9960a4cbd09872e725")
	bob      = ethcommon.HexToAddress("0xDAFF8FdAC2c976eEF7Cc0Bb07b2A4ee4C70f32aa")
	carol    = ethcommon.HexToAddress("0x97c8B516D19edBf575D72a172Af7F418BE498C37")
)

// testEnv binds one manager instance to a fresh in-memory ledger. Switching
// the caller rebinds the context the way the dispatcher does per call.
type testEnv struct {
	manager *DFXManager
	ledger  ledger.StateLedger
	logs    []common.Log
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{ledger: ledger.NewMemory()}
	env.manager = NewDFXManager(&common.SystemContractConfig{
		Logger: loggers.Logger(loggers.SystemContract),
	}, Config{
		Name:          "Dyfusion",
		Symbol:        "DFX",
		Decimals:      18,
		InitialSupply: units(100_000_000),
	})
	env.setUser(admin)
	return env
}

func (env *testEnv) setUser(user ethcommon.Address) {
	env.manager.SetContext(&common.VMContext{
		StateLedger: env.ledger,
		CurrentLogs: &env.logs,
		CurrentUser: &user,
	})
}

// initialized returns an env after a successful Initialize by admin with the
// given tax rate in basis points.
func initializedEnv(t *testing.T, rateBps int64) *testEnv {
	t.Helper()

	env := newTestEnv(t)
	require.Nil(t, env.manager.Initialize(treasury, big.NewInt(rateBps)))
	return env
}

func units(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}
