package common

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/dyfusion/dyfusion-ledger/internal/ledger"
)

const (
	// ZeroAddress is a special address, no one has control
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// system contract address range 0x1000-0xffff, start from 1000, avoid conflicts with precompiled contracts
	// SystemContractStartAddr is the start address of system contract
	SystemContractStartAddr = "0x0000000000000000000000000000000000001000"

	// TokenContractAddr is the tax token logic contract, its account parks
	// collected tax when no separate reservoir is configured
	TokenContractAddr = "0x0000000000000000000000000000000000001001"

	// SystemContractEndAddr is the end address of system contract
	SystemContractEndAddr = "0x000000000000000000000000000000000000ffff"
)

type SystemContractConfig struct {
	Logger logrus.FieldLogger
}

// VMContext carries per-call state into a system contract.
type VMContext struct {
	StateLedger ledger.StateLedger
	CurrentLogs *[]Log
	CurrentUser *ethcommon.Address
}

// SystemContract must be implemented by all system contracts
type SystemContract interface {
	SetContext(ctx *VMContext)
}

type Log struct {
	Address ethcommon.Address
	Topics  []ethcommon.Hash
	Data    []byte
	Removed bool
}

func IsZeroAddress(addr ethcommon.Address) bool {
	return addr == (ethcommon.Address{})
}

func CalculateDynamicGas(bytes []byte) uint64 {
	gas, _ := core.IntrinsicGas(bytes, []ethtypes.AccessTuple{}, false, true, true, true)
	return gas
}
