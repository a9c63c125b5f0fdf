package ledger

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// StateLedger is the world state mutated by system contracts. Every external
// call runs against one ledger instance; Snapshot/RevertToSnapshot give each
// call all-or-nothing semantics, Commit persists finalised state.
type StateLedger interface {
	// GetOrCreateAccount returns the account, creating it if absent.
	GetOrCreateAccount(addr ethcommon.Address) IAccount

	// GetAccount returns the account or nil if it does not exist.
	GetAccount(addr ethcommon.Address) IAccount

	GetBalance(addr ethcommon.Address) *big.Int

	SetBalance(addr ethcommon.Address, balance *big.Int)

	GetState(addr ethcommon.Address, key []byte) (bool, []byte)

	SetState(addr ethcommon.Address, key []byte, value []byte)

	// AddLog appends an event log, dropped again if the call reverts.
	AddLog(log *EvmLog)

	GetLogs() []*EvmLog

	ClearLogs()

	// Snapshot marks a revision of the current journal.
	Snapshot() int

	// RevertToSnapshot undoes all changes made since the revision.
	RevertToSnapshot(revid int)

	// Finalise merges per-call dirty state into the pending set and resets
	// the journal, after which the call can no longer be reverted.
	Finalise()

	// Commit writes all pending state to the backend atomically.
	Commit() error

	Close() error
}

// IAccount is a single account of the ledger, balance plus byte-keyed storage.
type IAccount interface {
	GetAddress() ethcommon.Address

	GetBalance() *big.Int
	SetBalance(balance *big.Int)
	AddBalance(amount *big.Int)
	SubBalance(amount *big.Int)

	GetNonce() uint64
	SetNonce(nonce uint64)

	GetState(key []byte) (bool, []byte)
	SetState(key []byte, value []byte)

	IsEmpty() bool
}

// EvmLog is an append-only event record, not queryable state.
type EvmLog struct {
	Address ethcommon.Address
	Topics  []ethcommon.Hash
	Data    []byte
	Removed bool
}
