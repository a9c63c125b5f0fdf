package ledger

import (
	"encoding/json"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/dyfusion/dyfusion-ledger/internal/storagemgr"
	"github.com/dyfusion/dyfusion-ledger/pkg/loggers"
)

var _ IAccount = (*SimpleAccount)(nil)

// innerAccount is the persisted account metadata.
type innerAccount struct {
	Balance *big.Int `json:"balance"`
	Nonce   uint64   `json:"nonce"`
}

func (ia *innerAccount) copyOrNew() *innerAccount {
	if ia == nil {
		return &innerAccount{Balance: big.NewInt(0)}
	}
	return &innerAccount{
		Balance: new(big.Int).Set(ia.Balance),
		Nonce:   ia.Nonce,
	}
}

type SimpleAccount struct {
	logger logrus.FieldLogger
	Addr   ethcommon.Address

	// The confirmed state of the last commit
	originAccount *innerAccount
	originState   map[string][]byte

	// The latest uncommitted state
	dirtyAccount *innerAccount
	dirtyState   map[string][]byte

	backend *storagemgr.CacheWrapper
	changer *stateChanger
	created bool
}

func newAccount(backend *storagemgr.CacheWrapper, addr ethcommon.Address, changer *stateChanger) *SimpleAccount {
	return &SimpleAccount{
		logger:      loggers.Logger(loggers.Storage),
		Addr:        addr,
		originState: make(map[string][]byte),
		dirtyState:  make(map[string][]byte),
		backend:     backend,
		changer:     changer,
	}
}

// NewMockAccount returns a memory-backed account for tests.
func NewMockAccount(addr ethcommon.Address) *SimpleAccount {
	cache, err := storagemgr.NewCacheWrapper(storagemgr.NewMemory(), 16)
	if err != nil {
		panic(err)
	}
	return newAccount(cache, addr, newChanger())
}

func (o *SimpleAccount) GetAddress() ethcommon.Address {
	return o.Addr
}

func (o *SimpleAccount) GetBalance() *big.Int {
	if o.dirtyAccount != nil {
		return new(big.Int).Set(o.dirtyAccount.Balance)
	}
	if o.originAccount != nil {
		return new(big.Int).Set(o.originAccount.Balance)
	}
	return big.NewInt(0)
}

func (o *SimpleAccount) SetBalance(balance *big.Int) {
	o.changer.append(balanceChange{
		account: &o.Addr,
		prev:    o.GetBalance(),
	})
	o.setBalance(balance)
}

func (o *SimpleAccount) setBalance(balance *big.Int) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.copyOrNew()
	}
	o.dirtyAccount.Balance = new(big.Int).Set(balance)
}

func (o *SimpleAccount) AddBalance(amount *big.Int) {
	o.SetBalance(new(big.Int).Add(o.GetBalance(), amount))
}

func (o *SimpleAccount) SubBalance(amount *big.Int) {
	o.SetBalance(new(big.Int).Sub(o.GetBalance(), amount))
}

func (o *SimpleAccount) GetNonce() uint64 {
	if o.dirtyAccount != nil {
		return o.dirtyAccount.Nonce
	}
	if o.originAccount != nil {
		return o.originAccount.Nonce
	}
	return 0
}

func (o *SimpleAccount) SetNonce(nonce uint64) {
	o.changer.append(nonceChange{
		account: &o.Addr,
		prev:    o.GetNonce(),
	})
	o.setNonce(nonce)
}

func (o *SimpleAccount) setNonce(nonce uint64) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.copyOrNew()
	}
	o.dirtyAccount.Nonce = nonce
}

func (o *SimpleAccount) GetState(key []byte) (bool, []byte) {
	if v, ok := o.dirtyState[string(key)]; ok {
		return len(v) > 0, v
	}
	return o.getCommittedState(key)
}

func (o *SimpleAccount) getCommittedState(key []byte) (bool, []byte) {
	if v, ok := o.originState[string(key)]; ok {
		return len(v) > 0, v
	}
	start := time.Now()
	v, err := o.backend.Get(compositeStateKey(o.Addr, key))
	if err != nil {
		o.logger.Errorf("read state of account %s failed: %s", o.Addr, err)
		return false, nil
	}
	stateReadDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	o.originState[string(key)] = v
	return len(v) > 0, v
}

func (o *SimpleAccount) SetState(key []byte, value []byte) {
	exist, prev := o.GetState(key)
	o.changer.append(storageChange{
		account:   &o.Addr,
		key:       key,
		prevalue:  prev,
		prevExist: exist,
	})
	o.setState(key, value)
}

func (o *SimpleAccount) setState(key []byte, value []byte) {
	o.dirtyState[string(key)] = value
}

// revertState restores the visible value of a key when the journal unwinds.
func (o *SimpleAccount) revertState(key []byte, prevalue []byte, prevExist bool) {
	if prevExist {
		o.dirtyState[string(key)] = prevalue
		return
	}
	delete(o.dirtyState, string(key))
}

func (o *SimpleAccount) IsEmpty() bool {
	return o.GetBalance().Sign() == 0 && o.GetNonce() == 0 && len(o.dirtyState) == 0
}

// flush writes dirty metadata and state into the batch and promotes it to the
// origin layer.
func (o *SimpleAccount) flush(batch storagemgr.Batch) (bool, error) {
	if o.dirtyAccount == nil && len(o.dirtyState) == 0 {
		return false, nil
	}

	// the metadata record also marks account existence, write it even when
	// only storage changed
	meta := o.dirtyAccount
	if meta == nil {
		meta = o.originAccount.copyOrNew()
	}
	blob, err := json.Marshal(meta)
	if err != nil {
		return false, err
	}
	batch.Put(compositeAccountKey(o.Addr), blob)
	o.backend.Set(compositeAccountKey(o.Addr), blob)
	o.originAccount = meta
	o.dirtyAccount = nil

	for k, v := range o.dirtyState {
		batch.Put(compositeStateKey(o.Addr, []byte(k)), v)
		o.backend.Set(compositeStateKey(o.Addr, []byte(k)), v)
		o.originState[k] = v
	}
	o.dirtyState = make(map[string][]byte)
	o.created = false
	return true, nil
}

func compositeAccountKey(addr ethcommon.Address) []byte {
	return append([]byte("acc-"), addr.Bytes()...)
}

func compositeStateKey(addr ethcommon.Address, key []byte) []byte {
	k := append([]byte("state-"), addr.Bytes()...)
	return append(k, key...)
}
