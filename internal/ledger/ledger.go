package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"path"
	"sort"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/dyfusion/dyfusion-ledger/internal/storagemgr"
	"github.com/dyfusion/dyfusion-ledger/pkg/loggers"
	"github.com/dyfusion/dyfusion-ledger/pkg/repo"
)

var _ StateLedger = (*StateLedgerImpl)(nil)

type revision struct {
	id           int
	changerIndex int
}

type StateLedgerImpl struct {
	logger  logrus.FieldLogger
	backend storagemgr.Storage
	cache   *storagemgr.CacheWrapper

	accounts map[ethcommon.Address]*SimpleAccount

	validRevisions []revision
	nextRevisionId int
	changer        *stateChanger

	logs []*EvmLog
}

// New opens the state ledger described by the repo config.
func New(rep *repo.Repo) (*StateLedgerImpl, error) {
	var backend storagemgr.Storage
	var err error
	switch rep.Config.Storage.KvType {
	case repo.KVStorageTypeLeveldb:
		backend, err = storagemgr.NewLeveldb(path.Join(rep.RepoRoot, repo.LedgerDirName))
		if err != nil {
			return nil, err
		}
	case repo.KVStorageTypeMemory:
		backend = storagemgr.NewMemory()
	default:
		return nil, fmt.Errorf("unknown kv type %s, expect leveldb or memory", rep.Config.Storage.KvType)
	}
	return newLedger(backend, rep.Config.Storage.KvCacheSize)
}

// NewMemory returns a memory-backed ledger for tests and dry runs.
func NewMemory() *StateLedgerImpl {
	l, err := newLedger(storagemgr.NewMemory(), repo.KVStorageCacheSize)
	if err != nil {
		panic(err)
	}
	return l
}

func newLedger(backend storagemgr.Storage, cacheSizeThousandEntries int) (*StateLedgerImpl, error) {
	cache, err := storagemgr.NewCacheWrapper(backend, cacheSizeThousandEntries*1024)
	if err != nil {
		return nil, err
	}
	return &StateLedgerImpl{
		logger:   loggers.Logger(loggers.Storage),
		backend:  backend,
		cache:    cache,
		accounts: make(map[ethcommon.Address]*SimpleAccount),
		changer:  newChanger(),
	}, nil
}

// account returns an already loaded account, used by journal reverts.
func (l *StateLedgerImpl) account(addr ethcommon.Address) *SimpleAccount {
	return l.accounts[addr]
}

func (l *StateLedgerImpl) GetOrCreateAccount(addr ethcommon.Address) IAccount {
	if acc, ok := l.accounts[addr]; ok {
		return acc
	}
	acc := l.loadAccount(addr)
	if acc == nil {
		acc = newAccount(l.cache, addr, l.changer)
		acc.created = true
		l.accounts[addr] = acc
		l.changer.append(createObjectChange{account: &acc.Addr})
	}
	return acc
}

func (l *StateLedgerImpl) GetAccount(addr ethcommon.Address) IAccount {
	if acc, ok := l.accounts[addr]; ok {
		return acc
	}
	acc := l.loadAccount(addr)
	if acc == nil {
		return nil
	}
	return acc
}

// loadAccount reads the account from the backend, returns nil if it was
// never persisted.
func (l *StateLedgerImpl) loadAccount(addr ethcommon.Address) *SimpleAccount {
	start := time.Now()
	blob, err := l.cache.Get(compositeAccountKey(addr))
	if err != nil {
		l.logger.Errorf("read account %s failed: %s", addr, err)
		return nil
	}
	accountReadDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	if len(blob) == 0 {
		return nil
	}
	meta := &innerAccount{}
	if err := json.Unmarshal(blob, meta); err != nil {
		l.logger.Errorf("unmarshal account %s failed: %s", addr, err)
		return nil
	}
	acc := newAccount(l.cache, addr, l.changer)
	acc.originAccount = meta
	l.accounts[addr] = acc
	return acc
}

func (l *StateLedgerImpl) GetBalance(addr ethcommon.Address) *big.Int {
	acc := l.GetAccount(addr)
	if acc == nil {
		return big.NewInt(0)
	}
	return acc.GetBalance()
}

func (l *StateLedgerImpl) SetBalance(addr ethcommon.Address, balance *big.Int) {
	l.GetOrCreateAccount(addr).SetBalance(balance)
}

func (l *StateLedgerImpl) GetState(addr ethcommon.Address, key []byte) (bool, []byte) {
	acc := l.GetAccount(addr)
	if acc == nil {
		return false, nil
	}
	return acc.GetState(key)
}

func (l *StateLedgerImpl) SetState(addr ethcommon.Address, key []byte, value []byte) {
	l.GetOrCreateAccount(addr).SetState(key, value)
}

func (l *StateLedgerImpl) AddLog(log *EvmLog) {
	l.changer.append(addLogChange{})
	l.logs = append(l.logs, log)
}

func (l *StateLedgerImpl) GetLogs() []*EvmLog {
	return l.logs
}

func (l *StateLedgerImpl) ClearLogs() {
	l.logs = nil
}

func (l *StateLedgerImpl) Snapshot() int {
	id := l.nextRevisionId
	l.nextRevisionId++
	l.validRevisions = append(l.validRevisions, revision{id: id, changerIndex: l.changer.length()})
	return id
}

func (l *StateLedgerImpl) RevertToSnapshot(revid int) {
	idx := sort.Search(len(l.validRevisions), func(i int) bool {
		return l.validRevisions[i].id >= revid
	})
	if idx == len(l.validRevisions) || l.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := l.validRevisions[idx].changerIndex

	l.changer.revert(l, snapshot)
	l.validRevisions = l.validRevisions[:idx]
}

func (l *StateLedgerImpl) Finalise() {
	l.changer.reset()
	l.validRevisions = l.validRevisions[:0]
	l.nextRevisionId = 0
}

func (l *StateLedgerImpl) Commit() error {
	start := time.Now()
	l.Finalise()

	batch := l.backend.NewBatch()
	dirtyAccounts := 0
	for _, acc := range l.accounts {
		dirty, err := acc.flush(batch)
		if err != nil {
			return err
		}
		if dirty {
			dirtyAccounts++
		}
	}
	if err := batch.Commit(); err != nil {
		return err
	}

	persistDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	dirtyAccountsGauge.Set(float64(dirtyAccounts))
	l.logger.Debugf("committed %d dirty accounts", dirtyAccounts)
	return nil
}

func (l *StateLedgerImpl) Close() error {
	return l.backend.Close()
}
