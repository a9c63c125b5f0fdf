package storagemgr

import (
	"sync"
)

type memoryStorage struct {
	lock sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an in-memory Storage, used by tests and genesis dry runs.
func NewMemory() Storage {
	return &memoryStorage{
		data: make(map[string][]byte),
	}
}

func (m *memoryStorage) Get(key []byte) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	ret := make([]byte, len(v))
	copy(ret, v)
	return ret, nil
}

func (m *memoryStorage) Has(key []byte) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *memoryStorage) Put(key, value []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

func (m *memoryStorage) Delete(key []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}

func (m *memoryStorage) NewBatch() Batch {
	return &memoryBatch{storage: m}
}

type memoryOp struct {
	key    []byte
	value  []byte
	delete bool
}

type memoryBatch struct {
	storage *memoryStorage
	ops     []memoryOp
}

func (b *memoryBatch) Put(key, value []byte) {
	k := make([]byte, len(key))
	copy(k, key)
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, memoryOp{key: k, value: v})
}

func (b *memoryBatch) Delete(key []byte) {
	k := make([]byte, len(key))
	copy(k, key)
	b.ops = append(b.ops, memoryOp{key: k, delete: true})
}

func (b *memoryBatch) Commit() error {
	b.storage.lock.Lock()
	defer b.storage.lock.Unlock()
	for _, op := range b.ops {
		if op.delete {
			delete(b.storage.data, string(op.key))
		} else {
			b.storage.data[string(op.key)] = op.value
		}
	}
	b.ops = nil
	return nil
}

func (b *memoryBatch) Reset() {
	b.ops = nil
}
