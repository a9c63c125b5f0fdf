package storagemgr

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

type leveldbStorage struct {
	db *leveldb.DB
}

// NewLeveldb opens (or creates) a leveldb instance at the given path.
func NewLeveldb(path string) (Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &leveldbStorage{db: db}, nil
}

func (s *leveldbStorage) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err == errors.ErrNotFound {
		return nil, nil
	}
	return v, err
}

func (s *leveldbStorage) Has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

func (s *leveldbStorage) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *leveldbStorage) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

func (s *leveldbStorage) Close() error {
	return s.db.Close()
}

func (s *leveldbStorage) NewBatch() Batch {
	return &leveldbBatch{
		db:    s.db,
		batch: new(leveldb.Batch),
	}
}

type leveldbBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *leveldbBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *leveldbBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *leveldbBatch) Commit() error {
	return b.db.Write(b.batch, nil)
}

func (b *leveldbBatch) Reset() {
	b.batch.Reset()
}
