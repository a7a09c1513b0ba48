package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBPersister stores the blob under a single LevelDB key.
type LevelDBPersister struct {
	db  *leveldb.DB
	key []byte
}

func NewLevelDBPersister(dir, key string) (*LevelDBPersister, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dir, err)
	}
	return &LevelDBPersister{db: db, key: []byte(key)}, nil
}

func (l *LevelDBPersister) Load() ([]byte, error) {
	blob, err := l.db.Get(l.key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get: %w", err)
	}
	return blob, nil
}

func (l *LevelDBPersister) Save(blob []byte) error {
	if err := l.db.Put(l.key, blob, nil); err != nil {
		return fmt.Errorf("leveldb put: %w", err)
	}
	return nil
}

func (l *LevelDBPersister) Close() error {
	return l.db.Close()
}
