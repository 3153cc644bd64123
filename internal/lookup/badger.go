package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "lookup:"

// BadgerCache persists lookups across runs, letting Badger expire entries.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadgerCache opens (or creates) a cache directory at path.
func OpenBadgerCache(path string, logger *slog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open lookup cache: %w", err)
	}
	logger.Debug("lookup cache opened", "path", path)
	return &BadgerCache{db: db, logger: logger}, nil
}

// Close flushes and closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// Get returns the stored entry. Read failures are logged and reported as
// a miss.
func (c *BadgerCache) Get(key string) (Entry, bool) {
	var e Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("lookup cache read failed", "key", key, "error", err)
		}
		return Entry{}, false
	}
	return e, true
}

// Set stores e with the given ttl. A non-positive ttl never expires.
func (c *BadgerCache) Set(key string, e Entry, ttl time.Duration) {
	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("lookup cache encode failed", "key", key, "error", err)
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("lookup cache write failed", "key", key, "error", err)
	}
}

// Len counts live entries.
func (c *BadgerCache) Len() int {
	n := 0
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Clear removes every cached lookup.
func (c *BadgerCache) Clear() error {
	return c.db.DropPrefix([]byte(keyPrefix))
}
