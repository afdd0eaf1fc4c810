// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sequencer

import (
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// ErrBatchNotFound no batch stored under the requested id
var ErrBatchNotFound = errors.New("batch not found")

const batchPrefix = "batch:"

// Store persists proved batches in a badger database.
type Store struct {
	db *badger.DB
}

// OpenStore opens (or creates) a batch store at path.
func OpenStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemoryStore opens a store that lives only as long as the process.
func OpenInMemoryStore() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores a batch record under its id.
func (s *Store) Put(b *Batch) error {
	buf, err := b.MarshalBinary()
	if err != nil {
		return err
	}
	key := []byte(batchPrefix + b.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

// Get returns the batch stored under id.
func (s *Store) Get(id string) (*Batch, error) {
	key := []byte(batchPrefix + id)
	var out Batch
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return out.UnmarshalBinary(val)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every stored batch, oldest first. Keys are random UUIDs, so
// badger's key order says nothing useful.
func (s *Store) List() ([]*Batch, error) {
	var out []*Batch
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(batchPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var b Batch
			if err := it.Item().Value(func(val []byte) error {
				return b.UnmarshalBinary(val)
			}); err != nil {
				return err
			}
			out = append(out, &b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
