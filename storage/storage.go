// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package storage

import (
	"github.com/aungmawjj/calltoken/execution"
	"github.com/aungmawjj/calltoken/util"
	"github.com/dgraph-io/badger/v3"
)

// data collection prefixes
const (
	_                  byte = iota
	colStateValueByKey      // state value by state key
)

// Storage persists world state. State changes of one unit of work are
// written in a single badger transaction.
type Storage struct {
	db *badger.DB
}

func New(db *badger.DB) *Storage {
	return &Storage{db: db}
}

// GetState returns the stored value for key, nil when not found
func (strg *Storage) GetState(key []byte) []byte {
	val, err := getValue(strg.db, util.ConcatBytes([]byte{colStateValueByKey}, key))
	if err != nil {
		return nil
	}
	return val
}

// Commit atomically applies the given state changes
func (strg *Storage) Commit(scList []*execution.StateChange) error {
	return strg.db.Update(func(txn *badger.Txn) error {
		for _, sc := range scList {
			key := util.ConcatBytes([]byte{colStateValueByKey}, sc.Key)
			if err := txn.Set(key, sc.Value); err != nil {
				return err
			}
		}
		return nil
	})
}
