// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"sync"
)

// StateGetter is the read side of world state
type StateGetter interface {
	GetState(key []byte) []byte
}

// StateChange is one key update produced by a committed unit of work
type StateChange struct {
	Key   []byte
	Value []byte
}

// StateTracker tracks state changes in order.
// It gives the latest changed state for each key and falls back to the
// base state getter for untouched keys. A unit of work mutates a tracker
// and either merges it into its base or drops it, so the base never
// observes a half applied unit.
type StateTracker struct {
	getter StateGetter

	changes     map[string][]byte
	changedKeys [][]byte

	mtx sync.RWMutex
}

func NewStateTracker(getter StateGetter) *StateTracker {
	return &StateTracker{
		getter:      getter,
		changes:     make(map[string][]byte),
		changedKeys: make([][]byte, 0),
	}
}

func (trk *StateTracker) GetState(key []byte) []byte {
	trk.mtx.RLock()
	defer trk.mtx.RUnlock()
	return trk.getState(key)
}

func (trk *StateTracker) SetState(key, value []byte) {
	trk.mtx.Lock()
	defer trk.mtx.Unlock()
	trk.setState(key, value)
}

// Spawn creates a new tracker with current tracker as base StateGetter
func (trk *StateTracker) Spawn() *StateTracker {
	return NewStateTracker(trk)
}

// Merge applies all changes of trk1 onto the current tracker
func (trk *StateTracker) Merge(trk1 *StateTracker) {
	trk.mtx.Lock()
	defer trk.mtx.Unlock()

	trk1.mtx.RLock()
	defer trk1.mtx.RUnlock()

	for _, key := range trk1.changedKeys {
		trk.setState(key, trk1.getState(key))
	}
}

func (trk *StateTracker) StateChanges() []*StateChange {
	trk.mtx.RLock()
	defer trk.mtx.RUnlock()

	scList := make([]*StateChange, len(trk.changedKeys))
	for i, key := range trk.changedKeys {
		value := trk.getState(key)
		scList[i] = &StateChange{key, value}
	}
	return scList
}

func (trk *StateTracker) getState(key []byte) []byte {
	if value, ok := trk.changes[string(key)]; ok {
		return value
	}
	return trk.getter.GetState(key)
}

func (trk *StateTracker) setState(key, value []byte) {
	keyStr := string(key)
	_, tracked := trk.changes[keyStr]
	trk.changes[keyStr] = value
	if !tracked {
		trk.changedKeys = append(trk.changedKeys, key)
	}
}
