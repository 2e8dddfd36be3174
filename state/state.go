// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vechain/hiring/cache"
	"github.com/vechain/hiring/kv"
	"github.com/vechain/hiring/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// rawKey is the stackedmap key of a store entry.
type rawKey string

// State manages the module storage.
type State struct {
	store kv.Store
	cache *cache.LRU             // committed values, may be nil
	sm    *stackedmap.StackedMap // keeps revisions of uncommitted writes
}

// New create state object. The cache is optional and must only be shared by
// states over the same store.
func New(store kv.Store, c *cache.LRU) *State {
	state := State{
		store: store,
		cache: c,
	}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.cacheGetter(key.(rawKey))
	})
	return &state
}

// Checkout returns a fresh state over the same store, dropping uncommitted writes.
func (s *State) Checkout() *State {
	return New(s.store, s.cache)
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key rawKey) (any, bool, error) {
	if s.cache == nil {
		val, err := s.load(key)
		return val, true, err
	}
	val, err := s.cache.GetOrLoad(key, func(k any) (any, error) {
		return s.load(k.(rawKey))
	})
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *State) load(key rawKey) ([]byte, error) {
	metricStateAccess().AddWithLabel(1, map[string]string{"type": "read", "target": "store"})
	val, err := s.store.Get([]byte(key))
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

// Get returns the value stored under key, or nil if absent.
func (s *State) Get(key []byte) ([]byte, error) {
	v, _, err := s.sm.Get(rawKey(key))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// Has returns whether a non-empty value is stored under key.
func (s *State) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return len(v) > 0, nil
}

// Put sets the value of key. An empty value deletes the key.
func (s *State) Put(key, val []byte) {
	metricStateAccess().AddWithLabel(1, map[string]string{"type": "write", "target": "overlay"})
	s.sm.Put(rawKey(key), bytes.Clone(val))
}

// Delete removes key.
func (s *State) Delete(key []byte) {
	s.Put(key, nil)
}

// Iterate visits all non-empty entries whose key starts with prefix, in
// ascending key order, with uncommitted writes applied.
// The traversal stops when fn returns false.
func (s *State) Iterate(prefix []byte, fn func(key, val []byte) bool) error {
	merged := make(map[string][]byte)

	it := s.store.Iterate(kv.PrefixRange(prefix))
	for it.Next() {
		merged[string(it.Key())] = bytes.Clone(it.Value())
	}
	it.Release()
	if err := it.Error(); err != nil {
		return &Error{err}
	}

	s.sm.Journal(func(k, v any) bool {
		key := string(k.(rawKey))
		if bytes.HasPrefix([]byte(key), prefix) {
			merged[key] = v.([]byte)
		}
		return true
	})

	keys := make([]string, 0, len(merged))
	for k, v := range merged {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn([]byte(k), merged[k]) {
			break
		}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the uncommitted writes for hashing or committing.
func (s *State) Stage() *Stage {
	changes := make(map[string][]byte)
	s.sm.Journal(func(k, v any) bool {
		changes[string(k.(rawKey))] = v.([]byte)
		return true
	})
	return newStage(s.store, s.cache, changes)
}
