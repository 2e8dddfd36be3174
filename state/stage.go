// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sort"

	"github.com/vechain/hiring/cache"
	"github.com/vechain/hiring/kv"
	"github.com/vechain/hiring/thor"
)

// Stage abstracts a set of changes ready to be written.
type Stage struct {
	store kv.Store
	cache *cache.LRU
	keys  []string
	vals  map[string][]byte
}

func newStage(store kv.Store, c *cache.LRU, changes map[string][]byte) *Stage {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Stage{store: store, cache: c, keys: keys, vals: changes}
}

// Len returns the number of changed keys.
func (s *Stage) Len() int {
	return len(s.keys)
}

// Hash computes a digest of the changes, in key order.
func (s *Stage) Hash() thor.Bytes32 {
	parts := make([][]byte, 0, len(s.keys)*2)
	for _, k := range s.keys {
		parts = append(parts, []byte(k), s.vals[k])
	}
	return thor.Blake2b(parts...)
}

// Commit writes all changes atomically into the store and refreshes the cache.
func (s *Stage) Commit() error {
	bulk := s.store.Bulk()
	for _, k := range s.keys {
		var err error
		if v := s.vals[k]; len(v) == 0 {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	if s.cache != nil {
		for _, k := range s.keys {
			s.cache.Add(rawKey(k), s.vals[k])
		}
	}
	metricStateAccess().AddWithLabel(int64(len(s.keys)), map[string]string{"type": "write", "target": "store"})
	return nil
}
