// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache hits and misses.
type Stats struct {
	hit, miss atomic.Int64
	permille  atomic.Int32
}

// Hit records a hit.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Snapshot is a point in time read of Stats.
type Snapshot struct {
	Hit  int64
	Miss int64
	// Changed is set when the hit rate, in permille, moved since the previous snapshot.
	Changed bool
}

// HitRate returns hits over lookups, 0 without lookups.
func (s Snapshot) HitRate() float64 {
	if lookups := s.Hit + s.Miss; lookups > 0 {
		return float64(s.Hit) / float64(lookups)
	}
	return 0
}

// Snapshot reads the counters.
func (cs *Stats) Snapshot() Snapshot {
	s := Snapshot{Hit: cs.hit.Load(), Miss: cs.miss.Load()}
	permille := int32(s.HitRate() * 1000)
	s.Changed = cs.permille.Swap(permille) != permille
	return s
}
