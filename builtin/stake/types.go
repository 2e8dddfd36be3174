// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"encoding/binary"
	"sort"

	"github.com/vechain/hiring/thor"
)

// StakeID identifies a stake. IDs are allocated sequentially from one and
// never reused, so zero never names a stake.
type StakeID uint64

func (id StakeID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

// StakeIDFromBytes decodes a key produced by StakeID.Bytes.
func StakeIDFromBytes(b []byte) StakeID {
	return StakeID(binary.BigEndian.Uint64(b))
}

// SlashID identifies a slash within its stake.
type SlashID uint64

// Slash is an ongoing slash waiting for its countdown to reach zero.
type Slash struct {
	ID              SlashID
	StartedAt       thor.BlockNumber
	IsActive        bool
	BlocksRemaining thor.BlockNumber
	Amount          thor.Balance
}

// Unstaking tracks the countdown of a stake being released.
// PausedBySlashing marks a pause caused by a new slash, lifted once no slash remains.
type Unstaking struct {
	StartedAt        thor.BlockNumber
	IsActive         bool
	BlocksRemaining  thor.BlockNumber
	PausedBySlashing bool
}

// Staked is the bookkeeping of a stake holding funds.
type Staked struct {
	Amount      thor.Balance
	Unstaking   *Unstaking `rlp:"nil"` // nil while the stake is in normal status
	NextSlashID SlashID
	Slashes     []*Slash // ordered by ID
}

// Stake is the record kept by the ledger.
type Stake struct {
	CreatedAt thor.BlockNumber
	Staked    *Staked `rlp:"nil"` // nil while not staked
}

// Status is the coarse status of a stake.
type Status uint8

const (
	StatusNotStaked Status = iota
	StatusStaked
	StatusUnstaking
)

func (s Status) String() string {
	switch s {
	case StatusNotStaked:
		return "not-staked"
	case StatusStaked:
		return "staked"
	case StatusUnstaking:
		return "unstaking"
	default:
		return "unknown"
	}
}

func (s *Stake) Status() Status {
	switch {
	case s.Staked == nil:
		return StatusNotStaked
	case s.Staked.Unstaking != nil:
		return StatusUnstaking
	default:
		return StatusStaked
	}
}

func (s *Stake) IsNotStaked() bool {
	return s.Staked == nil
}

// Amount returns the staked amount, zero if not staked.
func (s *Stake) Amount() thor.Balance {
	if s.Staked == nil {
		return 0
	}
	return s.Staked.Amount
}

// Slash returns the ongoing slash with the given id.
func (st *Staked) Slash(id SlashID) (*Slash, bool) {
	i := sort.Search(len(st.Slashes), func(i int) bool { return st.Slashes[i].ID >= id })
	if i < len(st.Slashes) && st.Slashes[i].ID == id {
		return st.Slashes[i], true
	}
	return nil, false
}

func (st *Staked) removeSlash(id SlashID) bool {
	for i, s := range st.Slashes {
		if s.ID == id {
			st.Slashes = append(st.Slashes[:i], st.Slashes[i+1:]...)
			return true
		}
	}
	return false
}

// SlashesTotal sums the amounts of the ongoing slashes.
func (st *Staked) SlashesTotal() thor.Balance {
	var total thor.Balance
	for _, s := range st.Slashes {
		total = thor.SaturatingAdd(total, s.Amount)
	}
	return total
}

// ExpiresAt returns the block the unstaking completes at if it is never paused.
func (u *Unstaking) ExpiresAt(now thor.BlockNumber) thor.BlockNumber {
	return thor.SaturatingAddBlocks(now, u.BlocksRemaining)
}
