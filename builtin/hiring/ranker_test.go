// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func ranked(id ApplicationID, index uint32, total uint64) RankedApplication {
	return RankedApplication{ID: id, IndexInOpening: index, TotalStake: uint256.NewInt(total)}
}

func TestWouldApplicationGetAdded(t *testing.T) {
	capOf := func(n uint32) *ApplicationRationingPolicy {
		return &ApplicationRationingPolicy{MaxActiveApplicants: n}
	}
	active := []RankedApplication{
		ranked(10, 0, 300),
		ranked(11, 1, 100),
		ranked(12, 2, 100),
		ranked(13, 3, 200),
	}

	tests := []struct {
		name       string
		policy     *ApplicationRationingPolicy
		active     []RankedApplication
		newTotal   uint64
		admitted   bool
		crowdedOut *ApplicationID
	}{
		{"no policy", nil, active, 0, true, nil},
		{"below cap", capOf(5), active, 0, true, nil},
		{"empty opening", capOf(1), nil, 0, true, nil},
		{"newest of the weakest is evicted", capOf(4), active, 101, true, ptr[ApplicationID](12)},
		{"equal to the weakest is rejected", capOf(4), active, 100, false, nil},
		{"weaker than the weakest is rejected", capOf(4), active, 50, false, nil},
		{"over cap still evicts one", capOf(3), active, 1000, true, ptr[ApplicationID](12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := WouldApplicationGetAdded(tt.policy, tt.active, uint256.NewInt(tt.newTotal))
			assert.Equal(t, tt.admitted, eval.Admitted)
			assert.Equal(t, tt.crowdedOut, eval.CrowdedOut)
		})
	}
}

func TestTotalStakeDoesNotOverflow(t *testing.T) {
	total := TotalStake(math.MaxUint64, math.MaxUint64)
	expected := new(uint256.Int).Mul(uint256.NewInt(math.MaxUint64), uint256.NewInt(2))
	assert.Equal(t, expected, total)
	assert.True(t, TotalStake().IsZero())

	// a pair of large stakes outranks a single maximal one
	eval := WouldApplicationGetAdded(
		&ApplicationRationingPolicy{MaxActiveApplicants: 1},
		[]RankedApplication{ranked(1, 0, math.MaxUint64)},
		TotalStake(math.MaxUint64, 1),
	)
	assert.True(t, eval.Admitted)
	assert.Equal(t, ptr[ApplicationID](1), eval.CrowdedOut)
}
