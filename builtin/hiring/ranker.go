// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"github.com/holiman/uint256"

	"github.com/vechain/hiring/thor"
)

// RankedApplication is an active application as seen by the ranker.
type RankedApplication struct {
	ID             ApplicationID
	IndexInOpening uint32
	TotalStake     *uint256.Int
}

// AddEvaluation is the ranker's decision about a new application.
type AddEvaluation struct {
	Admitted   bool
	CrowdedOut *ApplicationID
}

// TotalStake sums stake amounts without overflowing.
func TotalStake(amounts ...thor.Balance) *uint256.Int {
	total := new(uint256.Int)
	for _, a := range amounts {
		total.Add(total, uint256.NewInt(a))
	}
	return total
}

// WouldApplicationGetAdded decides whether a new application with total stake
// newTotal is admitted. Below the cap it always is. At the cap it must beat
// the weakest active application strictly, which is then crowded out. Among
// equally weak applications the newest one goes first.
func WouldApplicationGetAdded(policy *ApplicationRationingPolicy, active []RankedApplication, newTotal *uint256.Int) AddEvaluation {
	if policy == nil || uint64(len(active)) < uint64(policy.MaxActiveApplicants) {
		return AddEvaluation{Admitted: true}
	}
	if len(active) == 0 {
		return AddEvaluation{}
	}

	weakest := active[0]
	for _, a := range active[1:] {
		switch a.TotalStake.Cmp(weakest.TotalStake) {
		case -1:
			weakest = a
		case 0:
			if a.IndexInOpening > weakest.IndexInOpening {
				weakest = a
			}
		}
	}

	if newTotal.Gt(weakest.TotalStake) {
		return AddEvaluation{Admitted: true, CrowdedOut: &weakest.ID}
	}
	return AddEvaluation{}
}
