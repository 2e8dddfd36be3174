// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import (
	"fmt"

	"github.com/vechain/hiring/thor"
)

// Imbalance is an amount already debited from an account and not yet
// credited anywhere. Only a Currency can create one. Dropping an
// imbalance burns its value.
type Imbalance struct {
	amount thor.Balance
}

// Zero returns an empty imbalance.
func Zero() Imbalance {
	return Imbalance{}
}

// Peek returns the amount carried.
func (i Imbalance) Peek() thor.Balance {
	return i.amount
}

func (i Imbalance) IsZero() bool {
	return i.amount == 0
}

// Merge combines two imbalances.
func (i Imbalance) Merge(other Imbalance) Imbalance {
	return Imbalance{amount: thor.SaturatingAdd(i.amount, other.amount)}
}

// Split divides the imbalance into one carrying at most amount and the remainder.
func (i Imbalance) Split(amount thor.Balance) (Imbalance, Imbalance) {
	first := min(amount, i.amount)
	return Imbalance{amount: first}, Imbalance{amount: i.amount - first}
}

func (i Imbalance) String() string {
	return fmt.Sprintf("imbalance(%d)", i.amount)
}
