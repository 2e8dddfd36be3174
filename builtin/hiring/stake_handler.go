// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/thor"
)

// StakeHandler is the part of the stake ledger the hiring module relies on.
type StakeHandler interface {
	CreateStake(block thor.BlockNumber) (stake.StakeID, error)
	Stake(id stake.StakeID, imbalance currency.Imbalance) error
	// InitiateUnstakingAfterSlashes must not fail because slashes are ongoing.
	InitiateUnstakingAfterSlashes(block thor.BlockNumber, id stake.StakeID, period *thor.BlockNumber) error
	StakeAmount(id stake.StakeID) (thor.Balance, error)
	MinimumBalance() thor.Balance
}

var _ StakeHandler = (*stake.Ledger)(nil)
