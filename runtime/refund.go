// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/thor"
)

// refunder returns unstaked funds to the account that staked them.
type refunder struct {
	refunds  *storage.Mapping[stake.StakeID, thor.Address]
	balances *currency.Balances
}

var _ stake.EventsHandler = (*refunder)(nil)

func (r *refunder) Unstaked(_ thor.BlockNumber, id stake.StakeID, _ thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	exists, err := r.refunds.Exists(id)
	if err != nil {
		return imbalance, errors.Wrap(err, "failed to get refund account")
	}
	if !exists {
		return imbalance, nil
	}
	account, err := r.refunds.Get(id)
	if err != nil {
		return imbalance, errors.Wrap(err, "failed to get refund account")
	}
	r.refunds.Delete(id)

	if err := r.balances.Deposit(account, imbalance); err != nil {
		return imbalance, errors.Wrap(err, "failed to refund stake")
	}
	logger.Debug("stake refunded", "stake", id, "account", account, "amount", imbalance.Peek())
	return currency.Zero(), nil
}

// Slashed funds are not refunded.
func (r *refunder) Slashed(_ thor.BlockNumber, _ stake.StakeID, _ *stake.SlashID, _, _ thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	return imbalance, nil
}
