// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/hiring"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/thor"
)

// The methods below change state and are meant to be called from an
// extrinsic passed to Execute, which rolls them back on error.

func (rt *Runtime) withdraw(account thor.Address, amount *thor.Balance) (*currency.Imbalance, error) {
	if amount == nil {
		return nil, nil
	}
	imbalance, err := rt.balances.Withdraw(account, *amount)
	if err != nil {
		return nil, err
	}
	return &imbalance, nil
}

// AddApplicationFromAccounts funds the stakes of a new application from the
// applicant's free balance. Unstaked funds are refunded to the applicant.
func (rt *Runtime) AddApplicationFromAccounts(
	block thor.BlockNumber,
	opening hiring.OpeningID,
	applicant thor.Address,
	roleAmount *thor.Balance,
	appAmount *thor.Balance,
	text []byte,
) (*hiring.ApplicationAdded, error) {
	// checked first so a crowded out applicant is not charged
	if _, _, err := rt.hiring.EnsureCanAddApplication(opening, roleAmount, appAmount); err != nil {
		return nil, err
	}
	roleStake, err := rt.withdraw(applicant, roleAmount)
	if err != nil {
		return nil, errors.Wrap(err, "role stake")
	}
	appStake, err := rt.withdraw(applicant, appAmount)
	if err != nil {
		return nil, errors.Wrap(err, "application stake")
	}

	added, err := rt.hiring.AddApplication(block, opening, roleStake, appStake, text)
	if err != nil {
		return nil, err
	}
	app, err := rt.hiring.ApplicationByID(added.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range []*stake.StakeID{app.ActiveRoleStakingID, app.ActiveApplicationStakingID} {
		if id == nil {
			continue
		}
		if err := rt.refunds.Set(*id, applicant); err != nil {
			return nil, errors.Wrap(err, "failed to record refund account")
		}
	}
	return added, nil
}

// SlashImmediate slashes the stake now and burns the slashed funds.
func (rt *Runtime) SlashImmediate(block thor.BlockNumber, id stake.StakeID, amount thor.Balance, unstakeOnZero bool) (*stake.SlashImmediateOutcome, error) {
	outcome, err := rt.stakes.SlashImmediate(block, id, amount, unstakeOnZero)
	if err != nil {
		return nil, err
	}
	if err := rt.balances.Burn(outcome.RemainingImbalance); err != nil {
		return nil, errors.Wrap(err, "failed to burn slashed funds")
	}
	outcome.RemainingImbalance = currency.Zero()
	return outcome, nil
}

// Transfer moves funds between accounts.
func (rt *Runtime) Transfer(from, to thor.Address, amount thor.Balance) error {
	imbalance, err := rt.balances.Withdraw(from, amount)
	if err != nil {
		return err
	}
	return rt.balances.Deposit(to, imbalance)
}
