// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/reverts"
)

var (
	ErrStakeNotFound = reverts.New(reverts.NotFound, "stake not found")
	ErrSlashNotFound = reverts.New(reverts.NotFound, "slash not found")

	ErrNotStaked                             = reverts.New(reverts.InvalidState, "stake is not staked")
	ErrAlreadyStaked                         = reverts.New(reverts.InvalidState, "stake is already staked")
	ErrAlreadyUnstaking                      = reverts.New(reverts.InvalidState, "stake is already unstaking")
	ErrNotUnstaking                          = reverts.New(reverts.InvalidState, "stake is not unstaking")
	ErrAlreadyPaused                         = reverts.New(reverts.InvalidState, "already paused")
	ErrNotPaused                             = reverts.New(reverts.InvalidState, "not paused")
	ErrCannotIncreaseStakeWhileUnstaking     = reverts.New(reverts.InvalidState, "cannot increase stake while unstaking")
	ErrCannotDecreaseStakeWhileUnstaking     = reverts.New(reverts.InvalidState, "cannot decrease stake while unstaking")
	ErrCannotDecreaseStakeWhileOngoingSlahes = reverts.New(reverts.InvalidState, "cannot decrease stake while slashes are ongoing")
	ErrCannotUnstakeWhileSlashesOngoing      = reverts.New(reverts.InvalidState, "cannot unstake while slashes are ongoing")

	ErrCannotStakeZero                    = reverts.New(reverts.InvalidAmount, "cannot stake zero")
	ErrCannotStakeLessThanMinimumBalance  = reverts.New(reverts.InvalidAmount, "cannot stake less than minimum balance")
	ErrCannotChangeStakeByZero            = reverts.New(reverts.InvalidAmount, "cannot change stake by zero")
	ErrInsufficientStake                  = reverts.New(reverts.InvalidAmount, "insufficient stake")
	ErrSlashAmountShouldBeGreaterThanZero = reverts.New(reverts.InvalidAmount, "slash amount should be greater than zero")

	ErrSlashPeriodShouldBeGreaterThanZero = reverts.New(reverts.Timing, "slash period should be greater than zero")

	// ErrInsufficientBalance is returned by the account variants when the source account cannot pay.
	ErrInsufficientBalance = currency.ErrInsufficientBalance
)
