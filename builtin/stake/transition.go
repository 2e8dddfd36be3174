// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"fmt"

	"github.com/vechain/hiring/thor"
)

//
// Pure transitions of a Staked record. None of them touch storage or funds.
//

func (st *Staked) ensureCanIncrease(amount thor.Balance) error {
	if amount == 0 {
		return ErrCannotChangeStakeByZero
	}
	if st.Unstaking != nil {
		return ErrCannotIncreaseStakeWhileUnstaking
	}
	return nil
}

func (st *Staked) increase(amount thor.Balance) (thor.Balance, error) {
	if err := st.ensureCanIncrease(amount); err != nil {
		return 0, err
	}
	st.Amount = thor.SaturatingAdd(st.Amount, amount)
	return st.Amount, nil
}

// decreasable returns the amount that would actually be taken by a decrease.
// A remainder below minimum is taken as well.
func (st *Staked) decreasable(amount, minimum thor.Balance) (thor.Balance, error) {
	if amount == 0 {
		return 0, ErrCannotChangeStakeByZero
	}
	if st.Unstaking != nil {
		return 0, ErrCannotDecreaseStakeWhileUnstaking
	}
	if len(st.Slashes) > 0 {
		return 0, ErrCannotDecreaseStakeWhileOngoingSlahes
	}
	if amount > st.Amount {
		return 0, ErrInsufficientStake
	}
	if st.Amount-amount < minimum {
		return st.Amount, nil
	}
	return amount, nil
}

func (st *Staked) decrease(amount, minimum thor.Balance) (thor.Balance, error) {
	deducted, err := st.decreasable(amount, minimum)
	if err != nil {
		return 0, err
	}
	st.Amount -= deducted
	return deducted, nil
}

// applySlash reduces the staked amount by at most amount and returns what was taken.
// Ongoing slashes are trimmed so that their sum never exceeds the new amount.
func (st *Staked) applySlash(amount, minimum thor.Balance) thor.Balance {
	slashed := min(amount, st.Amount)
	if st.Amount-slashed < minimum {
		slashed = st.Amount
	}
	st.Amount -= slashed

	budget := st.Amount
	for _, s := range st.Slashes {
		s.Amount = min(s.Amount, budget)
		budget -= s.Amount
	}
	return slashed
}

// headroom is the amount not yet claimed by ongoing slashes.
func (st *Staked) headroom() thor.Balance {
	return thor.SaturatingSub(st.Amount, st.SlashesTotal())
}

func (st *Staked) initiateSlash(block thor.BlockNumber, amount thor.Balance, period thor.BlockNumber) (*Slash, error) {
	if period == 0 {
		return nil, ErrSlashPeriodShouldBeGreaterThanZero
	}
	if amount == 0 {
		return nil, ErrSlashAmountShouldBeGreaterThanZero
	}
	headroom := st.headroom()
	if headroom == 0 {
		return nil, ErrInsufficientStake
	}

	slash := &Slash{
		ID:              st.NextSlashID,
		StartedAt:       block,
		IsActive:        true,
		BlocksRemaining: period,
		Amount:          min(amount, headroom),
	}
	st.NextSlashID++
	st.Slashes = append(st.Slashes, slash)

	if u := st.Unstaking; u != nil && u.IsActive {
		u.IsActive = false
		u.PausedBySlashing = true
	}
	return slash, nil
}

func (st *Staked) pauseSlash(id SlashID) error {
	slash, ok := st.Slash(id)
	if !ok {
		return ErrSlashNotFound
	}
	if !slash.IsActive {
		return ErrAlreadyPaused
	}
	slash.IsActive = false
	return nil
}

func (st *Staked) resumeSlash(id SlashID) error {
	slash, ok := st.Slash(id)
	if !ok {
		return ErrSlashNotFound
	}
	if slash.IsActive {
		return ErrNotPaused
	}
	slash.IsActive = true
	return nil
}

func (st *Staked) cancelSlash(id SlashID) error {
	if !st.removeSlash(id) {
		return ErrSlashNotFound
	}
	st.resumeUnstakingAfterSlashes()
	return nil
}

// resumeUnstakingAfterSlashes lifts a pause caused by slashing once no slash remains.
// A pause requested explicitly is kept.
func (st *Staked) resumeUnstakingAfterSlashes() bool {
	u := st.Unstaking
	if u == nil || !u.PausedBySlashing || len(st.Slashes) > 0 {
		return false
	}
	u.IsActive = true
	u.PausedBySlashing = false
	return true
}

// initiateUnstaking starts the unstaking countdown. A nil or zero period means
// the stake unstakes right away, which is reported by returning true.
func (st *Staked) initiateUnstaking(block thor.BlockNumber, period *thor.BlockNumber) (bool, error) {
	if st.Unstaking != nil {
		return false, ErrAlreadyUnstaking
	}
	if len(st.Slashes) > 0 {
		return false, ErrCannotUnstakeWhileSlashesOngoing
	}
	if period == nil || *period == 0 {
		return true, nil
	}
	st.Unstaking = &Unstaking{
		StartedAt:       block,
		IsActive:        true,
		BlocksRemaining: *period,
	}
	return false, nil
}

// deferUnstaking creates an unstaking that waits for the ongoing slashes, as
// if slashing had paused it. It reports false when no slash is ongoing.
func (st *Staked) deferUnstaking(block thor.BlockNumber, period *thor.BlockNumber) (bool, error) {
	if st.Unstaking != nil {
		return false, ErrAlreadyUnstaking
	}
	if len(st.Slashes) == 0 {
		return false, nil
	}
	var blocks thor.BlockNumber
	if period != nil {
		blocks = *period
	}
	st.Unstaking = &Unstaking{
		StartedAt:        block,
		BlocksRemaining:  blocks,
		PausedBySlashing: true,
	}
	return true, nil
}

func (st *Staked) pauseUnstaking() error {
	u := st.Unstaking
	if u == nil {
		return ErrNotUnstaking
	}
	if !u.IsActive {
		return ErrAlreadyPaused
	}
	u.IsActive = false
	return nil
}

func (st *Staked) resumeUnstaking() error {
	u := st.Unstaking
	if u == nil {
		return ErrNotUnstaking
	}
	if u.IsActive {
		return ErrNotPaused
	}
	if len(st.Slashes) > 0 {
		return ErrCannotUnstakeWhileSlashesOngoing
	}
	u.IsActive = true
	u.PausedBySlashing = false
	return nil
}

// advanceSlashes counts down active slashes and removes the ones that are due.
// Slashes started in block do not advance until the next one.
func (st *Staked) advanceSlashes(block thor.BlockNumber) []*Slash {
	var due []*Slash
	kept := st.Slashes[:0]
	for _, s := range st.Slashes {
		if s.IsActive && s.StartedAt != block {
			s.BlocksRemaining--
			if s.BlocksRemaining == 0 {
				due = append(due, s)
				continue
			}
		}
		kept = append(kept, s)
	}
	st.Slashes = kept
	return due
}

// advanceUnstaking counts down an active unstaking and reports whether it completed.
// A deferred unstaking without a period completes as soon as it is active.
func (st *Staked) advanceUnstaking(block thor.BlockNumber) bool {
	u := st.Unstaking
	if u == nil || !u.IsActive {
		return false
	}
	if u.BlocksRemaining == 0 {
		return true
	}
	if u.StartedAt == block {
		return false
	}
	u.BlocksRemaining--
	return u.BlocksRemaining == 0
}

// checkInvariants panics when ongoing slashes claim more than the staked amount.
func (st *Staked) checkInvariants(id StakeID) {
	if total := st.SlashesTotal(); total > st.Amount {
		msg := fmt.Sprintf("stake %d: ongoing slashes %d exceed staked amount %d", id, total, st.Amount)
		logger.Error("invariant violated", "stake", id, "slashes", total, "staked", st.Amount)
		panic(msg)
	}
}
