// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/hiring/thor"
)

type executedSlash struct {
	slashID   SlashID
	slashed   thor.Balance
	remaining thor.Balance
}

// OnFinalize advances the slashing and unstaking countdowns of every stake,
// in id order. Calling it again for an already finalized block does nothing.
func (l *Ledger) OnFinalize(block thor.BlockNumber) (bool, error) {
	last, err := l.lastFinalized.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get last finalized block")
	}
	if last != 0 && uint64(block) < last {
		return false, nil
	}
	defer func(start time.Time) {
		metricFinalizeDuration().Observe(time.Since(start).Microseconds())
	}(time.Now())

	var pending []StakeID
	err = l.stakes.Iterate(func(key []byte, s *Stake) (bool, error) {
		if s.Staked != nil && (len(s.Staked.Slashes) > 0 || s.Staked.Unstaking != nil) {
			pending = append(pending, StakeIDFromBytes(key))
		}
		return true, nil
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to iterate stakes")
	}

	var (
		slashes  int
		unstaked int
	)
	for _, id := range pending {
		executed, done, err := l.finalizeStake(block, id)
		if err != nil {
			return false, err
		}
		slashes += executed
		if done {
			unstaked++
		}
	}

	if err := l.lastFinalized.Upsert(uint64(block) + 1); err != nil {
		return false, errors.Wrap(err, "failed to set last finalized block")
	}
	if slashes == 0 && unstaked == 0 {
		return false, nil
	}
	logger.Info("🏠performed stake housekeeping", "block", block, "slashes", slashes, "unstaked", unstaked)
	return true, nil
}

func (l *Ledger) finalizeStake(block thor.BlockNumber, id StakeID) (int, bool, error) {
	s, err := l.staked(id)
	if err != nil {
		return 0, false, err
	}
	st := s.Staked
	minimum := l.MinimumBalance()

	var executed []executedSlash
	for _, slash := range st.advanceSlashes(block) {
		slashed := st.applySlash(slash.Amount, minimum)
		executed = append(executed, executedSlash{slashID: slash.ID, slashed: slashed, remaining: st.Amount})
	}
	resumed := st.resumeUnstakingAfterSlashes()
	completed := st.advanceUnstaking(block)

	if err := l.setStake(id, s); err != nil {
		return 0, false, err
	}
	for _, e := range executed {
		if err := l.executeSlash(block, id, e.slashID, e.slashed, e.remaining); err != nil {
			return 0, false, err
		}
	}
	if resumed {
		logger.Debug("unstaking resumed after slashing", "id", id)
		l.emit(UnstakingResumed{ID: id})
	}
	if completed {
		if err := l.completeUnstaking(block, id, s); err != nil {
			return 0, false, err
		}
	}
	return len(executed), completed, nil
}
