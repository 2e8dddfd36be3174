// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/hiring/thor"
)

// OnFinalize activates openings whose begin block has come and expires
// review periods which ran out. Calling it again for an already finalized
// block does nothing.
func (m *Module) OnFinalize(block thor.BlockNumber) (bool, error) {
	last, err := m.lastFinalized.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get last finalized block")
	}
	if uint64(block) < last {
		return false, nil
	}
	defer func(start time.Time) {
		metricHousekeepDuration().Observe(time.Since(start).Microseconds())
	}(time.Now())

	var begin, expire []OpeningID
	err = m.openings.Iterate(func(key []byte, o *Opening) (bool, error) {
		id := OpeningID(binary.BigEndian.Uint64(key))
		switch {
		case o.Stage.Kind == OpeningWaitingToBegin && o.Stage.BeginsAtBlock <= block:
			begin = append(begin, id)
		case o.Stage.IsIn(ReviewPeriod) && reviewExpiresAt(o) <= block:
			expire = append(expire, id)
		}
		return true, nil
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to iterate openings")
	}

	for _, id := range begin {
		if err := m.BeginAcceptingApplications(block, id); err != nil {
			return false, err
		}
	}
	for _, id := range expire {
		if err := m.expireReviewPeriod(block, id); err != nil {
			return false, err
		}
	}

	if err := m.lastFinalized.Upsert(uint64(block) + 1); err != nil {
		return false, errors.Wrap(err, "failed to set last finalized block")
	}
	if len(begin) == 0 && len(expire) == 0 {
		return false, nil
	}
	logger.Info("🏠performed hiring housekeeping", "block", block, "began", len(begin), "expired", len(expire))
	return true, nil
}

func reviewExpiresAt(o *Opening) thor.BlockNumber {
	return thor.SaturatingAddBlocks(o.Stage.Active.StartedReviewPeriodAt, o.MaxReviewPeriodLength)
}

// expireReviewPeriod deactivates an opening nobody filled in time, together
// with its active applications.
func (m *Module) expireReviewPeriod(block thor.BlockNumber, id OpeningID) error {
	opening, err := m.OpeningByID(id)
	if err != nil {
		return err
	}
	opening.deactivate(block, OpeningDeactivatedByReviewExpiry)
	if err := m.setOpening(id, opening); err != nil {
		return err
	}
	metricReviewDuration().Observe(int64(block - opening.Stage.Active.StartedReviewPeriodAt))

	var appPeriod, rolePeriod *thor.BlockNumber
	if p := opening.ApplicationStakingPolicy; p != nil {
		appPeriod = p.ReviewPeriodExpiredUnstakingPeriodLength
	}
	if p := opening.RoleStakingPolicy; p != nil {
		rolePeriod = p.ReviewPeriodExpiredUnstakingPeriodLength
	}

	appIDs, apps, err := m.activeApplications(opening)
	if err != nil {
		return err
	}
	for i, appID := range appIDs {
		if _, err := m.deactivate(block, appID, apps[i], CauseReviewPeriodExpired, appPeriod, rolePeriod); err != nil {
			return err
		}
	}

	logger.Debug("opening review period expired", "id", id, "applications", len(appIDs))
	m.emit(OpeningReviewPeriodExpired{ID: id})
	return nil
}
