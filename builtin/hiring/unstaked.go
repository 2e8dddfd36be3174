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

// UnstakedResult tells what a stake release meant for its application.
type UnstakedResult uint8

const (
	StakeIDNonExistent UnstakedResult = iota
	ApplicationIsNotUnstaking
	UnstakingInProgress
	Unstaked
)

func (r UnstakedResult) String() string {
	switch r {
	case StakeIDNonExistent:
		return "stake-id-non-existent"
	case ApplicationIsNotUnstaking:
		return "application-is-not-unstaking"
	case UnstakingInProgress:
		return "unstaking-in-progress"
	case Unstaked:
		return "unstaked"
	default:
		return "unknown"
	}
}

// Unstaked clears the released stake from its application. Once the
// application references no stake it becomes inactive.
func (m *Module) Unstaked(block thor.BlockNumber, stakeID stake.StakeID) (UnstakedResult, error) {
	appID, ok, err := m.ApplicationIDByStakingID(stakeID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return StakeIDNonExistent, nil
	}
	app, err := m.ApplicationByID(appID)
	if err != nil {
		return 0, err
	}
	if app.Stage.Kind != ApplicationUnstaking {
		return ApplicationIsNotUnstaking, nil
	}

	if id := app.ActiveRoleStakingID; id != nil && *id == stakeID {
		app.ActiveRoleStakingID = nil
	}
	if id := app.ActiveApplicationStakingID; id != nil && *id == stakeID {
		app.ActiveApplicationStakingID = nil
	}
	m.applicationByStake.Delete(stakeID)

	if app.HasStakes() {
		return UnstakingInProgress, m.setApplication(appID, app)
	}

	app.Stage.Kind = ApplicationInactive
	app.Stage.Deactivated = block
	if err := m.setApplication(appID, app); err != nil {
		return 0, err
	}
	opening, err := m.OpeningByID(app.OpeningID)
	if err != nil {
		return 0, err
	}
	opening.Stage.unstakingToDeactivated()
	opening.Stage.checkCounters(app.OpeningID)
	if err := m.setOpening(app.OpeningID, opening); err != nil {
		return 0, err
	}
	m.deactivated(block, appID, app)
	return Unstaked, nil
}

// StakeEvents returns the handler to register with the stake ledger. Funds
// are passed on untouched.
func (m *Module) StakeEvents() stake.EventsHandler {
	return stakeEvents{m}
}

type stakeEvents struct {
	m *Module
}

func (h stakeEvents) Unstaked(block thor.BlockNumber, id stake.StakeID, _ thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	result, err := h.m.Unstaked(block, id)
	if err != nil {
		return imbalance, err
	}
	logger.Trace("stake unstaked", "stake", id, "result", result)
	return imbalance, nil
}

func (h stakeEvents) Slashed(_ thor.BlockNumber, _ stake.StakeID, _ *stake.SlashID, _, _ thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	return imbalance, nil
}
