// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/thor"
)

func amountOf(imbalance *currency.Imbalance) *thor.Balance {
	if imbalance == nil {
		return nil
	}
	amount := imbalance.Peek()
	return &amount
}

func ensureStakeMatchesPolicy(policy *StakingPolicy, amount *thor.Balance, purpose StakePurpose) error {
	switch {
	case policy == nil && amount != nil:
		return purposeErr(ErrStakeProvidedWhenRedundant, purpose)
	case policy != nil && amount == nil:
		return purposeErr(ErrStakeMissingWhenRequired, purpose)
	case policy != nil && !policy.AcceptsAmount(*amount):
		return purposeErr(ErrStakeAmountTooLow, purpose)
	}
	return nil
}

// EnsureCanAddApplication checks that an application with the given stake
// amounts would be added, and which application it would crowd out.
func (m *Module) EnsureCanAddApplication(openingID OpeningID, roleAmount, appAmount *thor.Balance) (*Opening, AddEvaluation, error) {
	opening, err := m.OpeningByID(openingID)
	if err != nil {
		return nil, AddEvaluation{}, err
	}
	if !opening.Stage.IsIn(AcceptingApplications) {
		return nil, AddEvaluation{}, ErrOpeningNotInAcceptingApplicationsStage
	}
	if err := ensureStakeMatchesPolicy(opening.RoleStakingPolicy, roleAmount, StakePurposeRole); err != nil {
		return nil, AddEvaluation{}, err
	}
	if err := ensureStakeMatchesPolicy(opening.ApplicationStakingPolicy, appAmount, StakePurposeApplication); err != nil {
		return nil, AddEvaluation{}, err
	}

	if opening.ApplicationRationingPolicy == nil {
		return opening, AddEvaluation{Admitted: true}, nil
	}
	ranked, err := m.rankActiveApplications(opening)
	if err != nil {
		return nil, AddEvaluation{}, err
	}
	var amounts []thor.Balance
	for _, a := range []*thor.Balance{roleAmount, appAmount} {
		if a != nil {
			amounts = append(amounts, *a)
		}
	}
	eval := WouldApplicationGetAdded(opening.ApplicationRationingPolicy, ranked, TotalStake(amounts...))
	if !eval.Admitted {
		return nil, AddEvaluation{}, ErrNewApplicationWasCrowdedOut
	}
	return opening, eval, nil
}

func (m *Module) rankActiveApplications(opening *Opening) ([]RankedApplication, error) {
	ids, apps, err := m.activeApplications(opening)
	if err != nil {
		return nil, err
	}
	ranked := make([]RankedApplication, 0, len(ids))
	for i, id := range ids {
		var amounts []thor.Balance
		for _, purpose := range purposes {
			stakeID := apps[i].stakeID(purpose)
			if stakeID == nil {
				continue
			}
			amount, err := m.stakes.StakeAmount(*stakeID)
			if err != nil {
				return nil, errors.Wrap(err, "failed to get stake amount")
			}
			amounts = append(amounts, amount)
		}
		ranked = append(ranked, RankedApplication{
			ID:             id,
			IndexInOpening: apps[i].ApplicationIndexInOpening,
			TotalStake:     TotalStake(amounts...),
		})
	}
	return ranked, nil
}

// AddApplication adds an application to an opening accepting applications.
// The imbalances fund the role and application stakes; on error the caller
// keeps them. If the opening is full the weakest active application is
// crowded out.
func (m *Module) AddApplication(
	block thor.BlockNumber,
	openingID OpeningID,
	roleStake *currency.Imbalance,
	appStake *currency.Imbalance,
	text []byte,
) (*ApplicationAdded, error) {
	opening, eval, err := m.EnsureCanAddApplication(openingID, amountOf(roleStake), amountOf(appStake))
	if err != nil {
		return nil, err
	}

	next, err := nextID(m.applicationsCreated)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate application id")
	}
	id := ApplicationID(next)

	app := &Application{
		OpeningID:                 openingID,
		ApplicationIndexInOpening: uint32(len(opening.Stage.ApplicationsAdded)),
		AddToOpeningInBlock:       block,
		Stage:                     ApplicationStage{Kind: ApplicationActive},
		HumanReadableText:         text,
	}
	if app.ActiveRoleStakingID, err = m.createStake(block, id, roleStake); err != nil {
		return nil, err
	}
	if app.ActiveApplicationStakingID, err = m.createStake(block, id, appStake); err != nil {
		return nil, err
	}
	if err := m.setApplication(id, app); err != nil {
		return nil, err
	}

	opening.Stage.ApplicationsAdded = append(opening.Stage.ApplicationsAdded, id)
	opening.Stage.ActiveApplicationCount++
	opening.Stage.checkCounters(openingID)
	if err := m.setOpening(openingID, opening); err != nil {
		return nil, err
	}

	if eval.CrowdedOut != nil {
		crowdedOut, err := m.ApplicationByID(*eval.CrowdedOut)
		if err != nil {
			return nil, err
		}
		var appPeriod, rolePeriod *thor.BlockNumber
		if p := opening.ApplicationStakingPolicy; p != nil {
			appPeriod = p.CrowdedOutUnstakingPeriodLength
		}
		if p := opening.RoleStakingPolicy; p != nil {
			rolePeriod = p.CrowdedOutUnstakingPeriodLength
		}
		if _, err := m.deactivate(block, *eval.CrowdedOut, crowdedOut, CauseCrowdedOut, appPeriod, rolePeriod); err != nil {
			return nil, err
		}
		logger.Debug("application crowded out", "id", *eval.CrowdedOut, "by", id)
	}

	added := &ApplicationAdded{ID: id, OpeningID: openingID, CrowdedOut: eval.CrowdedOut}
	logger.Debug("application added", "id", id, "opening", openingID)
	m.emit(*added)
	return added, nil
}

// createStake creates and funds a stake owned by the application.
func (m *Module) createStake(block thor.BlockNumber, owner ApplicationID, imbalance *currency.Imbalance) (*stake.StakeID, error) {
	if imbalance == nil {
		return nil, nil
	}
	id, err := m.stakes.CreateStake(block)
	if err != nil {
		return nil, err
	}
	if err := m.stakes.Stake(id, *imbalance); err != nil {
		return nil, err
	}
	if exists, err := m.applicationByStake.Exists(id); err != nil {
		return nil, err
	} else if exists {
		panic("stake is already owned by an application")
	}
	if err := m.applicationByStake.Set(id, owner); err != nil {
		return nil, errors.Wrap(err, "failed to index stake")
	}
	return &id, nil
}

// DeactivateApplication deactivates an active application. The unstaking
// periods are checked against the opening's staking policies.
func (m *Module) DeactivateApplication(
	block thor.BlockNumber,
	id ApplicationID,
	cause ApplicationDeactivationCause,
	appPeriod *thor.BlockNumber,
	rolePeriod *thor.BlockNumber,
) (ApplicationStageKind, error) {
	app, err := m.ApplicationByID(id)
	if err != nil {
		return 0, err
	}
	if app.Stage.Kind != ApplicationActive {
		return 0, ErrApplicationNotActive
	}
	opening, err := m.OpeningByID(app.OpeningID)
	if err != nil {
		return 0, err
	}
	if err := opening.ensureFailedPeriodsOK(appPeriod, rolePeriod); err != nil {
		return 0, err
	}
	return m.deactivate(block, id, app, cause, appPeriod, rolePeriod)
}

// deactivate moves an active application to Unstaking and starts unstaking
// its stakes, or straight to Inactive when it owns none. Stakes released in
// the same call complete the deactivation through Unstaked. It returns the
// resulting stage.
func (m *Module) deactivate(
	block thor.BlockNumber,
	id ApplicationID,
	app *Application,
	cause ApplicationDeactivationCause,
	appPeriod *thor.BlockNumber,
	rolePeriod *thor.BlockNumber,
) (ApplicationStageKind, error) {
	opening, err := m.OpeningByID(app.OpeningID)
	if err != nil {
		return 0, err
	}
	metricDeactivations().AddWithLabel(1, map[string]string{"cause": cause.String()})

	if !app.HasStakes() {
		app.Stage = ApplicationStage{Kind: ApplicationInactive, DeactivationInitiated: block, Deactivated: block, Cause: cause}
		if err := m.setApplication(id, app); err != nil {
			return 0, err
		}
		opening.Stage.activeToDeactivated()
		opening.Stage.checkCounters(app.OpeningID)
		if err := m.setOpening(app.OpeningID, opening); err != nil {
			return 0, err
		}
		m.deactivated(block, id, app)
		return ApplicationInactive, nil
	}

	app.Stage = ApplicationStage{Kind: ApplicationUnstaking, DeactivationInitiated: block, Cause: cause}
	if err := m.setApplication(id, app); err != nil {
		return 0, err
	}
	opening.Stage.activeToUnstaking()
	opening.Stage.checkCounters(app.OpeningID)
	if err := m.setOpening(app.OpeningID, opening); err != nil {
		return 0, err
	}
	logger.Debug("application deactivation initiated", "id", id, "cause", cause)
	m.emit(ApplicationDeactivationInitiated{ID: id, Cause: cause})

	for _, purpose := range purposes {
		stakeID := app.stakeID(purpose)
		if stakeID == nil {
			continue
		}
		period := appPeriod
		if purpose == StakePurposeRole {
			period = rolePeriod
		}
		err := m.stakes.InitiateUnstakingAfterSlashes(block, *stakeID, period)
		if errors.Is(err, stake.ErrNotStaked) {
			// already released, e.g. slashed to zero
			_, err = m.Unstaked(block, *stakeID)
		}
		if err != nil {
			return 0, err
		}
	}

	app, err = m.ApplicationByID(id)
	if err != nil {
		return 0, err
	}
	return app.Stage.Kind, nil
}

// deactivated reports an application that became inactive.
func (m *Module) deactivated(block thor.BlockNumber, id ApplicationID, app *Application) {
	logger.Debug("application deactivated", "id", id, "cause", app.Stage.Cause)
	m.emit(ApplicationDeactivated{ID: id, Cause: app.Stage.Cause})
	if m.onDeactivated != nil {
		m.onDeactivated(block, id, app)
	}
}
