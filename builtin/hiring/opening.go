// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/hiring/thor"
)

// OpeningParams describes a new opening.
type OpeningParams struct {
	ActivateAt                 ActivateOpeningAt
	MaxReviewPeriodLength      thor.BlockNumber
	ApplicationRationingPolicy *ApplicationRationingPolicy
	ApplicationStakingPolicy   *StakingPolicy
	RoleStakingPolicy          *StakingPolicy
	HumanReadableText          []byte
}

// normalizePolicy treats zero unstaking periods as immediate.
func normalizePolicy(p *StakingPolicy) *StakingPolicy {
	if p == nil {
		return nil
	}
	out := *p
	if out.CrowdedOutUnstakingPeriodLength != nil && *out.CrowdedOutUnstakingPeriodLength == 0 {
		out.CrowdedOutUnstakingPeriodLength = nil
	}
	if out.ReviewPeriodExpiredUnstakingPeriodLength != nil && *out.ReviewPeriodExpiredUnstakingPeriodLength == 0 {
		out.ReviewPeriodExpiredUnstakingPeriodLength = nil
	}
	return &out
}

// EnsureCanAddOpening validates params against the current block.
func (m *Module) EnsureCanAddOpening(block thor.BlockNumber, params *OpeningParams) error {
	if params.ActivateAt.Exact && params.ActivateAt.Block <= block {
		return ErrOpeningMustActivateInTheFuture
	}
	if p := params.ApplicationRationingPolicy; p != nil && p.MaxActiveApplicants == 0 {
		return ErrApplicationRationingZeroMaxApplicants
	}
	for _, purpose := range purposes {
		policy := params.ApplicationStakingPolicy
		if purpose == StakePurposeRole {
			policy = params.RoleStakingPolicy
		}
		if policy == nil {
			continue
		}
		if policy.Amount == 0 {
			return purposeErr(ErrStakeAmountCannotBeZero, purpose)
		}
		if policy.Amount < m.stakes.MinimumBalance() {
			return purposeErr(ErrStakeAmountLessThanMinimumStakeBalance, purpose)
		}
	}
	return nil
}

// AddOpening creates an opening, waiting to begin or already accepting applications.
func (m *Module) AddOpening(block thor.BlockNumber, params *OpeningParams) (OpeningID, error) {
	if err := m.EnsureCanAddOpening(block, params); err != nil {
		return 0, err
	}

	opening := &Opening{
		Created:                    block,
		MaxReviewPeriodLength:      params.MaxReviewPeriodLength,
		ApplicationRationingPolicy: params.ApplicationRationingPolicy,
		ApplicationStakingPolicy:   normalizePolicy(params.ApplicationStakingPolicy),
		RoleStakingPolicy:          normalizePolicy(params.RoleStakingPolicy),
		HumanReadableText:          params.HumanReadableText,
	}
	if params.ActivateAt.Exact {
		opening.Stage = OpeningStage{Kind: OpeningWaitingToBegin, BeginsAtBlock: params.ActivateAt.Block}
	} else {
		opening.Stage = OpeningStage{
			Kind:   OpeningActive,
			Active: ActiveOpeningStage{Kind: AcceptingApplications, StartedAcceptingApplicationsAt: block},
		}
	}

	next, err := nextID(m.openingsCreated)
	if err != nil {
		return 0, errors.Wrap(err, "failed to allocate opening id")
	}
	id := OpeningID(next)
	if err := m.setOpening(id, opening); err != nil {
		return 0, err
	}

	logger.Debug("opening added", "id", id, "waiting", params.ActivateAt.Exact)
	m.emit(OpeningAdded{ID: id, Waiting: params.ActivateAt.Exact})
	return id, nil
}

// BeginAcceptingApplications activates an opening waiting to begin.
func (m *Module) BeginAcceptingApplications(block thor.BlockNumber, id OpeningID) error {
	opening, err := m.OpeningByID(id)
	if err != nil {
		return err
	}
	if opening.Stage.Kind != OpeningWaitingToBegin {
		return ErrOpeningIsNotInWaitingToBeginStage
	}
	opening.Stage = OpeningStage{
		Kind:   OpeningActive,
		Active: ActiveOpeningStage{Kind: AcceptingApplications, StartedAcceptingApplicationsAt: block},
	}
	if err := m.setOpening(id, opening); err != nil {
		return err
	}

	logger.Debug("opening began accepting applications", "id", id, "block", block)
	m.emit(OpeningBeganAcceptingApplications{ID: id})
	return nil
}

// BeginReview stops accepting applications and starts the review period.
func (m *Module) BeginReview(block thor.BlockNumber, id OpeningID) error {
	opening, err := m.OpeningByID(id)
	if err != nil {
		return err
	}
	if !opening.Stage.IsIn(AcceptingApplications) {
		return ErrOpeningNotInAcceptingApplicationsStage
	}
	opening.Stage.Active.Kind = ReviewPeriod
	opening.Stage.Active.ReviewStarted = true
	opening.Stage.Active.StartedReviewPeriodAt = block
	if err := m.setOpening(id, opening); err != nil {
		return err
	}

	logger.Debug("opening began review", "id", id, "block", block)
	m.emit(OpeningBeganReview{ID: id})
	return nil
}

// ensureUnstakingPeriodOK validates a caller supplied unstaking period for
// the stakes of the given purpose.
func ensureUnstakingPeriodOK(policy *StakingPolicy, period *thor.BlockNumber, purpose StakePurpose, outcome ApplicationOutcomeInFilledOpening) error {
	if period == nil {
		return nil
	}
	if *period < 1 {
		return periodErr(ErrUnstakingPeriodTooShort, purpose, outcome)
	}
	if policy == nil {
		return periodErr(ErrRedundantUnstakingPeriodProvided, purpose, outcome)
	}
	return nil
}

func (o *Opening) ensureFailedPeriodsOK(appPeriod, rolePeriod *thor.BlockNumber) error {
	if err := ensureUnstakingPeriodOK(o.ApplicationStakingPolicy, appPeriod, StakePurposeApplication, OutcomeFailed); err != nil {
		return err
	}
	return ensureUnstakingPeriodOK(o.RoleStakingPolicy, rolePeriod, StakePurposeRole, OutcomeFailed)
}

// deactivate moves an active opening to its terminal stage.
func (o *Opening) deactivate(block thor.BlockNumber, cause OpeningDeactivationCause) {
	o.Stage.Active.Kind = Deactivated
	o.Stage.Active.DeactivatedAt = block
	o.Stage.Active.Cause = cause
}

// activeApplications returns the opening's active applications in id order.
func (m *Module) activeApplications(opening *Opening) ([]ApplicationID, []*Application, error) {
	ids := slices.Clone(opening.Stage.ApplicationsAdded)
	slices.Sort(ids)

	var (
		activeIDs []ApplicationID
		active    []*Application
	)
	for _, id := range ids {
		app, err := m.ApplicationByID(id)
		if err != nil {
			return nil, nil, err
		}
		if app.Stage.Kind == ApplicationActive {
			activeIDs = append(activeIDs, id)
			active = append(active, app)
		}
	}
	return activeIDs, active, nil
}

// CancelOpening deactivates an opening accepting applications or in review.
// Its active applications are deactivated with cause OpeningCancelled.
func (m *Module) CancelOpening(block thor.BlockNumber, id OpeningID, appPeriod, rolePeriod *thor.BlockNumber) (*OpeningCancelled, error) {
	opening, err := m.OpeningByID(id)
	if err != nil {
		return nil, err
	}

	var cause OpeningDeactivationCause
	switch {
	case opening.Stage.IsIn(AcceptingApplications):
		cause = OpeningCancelledAcceptingApplications
	case opening.Stage.IsIn(ReviewPeriod):
		cause = OpeningCancelledInReviewPeriod
	default:
		return nil, ErrOpeningNotInCancellableStage
	}
	if err := opening.ensureFailedPeriodsOK(appPeriod, rolePeriod); err != nil {
		return nil, err
	}

	opening.deactivate(block, cause)
	if err := m.setOpening(id, opening); err != nil {
		return nil, err
	}

	result := &OpeningCancelled{ID: id}
	appIDs, apps, err := m.activeApplications(opening)
	if err != nil {
		return nil, err
	}
	for i, appID := range appIDs {
		kind, err := m.deactivate(block, appID, apps[i], CauseOpeningCancelled, appPeriod, rolePeriod)
		if err != nil {
			return nil, err
		}
		if kind == ApplicationUnstaking {
			result.NumberOfUnstakingApplications++
		} else {
			result.NumberOfDeactivatedApplications++
		}
	}

	logger.Debug("opening cancelled", "id", id,
		"unstaking", result.NumberOfUnstakingApplications,
		"deactivated", result.NumberOfDeactivatedApplications,
	)
	m.emit(*result)
	return result, nil
}

// FillOpening ends the review period. Successful applications stay active
// with a successful outcome and keep their stakes. Every other active
// application is deactivated with cause NotHired.
func (m *Module) FillOpening(
	block thor.BlockNumber,
	id OpeningID,
	successful []ApplicationID,
	successfulRolePeriod *thor.BlockNumber,
	failedAppPeriod *thor.BlockNumber,
	failedRolePeriod *thor.BlockNumber,
) error {
	opening, err := m.OpeningByID(id)
	if err != nil {
		return err
	}
	if !opening.Stage.IsIn(ReviewPeriod) {
		return ErrOpeningNotInReviewPeriodStage
	}
	if err := ensureUnstakingPeriodOK(opening.RoleStakingPolicy, successfulRolePeriod, StakePurposeRole, OutcomeSuccess); err != nil {
		return err
	}
	if err := opening.ensureFailedPeriodsOK(failedAppPeriod, failedRolePeriod); err != nil {
		return err
	}

	hired := slices.Clone(successful)
	slices.Sort(hired)
	hired = slices.Compact(hired)
	hiredApps := make([]*Application, 0, len(hired))
	for _, appID := range hired {
		app, err := m.ApplicationByID(appID)
		if err != nil {
			return err
		}
		if app.OpeningID != id {
			return ErrApplicationForWrongOpening
		}
		if app.Stage.Kind != ApplicationActive {
			return ErrApplicationNotInActiveStage
		}
		hiredApps = append(hiredApps, app)
	}

	opening.deactivate(block, OpeningDeactivatedByFill)
	if err := m.setOpening(id, opening); err != nil {
		return err
	}
	metricReviewDuration().Observe(int64(block - opening.Stage.Active.StartedReviewPeriodAt))

	for i, appID := range hired {
		app := hiredApps[i]
		app.Outcome = ApplicationOutcomeSuccess
		if err := m.setApplication(appID, app); err != nil {
			return err
		}
		m.emit(ApplicationHired{ID: appID, OpeningID: id})
	}

	appIDs, apps, err := m.activeApplications(opening)
	if err != nil {
		return err
	}
	for i, appID := range appIDs {
		if _, ok := slices.BinarySearch(hired, appID); ok {
			continue
		}
		if _, err := m.deactivate(block, appID, apps[i], CauseNotHired, failedAppPeriod, failedRolePeriod); err != nil {
			return err
		}
	}

	logger.Debug("opening filled", "id", id, "hired", len(hired))
	m.emit(OpeningFilled{ID: id, Successful: hired, SuccessfulRoleStakeUnstakingPeriod: successfulRolePeriod})
	return nil
}
