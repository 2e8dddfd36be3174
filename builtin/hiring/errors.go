// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/reverts"
)

var (
	ErrOpeningDoesNotExist     = reverts.New(reverts.NotFound, "opening does not exist")
	ErrApplicationDoesNotExist = reverts.New(reverts.NotFound, "application does not exist")

	ErrOpeningIsNotInWaitingToBeginStage      = reverts.New(reverts.InvalidState, "opening is not in waiting to begin stage")
	ErrOpeningNotInAcceptingApplicationsStage = reverts.New(reverts.InvalidState, "opening is not in accepting applications stage")
	ErrOpeningNotInReviewPeriodStage          = reverts.New(reverts.InvalidState, "opening is not in review period stage")
	ErrOpeningNotInCancellableStage           = reverts.New(reverts.InvalidState, "opening is not in a cancellable stage")
	ErrApplicationNotActive                   = reverts.New(reverts.InvalidState, "application is not active")
	ErrApplicationNotInActiveStage            = reverts.New(reverts.InvalidState, "successful application is not in active stage")
	ErrApplicationForWrongOpening             = reverts.New(reverts.InvalidState, "application belongs to another opening")

	ErrStakeAmountTooLow                      = reverts.New(reverts.InvalidAmount, "stake amount too low")
	ErrStakeAmountCannotBeZero                = reverts.New(reverts.InvalidAmount, "stake amount cannot be zero")
	ErrStakeAmountLessThanMinimumStakeBalance = reverts.New(reverts.InvalidAmount, "stake amount less than minimum stake balance")

	ErrStakeMissingWhenRequired              = reverts.New(reverts.PolicyViolation, "stake missing when required")
	ErrStakeProvidedWhenRedundant            = reverts.New(reverts.PolicyViolation, "stake provided when redundant")
	ErrApplicationRationingZeroMaxApplicants = reverts.New(reverts.PolicyViolation, "application rationing has zero max applicants")
	ErrNewApplicationWasCrowdedOut           = reverts.New(reverts.PolicyViolation, "new application was crowded out")

	ErrOpeningMustActivateInTheFuture   = reverts.New(reverts.Timing, "opening must activate in the future")
	ErrUnstakingPeriodTooShort          = reverts.New(reverts.Timing, "unstaking period too short")
	ErrRedundantUnstakingPeriodProvided = reverts.New(reverts.Timing, "redundant unstaking period provided")
)

func purposeErr(err error, purpose StakePurpose) error {
	return errors.Wrap(err, purpose.String())
}

func periodErr(err error, purpose StakePurpose, outcome ApplicationOutcomeInFilledOpening) error {
	return errors.Wrapf(err, "%s stake of %s applicant", purpose, outcome)
}
