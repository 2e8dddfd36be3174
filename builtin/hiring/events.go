// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"github.com/vechain/hiring/thor"
)

const moduleName = "hiring"

type (
	OpeningAdded struct {
		ID      OpeningID
		Waiting bool
	}
	OpeningBeganAcceptingApplications struct {
		ID OpeningID
	}
	OpeningBeganReview struct {
		ID OpeningID
	}
	// OpeningFilled carries the unstaking period the caller chose for the
	// role stakes of hired applicants, which stay untouched here.
	OpeningFilled struct {
		ID                                 OpeningID
		Successful                         []ApplicationID
		SuccessfulRoleStakeUnstakingPeriod *thor.BlockNumber
	}
	// OpeningCancelled is also the result of CancelOpening.
	OpeningCancelled struct {
		ID                              OpeningID
		NumberOfUnstakingApplications   uint32
		NumberOfDeactivatedApplications uint32
	}
	OpeningReviewPeriodExpired struct {
		ID OpeningID
	}
	// ApplicationAdded is also the result of AddApplication.
	ApplicationAdded struct {
		ID         ApplicationID
		OpeningID  OpeningID
		CrowdedOut *ApplicationID
	}
	ApplicationHired struct {
		ID        ApplicationID
		OpeningID OpeningID
	}
	ApplicationDeactivationInitiated struct {
		ID    ApplicationID
		Cause ApplicationDeactivationCause
	}
	ApplicationDeactivated struct {
		ID    ApplicationID
		Cause ApplicationDeactivationCause
	}
)

func (OpeningAdded) Module() string                      { return moduleName }
func (OpeningAdded) Name() string                        { return "OpeningAdded" }
func (OpeningBeganAcceptingApplications) Module() string { return moduleName }
func (OpeningBeganAcceptingApplications) Name() string   { return "OpeningBeganAcceptingApplications" }
func (OpeningBeganReview) Module() string                { return moduleName }
func (OpeningBeganReview) Name() string                  { return "OpeningBeganReview" }
func (OpeningFilled) Module() string                     { return moduleName }
func (OpeningFilled) Name() string                       { return "OpeningFilled" }
func (OpeningCancelled) Module() string                  { return moduleName }
func (OpeningCancelled) Name() string                    { return "OpeningCancelled" }
func (OpeningReviewPeriodExpired) Module() string        { return moduleName }
func (OpeningReviewPeriodExpired) Name() string          { return "OpeningReviewPeriodExpired" }
func (ApplicationAdded) Module() string                  { return moduleName }
func (ApplicationAdded) Name() string                    { return "ApplicationAdded" }
func (ApplicationHired) Module() string                  { return moduleName }
func (ApplicationHired) Name() string                    { return "ApplicationHired" }
func (ApplicationDeactivationInitiated) Module() string  { return moduleName }
func (ApplicationDeactivationInitiated) Name() string    { return "ApplicationDeactivationInitiated" }
func (ApplicationDeactivated) Module() string            { return moduleName }
func (ApplicationDeactivated) Name() string              { return "ApplicationDeactivated" }
