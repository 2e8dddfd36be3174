// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"encoding/binary"

	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/thor"
)

type OpeningID uint64

func (id OpeningID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

type ApplicationID uint64

func (id ApplicationID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

// StakePurpose tells the two stakes of an application apart.
type StakePurpose uint8

const (
	StakePurposeRole StakePurpose = iota
	StakePurposeApplication
)

func (p StakePurpose) String() string {
	if p == StakePurposeRole {
		return "role"
	}
	return "application"
}

// ApplicationOutcomeInFilledOpening qualifies the unstaking period errors of fill and cancel.
type ApplicationOutcomeInFilledOpening uint8

const (
	OutcomeSuccess ApplicationOutcomeInFilledOpening = iota
	OutcomeFailed
)

func (o ApplicationOutcomeInFilledOpening) String() string {
	if o == OutcomeSuccess {
		return "successful"
	}
	return "failed"
}

// ActivateOpeningAt selects when a new opening starts accepting applications.
type ActivateOpeningAt struct {
	Exact bool
	Block thor.BlockNumber
}

// ActivateNow opens the opening in the current block.
func ActivateNow() ActivateOpeningAt {
	return ActivateOpeningAt{}
}

// ActivateAt opens the opening when block is finalized.
func ActivateAt(block thor.BlockNumber) ActivateOpeningAt {
	return ActivateOpeningAt{Exact: true, Block: block}
}

// ApplicationRationingPolicy caps the number of active applications.
type ApplicationRationingPolicy struct {
	MaxActiveApplicants uint32
}

type StakingAmountMode uint8

const (
	StakingAmountAtLeast StakingAmountMode = iota
	StakingAmountExact
)

// StakingPolicy describes a stake required by an opening. Nil periods
// unstake right away.
type StakingPolicy struct {
	Amount                                   thor.Balance
	AmountMode                               StakingAmountMode
	CrowdedOutUnstakingPeriodLength          *thor.BlockNumber `rlp:"nil"`
	ReviewPeriodExpiredUnstakingPeriodLength *thor.BlockNumber `rlp:"nil"`
}

// AcceptsAmount reports whether amount satisfies the policy.
func (p *StakingPolicy) AcceptsAmount(amount thor.Balance) bool {
	switch p.AmountMode {
	case StakingAmountAtLeast:
		return amount >= p.Amount
	case StakingAmountExact:
		return amount == p.Amount
	default:
		return false
	}
}

type OpeningStageKind uint8

const (
	OpeningWaitingToBegin OpeningStageKind = iota
	OpeningActive
)

type ActiveOpeningStageKind uint8

const (
	AcceptingApplications ActiveOpeningStageKind = iota
	ReviewPeriod
	Deactivated
)

func (k ActiveOpeningStageKind) String() string {
	switch k {
	case AcceptingApplications:
		return "accepting-applications"
	case ReviewPeriod:
		return "review-period"
	case Deactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

type OpeningDeactivationCause uint8

const (
	OpeningCancelledAcceptingApplications OpeningDeactivationCause = iota + 1
	OpeningCancelledInReviewPeriod
	OpeningDeactivatedByReviewExpiry
	OpeningDeactivatedByFill
)

// ActiveOpeningStage is the sub stage of an active opening. Review and
// deactivation fields are set once the opening reaches those stages.
type ActiveOpeningStage struct {
	Kind                           ActiveOpeningStageKind
	StartedAcceptingApplicationsAt thor.BlockNumber
	ReviewStarted                  bool
	StartedReviewPeriodAt          thor.BlockNumber
	DeactivatedAt                  thor.BlockNumber
	Cause                          OpeningDeactivationCause
}

// OpeningStage is the stage of an opening. BeginsAtBlock applies while
// waiting to begin, the rest once active. The application counters always
// sum to len(ApplicationsAdded).
type OpeningStage struct {
	Kind                        OpeningStageKind
	BeginsAtBlock               thor.BlockNumber
	Active                      ActiveOpeningStage
	ApplicationsAdded           []ApplicationID
	ActiveApplicationCount      uint32
	UnstakingApplicationCount   uint32
	DeactivatedApplicationCount uint32
}

// IsIn reports whether the opening is active in the given sub stage.
func (s *OpeningStage) IsIn(kind ActiveOpeningStageKind) bool {
	return s.Kind == OpeningActive && s.Active.Kind == kind
}

// String names the stage, as used by metrics.
func (s *OpeningStage) String() string {
	if s.Kind == OpeningWaitingToBegin {
		return "waiting-to-begin"
	}
	return s.Active.Kind.String()
}

type Opening struct {
	Created                    thor.BlockNumber
	Stage                      OpeningStage
	MaxReviewPeriodLength      thor.BlockNumber
	ApplicationRationingPolicy *ApplicationRationingPolicy `rlp:"nil"`
	ApplicationStakingPolicy   *StakingPolicy              `rlp:"nil"`
	RoleStakingPolicy          *StakingPolicy              `rlp:"nil"`
	HumanReadableText          []byte
}

func (o *Opening) policy(purpose StakePurpose) *StakingPolicy {
	if purpose == StakePurposeRole {
		return o.RoleStakingPolicy
	}
	return o.ApplicationStakingPolicy
}

type ApplicationStageKind uint8

const (
	ApplicationActive ApplicationStageKind = iota
	ApplicationUnstaking
	ApplicationInactive
)

func (k ApplicationStageKind) String() string {
	switch k {
	case ApplicationActive:
		return "active"
	case ApplicationUnstaking:
		return "unstaking"
	case ApplicationInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

type ApplicationDeactivationCause uint8

const (
	CauseExternal ApplicationDeactivationCause = iota + 1
	CauseNotHired
	CauseCrowdedOut
	CauseOpeningCancelled
	CauseReviewPeriodExpired
)

func (c ApplicationDeactivationCause) String() string {
	switch c {
	case CauseExternal:
		return "external"
	case CauseNotHired:
		return "not-hired"
	case CauseCrowdedOut:
		return "crowded-out"
	case CauseOpeningCancelled:
		return "opening-cancelled"
	case CauseReviewPeriodExpired:
		return "review-period-expired"
	default:
		return "unknown"
	}
}

type ApplicationStage struct {
	Kind                  ApplicationStageKind
	DeactivationInitiated thor.BlockNumber
	Deactivated           thor.BlockNumber
	Cause                 ApplicationDeactivationCause
}

type ApplicationOutcome uint8

const (
	ApplicationOutcomeNone ApplicationOutcome = iota
	ApplicationOutcomeSuccess
)

// Application is a bid against an opening. It exclusively owns its stakes.
type Application struct {
	OpeningID                  OpeningID
	ApplicationIndexInOpening  uint32
	AddToOpeningInBlock        thor.BlockNumber
	ActiveRoleStakingID        *stake.StakeID `rlp:"nil"`
	ActiveApplicationStakingID *stake.StakeID `rlp:"nil"`
	Stage                      ApplicationStage
	Outcome                    ApplicationOutcome
	HumanReadableText          []byte
}

func (a *Application) stakeID(purpose StakePurpose) *stake.StakeID {
	if purpose == StakePurposeRole {
		return a.ActiveRoleStakingID
	}
	return a.ActiveApplicationStakingID
}

// HasStakes reports whether the application still references a stake.
func (a *Application) HasStakes() bool {
	return a.ActiveRoleStakingID != nil || a.ActiveApplicationStakingID != nil
}

var purposes = [...]StakePurpose{StakePurposeRole, StakePurposeApplication}
