// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/hiring/builtin/reverts"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/thor"
)

func stakedOpening(amount thor.Balance, crowdedOutPeriod *thor.BlockNumber) *OpeningParams {
	return &OpeningParams{
		ActivateAt:            ActivateNow(),
		MaxReviewPeriodLength: 10,
		ApplicationStakingPolicy: &StakingPolicy{
			Amount:                          amount,
			AmountMode:                      StakingAmountAtLeast,
			CrowdedOutUnstakingPeriodLength: crowdedOutPeriod,
		},
	}
}

func TestAddOpening(t *testing.T) {
	ht := newHiringTest(t, 10)

	tests := []struct {
		name    string
		params  *OpeningParams
		err     error
		purpose string
	}{
		{"activation in the current block", &OpeningParams{ActivateAt: ActivateAt(5)}, ErrOpeningMustActivateInTheFuture, ""},
		{"activation in the past", &OpeningParams{ActivateAt: ActivateAt(4)}, ErrOpeningMustActivateInTheFuture, ""},
		{
			"zero max applicants",
			&OpeningParams{ApplicationRationingPolicy: &ApplicationRationingPolicy{}},
			ErrApplicationRationingZeroMaxApplicants, "",
		},
		{
			"zero role stake",
			&OpeningParams{RoleStakingPolicy: &StakingPolicy{}},
			ErrStakeAmountCannotBeZero, "role",
		},
		{
			"application stake below minimum",
			&OpeningParams{ApplicationStakingPolicy: &StakingPolicy{Amount: 9}},
			ErrStakeAmountLessThanMinimumStakeBalance, "application",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ht.AddOpening(5, tt.params)
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, reverts.IsRevertErr(err))
			if tt.purpose != "" {
				assert.Contains(t, err.Error(), tt.purpose)
			}
		})
	}
	exists, err := ht.OpeningExists(0)
	require.NoError(t, err)
	assert.False(t, exists)

	now := ht.addOpening(5, stakedOpening(10, ptr[thor.BlockNumber](0)))
	opening := ht.opening(now)
	assert.True(t, opening.Stage.IsIn(AcceptingApplications))
	assert.Equal(t, thor.BlockNumber(5), opening.Stage.Active.StartedAcceptingApplicationsAt)
	assert.Nil(t, opening.ApplicationStakingPolicy.CrowdedOutUnstakingPeriodLength, "zero periods mean immediate")

	later := ht.addOpening(5, &OpeningParams{ActivateAt: ActivateAt(8), HumanReadableText: []byte("later")})
	assert.Equal(t, OpeningID(1), later)
	opening = ht.opening(later)
	assert.Equal(t, OpeningWaitingToBegin, opening.Stage.Kind)
	assert.Equal(t, "waiting-to-begin", opening.Stage.String())
	assert.Equal(t, []byte("later"), opening.HumanReadableText)
}

func TestOpeningLifecycle(t *testing.T) {
	ht := newHiringTest(t, 1)
	id := ht.addOpening(1, &OpeningParams{ActivateAt: ActivateAt(3), MaxReviewPeriodLength: 2})

	assert.ErrorIs(t, ht.BeginReview(1, id), ErrOpeningNotInAcceptingApplicationsStage)
	_, err := ht.apply(1, id, 10)
	assert.ErrorIs(t, err, ErrOpeningNotInAcceptingApplicationsStage)

	ht.finalize(1, 2)
	assert.Equal(t, OpeningWaitingToBegin, ht.opening(id).Stage.Kind)
	ht.finalize(3, 3)
	AssertOpening(ht.Module, id).Stage(AcceptingApplications).Assert(t)
	assert.Equal(t, thor.BlockNumber(3), ht.opening(id).Stage.Active.StartedAcceptingApplicationsAt)

	assert.ErrorIs(t, ht.BeginAcceptingApplications(4, id), ErrOpeningIsNotInWaitingToBeginStage)
	require.NoError(t, ht.BeginReview(4, id))
	assert.ErrorIs(t, ht.BeginReview(4, id), ErrOpeningNotInAcceptingApplicationsStage)
	opening := ht.opening(id)
	assert.True(t, opening.Stage.Active.ReviewStarted)
	assert.Equal(t, thor.BlockNumber(4), opening.Stage.Active.StartedReviewPeriodAt)

	ht.finalize(4, 5)
	AssertOpening(ht.Module, id).Stage(ReviewPeriod).Assert(t)
	ht.finalize(6, 6)
	AssertOpening(ht.Module, id).Stage(Deactivated).Cause(OpeningDeactivatedByReviewExpiry).Assert(t)

	assert.ErrorIs(t, ht.BeginAcceptingApplications(7, 42), ErrOpeningDoesNotExist)
	assert.Equal(t, []string{
		"OpeningAdded",
		"OpeningBeganAcceptingApplications",
		"OpeningBeganReview",
		"OpeningReviewPeriodExpired",
	}, ht.recorder.Names())
}

func TestReviewPeriodExpiryDeactivatesApplications(t *testing.T) {
	ht := newHiringTest(t, 1)
	params := stakedOpening(10, nil)
	params.ApplicationStakingPolicy.ReviewPeriodExpiredUnstakingPeriodLength = ptr[thor.BlockNumber](3)
	params.MaxReviewPeriodLength = 1
	id := ht.addOpening(1, params)

	NewSequence(ht).
		Apply(1, id, 10).
		Apply(1, id, 20).
		BeginReview(2, id).
		Finalize(1, 3).
		Assert(AssertOpening(ht.Module, id).Stage(Deactivated).Cause(OpeningDeactivatedByReviewExpiry).Counters(0, 2, 0).Assert).
		Assert(AssertApplication(ht.Module, 0).Stage(ApplicationUnstaking).Cause(CauseReviewPeriodExpired).Assert).
		Finalize(4, 5).
		Assert(AssertApplication(ht.Module, 1).Stage(ApplicationUnstaking).Assert).
		Finalize(6, 6).
		Assert(AssertOpening(ht.Module, id).Counters(0, 0, 2).Assert).
		Assert(AssertApplication(ht.Module, 1).Stage(ApplicationInactive).HasStakes(false).Assert).
		Run(t)

	assert.Equal(t, []ApplicationID{0, 1}, ht.deactivated)
}

func TestCancelOpeningUnstakesApplications(t *testing.T) {
	ht := newHiringTest(t, 1)
	id := ht.addOpening(1, stakedOpening(10, ptr[thor.BlockNumber](5)))
	terminal := func(active, unstaking, deactivated uint32) TestFunc {
		return AssertOpening(ht.Module, id).
			Stage(Deactivated).
			Cause(OpeningCancelledAcceptingApplications).
			Counters(active, unstaking, deactivated).
			Assert
	}

	seq := NewSequence(ht).
		Apply(1, id, 10).
		Apply(1, id, 20).
		Apply(1, id, 30).
		Cancel(2, id, ptr[thor.BlockNumber](5)).
		Assert(terminal(0, 3, 0))
	for app := ApplicationID(0); app < 3; app++ {
		seq.Assert(AssertApplication(ht.Module, app).Stage(ApplicationUnstaking).Cause(CauseOpeningCancelled).Assert)
	}
	seq.Finalize(2, 6).
		Assert(terminal(0, 3, 0)).
		Finalize(7, 7).
		Assert(terminal(0, 0, 3))
	for app := ApplicationID(0); app < 3; app++ {
		seq.Assert(AssertApplication(ht.Module, app).Stage(ApplicationInactive).Cause(CauseOpeningCancelled).HasStakes(false).Assert)
	}
	seq.Run(t)

	bal, err := ht.ledger.StakePoolBalance()
	require.NoError(t, err)
	assert.Zero(t, bal)
	assert.Equal(t, thor.BlockNumber(7), ht.application(2).Stage.Deactivated)
	assert.Equal(t, thor.BlockNumber(2), ht.application(2).Stage.DeactivationInitiated)
}

func TestCancelOpeningImmediately(t *testing.T) {
	ht := newHiringTest(t, 1)
	id := ht.addOpening(1, stakedOpening(10, nil))
	for i := 0; i < 3; i++ {
		_, err := ht.apply(1, id, 10)
		require.NoError(t, err)
	}
	require.NoError(t, ht.BeginReview(2, id))

	res, err := ht.CancelOpening(3, id, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &OpeningCancelled{ID: id, NumberOfDeactivatedApplications: 3}, res)
	AssertOpening(ht.Module, id).Cause(OpeningCancelledInReviewPeriod).Counters(0, 0, 3).Assert(t)

	pooled, err := ht.ledger.StakePoolBalance()
	require.NoError(t, err)
	assert.Zero(t, pooled)
	issuance, err := ht.balances.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, thor.Balance(1_000_000-30), issuance, "released stakes nobody claimed are burnt")

	_, err = ht.CancelOpening(3, id, nil, nil)
	assert.ErrorIs(t, err, ErrOpeningNotInCancellableStage)
}

func TestCancelOpeningRules(t *testing.T) {
	ht := newHiringTest(t, 1)
	waiting := ht.addOpening(1, &OpeningParams{ActivateAt: ActivateAt(5)})
	plain := ht.addOpening(1, &OpeningParams{})
	staked := ht.addOpening(1, stakedOpening(10, nil))

	_, err := ht.CancelOpening(1, waiting, nil, nil)
	assert.ErrorIs(t, err, ErrOpeningNotInCancellableStage)
	_, err = ht.CancelOpening(1, 99, nil, nil)
	assert.ErrorIs(t, err, ErrOpeningDoesNotExist)

	_, err = ht.CancelOpening(1, plain, ptr[thor.BlockNumber](3), nil)
	assert.ErrorIs(t, err, ErrRedundantUnstakingPeriodProvided)
	assert.Contains(t, err.Error(), "application stake of failed applicant")
	_, err = ht.CancelOpening(1, staked, ptr[thor.BlockNumber](0), nil)
	assert.ErrorIs(t, err, ErrUnstakingPeriodTooShort)
	_, err = ht.CancelOpening(1, staked, nil, ptr[thor.BlockNumber](2))
	assert.ErrorIs(t, err, ErrRedundantUnstakingPeriodProvided)
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.Timing, kind)

	res, err := ht.CancelOpening(1, plain, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &OpeningCancelled{ID: plain}, res)
}

func TestFillOpening(t *testing.T) {
	ht := newHiringTest(t, 1)
	params := stakedOpening(10, nil)
	params.RoleStakingPolicy = &StakingPolicy{Amount: 5, AmountMode: StakingAmountExact}
	id := ht.addOpening(1, params)
	other := ht.addOpening(1, &OpeningParams{})

	for i := 0; i < 3; i++ {
		_, err := ht.AddApplication(1, id, ht.funds(5), ht.funds(10), nil)
		require.NoError(t, err)
	}
	foreign, err := ht.AddApplication(1, other, nil, nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, ht.FillOpening(2, id, nil, nil, nil, nil), ErrOpeningNotInReviewPeriodStage)
	require.NoError(t, ht.BeginReview(2, id))

	failed := ptr[thor.BlockNumber](2)
	assert.ErrorIs(t, ht.FillOpening(2, id, []ApplicationID{42}, nil, failed, failed), ErrApplicationDoesNotExist)
	assert.ErrorIs(t, ht.FillOpening(2, id, []ApplicationID{foreign.ID}, nil, failed, failed), ErrApplicationForWrongOpening)
	assert.ErrorIs(t, ht.FillOpening(2, id, []ApplicationID{1}, ptr[thor.BlockNumber](0), failed, failed), ErrUnstakingPeriodTooShort)

	_, err = ht.DeactivateApplication(2, 2, CauseExternal, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, ht.FillOpening(2, id, []ApplicationID{2}, nil, failed, failed), ErrApplicationNotInActiveStage)

	require.NoError(t, ht.FillOpening(3, id, []ApplicationID{1, 1}, ptr[thor.BlockNumber](7), failed, failed))

	AssertOpening(ht.Module, id).Stage(Deactivated).Cause(OpeningDeactivatedByFill).Counters(1, 1, 1).Assert(t)
	AssertApplication(ht.Module, 1).Stage(ApplicationActive).Outcome(ApplicationOutcomeSuccess).HasStakes(true).Assert(t)
	AssertApplication(ht.Module, 0).Stage(ApplicationUnstaking).Cause(CauseNotHired).Outcome(ApplicationOutcomeNone).Assert(t)

	ht.finalize(3, 5)
	AssertApplication(ht.Module, 0).Stage(ApplicationInactive).HasStakes(false).Assert(t)
	AssertApplication(ht.Module, 1).Stage(ApplicationActive).HasStakes(true).Assert(t)
	AssertOpening(ht.Module, id).Counters(1, 0, 2).Assert(t)

	hired := ht.application(1)
	amount, err := ht.ledger.StakeAmount(*hired.ActiveRoleStakingID)
	require.NoError(t, err)
	assert.Equal(t, thor.Balance(5), amount, "the hired role stake is left alone")

	var filled *OpeningFilled
	for _, ev := range ht.recorder.Events() {
		if f, ok := ev.(OpeningFilled); ok {
			filled = &f
		}
	}
	require.NotNil(t, filled)
	assert.Equal(t, []ApplicationID{1}, filled.Successful)
	assert.Equal(t, ptr[thor.BlockNumber](7), filled.SuccessfulRoleStakeUnstakingPeriod)
}

func TestDeactivateSlashedApplication(t *testing.T) {
	period := ptr[thor.BlockNumber](1)

	tests := []struct {
		name   string
		params func(*OpeningParams)
		// deactivate triggers the deactivation of application 0 in block 2,
		// or leaves it to the housekeeping of block 3 when nil.
		deactivate func(ht *hiringTest, id OpeningID) error
		cause      ApplicationDeactivationCause
	}{
		{
			name: "cancelled",
			deactivate: func(ht *hiringTest, id OpeningID) error {
				_, err := ht.CancelOpening(2, id, period, nil)
				return err
			},
			cause: CauseOpeningCancelled,
		},
		{
			name: "not hired",
			deactivate: func(ht *hiringTest, id OpeningID) error {
				if err := ht.BeginReview(2, id); err != nil {
					return err
				}
				return ht.FillOpening(2, id, nil, nil, period, nil)
			},
			cause: CauseNotHired,
		},
		{
			name: "crowded out",
			params: func(p *OpeningParams) {
				p.ApplicationRationingPolicy = &ApplicationRationingPolicy{MaxActiveApplicants: 1}
			},
			deactivate: func(ht *hiringTest, id OpeningID) error {
				_, err := ht.apply(2, id, 20)
				return err
			},
			cause: CauseCrowdedOut,
		},
		{
			name: "review expired",
			params: func(p *OpeningParams) {
				p.MaxReviewPeriodLength = 1
				p.ApplicationStakingPolicy.ReviewPeriodExpiredUnstakingPeriodLength = period
			},
			cause: CauseReviewPeriodExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ht := newHiringTest(t, 1)
			params := stakedOpening(10, period)
			if tt.params != nil {
				tt.params(params)
			}
			id := ht.addOpening(1, params)
			_, err := ht.apply(1, id, 10)
			require.NoError(t, err)
			stakeID := *ht.application(0).ActiveApplicationStakingID

			// executes in block 4
			_, err = ht.ledger.InitiateSlashing(1, stakeID, 4, 3)
			require.NoError(t, err)
			ht.finalize(1, 1)

			if tt.deactivate != nil {
				require.NoError(t, tt.deactivate(ht, id))
			} else {
				require.NoError(t, ht.BeginReview(2, id))
			}
			ht.finalize(2, 3)

			AssertApplication(ht.Module, 0).Stage(ApplicationUnstaking).Cause(tt.cause).HasStakes(true).Assert(t)
			s, err := ht.ledger.StakeByID(stakeID)
			require.NoError(t, err)
			assert.Equal(t, stake.StatusUnstaking, s.Status())
			assert.False(t, s.Staked.Unstaking.IsActive, "unstaking waits for the slash")

			ht.finalize(4, 4)
			AssertApplication(ht.Module, 0).Stage(ApplicationInactive).Cause(tt.cause).HasStakes(false).Assert(t)
			s, err = ht.ledger.StakeByID(stakeID)
			require.NoError(t, err)
			assert.Equal(t, stake.StatusNotStaked, s.Status())
			assert.Contains(t, ht.deactivated, ApplicationID(0))
		})
	}
}
