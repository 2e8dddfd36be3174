// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/hiring/builtin/hiring"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/runtime"
	"github.com/vechain/hiring/thor"
)

// action runs one step. Errors returned by the runtime are matched against
// the step's expectation; a *paramsError aborts the scenario.
type action func(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error

type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return "invalid params: " + e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

// checkFailure is a failed check step.
type checkFailure struct {
	msg string
}

func (e *checkFailure) Error() string { return e.msg }

var actions = map[string]action{
	"add-opening":            addOpening,
	"begin-accepting":        beginAccepting,
	"begin-review":           beginReview,
	"cancel-opening":         cancelOpening,
	"fill-opening":           fillOpening,
	"add-application":        addApplication,
	"deactivate-application": deactivateApplication,
	"slash":                  slash,
	"initiate-slashing":      initiateSlashing,
	"cancel-slashing":        cancelSlashing,
	"transfer":               transfer,
	"check":                  check,
}

func decode(params *yaml.Node, v any) error {
	if params.Kind == 0 {
		return nil
	}
	if err := params.Decode(v); err != nil {
		return &paramsError{err}
	}
	return nil
}

type policyParams struct {
	Amount               thor.Balance      `yaml:"amount"`
	Mode                 string            `yaml:"mode"`
	CrowdedOutUnstaking  *thor.BlockNumber `yaml:"crowded_out_unstaking"`
	ReviewExpiredUnstake *thor.BlockNumber `yaml:"review_expired_unstaking"`
}

func (p *policyParams) policy() (*hiring.StakingPolicy, error) {
	if p == nil {
		return nil, nil
	}
	policy := &hiring.StakingPolicy{
		Amount:                                   p.Amount,
		CrowdedOutUnstakingPeriodLength:          p.CrowdedOutUnstaking,
		ReviewPeriodExpiredUnstakingPeriodLength: p.ReviewExpiredUnstake,
	}
	switch p.Mode {
	case "", "at-least":
		policy.AmountMode = hiring.StakingAmountAtLeast
	case "exact":
		policy.AmountMode = hiring.StakingAmountExact
	default:
		return nil, &paramsError{errors.Errorf("unknown staking mode %q", p.Mode)}
	}
	return policy, nil
}

func addOpening(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		ActivateAt       *thor.BlockNumber `yaml:"activate_at"`
		MaxReviewPeriod  thor.BlockNumber  `yaml:"max_review_period"`
		MaxApplicants    *uint32           `yaml:"max_applicants"`
		ApplicationStake *policyParams     `yaml:"application_stake"`
		RoleStake        *policyParams     `yaml:"role_stake"`
		Text             string            `yaml:"text"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}

	op := &hiring.OpeningParams{
		ActivateAt:            hiring.ActivateNow(),
		MaxReviewPeriodLength: p.MaxReviewPeriod,
		HumanReadableText:     []byte(p.Text),
	}
	if p.ActivateAt != nil {
		op.ActivateAt = hiring.ActivateAt(*p.ActivateAt)
	}
	if p.MaxApplicants != nil {
		op.ApplicationRationingPolicy = &hiring.ApplicationRationingPolicy{MaxActiveApplicants: *p.MaxApplicants}
	}
	var err error
	if op.ApplicationStakingPolicy, err = p.ApplicationStake.policy(); err != nil {
		return err
	}
	if op.RoleStakingPolicy, err = p.RoleStake.policy(); err != nil {
		return err
	}

	return rt.Execute(block, func(rt *runtime.Runtime) error {
		id, err := rt.Hiring().AddOpening(block, op)
		if err != nil {
			return err
		}
		logger.Info("opening added", "id", id, "block", block)
		return nil
	})
}

type openingParams struct {
	Opening hiring.OpeningID `yaml:"opening"`
}

func beginAccepting(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p openingParams
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		return rt.Hiring().BeginAcceptingApplications(block, p.Opening)
	})
}

func beginReview(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p openingParams
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		return rt.Hiring().BeginReview(block, p.Opening)
	})
}

func cancelOpening(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		Opening              hiring.OpeningID  `yaml:"opening"`
		ApplicationUnstaking *thor.BlockNumber `yaml:"application_unstaking"`
		RoleUnstaking        *thor.BlockNumber `yaml:"role_unstaking"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		res, err := rt.Hiring().CancelOpening(block, p.Opening, p.ApplicationUnstaking, p.RoleUnstaking)
		if err != nil {
			return err
		}
		logger.Info("opening cancelled", "id", p.Opening,
			"unstaking", res.NumberOfUnstakingApplications,
			"deactivated", res.NumberOfDeactivatedApplications,
		)
		return nil
	})
}

func fillOpening(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		Opening                    hiring.OpeningID       `yaml:"opening"`
		Successful                 []hiring.ApplicationID `yaml:"successful"`
		SuccessfulRoleUnstaking    *thor.BlockNumber      `yaml:"successful_role_unstaking"`
		FailedApplicationUnstaking *thor.BlockNumber      `yaml:"failed_application_unstaking"`
		FailedRoleUnstaking        *thor.BlockNumber      `yaml:"failed_role_unstaking"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		return rt.Hiring().FillOpening(block, p.Opening, p.Successful,
			p.SuccessfulRoleUnstaking, p.FailedApplicationUnstaking, p.FailedRoleUnstaking)
	})
}

func addApplication(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		Opening          hiring.OpeningID `yaml:"opening"`
		Applicant        string           `yaml:"applicant"`
		RoleStake        *thor.Balance    `yaml:"role_stake"`
		ApplicationStake *thor.Balance    `yaml:"application_stake"`
		Text             string           `yaml:"text"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		added, err := rt.AddApplicationFromAccounts(block, p.Opening, account(p.Applicant), p.RoleStake, p.ApplicationStake, []byte(p.Text))
		if err != nil {
			return err
		}
		if added.CrowdedOut != nil {
			logger.Info("application added", "id", added.ID, "opening", p.Opening, "crowdedOut", *added.CrowdedOut)
		} else {
			logger.Info("application added", "id", added.ID, "opening", p.Opening)
		}
		return nil
	})
}

func deactivateApplication(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		Application          hiring.ApplicationID `yaml:"application"`
		ApplicationUnstaking *thor.BlockNumber    `yaml:"application_unstaking"`
		RoleUnstaking        *thor.BlockNumber    `yaml:"role_unstaking"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		kind, err := rt.Hiring().DeactivateApplication(block, p.Application, hiring.CauseExternal, p.ApplicationUnstaking, p.RoleUnstaking)
		if err != nil {
			return err
		}
		logger.Info("application deactivated", "id", p.Application, "stage", kind)
		return nil
	})
}

type slashParams struct {
	Stake         stake.StakeID    `yaml:"stake"`
	Amount        thor.Balance     `yaml:"amount"`
	Period        thor.BlockNumber `yaml:"period"`
	Slash         stake.SlashID    `yaml:"slash"`
	UnstakeOnZero bool             `yaml:"unstake_on_zero"`
}

func slash(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p slashParams
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		outcome, err := rt.SlashImmediate(block, p.Stake, p.Amount, p.UnstakeOnZero)
		if err != nil {
			return err
		}
		logger.Info("stake slashed", "stake", p.Stake, "slashed", outcome.ActuallySlashed, "remaining", outcome.RemainingStake)
		return nil
	})
}

func initiateSlashing(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p slashParams
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		id, err := rt.Stakes().InitiateSlashing(block, p.Stake, p.Amount, p.Period)
		if err != nil {
			return err
		}
		logger.Info("slashing initiated", "stake", p.Stake, "slash", id)
		return nil
	})
}

func cancelSlashing(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p slashParams
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		return rt.Stakes().CancelSlashing(p.Stake, p.Slash)
	})
}

func transfer(rt *runtime.Runtime, block thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		From   string       `yaml:"from"`
		To     string       `yaml:"to"`
		Amount thor.Balance `yaml:"amount"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	return rt.Execute(block, func(rt *runtime.Runtime) error {
		return rt.Transfer(account(p.From), account(p.To), p.Amount)
	})
}

// check compares balances and stages with the expected values.
func check(rt *runtime.Runtime, _ thor.BlockNumber, params *yaml.Node) error {
	var p struct {
		Balances     map[string]thor.Balance         `yaml:"balances"`
		Openings     map[hiring.OpeningID]string     `yaml:"openings"`
		Applications map[hiring.ApplicationID]string `yaml:"applications"`
		Stakes       map[stake.StakeID]string        `yaml:"stakes"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}

	var mismatches []string
	expect := func(what, want, got string) {
		if want != got {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %s, got %s", what, want, got))
		}
	}
	for name, want := range p.Balances {
		got, err := rt.FreeBalance(account(name))
		if err != nil {
			return err
		}
		expect("balance of "+name, fmt.Sprint(want), fmt.Sprint(got))
	}
	for id, want := range p.Openings {
		opening, err := rt.OpeningByID(id)
		if err != nil {
			return err
		}
		expect(fmt.Sprintf("opening %d", id), want, opening.Stage.String())
	}
	for id, want := range p.Applications {
		app, err := rt.ApplicationByID(id)
		if err != nil {
			return err
		}
		expect(fmt.Sprintf("application %d", id), want, app.Stage.Kind.String())
	}
	for id, want := range p.Stakes {
		s, err := rt.StakeByID(id)
		if err != nil {
			return err
		}
		expect(fmt.Sprintf("stake %d", id), want, s.Status().String())
	}

	if len(mismatches) > 0 {
		slices.Sort(mismatches)
		return &checkFailure{fmt.Sprint(mismatches)}
	}
	return nil
}
