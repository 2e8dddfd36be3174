// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vechain/hiring/builtin/reverts"
	"github.com/vechain/hiring/thor"
)

type ledgerOp struct {
	kind   int
	amount thor.Balance
	period thor.BlockNumber
}

func genLedgerOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 7),
		gen.UInt64Range(0, 150),
		gen.UInt32Range(0, 4),
	).Map(func(vs []any) ledgerOp {
		return ledgerOp{kind: vs[0].(int), amount: vs[1].(uint64), period: vs[2].(uint32)}
	})
}

// apply runs one operation. Revert errors are expected and ignored.
func (lt *ledgerTest) apply(block *thor.BlockNumber, id StakeID, op ledgerOp) error {
	s, err := lt.StakeByID(id)
	if err != nil {
		return err
	}
	switch op.kind {
	case 0:
		if s.Staked == nil {
			err = lt.StakeFromAccount(id, alice, op.amount)
		} else {
			_, err = lt.IncreaseStakeFromAccount(id, alice, op.amount)
		}
	case 1:
		_, err = lt.DecreaseStakeToAccount(id, alice, op.amount)
	case 2:
		_, err = lt.InitiateSlashing(*block, id, op.amount, op.period)
	case 3:
		var out *SlashImmediateOutcome
		if out, err = lt.SlashImmediate(*block, id, op.amount, op.period%2 == 0); err == nil {
			err = lt.balances.Burn(out.RemainingImbalance)
		}
	case 4:
		var period *thor.BlockNumber
		if op.period > 0 {
			period = &op.period
		}
		if op.amount%2 == 0 {
			err = lt.InitiateUnstaking(*block, id, period)
		} else {
			err = lt.InitiateUnstakingAfterSlashes(*block, id, period)
		}
	case 5:
		err = lt.CancelSlashing(id, SlashID(op.amount%4))
	case 6:
		if err = lt.PauseUnstaking(id); err != nil {
			err = lt.ResumeUnstaking(id)
		}
	case 7:
		*block++
		_, err = lt.OnFinalize(*block)
	}
	if reverts.IsRevertErr(err) {
		return nil
	}
	return err
}

// holds checks the ledger invariants: slashes never exceed the stake, the
// pool backs every staked unit and no funds appear or vanish unaccounted.
func (lt *ledgerTest) holds(id StakeID) bool {
	s, err := lt.StakeByID(id)
	if err != nil {
		return false
	}
	if s.Staked != nil && s.Staked.SlashesTotal() > s.Staked.Amount {
		return false
	}
	total, err := lt.TotalStaked()
	if err != nil {
		return false
	}
	issued, err := lt.balances.TotalIssuance()
	if err != nil {
		return false
	}
	return lt.balance(pool) == total && lt.balance(alice)+lt.balance(pool) == issued
}

func TestLedgerInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("slashes stay within the stake and the pool matches the staked total", prop.ForAll(
		func(ops []ledgerOp) bool {
			lt := newLedgerTest(t, 5)
			id, err := lt.CreateStake(0)
			if err != nil {
				return false
			}
			block := thor.BlockNumber(0)
			for _, op := range ops {
				if err := lt.apply(&block, id, op); err != nil {
					t.Logf("unexpected error: %v", err)
					return false
				}
				if !lt.holds(id) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, genLedgerOp()),
	))

	properties.TestingRun(t)
}

func TestFinalizeTwiceIsNoop(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("finalizing the same block twice changes nothing", prop.ForAll(
		func(ops []ledgerOp) bool {
			lt := newLedgerTest(t, 1)
			id, err := lt.CreateStake(0)
			if err != nil {
				return false
			}
			block := thor.BlockNumber(0)
			for _, op := range ops {
				if err := lt.apply(&block, id, op); err != nil {
					return false
				}
			}
			if _, err := lt.OnFinalize(block); err != nil {
				return false
			}
			before := lt.state.Stage().Hash()
			changed, err := lt.OnFinalize(block)
			if err != nil || changed {
				return false
			}
			return lt.state.Stage().Hash() == before
		},
		gen.SliceOfN(30, genLedgerOp()),
	))

	properties.TestingRun(t)
}
