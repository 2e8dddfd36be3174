// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vechain/hiring/builtin/reverts"
	"github.com/vechain/hiring/thor"
)

type hiringOp struct {
	kind   int
	amount thor.Balance
	period thor.BlockNumber
}

func genHiringOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 6),
		gen.UInt64Range(5, 60),
		gen.UInt32Range(0, 3),
	).Map(func(vs []any) hiringOp {
		return hiringOp{kind: vs[0].(int), amount: vs[1].(uint64), period: vs[2].(uint32)}
	})
}

type hiringRun struct {
	*hiringTest
	block    thor.BlockNumber
	openings []OpeningID
}

func (r *hiringRun) current() OpeningID {
	return r.openings[len(r.openings)-1]
}

// apply runs one operation. Revert errors are expected and ignored.
func (r *hiringRun) apply(op hiringOp) error {
	var period *thor.BlockNumber
	if op.period > 0 {
		period = &op.period
	}
	opening := r.current()

	var err error
	switch op.kind {
	case 0:
		_, err = r.hiringTest.apply(r.block, opening, op.amount)
	case 1:
		err = r.BeginReview(r.block, opening)
	case 2:
		var o *Opening
		if o, err = r.OpeningByID(opening); err == nil && len(o.Stage.ApplicationsAdded) > 0 {
			hired := o.Stage.ApplicationsAdded[int(op.amount)%len(o.Stage.ApplicationsAdded)]
			err = r.FillOpening(r.block, opening, []ApplicationID{hired}, nil, period, nil)
		}
	case 3:
		_, err = r.CancelOpening(r.block, opening, period, nil)
	case 4:
		var o *Opening
		if o, err = r.OpeningByID(opening); err == nil && len(o.Stage.ApplicationsAdded) > 0 {
			victim := o.Stage.ApplicationsAdded[int(op.amount)%len(o.Stage.ApplicationsAdded)]
			_, err = r.DeactivateApplication(r.block, victim, CauseExternal, period, nil)
		}
	case 5:
		r.block++
		if _, err = r.OnFinalize(r.block); err == nil {
			_, err = r.ledger.OnFinalize(r.block)
		}
	case 6:
		var id OpeningID
		if id, err = r.AddOpening(r.block, rationedOpening(3, period)); err == nil {
			r.openings = append(r.openings, id)
		}
	}
	if reverts.IsRevertErr(err) {
		return nil
	}
	return err
}

// holds checks that every opening's counters match its applications and
// that stakes are held exactly while they should be.
func (r *hiringRun) holds() bool {
	for _, id := range r.openings {
		o, err := r.OpeningByID(id)
		if err != nil {
			return false
		}
		var counts [3]uint32
		for _, appID := range o.Stage.ApplicationsAdded {
			app, err := r.ApplicationByID(appID)
			if err != nil {
				return false
			}
			switch app.Stage.Kind {
			case ApplicationActive:
				counts[0]++
			case ApplicationUnstaking:
				counts[1]++
				if !app.HasStakes() {
					return false
				}
			case ApplicationInactive:
				counts[2]++
				if app.HasStakes() {
					return false
				}
			}
		}
		if counts != [3]uint32{o.Stage.ActiveApplicationCount, o.Stage.UnstakingApplicationCount, o.Stage.DeactivatedApplicationCount} {
			return false
		}
		if o.Stage.IsIn(AcceptingApplications) && counts[0] > o.ApplicationRationingPolicy.MaxActiveApplicants {
			return false
		}
	}
	return true
}

func TestHiringInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("opening counters match the application stages", prop.ForAll(
		func(ops []hiringOp) bool {
			r := &hiringRun{hiringTest: newHiringTest(t, 5), block: 1}
			id, err := r.AddOpening(r.block, rationedOpening(3, nil))
			if err != nil {
				return false
			}
			r.openings = append(r.openings, id)
			for _, op := range ops {
				if err := r.apply(op); err != nil {
					t.Logf("unexpected error: %v", err)
					return false
				}
				if !r.holds() {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, genHiringOp()),
	))

	properties.TestingRun(t)
}
