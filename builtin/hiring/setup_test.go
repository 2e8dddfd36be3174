// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hiring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/events"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/lvldb"
	"github.com/vechain/hiring/state"
	"github.com/vechain/hiring/thor"
)

var (
	pool  = thor.BytesToAddress([]byte("pool"))
	alice = thor.BytesToAddress([]byte("alice"))
)

func ptr[T any](v T) *T { return &v }

type hiringTest struct {
	*Module
	t           *testing.T
	state       *state.State
	ledger      *stake.Ledger
	balances    *currency.Balances
	recorder    *events.Recorder
	deactivated []ApplicationID
}

func newHiringTest(t *testing.T, existentialDeposit thor.Balance) *hiringTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	balances := currency.New(storage.NewContext("currency", st), existentialDeposit)
	require.NoError(t, balances.Issue(alice, 1_000_000))

	recorder := &events.Recorder{}
	ledger := stake.New(storage.NewContext("stake", st), balances, pool, recorder)
	module := New(storage.NewContext("hiring", st), ledger, recorder)
	ledger.SetEventsHandler(module.StakeEvents())

	ht := &hiringTest{
		Module:   module,
		t:        t,
		state:    st,
		ledger:   ledger,
		balances: balances,
		recorder: recorder,
	}
	module.SetApplicationDeactivatedHandler(func(_ thor.BlockNumber, id ApplicationID, _ *Application) {
		ht.deactivated = append(ht.deactivated, id)
	})
	return ht
}

// funds withdraws amount from alice, ready to be staked.
func (ht *hiringTest) funds(amount thor.Balance) *currency.Imbalance {
	imbalance, err := ht.balances.Withdraw(alice, amount)
	require.NoError(ht.t, err)
	return &imbalance
}

func (ht *hiringTest) addOpening(block thor.BlockNumber, params *OpeningParams) OpeningID {
	id, err := ht.AddOpening(block, params)
	require.NoError(ht.t, err)
	return id
}

// apply adds an application backed by an application stake of amount.
func (ht *hiringTest) apply(block thor.BlockNumber, opening OpeningID, amount thor.Balance) (*ApplicationAdded, error) {
	return ht.AddApplication(block, opening, nil, ht.funds(amount), []byte("hello"))
}

// finalize runs the per-block hooks, hiring first, for every block in [from, to].
func (ht *hiringTest) finalize(from, to thor.BlockNumber) {
	for b := from; b <= to; b++ {
		_, err := ht.OnFinalize(b)
		require.NoError(ht.t, err)
		_, err = ht.ledger.OnFinalize(b)
		require.NoError(ht.t, err)
	}
}

func (ht *hiringTest) opening(id OpeningID) *Opening {
	o, err := ht.OpeningByID(id)
	require.NoError(ht.t, err)
	return o
}

func (ht *hiringTest) application(id ApplicationID) *Application {
	a, err := ht.ApplicationByID(id)
	require.NoError(ht.t, err)
	return a
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	ht *hiringTest

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(ht *hiringTest) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), ht: ht}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Apply(block thor.BlockNumber, opening OpeningID, amount thor.Balance) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		added, err := ts.ht.apply(block, opening, amount)
		if err != nil {
			t.Fatalf("failed to add application to opening %d: %v", opening, err)
		}
		t.Logf("added application %d to opening %d", added.ID, opening)
	})
}

func (ts *TestSequence) BeginReview(block thor.BlockNumber, opening OpeningID) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.ht.BeginReview(block, opening); err != nil {
			t.Fatalf("failed to begin review of opening %d: %v", opening, err)
		}
	})
}

func (ts *TestSequence) Cancel(block thor.BlockNumber, opening OpeningID, appPeriod *thor.BlockNumber) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		res, err := ts.ht.CancelOpening(block, opening, appPeriod, nil)
		if err != nil {
			t.Fatalf("failed to cancel opening %d: %v", opening, err)
		}
		t.Logf("cancelled opening %d: %d unstaking, %d deactivated", opening,
			res.NumberOfUnstakingApplications, res.NumberOfDeactivatedApplications)
	})
}

func (ts *TestSequence) Finalize(from, to thor.BlockNumber) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.ht.finalize(from, to)
	})
}

func (ts *TestSequence) Assert(f TestFunc) *TestSequence {
	return ts.AddFunc(f)
}

func (ts *TestSequence) Run(t *testing.T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, f := range ts.funcs {
		f(t)
	}
}

type ApplicationAssertions struct {
	module *Module
	id     ApplicationID

	stage   *ApplicationStageKind
	cause   *ApplicationDeactivationCause
	outcome *ApplicationOutcome
	stakes  *bool
}

func AssertApplication(module *Module, id ApplicationID) *ApplicationAssertions {
	return &ApplicationAssertions{module: module, id: id}
}

func (aa *ApplicationAssertions) Stage(expected ApplicationStageKind) *ApplicationAssertions {
	aa.stage = &expected
	return aa
}

func (aa *ApplicationAssertions) Cause(expected ApplicationDeactivationCause) *ApplicationAssertions {
	aa.cause = &expected
	return aa
}

func (aa *ApplicationAssertions) Outcome(expected ApplicationOutcome) *ApplicationAssertions {
	aa.outcome = &expected
	return aa
}

func (aa *ApplicationAssertions) HasStakes(expected bool) *ApplicationAssertions {
	aa.stakes = &expected
	return aa
}

func (aa *ApplicationAssertions) Assert(t *testing.T) {
	app, err := aa.module.ApplicationByID(aa.id)
	require.NoError(t, err, "failed to get application %d", aa.id)

	if aa.stage != nil {
		assert.Equal(t, *aa.stage, app.Stage.Kind, "application %d stage mismatch", aa.id)
	}
	if aa.cause != nil {
		assert.Equal(t, *aa.cause, app.Stage.Cause, "application %d cause mismatch", aa.id)
	}
	if aa.outcome != nil {
		assert.Equal(t, *aa.outcome, app.Outcome, "application %d outcome mismatch", aa.id)
	}
	if aa.stakes != nil {
		assert.Equal(t, *aa.stakes, app.HasStakes(), "application %d stakes mismatch", aa.id)
	}
}

type OpeningAssertions struct {
	module *Module
	id     OpeningID

	stage    *ActiveOpeningStageKind
	cause    *OpeningDeactivationCause
	counters []uint32
}

func AssertOpening(module *Module, id OpeningID) *OpeningAssertions {
	return &OpeningAssertions{module: module, id: id}
}

func (oa *OpeningAssertions) Stage(expected ActiveOpeningStageKind) *OpeningAssertions {
	oa.stage = &expected
	return oa
}

func (oa *OpeningAssertions) Cause(expected OpeningDeactivationCause) *OpeningAssertions {
	oa.cause = &expected
	return oa
}

// Counters checks the active, unstaking and deactivated application counts.
func (oa *OpeningAssertions) Counters(active, unstaking, deactivated uint32) *OpeningAssertions {
	oa.counters = []uint32{active, unstaking, deactivated}
	return oa
}

func (oa *OpeningAssertions) Assert(t *testing.T) {
	o, err := oa.module.OpeningByID(oa.id)
	require.NoError(t, err, "failed to get opening %d", oa.id)

	if oa.stage != nil {
		assert.Equal(t, OpeningActive, o.Stage.Kind, "opening %d is not active", oa.id)
		assert.Equal(t, *oa.stage, o.Stage.Active.Kind, "opening %d stage mismatch", oa.id)
	}
	if oa.cause != nil {
		assert.Equal(t, *oa.cause, o.Stage.Active.Cause, "opening %d cause mismatch", oa.id)
	}
	if oa.counters != nil {
		got := []uint32{o.Stage.ActiveApplicationCount, o.Stage.UnstakingApplicationCount, o.Stage.DeactivatedApplicationCount}
		assert.Equal(t, oa.counters, got, "opening %d counters mismatch", oa.id)
	}
}
