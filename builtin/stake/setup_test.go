// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/events"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/lvldb"
	"github.com/vechain/hiring/state"
	"github.com/vechain/hiring/thor"
)

var (
	pool  = thor.BytesToAddress([]byte("pool"))
	alice = thor.BytesToAddress([]byte("alice"))
)

const aliceFunds thor.Balance = 1_000_000

type unstakedCall struct {
	block  thor.BlockNumber
	id     StakeID
	amount thor.Balance
}

type slashedCall struct {
	id        StakeID
	slashID   *SlashID
	slashed   thor.Balance
	remaining thor.Balance
}

// refundHandler pays unstaked funds back to alice and lets slashed funds burn.
type refundHandler struct {
	balances *currency.Balances
	unstaked []unstakedCall
	slashed  []slashedCall
}

func (h *refundHandler) Unstaked(block thor.BlockNumber, id StakeID, amount thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	h.unstaked = append(h.unstaked, unstakedCall{block: block, id: id, amount: amount})
	if err := h.balances.Deposit(alice, imbalance); err != nil {
		return imbalance, err
	}
	return currency.Zero(), nil
}

func (h *refundHandler) Slashed(_ thor.BlockNumber, id StakeID, slashID *SlashID, slashed, remaining thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	h.slashed = append(h.slashed, slashedCall{id: id, slashID: slashID, slashed: slashed, remaining: remaining})
	return imbalance, nil
}

type ledgerTest struct {
	*Ledger
	t        *testing.T
	state    *state.State
	balances *currency.Balances
	recorder *events.Recorder
	handler  *refundHandler
}

func newLedgerTest(t *testing.T, existentialDeposit thor.Balance) *ledgerTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	balances := currency.New(storage.NewContext("currency", st), existentialDeposit)
	require.NoError(t, balances.Issue(alice, aliceFunds))

	recorder := &events.Recorder{}
	ledger := New(storage.NewContext("stake", st), balances, pool, recorder)
	handler := &refundHandler{balances: balances}
	ledger.SetEventsHandler(handler)

	return &ledgerTest{
		Ledger:   ledger,
		t:        t,
		state:    st,
		balances: balances,
		recorder: recorder,
		handler:  handler,
	}
}

// staked creates a stake holding amount funded by alice.
func (lt *ledgerTest) staked(block thor.BlockNumber, amount thor.Balance) StakeID {
	id, err := lt.CreateStake(block)
	require.NoError(lt.t, err)
	require.NoError(lt.t, lt.StakeFromAccount(id, alice, amount))
	return id
}

func (lt *ledgerTest) balance(addr thor.Address) thor.Balance {
	bal, err := lt.balances.FreeBalance(addr)
	require.NoError(lt.t, err)
	return bal
}

func (lt *ledgerTest) finalizeRange(from, to thor.BlockNumber) {
	for b := from; b <= to; b++ {
		_, err := lt.OnFinalize(b)
		require.NoError(lt.t, err)
	}
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	ledger *Ledger

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(ledger *Ledger) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), ledger: ledger}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) InitiateSlashing(block thor.BlockNumber, id StakeID, amount thor.Balance, period thor.BlockNumber) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		slashID, err := ts.ledger.InitiateSlashing(block, id, amount, period)
		if err != nil {
			t.Fatalf("failed to initiate slashing of stake %d: %v", id, err)
		}
		t.Logf("initiated slash %d of stake %d", slashID, id)
	})
}

func (ts *TestSequence) CancelSlashing(id StakeID, slashID SlashID) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.ledger.CancelSlashing(id, slashID); err != nil {
			t.Fatalf("failed to cancel slash %d of stake %d: %v", slashID, id, err)
		}
	})
}

func (ts *TestSequence) InitiateUnstaking(block thor.BlockNumber, id StakeID, period thor.BlockNumber) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.ledger.InitiateUnstaking(block, id, &period); err != nil {
			t.Fatalf("failed to initiate unstaking of stake %d: %v", id, err)
		}
		t.Logf("initiated unstaking of stake %d for %d blocks", id, period)
	})
}

func (ts *TestSequence) PauseUnstaking(id StakeID) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.ledger.PauseUnstaking(id); err != nil {
			t.Fatalf("failed to pause unstaking of stake %d: %v", id, err)
		}
	})
}

func (ts *TestSequence) ResumeUnstaking(id StakeID) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.ledger.ResumeUnstaking(id); err != nil {
			t.Fatalf("failed to resume unstaking of stake %d: %v", id, err)
		}
	})
}

// Finalize runs the per-block hook for every block in [from, to].
func (ts *TestSequence) Finalize(from, to thor.BlockNumber) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		for b := from; b <= to; b++ {
			if _, err := ts.ledger.OnFinalize(b); err != nil {
				t.Fatalf("failed to finalize block %d: %v", b, err)
			}
		}
	})
}

func (ts *TestSequence) Assert(a *StakeAssertions) *TestSequence {
	return ts.AddFunc(a.Assert)
}

func (ts *TestSequence) Run(t *testing.T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, f := range ts.funcs {
		f(t)
	}
}

type StakeAssertions struct {
	ledger *Ledger
	id     StakeID

	status    *Status
	amount    *thor.Balance
	slashes   *int
	remaining *thor.BlockNumber
	active    *bool
}

func AssertStake(ledger *Ledger, id StakeID) *StakeAssertions {
	return &StakeAssertions{ledger: ledger, id: id}
}

func (sa *StakeAssertions) Status(expected Status) *StakeAssertions {
	sa.status = &expected
	return sa
}

func (sa *StakeAssertions) Amount(expected thor.Balance) *StakeAssertions {
	sa.amount = &expected
	return sa
}

func (sa *StakeAssertions) Slashes(expected int) *StakeAssertions {
	sa.slashes = &expected
	return sa
}

// Unstaking checks the unstaking countdown and whether it is running.
func (sa *StakeAssertions) Unstaking(remaining thor.BlockNumber, active bool) *StakeAssertions {
	sa.remaining = &remaining
	sa.active = &active
	return sa
}

func (sa *StakeAssertions) Assert(t *testing.T) {
	s, err := sa.ledger.StakeByID(sa.id)
	require.NoError(t, err, "failed to get stake %d", sa.id)

	if sa.status != nil {
		assert.Equal(t, *sa.status, s.Status(), "stake %d status mismatch", sa.id)
	}
	if sa.amount != nil {
		assert.Equal(t, *sa.amount, s.Amount(), "stake %d amount mismatch", sa.id)
	}
	if sa.slashes != nil {
		require.NotNil(t, s.Staked, "stake %d is not staked", sa.id)
		assert.Len(t, s.Staked.Slashes, *sa.slashes, "stake %d slashes mismatch", sa.id)
	}
	if sa.remaining != nil {
		require.NotNil(t, s.Staked, "stake %d is not staked", sa.id)
		require.NotNil(t, s.Staked.Unstaking, "stake %d is not unstaking", sa.id)
		assert.Equal(t, *sa.remaining, s.Staked.Unstaking.BlocksRemaining, "stake %d unstaking countdown mismatch", sa.id)
		assert.Equal(t, *sa.active, s.Staked.Unstaking.IsActive, "stake %d unstaking activity mismatch", sa.id)
	}
}
