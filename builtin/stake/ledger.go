// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/events"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/log"
	"github.com/vechain/hiring/thor"
)

var (
	logger = log.WithContext("pkg", "stake")

	// MinimumBalance raises the smallest stake above the existential deposit.
	MinimumBalance = storage.NewConfigVariable("stake-minimum-balance", 0)
)

func SetLogger(l log.Logger) {
	logger = l
}

// burner is implemented by currencies able to reduce the total issuance.
type burner interface {
	Burn(imbalance currency.Imbalance) error
}

// Ledger owns the stake records and the pool account holding staked funds.
type Ledger struct {
	stakes        *storage.Mapping[StakeID, *Stake]
	created       *storage.Raw[uint64]
	lastFinalized *storage.Raw[uint64] // block+1, zero until the first finalize

	currency currency.Currency
	pool     thor.Address
	sink     events.Sink
	handler  EventsHandler
}

// New creates a ledger over the storage context. Staked funds are kept in pool.
func New(sctx *storage.Context, cur currency.Currency, pool thor.Address, sink events.Sink) *Ledger {
	MinimumBalance.Override(sctx)

	if sink == nil {
		sink = events.Noop
	}
	return &Ledger{
		stakes:        storage.NewMapping[StakeID, *Stake](sctx, "stakes"),
		created:       storage.NewRaw[uint64](sctx, "stakes-created"),
		lastFinalized: storage.NewRaw[uint64](sctx, "last-finalized"),
		currency:      cur,
		pool:          pool,
		sink:          sink,
		handler:       NoopHandler{},
	}
}

// SetEventsHandler sets the receiver of unstaked and slashed funds.
func (l *Ledger) SetEventsHandler(h EventsHandler) {
	if h == nil {
		h = NoopHandler{}
	}
	l.handler = h
}

// MinimumBalance is the smallest amount a stake may hold.
func (l *Ledger) MinimumBalance() thor.Balance {
	return max(l.currency.ExistentialDeposit(), MinimumBalance.Get())
}

//
// Getters - no state change
//

// StakeByID returns the stake, or ErrStakeNotFound.
func (l *Ledger) StakeByID(id StakeID) (*Stake, error) {
	s, err := l.stakes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	if s == nil {
		return nil, ErrStakeNotFound
	}
	return s, nil
}

func (l *Ledger) StakeExists(id StakeID) (bool, error) {
	return l.stakes.Exists(id)
}

// StakeAmount returns the staked amount, zero if the stake holds no funds.
func (l *Ledger) StakeAmount(id StakeID) (thor.Balance, error) {
	s, err := l.StakeByID(id)
	if err != nil {
		return 0, err
	}
	return s.Amount(), nil
}

// StakePoolBalance returns the funds held for all stakes.
func (l *Ledger) StakePoolBalance() (thor.Balance, error) {
	return l.currency.FreeBalance(l.pool)
}

// CountByStatus counts the stakes per status.
func (l *Ledger) CountByStatus() (map[string]int64, error) {
	counts := map[string]int64{
		StatusNotStaked.String(): 0,
		StatusStaked.String():    0,
		StatusUnstaking.String(): 0,
	}
	err := l.stakes.Iterate(func(_ []byte, s *Stake) (bool, error) {
		counts[s.Status().String()]++
		return true, nil
	})
	return counts, err
}

// TotalStaked sums the amounts of all staked stakes.
func (l *Ledger) TotalStaked() (thor.Balance, error) {
	var total thor.Balance
	err := l.stakes.Iterate(func(_ []byte, s *Stake) (bool, error) {
		total = thor.SaturatingAdd(total, s.Amount())
		return true, nil
	})
	return total, err
}

func (l *Ledger) staked(id StakeID) (*Stake, error) {
	s, err := l.StakeByID(id)
	if err != nil {
		return nil, err
	}
	if s.Staked == nil {
		return nil, ErrNotStaked
	}
	return s, nil
}

func (l *Ledger) setStake(id StakeID, s *Stake) error {
	if s.Staked != nil {
		s.Staked.checkInvariants(id)
	}
	if err := l.stakes.Set(id, s); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	return nil
}

func (l *Ledger) emit(ev events.Event) {
	metricStakeEvents().AddWithLabel(1, map[string]string{"event": ev.Name()})
	l.sink.Emit(ev)
}

func (l *Ledger) burn(imbalance currency.Imbalance) error {
	if imbalance.IsZero() {
		return nil
	}
	if b, ok := l.currency.(burner); ok {
		return b.Burn(imbalance)
	}
	return nil
}

func (l *Ledger) withdrawFromPool(amount thor.Balance) (currency.Imbalance, error) {
	imbalance, err := l.currency.Withdraw(l.pool, amount)
	if err != nil {
		return currency.Zero(), errors.Wrap(err, "failed to withdraw from stake pool")
	}
	return imbalance, nil
}

//
// Setters - state change
//

// CreateStake allocates a new stake in NotStaked status. IDs start at one.
func (l *Ledger) CreateStake(block thor.BlockNumber) (StakeID, error) {
	created, err := l.created.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get stakes created")
	}
	id := StakeID(created + 1)
	if err := l.stakes.Insert(id, &Stake{CreatedAt: block}); err != nil {
		return 0, errors.Wrap(err, "failed to insert stake")
	}
	if err := l.created.Upsert(created + 1); err != nil {
		return 0, errors.Wrap(err, "failed to set stakes created")
	}

	logger.Debug("stake created", "id", id, "block", block)
	l.emit(StakeCreated{ID: id})
	return id, nil
}

// RemoveStake deletes a stake which holds no funds.
func (l *Ledger) RemoveStake(id StakeID) error {
	s, err := l.StakeByID(id)
	if err != nil {
		return err
	}
	if s.Staked != nil {
		return ErrAlreadyStaked
	}
	l.stakes.Delete(id)

	logger.Debug("stake removed", "id", id)
	l.emit(StakeRemoved{ID: id})
	return nil
}

// EnsureCanStake checks that Stake would accept amount.
func (l *Ledger) EnsureCanStake(id StakeID, amount thor.Balance) error {
	s, err := l.StakeByID(id)
	if err != nil {
		return err
	}
	if s.Staked != nil {
		return ErrAlreadyStaked
	}
	if amount == 0 {
		return ErrCannotStakeZero
	}
	if amount < l.MinimumBalance() {
		return ErrCannotStakeLessThanMinimumBalance
	}
	return nil
}

// Stake records imbalance as the stake's funds. The imbalance must already be
// debited from its source; it is moved into the stake pool. On error the
// caller keeps the imbalance.
func (l *Ledger) Stake(id StakeID, imbalance currency.Imbalance) error {
	amount := imbalance.Peek()
	if err := l.EnsureCanStake(id, amount); err != nil {
		return err
	}
	s, err := l.StakeByID(id)
	if err != nil {
		return err
	}
	s.Staked = &Staked{Amount: amount}
	if err := l.setStake(id, s); err != nil {
		return err
	}
	if err := l.currency.Deposit(l.pool, imbalance); err != nil {
		return errors.Wrap(err, "failed to deposit into stake pool")
	}

	logger.Debug("staked", "id", id, "amount", amount)
	l.emit(StakeAdded{ID: id, Amount: amount})
	return nil
}

// StakeFromAccount withdraws amount from account and stakes it.
func (l *Ledger) StakeFromAccount(id StakeID, account thor.Address, amount thor.Balance) error {
	if err := l.EnsureCanStake(id, amount); err != nil {
		return err
	}
	imbalance, err := l.currency.Withdraw(account, amount)
	if err != nil {
		return err
	}
	return l.Stake(id, imbalance)
}

func (l *Ledger) EnsureCanIncreaseStake(id StakeID, amount thor.Balance) error {
	s, err := l.staked(id)
	if err != nil {
		return err
	}
	return s.Staked.ensureCanIncrease(amount)
}

// IncreaseStake adds imbalance to the stake and returns the new total.
func (l *Ledger) IncreaseStake(id StakeID, imbalance currency.Imbalance) (thor.Balance, error) {
	s, err := l.staked(id)
	if err != nil {
		return 0, err
	}
	total, err := s.Staked.increase(imbalance.Peek())
	if err != nil {
		return 0, err
	}
	if err := l.setStake(id, s); err != nil {
		return 0, err
	}
	if err := l.currency.Deposit(l.pool, imbalance); err != nil {
		return 0, errors.Wrap(err, "failed to deposit into stake pool")
	}

	logger.Debug("stake increased", "id", id, "amount", imbalance.Peek(), "total", total)
	l.emit(StakeIncreased{ID: id, Amount: imbalance.Peek(), Total: total})
	return total, nil
}

// IncreaseStakeFromAccount withdraws amount from account and adds it to the stake.
func (l *Ledger) IncreaseStakeFromAccount(id StakeID, account thor.Address, amount thor.Balance) (thor.Balance, error) {
	if err := l.EnsureCanIncreaseStake(id, amount); err != nil {
		return 0, err
	}
	imbalance, err := l.currency.Withdraw(account, amount)
	if err != nil {
		return 0, err
	}
	return l.IncreaseStake(id, imbalance)
}

// EnsureCanDecreaseStake returns the amount a decrease by amount would take.
func (l *Ledger) EnsureCanDecreaseStake(id StakeID, amount thor.Balance) (thor.Balance, error) {
	s, err := l.staked(id)
	if err != nil {
		return 0, err
	}
	return s.Staked.decreasable(amount, l.MinimumBalance())
}

// DecreaseStake takes funds out of the stake. If the remainder would fall
// below the minimum balance the whole stake is taken. It returns the
// withdrawn funds and the amount left staked.
func (l *Ledger) DecreaseStake(id StakeID, amount thor.Balance) (currency.Imbalance, thor.Balance, error) {
	s, err := l.staked(id)
	if err != nil {
		return currency.Zero(), 0, err
	}
	deducted, err := s.Staked.decrease(amount, l.MinimumBalance())
	if err != nil {
		return currency.Zero(), 0, err
	}
	if err := l.setStake(id, s); err != nil {
		return currency.Zero(), 0, err
	}
	imbalance, err := l.withdrawFromPool(deducted)
	if err != nil {
		return currency.Zero(), 0, err
	}

	logger.Debug("stake decreased", "id", id, "amount", deducted, "remaining", s.Staked.Amount)
	l.emit(StakeDecreased{ID: id, Amount: deducted, Remaining: s.Staked.Amount})
	return imbalance, s.Staked.Amount, nil
}

// DecreaseStakeToAccount decreases the stake and deposits the funds into account.
func (l *Ledger) DecreaseStakeToAccount(id StakeID, account thor.Address, amount thor.Balance) (thor.Balance, error) {
	imbalance, remaining, err := l.DecreaseStake(id, amount)
	if err != nil {
		return 0, err
	}
	if err := l.currency.Deposit(account, imbalance); err != nil {
		return 0, errors.Wrap(err, "failed to deposit decreased stake")
	}
	return remaining, nil
}

// SlashImmediateOutcome reports the effect of an immediate slash. The
// caller owns RemainingImbalance; dropping it burns the funds.
type SlashImmediateOutcome struct {
	CausedUnstake      bool
	ActuallySlashed    thor.Balance
	RemainingStake     thor.Balance
	RemainingImbalance currency.Imbalance
}

// SlashImmediate takes up to amount from the stake now. With unstakeOnZero
// a stake left empty is unstaked as well.
func (l *Ledger) SlashImmediate(block thor.BlockNumber, id StakeID, amount thor.Balance, unstakeOnZero bool) (*SlashImmediateOutcome, error) {
	s, err := l.staked(id)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrSlashAmountShouldBeGreaterThanZero
	}

	slashed := s.Staked.applySlash(amount, l.MinimumBalance())
	remaining := s.Staked.Amount
	causedUnstake := unstakeOnZero && remaining == 0
	if causedUnstake {
		s.Staked = nil
	}
	if err := l.setStake(id, s); err != nil {
		return nil, err
	}

	imbalance, err := l.withdrawFromPool(slashed)
	if err != nil {
		return nil, err
	}
	metricSlashedAmount().Add(int64(slashed))
	logger.Debug("slashed", "id", id, "amount", slashed, "remaining", remaining)
	l.emit(Slashed{ID: id, Amount: slashed, Remaining: remaining})
	if imbalance, err = l.handler.Slashed(block, id, nil, slashed, remaining, imbalance); err != nil {
		return nil, err
	}

	if causedUnstake {
		if err := l.notifyUnstaked(block, id, 0); err != nil {
			return nil, err
		}
	}
	return &SlashImmediateOutcome{
		CausedUnstake:      causedUnstake,
		ActuallySlashed:    slashed,
		RemainingStake:     remaining,
		RemainingImbalance: imbalance,
	}, nil
}

// InitiateSlashing schedules a slash executed after period active blocks.
// The amount is capped by what other ongoing slashes leave unclaimed. An
// active unstaking is paused until no slash remains.
func (l *Ledger) InitiateSlashing(block thor.BlockNumber, id StakeID, amount thor.Balance, period thor.BlockNumber) (SlashID, error) {
	s, err := l.staked(id)
	if err != nil {
		return 0, err
	}
	slash, err := s.Staked.initiateSlash(block, amount, period)
	if err != nil {
		return 0, err
	}
	if err := l.setStake(id, s); err != nil {
		return 0, err
	}

	logger.Debug("slash initiated", "id", id, "slash", slash.ID, "amount", slash.Amount, "period", period)
	l.emit(SlashInitiated{ID: id, SlashID: slash.ID, Amount: slash.Amount, Period: period})
	return slash.ID, nil
}

func (l *Ledger) update(id StakeID, fn func(*Staked) error, ev events.Event) error {
	s, err := l.staked(id)
	if err != nil {
		return err
	}
	if err := fn(s.Staked); err != nil {
		return err
	}
	if err := l.setStake(id, s); err != nil {
		return err
	}
	l.emit(ev)
	return nil
}

func (l *Ledger) PauseSlashing(id StakeID, slashID SlashID) error {
	return l.update(id, func(st *Staked) error {
		return st.pauseSlash(slashID)
	}, SlashPaused{ID: id, SlashID: slashID})
}

func (l *Ledger) ResumeSlashing(id StakeID, slashID SlashID) error {
	return l.update(id, func(st *Staked) error {
		return st.resumeSlash(slashID)
	}, SlashResumed{ID: id, SlashID: slashID})
}

// CancelSlashing drops the slash. Cancelling the last one resumes an
// unstaking paused by slashing.
func (l *Ledger) CancelSlashing(id StakeID, slashID SlashID) error {
	return l.update(id, func(st *Staked) error {
		return st.cancelSlash(slashID)
	}, SlashCancelled{ID: id, SlashID: slashID})
}

// InitiateUnstaking starts releasing the stake. A nil period unstakes right
// away and notifies the events handler before returning.
func (l *Ledger) InitiateUnstaking(block thor.BlockNumber, id StakeID, period *thor.BlockNumber) error {
	s, err := l.staked(id)
	if err != nil {
		return err
	}
	immediate, err := s.Staked.initiateUnstaking(block, period)
	if err != nil {
		return err
	}

	if immediate {
		metricUnstakingPeriods().Observe(0)
		return l.completeUnstaking(block, id, s)
	}
	if err := l.setStake(id, s); err != nil {
		return err
	}

	metricUnstakingPeriods().Observe(int64(*period))
	expiresAt := s.Staked.Unstaking.ExpiresAt(block)
	logger.Debug("unstaking initiated", "id", id, "period", *period, "expires", expiresAt)
	l.emit(UnstakingInitiated{ID: id, Period: *period, ExpiresAt: expiresAt})
	return nil
}

// InitiateUnstakingAfterSlashes is InitiateUnstaking for callers which must
// not fail on ongoing slashes. While slashes are ongoing the countdown is
// created paused and starts once the last one is executed or cancelled.
func (l *Ledger) InitiateUnstakingAfterSlashes(block thor.BlockNumber, id StakeID, period *thor.BlockNumber) error {
	s, err := l.staked(id)
	if err != nil {
		return err
	}
	deferred, err := s.Staked.deferUnstaking(block, period)
	if err != nil {
		return err
	}
	if !deferred {
		return l.InitiateUnstaking(block, id, period)
	}
	if err := l.setStake(id, s); err != nil {
		return err
	}

	u := s.Staked.Unstaking
	logger.Debug("unstaking deferred until slashes end", "id", id, "period", u.BlocksRemaining, "slashes", len(s.Staked.Slashes))
	l.emit(UnstakingInitiated{ID: id, Period: u.BlocksRemaining, ExpiresAt: u.ExpiresAt(block)})
	l.emit(UnstakingPaused{ID: id})
	return nil
}

func (l *Ledger) PauseUnstaking(id StakeID) error {
	return l.update(id, (*Staked).pauseUnstaking, UnstakingPaused{ID: id})
}

func (l *Ledger) ResumeUnstaking(id StakeID) error {
	return l.update(id, (*Staked).resumeUnstaking, UnstakingResumed{ID: id})
}

// completeUnstaking moves the stake back to NotStaked, withdraws its funds
// from the pool and hands them to the events handler.
func (l *Ledger) completeUnstaking(block thor.BlockNumber, id StakeID, s *Stake) error {
	amount := s.Staked.Amount
	s.Staked = nil
	if err := l.setStake(id, s); err != nil {
		return err
	}
	return l.notifyUnstaked(block, id, amount)
}

func (l *Ledger) notifyUnstaked(block thor.BlockNumber, id StakeID, amount thor.Balance) error {
	imbalance, err := l.withdrawFromPool(amount)
	if err != nil {
		return err
	}

	logger.Debug("unstaked", "id", id, "amount", amount)
	l.emit(Unstaked{ID: id, Amount: amount})
	rest, err := l.handler.Unstaked(block, id, amount, imbalance)
	if err != nil {
		return err
	}
	return l.burn(rest)
}

// executeSlash withdraws slashed funds from the pool and hands them to the
// events handler. The remainder is burned.
func (l *Ledger) executeSlash(block thor.BlockNumber, id StakeID, slashID SlashID, slashed, remaining thor.Balance) error {
	imbalance, err := l.withdrawFromPool(slashed)
	if err != nil {
		return err
	}

	metricSlashedAmount().Add(int64(slashed))
	logger.Debug("slashed", "id", id, "slash", slashID, "amount", slashed, "remaining", remaining)
	l.emit(Slashed{ID: id, SlashID: &slashID, Amount: slashed, Remaining: remaining})
	rest, err := l.handler.Slashed(block, id, &slashID, slashed, remaining, imbalance)
	if err != nil {
		return err
	}
	return l.burn(rest)
}
