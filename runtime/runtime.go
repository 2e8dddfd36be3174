// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/builtin/events"
	"github.com/vechain/hiring/builtin/hiring"
	"github.com/vechain/hiring/builtin/reverts"
	"github.com/vechain/hiring/builtin/stake"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/cache"
	"github.com/vechain/hiring/kv"
	"github.com/vechain/hiring/log"
	"github.com/vechain/hiring/state"
	"github.com/vechain/hiring/thor"
)

var logger = log.WithContext("pkg", "runtime")

func SetLogger(l log.Logger) {
	logger = l
}

const stateBucket = kv.Bucket("s")

// Runtime composes the currency, the stake ledger and the hiring module over
// one journaled state. Extrinsics run through Execute, blocks are closed by
// Finalize. A Runtime must not be used concurrently, except by its metrics
// collectors.
type Runtime struct {
	mu sync.Mutex

	store kv.Store
	cache *cache.LRU
	cfg   Config
	sink  events.Sink

	state    *state.State
	buffer   *eventBuffer
	balances *currency.Balances
	stakes   *stake.Ledger
	hiring   *hiring.Module

	refunds     *storage.Mapping[stake.StakeID, thor.Address]
	initialized *storage.Raw[uint64]
	nextBlock   *storage.Raw[uint64]
}

// New opens a runtime over store. An empty store is initialized from the
// genesis allocations of cfg.
func New(store kv.Store, cfg Config, sink events.Sink) (*Runtime, error) {
	c, err := cache.NewLRU(cfg.cacheSize())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create state cache")
	}
	if sink == nil {
		sink = events.Noop
	}
	rt := &Runtime{
		store:  stateBucket.NewStore(store),
		cache:  c,
		cfg:    cfg,
		sink:   sink,
		buffer: &eventBuffer{},
	}
	rt.load(state.New(rt.store, rt.cache))

	initialized, err := rt.initialized.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read genesis marker")
	}
	if initialized == 0 {
		if err := rt.genesis(); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// load binds the engines to st.
func (rt *Runtime) load(st *state.State) {
	rt.state = st
	rt.balances = currency.New(storage.NewContext("currency", st), rt.cfg.ExistentialDeposit)
	rt.stakes = stake.New(storage.NewContext("stake", st), rt.balances, rt.cfg.stakePool(), rt.buffer)
	rt.hiring = hiring.New(storage.NewContext("hiring", st), rt.stakes, rt.buffer)

	sctx := storage.NewContext("runtime", st)
	rt.refunds = storage.NewMapping[stake.StakeID, thor.Address](sctx, "refunds")
	rt.initialized = storage.NewRaw[uint64](sctx, "initialized")
	rt.nextBlock = storage.NewRaw[uint64](sctx, "next-block")

	rt.stakes.SetEventsHandler(stake.Handlers(rt.hiring.StakeEvents(), &refunder{rt.refunds, rt.balances}))
}

func (rt *Runtime) genesis() error {
	for _, alloc := range rt.cfg.Genesis {
		if err := rt.balances.Issue(alloc.Account, alloc.Balance); err != nil {
			return errors.Wrap(err, "failed to issue genesis allocation")
		}
	}
	if rt.cfg.MinimumStake > 0 {
		if err := stake.MinimumBalance.Store(storage.NewContext("stake", rt.state), rt.cfg.MinimumStake); err != nil {
			return errors.Wrap(err, "failed to store minimum stake")
		}
	}
	if err := rt.initialized.Upsert(1); err != nil {
		return errors.Wrap(err, "failed to write genesis marker")
	}
	if _, err := rt.commit(); err != nil {
		return err
	}
	logger.Info("genesis initialized", "accounts", len(rt.cfg.Genesis), "minimumStake", rt.stakes.MinimumBalance())
	return nil
}

// commit writes the pending changes and starts a fresh overlay.
func (rt *Runtime) commit() (thor.Bytes32, error) {
	stage := rt.state.Stage()
	hash := stage.Hash()
	if err := stage.Commit(); err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "failed to commit state")
	}
	metricCommittedKeys().Add(int64(stage.Len()))
	rt.reportCacheStats()
	rt.load(rt.state.Checkout())
	return hash, nil
}

func (rt *Runtime) reportCacheStats() {
	stats := rt.cache.Stats()
	if stats.Changed {
		logger.Debug("state cache stats", "hit", stats.Hit, "miss", stats.Miss, "rate", fmt.Sprintf("%.3f", stats.HitRate()))
	}
	metricCacheLookups().SetWithLabel(stats.Hit, map[string]string{"event": "hit"})
	metricCacheLookups().SetWithLabel(stats.Miss, map[string]string{"event": "miss"})
}

// NextBlock returns the first block not finalized yet.
func (rt *Runtime) NextBlock() (thor.BlockNumber, error) {
	next, err := rt.nextBlock.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get next block")
	}
	return thor.BlockNumber(next), nil
}

func (rt *Runtime) ensureOpen(block thor.BlockNumber) error {
	next, err := rt.NextBlock()
	if err != nil {
		return err
	}
	if block < next {
		return errors.Errorf("block %d is already finalized", block)
	}
	return nil
}

// Execute runs one extrinsic inside a checkpoint. When fn fails its state
// changes and events are dropped and the error is returned.
func (rt *Runtime) Execute(block thor.BlockNumber, fn func(rt *Runtime) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.ensureOpen(block); err != nil {
		return err
	}

	start := time.Now()
	checkpoint := rt.state.NewCheckpoint()
	mark := rt.buffer.mark()
	err := fn(rt)
	metricExtrinsicDuration().Observe(time.Since(start).Microseconds())
	if err != nil {
		rt.state.RevertTo(checkpoint)
		rt.buffer.truncate(mark)
		if reverts.IsRevertErr(err) {
			kind, _ := reverts.KindOf(err)
			metricExtrinsics().AddWithLabel(1, map[string]string{"result": "reverted", "kind": kind.String()})
			logger.Debug("extrinsic reverted", "block", block, "error", err)
		} else {
			metricExtrinsics().AddWithLabel(1, map[string]string{"result": "failed", "kind": ""})
			logger.Warn("extrinsic failed", "block", block, "error", err)
		}
		return err
	}
	metricExtrinsics().AddWithLabel(1, map[string]string{"result": "applied", "kind": ""})
	rt.buffer.flush(rt.sink)
	return nil
}

// Finalize runs the per-block hooks of block, hiring first, then commits
// the block's changes to the store. It returns the digest of the changes.
// When a hook fails its changes and events are dropped, and the block stays
// open.
func (rt *Runtime) Finalize(block thor.BlockNumber) (thor.Bytes32, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.ensureOpen(block); err != nil {
		return thor.Bytes32{}, err
	}

	checkpoint := rt.state.NewCheckpoint()
	mark := rt.buffer.mark()
	if err := rt.housekeep(block); err != nil {
		rt.state.RevertTo(checkpoint)
		rt.buffer.truncate(mark)
		logger.Error("block housekeeping failed", "block", block, "error", err)
		return thor.Bytes32{}, err
	}
	rt.buffer.flush(rt.sink)

	hash, err := rt.commit()
	if err != nil {
		return thor.Bytes32{}, err
	}
	logger.Debug("block finalized", "block", block, "changes", hash)
	return hash, nil
}

func (rt *Runtime) housekeep(block thor.BlockNumber) error {
	if _, err := rt.hiring.OnFinalize(block); err != nil {
		return errors.Wrap(err, "hiring housekeeping")
	}
	if _, err := rt.stakes.OnFinalize(block); err != nil {
		return errors.Wrap(err, "stake housekeeping")
	}
	if err := rt.nextBlock.Upsert(uint64(block) + 1); err != nil {
		return errors.Wrap(err, "failed to set next block")
	}
	return nil
}

// Getters - no state change

func (rt *Runtime) Balances() *currency.Balances { return rt.balances }
func (rt *Runtime) Stakes() *stake.Ledger        { return rt.stakes }
func (rt *Runtime) Hiring() *hiring.Module       { return rt.hiring }

func (rt *Runtime) OpeningByID(id hiring.OpeningID) (*hiring.Opening, error) {
	return rt.hiring.OpeningByID(id)
}

func (rt *Runtime) OpeningExists(id hiring.OpeningID) (bool, error) {
	return rt.hiring.OpeningExists(id)
}

func (rt *Runtime) ApplicationByID(id hiring.ApplicationID) (*hiring.Application, error) {
	return rt.hiring.ApplicationByID(id)
}

func (rt *Runtime) ApplicationExists(id hiring.ApplicationID) (bool, error) {
	return rt.hiring.ApplicationExists(id)
}

func (rt *Runtime) StakeByID(id stake.StakeID) (*stake.Stake, error) {
	return rt.stakes.StakeByID(id)
}

func (rt *Runtime) StakeExists(id stake.StakeID) (bool, error) {
	return rt.stakes.StakeExists(id)
}

func (rt *Runtime) FreeBalance(account thor.Address) (thor.Balance, error) {
	return rt.balances.FreeBalance(account)
}

// RefundAccount returns the account unstaked funds of the stake go back to.
func (rt *Runtime) RefundAccount(id stake.StakeID) (thor.Address, bool, error) {
	exists, err := rt.refunds.Exists(id)
	if err != nil || !exists {
		return thor.Address{}, false, err
	}
	account, err := rt.refunds.Get(id)
	if err != nil {
		return thor.Address{}, false, err
	}
	return account, true, nil
}
