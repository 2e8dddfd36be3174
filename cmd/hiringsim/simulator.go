// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/reverts"
	"github.com/vechain/hiring/runtime"
	"github.com/vechain/hiring/thor"
)

type simulator struct {
	rt       *runtime.Runtime
	failures int
}

// run executes the scenario steps block by block, finalizing every block up
// to sc.Until. Failed expectations are counted, other errors abort the run.
func (s *simulator) run(ctx context.Context, sc *Scenario) error {
	next, err := s.rt.NextBlock()
	if err != nil {
		return err
	}
	if len(sc.Steps) > 0 && sc.Steps[0].Block < next {
		return errors.Errorf("scenario starts at block %d, but blocks before %d are finalized", sc.Steps[0].Block, next)
	}

	steps := sc.Steps
	for block := next; block <= sc.Until; block++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for len(steps) > 0 && steps[0].Block == block {
			if err := s.step(block, &steps[0]); err != nil {
				return err
			}
			steps = steps[1:]
		}
		hash, err := s.rt.Finalize(block)
		if err != nil {
			return errors.Wrapf(err, "finalize block %d", block)
		}
		logger.Debug("block finalized", "block", block, "changes", hash)
	}
	logger.Info("scenario finished", "blocks", sc.Until+1-next, "steps", len(sc.Steps), "failures", s.failures)
	return nil
}

func (s *simulator) step(block thor.BlockNumber, st *Step) error {
	err := actions[st.Action](s.rt, block, &st.Params)

	var (
		perr *paramsError
		cerr *checkFailure
	)
	switch {
	case errors.As(err, &perr):
		return errors.Wrapf(err, "block %d: %s", block, st.Action)
	case err != nil && !errors.As(err, &cerr) && !reverts.IsRevertErr(err):
		return errors.Wrapf(err, "block %d: %s", block, st.Action)
	}

	switch {
	case st.ExpectError == "" && err != nil:
		s.fail(block, st, "unexpected error: "+err.Error())
	case st.ExpectError != "" && err == nil:
		s.fail(block, st, "expected error containing "+st.ExpectError)
	case st.ExpectError != "" && !strings.Contains(err.Error(), st.ExpectError):
		s.fail(block, st, "expected error containing "+st.ExpectError+", got: "+err.Error())
	case err != nil:
		logger.Debug("step failed as expected", "block", block, "action", st.Action, "error", err)
	}
	return nil
}

func (s *simulator) fail(block thor.BlockNumber, st *Step, msg string) {
	s.failures++
	logger.Error("expectation failed", "block", block, "action", st.Action, "reason", msg)
}
