// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/vechain/hiring/builtin/currency"
	"github.com/vechain/hiring/thor"
)

// EventsHandler is notified when funds leave a stake. Each call receives the
// withdrawn imbalance and returns the part it did not consume. Whatever is
// left after the last handler is burned.
type EventsHandler interface {
	Unstaked(block thor.BlockNumber, id StakeID, amount thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error)
	Slashed(block thor.BlockNumber, id StakeID, slashID *SlashID, slashed, remaining thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error)
}

type handlers []EventsHandler

// Handlers chains handlers. Each one receives the remainder of the previous one.
func Handlers(hs ...EventsHandler) EventsHandler {
	return handlers(hs)
}

func (hs handlers) Unstaked(block thor.BlockNumber, id StakeID, amount thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	var err error
	for _, h := range hs {
		if imbalance, err = h.Unstaked(block, id, amount, imbalance); err != nil {
			return imbalance, err
		}
	}
	return imbalance, nil
}

func (hs handlers) Slashed(block thor.BlockNumber, id StakeID, slashID *SlashID, slashed, remaining thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	var err error
	for _, h := range hs {
		if imbalance, err = h.Slashed(block, id, slashID, slashed, remaining, imbalance); err != nil {
			return imbalance, err
		}
	}
	return imbalance, nil
}

// NoopHandler keeps nothing.
type NoopHandler struct{}

func (NoopHandler) Unstaked(_ thor.BlockNumber, _ StakeID, _ thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	return imbalance, nil
}

func (NoopHandler) Slashed(_ thor.BlockNumber, _ StakeID, _ *SlashID, _, _ thor.Balance, imbalance currency.Imbalance) (currency.Imbalance, error) {
	return imbalance, nil
}
