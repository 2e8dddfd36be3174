// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import (
	"github.com/pkg/errors"

	"github.com/vechain/hiring/builtin/reverts"
	"github.com/vechain/hiring/builtin/storage"
	"github.com/vechain/hiring/log"
	"github.com/vechain/hiring/thor"
)

var logger = log.WithContext("pkg", "currency")

func SetLogger(l log.Logger) {
	logger = l
}

var ErrInsufficientBalance = reverts.New(reverts.InvalidAmount, "insufficient balance")

// Currency is the balance provider the engines move funds through.
type Currency interface {
	Withdraw(account thor.Address, amount thor.Balance) (Imbalance, error)
	Deposit(account thor.Address, imbalance Imbalance) error
	ExistentialDeposit() thor.Balance
	FreeBalance(account thor.Address) (thor.Balance, error)
}

// Balances is a storage backed Currency.
type Balances struct {
	balances           *storage.Mapping[thor.Address, uint64]
	issuance           *storage.Raw[uint64]
	existentialDeposit thor.Balance
}

var _ Currency = (*Balances)(nil)

func New(sctx *storage.Context, existentialDeposit thor.Balance) *Balances {
	return &Balances{
		balances:           storage.NewMapping[thor.Address, uint64](sctx, "balances"),
		issuance:           storage.NewRaw[uint64](sctx, "total-issuance"),
		existentialDeposit: existentialDeposit,
	}
}

func (b *Balances) ExistentialDeposit() thor.Balance {
	return b.existentialDeposit
}

func (b *Balances) FreeBalance(account thor.Address) (thor.Balance, error) {
	bal, err := b.balances.Get(account)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

// TotalIssuance returns the amount minted minus the amount burned.
func (b *Balances) TotalIssuance() (thor.Balance, error) {
	return b.issuance.Get()
}

// Withdraw debits the account and returns the debited amount as an imbalance.
func (b *Balances) Withdraw(account thor.Address, amount thor.Balance) (Imbalance, error) {
	bal, err := b.FreeBalance(account)
	if err != nil {
		return Zero(), err
	}
	if bal < amount {
		return Zero(), ErrInsufficientBalance
	}
	if err := b.setBalance(account, bal-amount); err != nil {
		return Zero(), err
	}
	return Imbalance{amount: amount}, nil
}

// Deposit credits the imbalance to the account.
func (b *Balances) Deposit(account thor.Address, imbalance Imbalance) error {
	if imbalance.IsZero() {
		return nil
	}
	bal, err := b.FreeBalance(account)
	if err != nil {
		return err
	}
	return b.setBalance(account, thor.SaturatingAdd(bal, imbalance.amount))
}

// Issue mints new funds into the account.
func (b *Balances) Issue(account thor.Address, amount thor.Balance) error {
	total, err := b.issuance.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get issuance")
	}
	if err := b.issuance.Upsert(thor.SaturatingAdd(total, amount)); err != nil {
		return errors.Wrap(err, "failed to set issuance")
	}
	return b.Deposit(account, Imbalance{amount: amount})
}

// Burn destroys the imbalance, reducing the total issuance.
func (b *Balances) Burn(imbalance Imbalance) error {
	if imbalance.IsZero() {
		return nil
	}
	total, err := b.issuance.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get issuance")
	}
	logger.Debug("burning funds", "amount", imbalance.amount)
	return b.issuance.Upsert(thor.SaturatingSub(total, imbalance.amount))
}

func (b *Balances) setBalance(account thor.Address, bal thor.Balance) error {
	if bal == 0 {
		b.balances.Delete(account)
		return nil
	}
	if err := b.balances.Set(account, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}
