// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank is a multi-token balance ledger.
package bank

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/state"
)

var (
	slotBalances = levr.BytesToBytes32([]byte("balances"))
	slotSupply   = levr.BytesToBytes32([]byte("total-supply"))
)

type balanceKey struct {
	token levr.Address
	owner levr.Address
}

func (k balanceKey) Bytes() []byte {
	return append(k.token.Bytes(), k.owner.Bytes()...)
}

// Bank implements native methods of the token ledger.
type Bank struct {
	balances *solidity.Mapping[balanceKey, *big.Int]
	supply   *solidity.Mapping[levr.Address, *big.Int]
}

// New create a new instance.
func New(addr levr.Address, state *state.State) *Bank {
	sctx := solidity.NewContext(addr, state)
	return &Bank{
		balances: solidity.NewMapping[balanceKey, *big.Int](sctx, slotBalances),
		supply:   solidity.NewMapping[levr.Address, *big.Int](sctx, slotSupply),
	}
}

// BalanceOf returns the amount of token held by owner.
func (b *Bank) BalanceOf(token, owner levr.Address) (*big.Int, error) {
	return b.balances.Get(balanceKey{token, owner})
}

// TotalSupply returns the minted amount of token.
func (b *Bank) TotalSupply(token levr.Address) (*big.Int, error) {
	return b.supply.Get(token)
}

func (b *Bank) setBalance(token, owner levr.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		b.balances.Delete(balanceKey{token, owner})
		return nil
	}
	return b.balances.Set(balanceKey{token, owner}, amount)
}

func (b *Bank) sub(token, owner levr.Address, amount *big.Int) error {
	bal, err := b.BalanceOf(token, owner)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errors.WithMessagef(reverts.ErrInsufficientBalance, "%v has %v of %v, needs %v", owner, bal, token, amount)
	}
	return b.setBalance(token, owner, bal.Sub(bal, amount))
}

func (b *Bank) add(token, owner levr.Address, amount *big.Int) error {
	bal, err := b.BalanceOf(token, owner)
	if err != nil {
		return err
	}
	return b.setBalance(token, owner, bal.Add(bal, amount))
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.WithMessage(reverts.ErrInvalidInput, "negative amount")
	}
	return nil
}

// Transfer moves amount of token from one owner to another.
func (b *Bank) Transfer(token, from, to levr.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	if err := b.sub(token, from, amount); err != nil {
		return err
	}
	return b.add(token, to, amount)
}

// Mint creates amount of token for owner.
func (b *Bank) Mint(token, to levr.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := b.add(token, to, amount); err != nil {
		return err
	}
	supply, err := b.supply.Get(token)
	if err != nil {
		return err
	}
	return b.supply.Set(token, supply.Add(supply, amount))
}

// Burn destroys amount of token held by owner.
func (b *Bank) Burn(token, from levr.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := b.sub(token, from, amount); err != nil {
		return err
	}
	supply, err := b.supply.Get(token)
	if err != nil {
		return err
	}
	return b.supply.Set(token, supply.Sub(supply, amount))
}
