// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package feevault holds externally earned fees until the staking engine collects them.
package feevault

import (
	"math/big"

	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/log"
)

var logger = log.WithContext("pkg", "feevault")

// Bank moves tokens.
type Bank interface {
	BalanceOf(token, owner levr.Address) (*big.Int, error)
	Transfer(token, from, to levr.Address, amount *big.Int) error
}

// Vault forwards its whole balance of a token to the beneficiary on Collect.
type Vault struct {
	addr        levr.Address
	beneficiary levr.Address
	bank        Bank
}

func New(addr, beneficiary levr.Address, bank Bank) *Vault {
	return &Vault{addr: addr, beneficiary: beneficiary, bank: bank}
}

func (v *Vault) Address() levr.Address {
	return v.addr
}

// Balance returns the fees of token waiting for collection.
func (v *Vault) Balance(token levr.Address) (*big.Int, error) {
	return v.bank.BalanceOf(token, v.addr)
}

// Collect sends every held unit of token to the beneficiary.
func (v *Vault) Collect(token levr.Address) error {
	bal, err := v.Balance(token)
	if err != nil {
		return err
	}
	if bal.Sign() == 0 {
		return nil
	}
	if err := v.bank.Transfer(token, v.addr, v.beneficiary, bal); err != nil {
		return err
	}
	logger.Debug("fees collected", "token", token, "amount", bal)
	return nil
}
