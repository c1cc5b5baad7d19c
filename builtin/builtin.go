// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the native contracts to their addresses.
package builtin

import (
	"github.com/quantidexyz/levr/builtin/bank"
	"github.com/quantidexyz/levr/builtin/feevault"
	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/state"
)

// Builtin contracts binding.
var (
	Bank     = &bankContract{newContract("Bank")}
	Staking  = &stakingContract{newContract("Staking")}
	FeeVault = &feeVaultContract{newContract("FeeVault")}
)

type contract struct {
	Name    string
	Address levr.Address
}

func newContract(name string) *contract {
	return &contract{name, levr.BytesToAddress([]byte(name))}
}

type (
	bankContract     struct{ *contract }
	stakingContract  struct{ *contract }
	feeVaultContract struct{ *contract }
)

func (b *bankContract) WithState(state *state.State) *bank.Bank {
	return bank.New(b.Address, state)
}

func (f *feeVaultContract) WithState(state *state.State) *feevault.Vault {
	return feevault.New(f.Address, Staking.Address, Bank.WithState(state))
}

// WithState returns the staking engine with its bank and fee vault wired.
func (s *stakingContract) WithState(state *state.State) *staking.Engine {
	return staking.New(s.Address, state, Bank.WithState(state), FeeVault.WithState(state))
}
