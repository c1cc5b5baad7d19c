// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial parameters and balances of a ledger.
package genesis

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/runtime"
)

// Genesis is the initial state of a ledger.
type Genesis struct {
	name   string
	params staking.Params
	allocs []runtime.Alloc
	id     levr.Bytes32
}

func newGenesis(name string, params staking.Params, allocs []runtime.Alloc) (*Genesis, error) {
	data, err := rlp.EncodeToBytes([]any{params, allocs})
	if err != nil {
		return nil, err
	}
	return &Genesis{
		name:   name,
		params: params,
		allocs: allocs,
		id:     levr.Blake2b(data),
	}, nil
}

// ID identifies the genesis by its content.
func (g *Genesis) ID() levr.Bytes32 { return g.id }

// Name returns the network name.
func (g *Genesis) Name() string { return g.name }

// Params returns the staking parameters.
func (g *Genesis) Params() staking.Params { return g.params }

// Allocs returns the initial balances.
func (g *Genesis) Allocs() []runtime.Alloc { return g.allocs }

// Apply initializes rt unless it has been initialized before.
func (g *Genesis) Apply(rt *runtime.Runtime) error {
	if err := rt.Genesis(g.params, g.allocs); err != nil {
		if errors.Is(err, runtime.ErrAlreadyGenesis) {
			return nil
		}
		return errors.WithMessagef(err, "apply genesis %v", g.name)
	}
	return nil
}
