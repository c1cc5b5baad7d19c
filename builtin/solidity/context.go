// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/state"
)

// Context binds storage abstractions to a contract address over a state.
type Context struct {
	address levr.Address
	state   *state.State
}

func NewContext(address levr.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() levr.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
