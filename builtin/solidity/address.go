// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/quantidexyz/levr/levr"
)

// Address stores an address at a fixed slot.
type Address struct {
	context *Context
	pos     levr.Bytes32
}

func NewAddress(context *Context, pos levr.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (levr.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return levr.Address{}, err
	}
	return levr.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr levr.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, levr.BytesToBytes32(addr.Bytes()))
}
