// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/state"
)

func TestBank(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := levr.BytesToAddress([]byte("bank"))
	b := New(addr, state.New(db))

	token := levr.BytesToAddress([]byte("token"))
	alice := levr.BytesToAddress([]byte("alice"))
	bob := levr.BytesToAddress([]byte("bob"))

	require.NoError(t, b.Mint(token, alice, big.NewInt(100)))
	require.NoError(t, b.Transfer(token, alice, bob, big.NewInt(40)))

	bal, err := b.BalanceOf(token, alice)
	require.NoError(t, err)
	assert.Equal(t, "60", bal.String())
	bal, err = b.BalanceOf(token, bob)
	require.NoError(t, err)
	assert.Equal(t, "40", bal.String())

	err = b.Transfer(token, bob, alice, big.NewInt(41))
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)

	require.NoError(t, b.Burn(token, bob, big.NewInt(40)))
	supply, err := b.TotalSupply(token)
	require.NoError(t, err)
	assert.Equal(t, "60", supply.String())

	assert.ErrorIs(t, b.Burn(token, bob, big.NewInt(1)), reverts.ErrInsufficientBalance)
	assert.ErrorIs(t, b.Mint(token, bob, big.NewInt(-1)), reverts.ErrInvalidInput)

	// self transfer and zero transfer are no-ops
	require.NoError(t, b.Transfer(token, alice, alice, big.NewInt(1000)))
	require.NoError(t, b.Transfer(token, bob, alice, new(big.Int)))
}
