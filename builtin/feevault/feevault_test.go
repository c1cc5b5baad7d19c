// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feevault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/builtin/bank"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/state"
)

func TestCollect(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var (
		token       = levr.BytesToAddress([]byte("token"))
		vaultAddr   = levr.BytesToAddress([]byte("vault"))
		beneficiary = levr.BytesToAddress([]byte("staking"))
	)
	b := bank.New(levr.BytesToAddress([]byte("bank")), state.New(db))
	v := New(vaultAddr, beneficiary, b)
	assert.Equal(t, vaultAddr, v.Address())

	// nothing to collect
	require.NoError(t, v.Collect(token))

	require.NoError(t, b.Mint(token, vaultAddr, big.NewInt(42)))
	require.NoError(t, v.Collect(token))

	bal, err := v.Balance(token)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())
	got, err := b.BalanceOf(token, beneficiary)
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())
}
