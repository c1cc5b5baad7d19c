// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/state"
)

var underlying = levr.BytesToAddress([]byte("underlying"))

func token(i int) levr.Address {
	return levr.BytesToAddress([]byte(fmt.Sprintf("token-%d", i)))
}

func newRegistry(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := New(solidity.NewContext(levr.BytesToAddress([]byte("staking")), state.New(db)))
	require.NoError(t, svc.Init(underlying))
	return svc
}

func Test_Register_Cap(t *testing.T) {
	svc := newRegistry(t)

	// Given a cap of 2
	created, err := svc.Register(token(1), 2)
	require.NoError(t, err)
	assert.True(t, created)
	_, err = svc.Register(token(2), 2)
	require.NoError(t, err)

	// Then a third token is rejected
	_, err = svc.Register(token(3), 2)
	assert.ErrorIs(t, err, reverts.ErrMaxRewardTokensReached)

	// But known tokens and the underlying are always accepted
	created, err = svc.Register(token(1), 2)
	require.NoError(t, err)
	assert.False(t, created)
	created, err = svc.Register(underlying, 2)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, []levr.Address{underlying, token(1), token(2)}, active)
}

func Test_Whitelist_ExemptsFromCap(t *testing.T) {
	svc := newRegistry(t)

	_, err := svc.Register(token(1), 1)
	require.NoError(t, err)

	// whitelisting a counted token frees its slot
	require.NoError(t, svc.Whitelist(token(1)))
	count, err := svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.Register(token(2), 1)
	require.NoError(t, err)

	// whitelisted tokens are not limited by the cap
	require.NoError(t, svc.Whitelist(token(3)))
	entry, err := svc.Get(token(3))
	require.NoError(t, err)
	assert.True(t, entry.Exists)
	assert.True(t, entry.Whitelisted)

	assert.ErrorIs(t, svc.Whitelist(token(3)), reverts.ErrAlreadyWhitelisted)
	assert.ErrorIs(t, svc.Whitelist(underlying), reverts.ErrCannotModifyUnderlying)

	all, err := svc.All()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func Test_Unwhitelist(t *testing.T) {
	svc := newRegistry(t)
	require.NoError(t, svc.Whitelist(token(1)))

	// pending rewards block unwhitelisting
	err := svc.Unwhitelist(token(1), 5, big.NewInt(1), new(big.Int))
	assert.ErrorIs(t, err, reverts.ErrRewardsStillPending)
	err = svc.Unwhitelist(token(1), 5, new(big.Int), big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrRewardsStillPending)

	require.NoError(t, svc.Unwhitelist(token(1), 5, new(big.Int), new(big.Int)))
	entry, err := svc.Get(token(1))
	require.NoError(t, err)
	assert.True(t, entry.Exists)
	assert.False(t, entry.Whitelisted)

	count, err := svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	assert.ErrorIs(t, svc.Unwhitelist(token(1), 5, new(big.Int), new(big.Int)), reverts.ErrTokenNotWhitelisted)
	assert.ErrorIs(t, svc.Unwhitelist(token(9), 5, new(big.Int), new(big.Int)), reverts.ErrTokenNotWhitelisted)
	assert.ErrorIs(t, svc.Unwhitelist(underlying, 5, new(big.Int), new(big.Int)), reverts.ErrCannotModifyUnderlying)
}

func Test_Unwhitelist_RespectsCap(t *testing.T) {
	svc := newRegistry(t)

	// Given a full cap of 1 and a whitelisted token
	_, err := svc.Register(token(1), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Whitelist(token(2)))

	// Then unwhitelisting it would exceed the cap
	err = svc.Unwhitelist(token(2), 1, new(big.Int), new(big.Int))
	assert.ErrorIs(t, err, reverts.ErrMaxRewardTokensReached)
	entry, err := svc.Get(token(2))
	require.NoError(t, err)
	assert.True(t, entry.Whitelisted)
	count, err := svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// But it succeeds once a slot is free
	require.NoError(t, svc.Cleanup(token(1)))
	require.NoError(t, svc.Unwhitelist(token(2), 1, new(big.Int), new(big.Int)))
	count, err = svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func Test_Cleanup(t *testing.T) {
	svc := newRegistry(t)
	_, err := svc.Register(token(1), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Cleanup(token(1)))
	entry, err := svc.Get(token(1))
	require.NoError(t, err)
	assert.False(t, entry.Exists)
	assert.True(t, entry.Listed)

	count, err := svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	// the freed slot can be reused, the list does not grow for a returning token
	_, err = svc.Register(token(1), 1)
	require.NoError(t, err)
	all, err := svc.All()
	require.NoError(t, err)
	assert.Equal(t, []levr.Address{underlying, token(1)}, all)

	assert.ErrorIs(t, svc.Cleanup(token(2)), reverts.ErrTokenNotWhitelisted)
	assert.ErrorIs(t, svc.Cleanup(underlying), reverts.ErrCannotModifyUnderlying)

	// cleaning a whitelisted token leaves the count alone
	require.NoError(t, svc.Whitelist(token(3)))
	require.NoError(t, svc.Cleanup(token(3)))
	count, err = svc.NonWhitelistedCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
