// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/builtin/bank"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/state"
)

const (
	day    = levr.SecondsPerDay
	window = 3 * day
	t0     = uint64(1_700_000_000)
)

var (
	engineAddr  = levr.BytesToAddress([]byte("staking"))
	bankAddr    = levr.BytesToAddress([]byte("bank"))
	underlying  = levr.BytesToAddress([]byte("underlying"))
	stakedToken = levr.BytesToAddress([]byte("staked"))
	treasury    = levr.BytesToAddress([]byte("treasury"))
	admin       = levr.BytesToAddress([]byte("admin"))
	rewardA     = levr.BytesToAddress([]byte("reward-a"))
	rewardB     = levr.BytesToAddress([]byte("reward-b"))
	funder      = levr.BytesToAddress([]byte("funder"))
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), levr.Precision)
}

func user(i int) levr.Address {
	return levr.BytesToAddress([]byte(fmt.Sprintf("user-%d", i)))
}

type testEnv struct {
	t      *testing.T
	state  *state.State
	bank   *bank.Bank
	engine *Engine
}

func defaultParams() Params {
	return Params{
		Underlying:  underlying,
		StakedToken: stakedToken,
		Treasury:    treasury,
		Admin:       admin,
	}
}

func newEnv(t *testing.T) *testEnv {
	return newEnvWith(t, defaultParams(), nil)
}

func newEnvWith(t *testing.T, params Params, fees FeeCollector) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	b := bank.New(bankAddr, st)
	e := New(engineAddr, st, b, fees)
	require.NoError(t, e.Initialize(params))
	return &testEnv{t: t, state: st, bank: b, engine: e}
}

func (env *testEnv) mint(token, to levr.Address, amount *big.Int) {
	require.NoError(env.t, env.bank.Mint(token, to, amount))
}

func (env *testEnv) stake(who levr.Address, amount *big.Int, now uint64) {
	env.mint(underlying, who, amount)
	require.NoError(env.t, env.engine.Stake(who, amount, now))
}

// fund sends amount of token into custody and accrues it.
func (env *testEnv) fund(token levr.Address, amount *big.Int, now uint64) {
	env.mint(token, funder, amount)
	require.NoError(env.t, env.bank.Transfer(token, funder, engineAddr, amount))
	accrued, err := env.engine.Accrue(token, now)
	require.NoError(env.t, err)
	require.Equal(env.t, amount.String(), accrued.String())
}

func (env *testEnv) balance(token, owner levr.Address) *big.Int {
	b, err := env.bank.BalanceOf(token, owner)
	require.NoError(env.t, err)
	return b
}

func (env *testEnv) claimAll(who levr.Address, now uint64) {
	tokens, err := env.engine.RewardTokens()
	require.NoError(env.t, err)
	require.NoError(env.t, env.engine.Claim(who, tokens, who, now))
}

func (env *testEnv) streamInfo(token levr.Address, now uint64) *StreamInfo {
	info, err := env.engine.StreamInfo(token, now)
	require.NoError(env.t, err)
	return info
}

// checkInvariants asserts the bookkeeping invariants for the given stakers.
func (env *testEnv) checkInvariants(stakers []levr.Address, now uint64) {
	t := env.t
	t.Helper()

	sum := new(big.Int)
	for _, s := range stakers {
		bal, err := env.engine.StakedBalance(s)
		require.NoError(t, err)
		sum.Add(sum, bal)
		start, err := env.engine.StakeStartTime(s)
		require.NoError(t, err)
		if bal.Sign() == 0 {
			assert.Zero(t, start, "empty position keeps a start time")
		}
	}
	total, err := env.engine.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, sum.String(), total.String(), "total staked")

	escrow, err := env.engine.EscrowBalance(underlying)
	require.NoError(t, err)
	assert.Equal(t, total.String(), escrow.String(), "escrow")

	tokens, err := env.engine.RewardTokens()
	require.NoError(t, err)
	for _, token := range tokens {
		info := env.streamInfo(token, now)
		conserved := new(big.Int).Add(info.TotalVested, info.Unvested)
		assert.Equal(t, info.OriginalTotal.String(), conserved.String(), "conservation of %v", token)

		committed := new(big.Int).Set(info.Reserve)
		if token == underlying {
			committed.Add(committed, escrow)
		}
		custody := env.balance(token, engineAddr)
		assert.True(t, committed.Cmp(custody) <= 0, "reserve %v exceeds custody %v", committed, custody)
	}
}

func assertClose(t *testing.T, want, got *big.Int, tolerance int64) {
	t.Helper()
	diff := new(big.Int).Sub(want, got)
	diff.Abs(diff)
	assert.Truef(t, diff.Cmp(big.NewInt(tolerance)) <= 0, "want %v got %v", want, got)
}
