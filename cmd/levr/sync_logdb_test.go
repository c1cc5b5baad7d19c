// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/runtime"
	"github.com/quantidexyz/levr/test/testchain"
	"github.com/quantidexyz/levr/tx"
)

func newChainWithHistory(t *testing.T) *testchain.Chain {
	chain, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	alice := genesis.DevAccounts()[2]
	treasury := genesis.DevAccounts()[1]

	_, err = chain.Send(alice, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(10)))
	require.NoError(t, err)
	_, err = chain.Send(treasury, tx.NewBuilder(tx.MethodAccrueFromBoost).
		Token(genesis.DevRewardToken).Amount(testchain.Ether(5)).Pull(true))
	require.NoError(t, err)
	chain.Advance(3600)
	_, err = chain.Send(alice, tx.NewBuilder(tx.MethodClaim).Tokens(genesis.DevRewardToken))
	require.NoError(t, err)
	return chain
}

func countEvents(t *testing.T, db *logdb.LogDB) int {
	events, err := db.FilterEvents(context.Background(), &logdb.EventFilter{})
	require.NoError(t, err)
	return len(events)
}

func TestPumpReceipts(t *testing.T) {
	chain := newChainWithHistory(t)
	_, height := chain.Runtime().Head()

	ch := make(chan *runtime.Receipt, 16)
	require.NoError(t, pumpReceipts(context.Background(), chain.Runtime(), firstTxHeight, height+5, ch))

	var heights []uint64
	for r := range ch {
		heights = append(heights, r.Height)
	}
	assert.Equal(t, []uint64{2, 3, 4}, heights)
}

func TestRebuildLogDB(t *testing.T) {
	chain := newChainWithHistory(t)
	ctx := context.Background()

	before := countEvents(t, chain.LogDB())
	require.Positive(t, before)
	require.NoError(t, verifyLogDB(ctx, chain.Runtime(), chain.LogDB()))

	require.NoError(t, rebuildLogDB(ctx, chain.Runtime(), chain.LogDB()))
	assert.Equal(t, before, countEvents(t, chain.LogDB()))
	assert.NoError(t, verifyLogDB(ctx, chain.Runtime(), chain.LogDB()))
}

func TestVerifyLogDB_Missing(t *testing.T) {
	chain := newChainWithHistory(t)

	require.NoError(t, chain.LogDB().Truncate())
	assert.Error(t, verifyLogDB(context.Background(), chain.Runtime(), chain.LogDB()))
}

func TestJSONDiff(t *testing.T) {
	assert.Empty(t, jsonDiff([]int{1, 2}, []int{1, 2}))

	diff := jsonDiff(map[string]int{"a": 1}, map[string]int{"a": 2})
	assert.Contains(t, diff, "--- Expected")
	assert.Contains(t, diff, "+++ Actual")
	assert.Contains(t, diff, `-  "a": 1`)
	assert.Contains(t, diff, `+  "a": 2`)
}
