// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/test/testchain"
	"github.com/quantidexyz/levr/tx"
)

func txContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("tx", flag.ContinueOnError)
	set.String(methodFlag.Name, "", "")
	set.String(amountFlag.Name, "", "")
	set.String(tokenFlag.Name, "", "")
	set.String(recipientFlag.Name, "", "")
	set.Bool(pullFlag.Name, false, "")
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestBuildTx(t *testing.T) {
	token := genesis.DevRewardToken.String()
	other := genesis.DevUnderlying.String()
	recipient := genesis.DevAccounts()[3].Address

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, trx *tx.Transaction)
	}{
		{
			name: "stake",
			args: []string{"-method", "stake", "-amount", "1000000000000000000"},
			check: func(t *testing.T, trx *tx.Transaction) {
				assert.Equal(t, tx.MethodStake, trx.Method())
				assert.Equal(t, testchain.Ether(1), trx.Amount())
			},
		},
		{
			name: "hex amount",
			args: []string{"-method", "unstake", "-amount", "0x10", "-recipient", recipient.String()},
			check: func(t *testing.T, trx *tx.Transaction) {
				assert.Equal(t, tx.MethodUnstake, trx.Method())
				assert.Equal(t, int64(16), trx.Amount().Int64())
				assert.Equal(t, recipient, trx.Recipient())
			},
		},
		{
			name: "claim many",
			args: []string{"-method", "claim", "-token", token + ", " + other},
			check: func(t *testing.T, trx *tx.Transaction) {
				assert.Equal(t, tx.MethodClaim, trx.Method())
				assert.Equal(t, []string{token, other}, []string{trx.Tokens()[0].String(), trx.Tokens()[1].String()})
			},
		},
		{
			name: "boost pull",
			args: []string{"-method", "accrueFromBoost", "-token", token, "-amount", "5", "-pull"},
			check: func(t *testing.T, trx *tx.Transaction) {
				assert.Equal(t, genesis.DevRewardToken, trx.Token())
				assert.True(t, trx.Pull())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, err := buildTx(txContext(t, tt.args...))
			require.NoError(t, err)
			tt.check(t, builder.Build())
		})
	}
}

func TestBuildTx_Errors(t *testing.T) {
	token := genesis.DevRewardToken.String()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown method", []string{"-method", "mint"}},
		{"bad amount", []string{"-method", "stake", "-amount", "ten"}},
		{"bad token", []string{"-method", "accrue", "-token", "0x12"}},
		{"two tokens", []string{"-method", "accrue", "-token", token + "," + token}},
		{"bad recipient", []string{"-method", "unstake", "-recipient", "bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTx(txContext(t, tt.args...))
			assert.Error(t, err)
		})
	}
}
