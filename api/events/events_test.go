// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/api/events"
	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/test/testchain"
	"github.com/quantidexyz/levr/tx"
)

const defaultLogLimit uint64 = 5

var ts *httptest.Server

func initEventServer(t *testing.T, limit uint64) *testchain.Chain {
	chain, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	router := mux.NewRouter()
	events.New(chain.LogDB(), limit).Mount(router, "/logs/event")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return chain
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	var data []byte
	switch v := obj.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(obj)
		require.NoError(t, err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func filter(t *testing.T, f any) []*events.FilteredEvent {
	body, status := httpPost(t, ts.URL+"/logs/event", f)
	require.Equal(t, http.StatusOK, status, string(body))
	var fes []*events.FilteredEvent
	require.NoError(t, json.Unmarshal(body, &fes))
	return fes
}

func TestEvents(t *testing.T) {
	chain := initEventServer(t, defaultLogLimit)
	alice := genesis.DevAccounts()[2]
	bob := genesis.DevAccounts()[3]

	stake, err := chain.Send(alice, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(10)))
	require.NoError(t, err)
	chain.Advance(levr.SecondsPerDay)
	_, err = chain.Send(bob, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(20)))
	require.NoError(t, err)
	chain.Advance(levr.SecondsPerDay)
	_, err = chain.Send(alice, tx.NewBuilder(tx.MethodUnstake).Amount(testchain.Ether(5)))
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		fes := filter(t, "{}")
		require.Len(t, fes, 3)
		assert.Equal(t, staking.EventStaked, fes[0].Name)
		assert.Equal(t, alice.Address, fes[0].Account)
		assert.Equal(t, stake.TxID, fes[0].Meta.TxID)
		assert.Equal(t, alice.Address, fes[0].Meta.TxOrigin)
		assert.Equal(t, testchain.DefaultLaunchTime, fes[0].Meta.Time)
		assert.Equal(t, testchain.Ether(10).String(), (*big.Int)(fes[0].Amount).String())
		assert.Equal(t, staking.EventUnstaked, fes[2].Name)
	})

	t.Run("criteria", func(t *testing.T) {
		name := staking.EventStaked
		fes := filter(t, &events.EventFilter{
			CriteriaSet: []*events.EventCriteria{{Name: &name, Account: &bob.Address}},
		})
		require.Len(t, fes, 1)
		assert.Equal(t, testchain.Ether(20).String(), (*big.Int)(fes[0].Amount).String())

		fes = filter(t, &events.EventFilter{
			CriteriaSet: []*events.EventCriteria{{Account: &bob.Address}, {TxID: &stake.TxID}},
		})
		assert.Len(t, fes, 2)
	})

	t.Run("rangeAndOrder", func(t *testing.T) {
		from := testchain.DefaultLaunchTime + levr.SecondsPerDay
		fes := filter(t, &events.EventFilter{
			Range: &events.Range{From: &from},
			Order: logdb.DESC,
		})
		require.Len(t, fes, 2)
		assert.Equal(t, staking.EventUnstaked, fes[0].Name)
		assert.Equal(t, staking.EventStaked, fes[1].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		fes := filter(t, &events.EventFilter{Options: &events.Options{Offset: 1, Limit: 1}})
		require.Len(t, fes, 1)
		assert.Equal(t, bob.Address, fes[0].Account)
	})

	t.Run("invalid", func(t *testing.T) {
		_, status := httpPost(t, ts.URL+"/logs/event", "{")
		assert.Equal(t, http.StatusBadRequest, status)

		_, status = httpPost(t, ts.URL+"/logs/event", `{"criteriaSet": [null]}`)
		assert.Equal(t, http.StatusBadRequest, status)

		_, status = httpPost(t, ts.URL+"/logs/event", `{"order": "sideways"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		_, status = httpPost(t, ts.URL+"/logs/event", `{"range": {"from": 10, "to": 5}}`)
		assert.Equal(t, http.StatusBadRequest, status)

		_, status = httpPost(t, ts.URL+"/logs/event", &events.EventFilter{Options: &events.Options{Limit: defaultLogLimit + 1}})
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestEvents_ExceedsLimit(t *testing.T) {
	chain := initEventServer(t, 2)
	for _, acc := range genesis.DevAccounts()[2:5] {
		_, err := chain.Send(acc, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(1)))
		require.NoError(t, err)
	}

	body, status := httpPost(t, ts.URL+"/logs/event", "{}")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "please use pagination")
}
