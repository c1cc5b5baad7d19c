// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/api/transactions"
	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/test/testchain"
	"github.com/quantidexyz/levr/tx"
)

var (
	ts    *httptest.Server
	subs  *Subscriptions
	chain *testchain.Chain
)

func initSubscriptionsServer(t *testing.T) {
	var err error
	chain, err = testchain.NewIntegrationTestChain()
	require.NoError(t, err)

	router := mux.NewRouter()
	subs = New(chain.Runtime(), []string{"https://example.org"})
	subs.Mount(router, "/subscriptions")
	ts = httptest.NewServer(router)

	t.Cleanup(func() {
		ts.Close()
		subs.Close()
		chain.Close()
	})
}

func listeners() int {
	subs.dispatcher.mu.RLock()
	defer subs.dispatcher.mu.RUnlock()
	return len(subs.dispatcher.listeners)
}

func dial(t *testing.T, path, query string) *websocket.Conn {
	before := listeners()
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: path, RawQuery: query}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })

	// the listener is registered before the handshake completes
	require.Greater(t, listeners(), before)
	return conn
}

func TestSubscriptions(t *testing.T) {
	initSubscriptionsServer(t)

	for name, tt := range map[string]func(*testing.T){
		"receipt":         testReceiptSubscription,
		"event":           testEventSubscription,
		"invalidArgument": testInvalidArgument,
		"forbiddenOrigin": testForbiddenOrigin,
	} {
		t.Run(name, tt)
	}
}

func testReceiptSubscription(t *testing.T) {
	alice := genesis.DevAccounts()[2]
	bob := genesis.DevAccounts()[3]
	conn := dial(t, "/subscriptions/receipt", "origin="+alice.Address.String()+"&method=stake")

	// filtered out by origin
	_, err := chain.Send(bob, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(1)))
	require.NoError(t, err)
	r, err := chain.Send(alice, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(1)))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var receipt transactions.Receipt
	require.NoError(t, conn.ReadJSON(&receipt))
	assert.Equal(t, r.TxID, receipt.ID)
	assert.Equal(t, alice.Address, receipt.Origin)
	assert.Equal(t, tx.MethodStake, receipt.Method)
}

func testEventSubscription(t *testing.T) {
	carol := genesis.DevAccounts()[4]
	conn := dial(t, "/subscriptions/event", "name="+staking.EventUnstaked+"&account="+carol.Address.String())

	_, err := chain.Send(carol, tx.NewBuilder(tx.MethodStake).Amount(testchain.Ether(4)))
	require.NoError(t, err)
	r, err := chain.Send(carol, tx.NewBuilder(tx.MethodUnstake).Amount(testchain.Ether(3)))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, staking.EventUnstaked, msg.Name)
	assert.Equal(t, testchain.Ether(3).String(), (*big.Int)(msg.Amount).String())
	assert.Equal(t, r.TxID, msg.Meta.TxID)
	assert.Equal(t, r.Height, msg.Meta.Height)
}

func testInvalidArgument(t *testing.T) {
	for _, path := range []string{
		"/subscriptions/receipt?origin=0xbad",
		"/subscriptions/receipt?method=mint",
		"/subscriptions/event?token=zz",
	} {
		res, err := http.Get(ts.URL + path) //#nosec G107
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, path)
	}

	res, err := http.Get(ts.URL + "/subscriptions/block") //#nosec G107
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func testForbiddenOrigin(t *testing.T) {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/receipt"}
	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSubscriptions_Close(t *testing.T) {
	initSubscriptionsServer(t)
	conn := dial(t, "/subscriptions/receipt", "")

	done := make(chan struct{})
	go func() {
		subs.Close()
		close(done)
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected %v", err)
	<-done
}
