// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/api/subscriptions"
	"github.com/quantidexyz/levr/api/transactions"
	"github.com/quantidexyz/levr/levrclient/common"
	"github.com/quantidexyz/levr/tx"
)

func serveOne(t *testing.T, path, query string, msg any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, query, r.URL.RawQuery)

		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteJSON(msg)
	}))
}

func TestClient_SubscribeReceipts(t *testing.T) {
	query := "method=stake"
	expected := &transactions.Receipt{Method: tx.MethodStake, Height: 7, Events: []*transactions.Event{}}
	ts := serveOne(t, "/subscriptions/receipt", query, expected)
	defer ts.Close()

	client, err := NewClient(ts.URL)
	require.NoError(t, err)
	ch, err := client.SubscribeReceipts(query)
	require.NoError(t, err)

	got := <-ch
	require.NoError(t, got.Error)
	assert.Equal(t, expected.Height, got.Data.Height)
	assert.Equal(t, tx.MethodStake, got.Data.Method)

	// the server hangs up after one message
	last := <-ch
	assert.ErrorIs(t, last.Error, common.ErrUnexpectedMsg)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestClient_SubscribeEvents(t *testing.T) {
	query := "name=Staked"
	expected := &subscriptions.EventMessage{Name: "Staked"}
	ts := serveOne(t, "/subscriptions/event", query, expected)
	defer ts.Close()

	client, err := NewClient(ts.URL)
	require.NoError(t, err)
	ch, err := client.SubscribeEvents(query)
	require.NoError(t, err)

	got := <-ch
	require.NoError(t, got.Error)
	assert.Equal(t, "Staked", got.Data.Name)
}

func TestNewClient(t *testing.T) {
	for url, scheme := range map[string]string{
		"http://localhost:8669/":  "ws",
		"ws://localhost:8669":     "ws",
		"https://node.levr.xyz":   "wss",
		"wss://node.levr.xyz:443": "wss",
	} {
		c, err := NewClient(url)
		require.NoError(t, err, url)
		assert.Equal(t, scheme, c.scheme)
	}

	_, err := NewClient("localhost:8669")
	assert.Error(t, err)
}
