// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package levrclient is a client of the levr node api.
package levrclient

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/quantidexyz/levr/api/events"
	"github.com/quantidexyz/levr/api/staking"
	"github.com/quantidexyz/levr/api/subscriptions"
	"github.com/quantidexyz/levr/api/transactions"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/levrclient/common"
	"github.com/quantidexyz/levr/levrclient/httpclient"
	"github.com/quantidexyz/levr/levrclient/wsclient"
	"github.com/quantidexyz/levr/tx"
)

type Client struct {
	httpConn *httpclient.Client
	wsConn   *wsclient.Client
}

func New(url string) *Client {
	return &Client{
		httpConn: httpclient.New(url),
	}
}

func NewWithWS(url string) (*Client, error) {
	wsClient, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpConn: httpclient.New(url),
		wsConn:   wsClient,
	}, nil
}

func (c *Client) RawHTTPClient() *httpclient.Client {
	return c.httpConn
}

func (c *Client) RawWSClient() *wsclient.Client {
	return c.wsConn
}

func (c *Client) Params() (*staking.Params, error) {
	return c.httpConn.GetParams()
}

func (c *Client) Totals() (*staking.Totals, error) {
	return c.httpConn.GetTotals()
}

func (c *Client) Staker(addr levr.Address) (*staking.Staker, error) {
	return c.httpConn.GetStaker(addr)
}

func (c *Client) Claimable(addr levr.Address) ([]*staking.Claimable, error) {
	return c.httpConn.GetClaimable(addr)
}

func (c *Client) Tokens() ([]*staking.Stream, error) {
	return c.httpConn.GetTokens()
}

func (c *Client) Token(token levr.Address) (*staking.Stream, error) {
	return c.httpConn.GetToken(token)
}

func (c *Client) Balance(token, owner levr.Address) (*staking.Balance, error) {
	return c.httpConn.GetBalance(token, owner)
}

func (c *Client) Nonce(addr levr.Address) (uint64, error) {
	return c.httpConn.GetNonce(addr)
}

func (c *Client) TransactionReceipt(id levr.Bytes32) (*transactions.Receipt, error) {
	return c.httpConn.GetTransactionReceipt(id)
}

func (c *Client) FilterEvents(req *events.EventFilter) ([]*events.FilteredEvent, error) {
	return c.httpConn.FilterEvents(req)
}

// SendTransaction submits a signed transaction.
func (c *Client) SendTransaction(trx *tx.Transaction) (*transactions.Receipt, error) {
	raw, err := trx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("unable to encode transaction - %w", err)
	}
	return c.httpConn.SendTransaction(&transactions.RawTx{Raw: hexutil.Encode(raw)})
}

// Transact fills in the next nonce of key, signs and submits the transaction.
func (c *Client) Transact(key *ecdsa.PrivateKey, builder *tx.Builder) (*transactions.Receipt, error) {
	origin := levr.Address(crypto.PubkeyToAddress(key.PublicKey))
	nonce, err := c.Nonce(origin)
	if err != nil {
		return nil, err
	}
	trx, err := tx.Sign(builder.Nonce(nonce).Build(), key)
	if err != nil {
		return nil, err
	}
	return c.SendTransaction(trx)
}

func (c *Client) SubscribeReceipts(query string) (<-chan common.EventWrapper[*transactions.Receipt], error) {
	if c.wsConn == nil {
		return nil, fmt.Errorf("not a websocket typed client")
	}
	return c.wsConn.SubscribeReceipts(query)
}

func (c *Client) SubscribeEvents(query string) (<-chan common.EventWrapper[*subscriptions.EventMessage], error) {
	if c.wsConn == nil {
		return nil, fmt.Errorf("not a websocket typed client")
	}
	return c.wsConn.SubscribeEvents(query)
}
