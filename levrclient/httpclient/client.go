// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient reads the staking ledger and submits transactions over the REST api.
package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quantidexyz/levr/api/events"
	"github.com/quantidexyz/levr/api/staking"
	"github.com/quantidexyz/levr/api/transactions"
	"github.com/quantidexyz/levr/levr"
)

type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

func get[T any](c *Client, path, what string) (*T, error) {
	body, err := c.httpGET(c.url + path)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve %s - %w", what, err)
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s - %w", what, err)
	}
	return &v, nil
}

func (c *Client) GetParams() (*staking.Params, error) {
	return get[staking.Params](c, "/staking/params", "params")
}

func (c *Client) GetTotals() (*staking.Totals, error) {
	return get[staking.Totals](c, "/staking/totals", "totals")
}

func (c *Client) GetStaker(addr levr.Address) (*staking.Staker, error) {
	return get[staking.Staker](c, "/staking/stakers/"+addr.String(), "staker")
}

// GetClaimable returns the pending rewards of addr for every recognised token.
func (c *Client) GetClaimable(addr levr.Address) ([]*staking.Claimable, error) {
	res, err := get[[]*staking.Claimable](c, "/staking/stakers/"+addr.String()+"/claimable", "claimable")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c *Client) GetTokens() ([]*staking.Stream, error) {
	res, err := get[[]*staking.Stream](c, "/staking/tokens", "tokens")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c *Client) GetToken(token levr.Address) (*staking.Stream, error) {
	return get[staking.Stream](c, "/staking/tokens/"+token.String(), "token")
}

func (c *Client) GetBalance(token, owner levr.Address) (*staking.Balance, error) {
	return get[staking.Balance](c, "/staking/balances/"+token.String()+"/"+owner.String(), "balance")
}

func (c *Client) GetNonce(addr levr.Address) (uint64, error) {
	res, err := get[transactions.Nonce](c, "/transactions/nonces/"+addr.String(), "nonce")
	if err != nil {
		return 0, err
	}
	return res.Nonce, nil
}

func (c *Client) GetTransactionReceipt(txID levr.Bytes32) (*transactions.Receipt, error) {
	return get[transactions.Receipt](c, "/transactions/"+txID.String()+"/receipt", "receipt")
}

// SendTransaction executes a signed transaction and returns its receipt.
func (c *Client) SendTransaction(obj *transactions.RawTx) (*transactions.Receipt, error) {
	body, err := c.httpPOST(c.url+"/transactions", obj)
	if err != nil {
		return nil, fmt.Errorf("unable to send raw transaction - %w", err)
	}

	var receipt transactions.Receipt
	if err = json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("unable to unmarshal receipt - %w", err)
	}
	return &receipt, nil
}

func (c *Client) FilterEvents(req *events.EventFilter) ([]*events.FilteredEvent, error) {
	body, err := c.httpPOST(c.url+"/logs/event", req)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}

	var filtered []*events.FilteredEvent
	if err = json.Unmarshal(body, &filtered); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return filtered, nil
}

// RawHTTPGet sends a raw HTTP GET request to the specified path.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}
