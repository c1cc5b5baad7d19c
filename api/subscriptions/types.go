// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/url"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/api/transactions"
	"github.com/quantidexyz/levr/api/utils"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/runtime"
	"github.com/quantidexyz/levr/tx"
)

type EventMeta struct {
	TxID     levr.Bytes32 `json:"txID"`
	TxOrigin levr.Address `json:"txOrigin"`
	Time     uint64       `json:"time"`
	Height   uint64       `json:"height"`
}

type EventMessage struct {
	Name      string                `json:"name"`
	Account   levr.Address          `json:"account"`
	Recipient levr.Address          `json:"recipient"`
	Token     levr.Address          `json:"token"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Meta      EventMeta             `json:"meta"`
}

// ReceiptFilter matches receipts on every set field.
type ReceiptFilter struct {
	Origin *levr.Address
	Method *tx.Method
}

func (f *ReceiptFilter) Match(r *runtime.Receipt) bool {
	if f.Origin != nil && *f.Origin != r.Origin {
		return false
	}
	if f.Method != nil && *f.Method != r.Method {
		return false
	}
	return true
}

// EventFilter matches events on every set field.
type EventFilter struct {
	Name    string
	Account *levr.Address
	Token   *levr.Address
}

func (f *EventFilter) Match(ev *runtime.Event) bool {
	if f.Name != "" && f.Name != ev.Name {
		return false
	}
	if f.Account != nil && *f.Account != ev.Account {
		return false
	}
	if f.Token != nil && *f.Token != ev.Token {
		return false
	}
	return true
}

func parseAddress(query url.Values, name string) (*levr.Address, error) {
	s := query.Get(name)
	if s == "" {
		return nil, nil
	}
	addr, err := levr.ParseAddress(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func parseReceiptFilter(query url.Values) (*ReceiptFilter, error) {
	origin, err := parseAddress(query, "origin")
	if err != nil {
		return nil, err
	}
	filter := &ReceiptFilter{Origin: origin}
	if s := query.Get("method"); s != "" {
		method, err := tx.ParseMethod(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "method"))
		}
		filter.Method = &method
	}
	return filter, nil
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	account, err := parseAddress(query, "account")
	if err != nil {
		return nil, err
	}
	token, err := parseAddress(query, "token")
	if err != nil {
		return nil, err
	}
	return &EventFilter{Name: query.Get("name"), Account: account, Token: token}, nil
}

func receiptMessages(filter *ReceiptFilter) func(*runtime.Receipt) []any {
	return func(r *runtime.Receipt) []any {
		if !filter.Match(r) {
			return nil
		}
		return []any{transactions.ConvertReceipt(r)}
	}
}

func eventMessages(filter *EventFilter) func(*runtime.Receipt) []any {
	return func(r *runtime.Receipt) []any {
		var msgs []any
		for _, ev := range r.Events {
			if !filter.Match(ev) {
				continue
			}
			msgs = append(msgs, &EventMessage{
				Name:      ev.Name,
				Account:   ev.Account,
				Recipient: ev.Recipient,
				Token:     ev.Token,
				Amount:    (*math.HexOrDecimal256)(ev.Amount),
				Meta: EventMeta{
					TxID:     r.TxID,
					TxOrigin: r.Origin,
					Time:     r.Time,
					Height:   r.Height,
				},
			})
		}
		return msgs
	}
}
