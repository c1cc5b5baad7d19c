// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	ethmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/logdb"
)

type LogMeta struct {
	TxID       levr.Bytes32 `json:"txID"`
	TxOrigin   levr.Address `json:"txOrigin"`
	Time       uint64       `json:"time"`
	EventIndex uint32       `json:"eventIndex"`
}

type FilteredEvent struct {
	Name      string                   `json:"name"`
	Account   levr.Address             `json:"account"`
	Recipient levr.Address             `json:"recipient"`
	Token     levr.Address             `json:"token"`
	Amount    *ethmath.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta                  `json:"meta"`
}

func convertEvent(e *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Name:      e.Name,
		Account:   e.Account,
		Recipient: e.Recipient,
		Token:     e.Token,
		Amount:    (*ethmath.HexOrDecimal256)(e.Amount),
		Meta: LogMeta{
			TxID:       e.TxID,
			TxOrigin:   e.TxOrigin,
			Time:       e.Time,
			EventIndex: e.Index,
		},
	}
}

type EventCriteria struct {
	Name    *string       `json:"name"`
	Account *levr.Address `json:"account"`
	Token   *levr.Address `json:"token"`
	TxID    *levr.Bytes32 `json:"txID"`
}

// Range bounds event time in unix seconds, both ends inclusive.
type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertEventFilter(ef *EventFilter) (*logdb.EventFilter, error) {
	switch ef.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, fmt.Errorf("order: unknown value %q", ef.Order)
	}
	filter := &logdb.EventFilter{Order: ef.Order}
	for _, c := range ef.CriteriaSet {
		filter.CriteriaSet = append(filter.CriteriaSet, &logdb.EventCriteria{
			Name:    c.Name,
			Account: c.Account,
			Token:   c.Token,
			TxID:    c.TxID,
		})
	}
	if ef.Range != nil {
		r := &logdb.Range{To: math.MaxInt64}
		if ef.Range.From != nil {
			r.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			r.To = *ef.Range.To
		}
		filter.Range = r
	}
	if ef.Options != nil {
		filter.Options = &logdb.Options{Offset: ef.Options.Offset, Limit: ef.Options.Limit}
	}
	return filter, nil
}
