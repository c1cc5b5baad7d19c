// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/quantidexyz/levr/levr"
)

// Event is a stored staking event.
type Event struct {
	Seq       int64
	TxID      levr.Bytes32
	TxOrigin  levr.Address
	Time      uint64
	Index     uint32 // position within the transaction
	Name      string
	Account   levr.Address
	Recipient levr.Address
	Token     levr.Address
	Amount    *big.Int
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds event time, both ends inclusive. To is ignored when smaller than From.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non nil field.
type EventCriteria struct {
	Name    *string
	Account *levr.Address
	Token   *levr.Address
	TxID    *levr.Bytes32
}

// EventFilter selects events matching any of CriteriaSet.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
