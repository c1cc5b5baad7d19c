// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/tx"
)

// Receipt is the outcome of a committed transaction.
// A reverted transaction is committed too: it consumes its nonce and changes nothing else.
type Receipt struct {
	TxID         levr.Bytes32
	Origin       levr.Address
	Method       tx.Method
	Nonce        uint64
	Time         uint64
	Height       uint64
	Reverted     bool
	RevertReason string
	Output       *big.Int // voting power after unstake, amount of accrue
	Events       []*Event
}

// Event is a staking event of a receipt.
type Event struct {
	Name      string
	Account   levr.Address
	Recipient levr.Address
	Token     levr.Address
	Amount    *big.Int
}

func convertEvents(events []*staking.Event) []*Event {
	out := make([]*Event, 0, len(events))
	for _, ev := range events {
		out = append(out, &Event{
			Name:      ev.Name,
			Account:   ev.Account,
			Recipient: ev.Recipient,
			Token:     ev.Token,
			Amount:    ev.Amount,
		})
	}
	return out
}

// LogEvents returns the log db rows of the receipt in emission order.
func (r *Receipt) LogEvents() []*logdb.Event {
	out := make([]*logdb.Event, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, &logdb.Event{
			Name:      ev.Name,
			Account:   ev.Account,
			Recipient: ev.Recipient,
			Token:     ev.Token,
			Amount:    ev.Amount,
		})
	}
	return out
}
