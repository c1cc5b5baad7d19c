// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/runtime"
	"github.com/quantidexyz/levr/tx"
)

// RawTx is a hex encoded signed transaction.
type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	var trx tx.Transaction
	if err := trx.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &trx, nil
}

// Event is a staking event emitted by a transaction.
type Event struct {
	Name      string                `json:"name"`
	Account   levr.Address          `json:"account"`
	Recipient levr.Address          `json:"recipient"`
	Token     levr.Address          `json:"token"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

// Receipt is the outcome of a transaction.
type Receipt struct {
	ID           levr.Bytes32          `json:"id"`
	Origin       levr.Address          `json:"origin"`
	Method       tx.Method             `json:"method"`
	Nonce        uint64                `json:"nonce"`
	Time         uint64                `json:"time"`
	Height       uint64                `json:"height"`
	Reverted     bool                  `json:"reverted"`
	RevertReason string                `json:"revertReason,omitempty"`
	Output       *math.HexOrDecimal256 `json:"output"`
	Events       []*Event              `json:"events"`
}

func amountJSON(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

// ConvertReceipt converts a runtime receipt into its json form.
func ConvertReceipt(r *runtime.Receipt) *Receipt {
	events := make([]*Event, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, &Event{
			Name:      ev.Name,
			Account:   ev.Account,
			Recipient: ev.Recipient,
			Token:     ev.Token,
			Amount:    amountJSON(ev.Amount),
		})
	}
	return &Receipt{
		ID:           r.TxID,
		Origin:       r.Origin,
		Method:       r.Method,
		Nonce:        r.Nonce,
		Time:         r.Time,
		Height:       r.Height,
		Reverted:     r.Reverted,
		RevertReason: r.RevertReason,
		Output:       amountJSON(r.Output),
		Events:       events,
	}
}

// Nonce is the next nonce of an account.
type Nonce struct {
	Address levr.Address `json:"address"`
	Nonce   uint64       `json:"nonce"`
}
