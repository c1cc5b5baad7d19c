// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/quantidexyz/levr/levr"
)

// Builder makes transactions.
type Builder struct {
	body body
}

func NewBuilder(method Method) *Builder {
	return &Builder{body: body{Method: method}}
}

func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

func (b *Builder) Token(token levr.Address) *Builder {
	b.body.Token = token
	return b
}

func (b *Builder) Recipient(recipient levr.Address) *Builder {
	b.body.Recipient = recipient
	return b
}

func (b *Builder) Amount(amount *big.Int) *Builder {
	b.body.Amount = new(big.Int).Set(amount)
	return b
}

// Tokens appends tokens to claim.
func (b *Builder) Tokens(tokens ...levr.Address) *Builder {
	b.body.Tokens = append(b.body.Tokens, tokens...)
	return b
}

func (b *Builder) Pull(pull bool) *Builder {
	b.body.Pull = pull
	return b
}

// Build returns the unsigned transaction.
func (b *Builder) Build() *Transaction {
	body := b.body
	if body.Amount == nil {
		body.Amount = new(big.Int)
	}
	body.Tokens = append([]levr.Address(nil), b.body.Tokens...)
	return &Transaction{body: body}
}
