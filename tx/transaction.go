// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tx defines signed calls into the staking engine.
package tx

import (
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/levr"
)

// SignatureLength is the length of a recoverable secp256k1 signature.
const SignatureLength = crypto.SignatureLength

var (
	ErrUnsigned         = errors.New("transaction unsigned")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidMethod    = errors.New("invalid method")
)

// Transaction is an immutable signed call.
type Transaction struct {
	body body

	cache struct {
		hash   atomic.Pointer[levr.Bytes32]
		origin atomic.Pointer[levr.Address]
	}
}

type body struct {
	Method    Method
	Nonce     uint64
	Token     levr.Address
	Recipient levr.Address
	Amount    *big.Int
	Tokens    []levr.Address
	Pull      bool
	Signature []byte
}

func (t *Transaction) Method() Method          { return t.body.Method }
func (t *Transaction) Nonce() uint64           { return t.body.Nonce }
func (t *Transaction) Token() levr.Address     { return t.body.Token }
func (t *Transaction) Recipient() levr.Address { return t.body.Recipient }
func (t *Transaction) Pull() bool              { return t.body.Pull }

// Amount returns a copy of the amount.
func (t *Transaction) Amount() *big.Int {
	if t.body.Amount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(t.body.Amount)
}

// Tokens returns a copy of the token list of a claim.
func (t *Transaction) Tokens() []levr.Address {
	return append([]levr.Address(nil), t.body.Tokens...)
}

// Signature returns a copy of the signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// Hash returns the hash of the whole transaction, signature included.
func (t *Transaction) Hash() levr.Bytes32 {
	if cached := t.cache.hash.Load(); cached != nil {
		return *cached
	}
	h := levr.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, t)
	})
	t.cache.hash.Store(&h)
	return h
}

// SigningHash returns the hash the origin signs.
func (t *Transaction) SigningHash() levr.Bytes32 {
	return levr.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			t.body.Method,
			t.body.Nonce,
			t.body.Token,
			t.body.Recipient,
			t.Amount(),
			t.body.Tokens,
			t.body.Pull,
		})
	})
}

// Origin recovers the signer.
func (t *Transaction) Origin() (levr.Address, error) {
	if cached := t.cache.origin.Load(); cached != nil {
		return *cached, nil
	}
	if len(t.body.Signature) == 0 {
		return levr.Address{}, ErrUnsigned
	}
	if len(t.body.Signature) != SignatureLength {
		return levr.Address{}, errors.WithMessagef(ErrInvalidSignature, "length %d", len(t.body.Signature))
	}
	hash := t.SigningHash()
	pub, err := crypto.SigToPub(hash[:], t.body.Signature)
	if err != nil {
		return levr.Address{}, errors.WithMessage(ErrInvalidSignature, err.Error())
	}
	origin := levr.Address(crypto.PubkeyToAddress(*pub))
	t.cache.origin.Store(&origin)
	return origin, nil
}

// WithSignature returns a copy of the transaction carrying sig.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{body: t.body}
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// Validate checks the shape of the transaction without touching state.
func (t *Transaction) Validate() error {
	if !t.body.Method.Valid() {
		return errors.WithMessagef(ErrInvalidMethod, "%d", t.body.Method)
	}
	if t.body.Amount != nil && t.body.Amount.Sign() < 0 {
		return errors.New("negative amount")
	}
	_, err := t.Origin()
	return err
}

// EncodeRLP implements rlp.Encoder.
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder.
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	*t = Transaction{body: b}
	return nil
}

// MarshalBinary encodes the transaction to its wire form.
func (t *Transaction) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(t)
}

// UnmarshalBinary decodes the wire form.
func (t *Transaction) UnmarshalBinary(data []byte) error {
	return rlp.DecodeBytes(data, t)
}
