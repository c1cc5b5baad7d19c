// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/levr"
)

var (
	token     = levr.BytesToAddress([]byte("token"))
	recipient = levr.BytesToAddress([]byte("recipient"))
)

func TestSignAndRecover(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	trx := NewBuilder(MethodUnstake).
		Nonce(7).
		Recipient(recipient).
		Amount(big.NewInt(1000)).
		Build()

	_, err = trx.Origin()
	assert.ErrorIs(t, err, ErrUnsigned)

	signed := MustSign(trx, pk)
	origin, err := signed.Origin()
	require.NoError(t, err)
	assert.Equal(t, levr.Address(crypto.PubkeyToAddress(pk.PublicKey)), origin)
	assert.NoError(t, signed.Validate())

	// signature does not change what is signed
	assert.Equal(t, trx.SigningHash(), signed.SigningHash())
	assert.NotEqual(t, trx.Hash(), signed.Hash())
}

func TestEncoding(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	trx := MustSign(NewBuilder(MethodClaim).
		Nonce(1).
		Recipient(recipient).
		Tokens(token, recipient).
		Build(), pk)

	data, err := trx.MarshalBinary()
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, trx.Hash(), decoded.Hash())
	assert.Equal(t, MethodClaim, decoded.Method())
	assert.Equal(t, []levr.Address{token, recipient}, decoded.Tokens())
	assert.Equal(t, "0", decoded.Amount().String())

	want, _ := trx.Origin()
	got, err := decoded.Origin()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTamperedTransaction(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	signed := MustSign(NewBuilder(MethodStake).Amount(big.NewInt(1)).Build(), pk)
	origin, _ := signed.Origin()

	forged := NewBuilder(MethodStake).Amount(big.NewInt(1_000_000)).Build().WithSignature(signed.Signature())
	other, err := forged.Origin()
	if err == nil {
		assert.NotEqual(t, origin, other)
	}

	short := signed.WithSignature(signed.Signature()[:10])
	_, err = short.Origin()
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	assert.ErrorIs(t, MustSign(NewBuilder(Method(99)).Build(), pk).Validate(), ErrInvalidMethod)
	assert.ErrorIs(t, NewBuilder(MethodAccrue).Token(token).Build().Validate(), ErrUnsigned)
}

func TestMethodText(t *testing.T) {
	for m := MethodStake; m <= MethodCleanup; m++ {
		text, err := m.MarshalText()
		require.NoError(t, err)
		var parsed Method
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, m, parsed)
	}
	_, err := ParseMethod("mint")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Method(0).String())
}
