// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// MustSign signs tx with pk and panics on failure.
func MustSign(tx *Transaction, pk *ecdsa.PrivateKey) *Transaction {
	signed, err := Sign(tx, pk)
	if err != nil {
		panic(err)
	}
	return signed
}

// Sign returns a copy of tx signed by pk.
func Sign(tx *Transaction, pk *ecdsa.PrivateKey) (*Transaction, error) {
	hash := tx.SigningHash()
	sig, err := crypto.Sign(hash[:], pk)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sign transaction")
	}
	return tx.WithSignature(sig), nil
}
