// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-tty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/levrclient"
	"github.com/quantidexyz/levr/tx"
)

func readPasswordFromNewTTY(prompt string) (string, error) {
	t, err := tty.Open()
	if err != nil {
		return "", err
	}
	defer t.Close()
	fmt.Fprint(t.Output(), prompt)
	return t.ReadPasswordNoEcho()
}

func confirmFromNewTTY(prompt string) (bool, error) {
	t, err := tty.Open()
	if err != nil {
		return false, err
	}
	defer t.Close()
	fmt.Fprint(t.Output(), prompt)
	answer, err := t.ReadString()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func loadKey(ctx *cli.Context) (*ecdsa.PrivateKey, error) {
	if path := ctx.String(keyFileFlag.Name); path != "" {
		key, err := crypto.LoadECDSA(path)
		if err != nil {
			return nil, errors.WithMessage(err, "load key file")
		}
		return key, nil
	}
	hex, err := readPasswordFromNewTTY("Enter private key: ")
	if err != nil {
		return nil, errors.WithMessage(err, "read private key")
	}
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hex), "0x"))
}

// buildTx maps the tx command flags onto a transaction builder.
func buildTx(ctx *cli.Context) (*tx.Builder, error) {
	method, err := tx.ParseMethod(ctx.String(methodFlag.Name))
	if err != nil {
		return nil, err
	}
	builder := tx.NewBuilder(method)

	if s := ctx.String(amountFlag.Name); s != "" {
		amount, ok := math.ParseBig256(s)
		if !ok {
			return nil, errors.Errorf("invalid amount %q", s)
		}
		builder.Amount(amount)
	}

	if s := ctx.String(tokenFlag.Name); s != "" {
		var tokens []levr.Address
		for _, part := range strings.Split(s, ",") {
			token, err := levr.ParseAddress(strings.TrimSpace(part))
			if err != nil {
				return nil, errors.WithMessage(err, "token")
			}
			tokens = append(tokens, *token)
		}
		if method == tx.MethodClaim {
			builder.Tokens(tokens...)
		} else {
			if len(tokens) != 1 {
				return nil, errors.Errorf("%v takes a single token", method)
			}
			builder.Token(tokens[0])
		}
	}

	if s := ctx.String(recipientFlag.Name); s != "" {
		recipient, err := levr.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "recipient")
		}
		builder.Recipient(*recipient)
	}
	if ctx.Bool(pullFlag.Name) {
		builder.Pull(true)
	}
	return builder, nil
}

func txAction(ctx *cli.Context) error {
	builder, err := buildTx(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(ctx)
	if err != nil {
		return err
	}

	receipt, err := levrclient.New(ctx.String(apiURLFlag.Name)).Transact(key, builder)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(receipt); err != nil {
		return err
	}
	if receipt.Reverted {
		return errors.Errorf("transaction reverted: %s", receipt.RevertReason)
	}
	return nil
}
