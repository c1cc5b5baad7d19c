// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/api/utils"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/runtime"
	"github.com/quantidexyz/levr/tx"
)

type Transactions struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Transactions {
	return &Transactions{rt}
}

// isBadTx reports errors caused by the transaction itself rather than the node.
func isBadTx(err error) bool {
	return errors.Is(err, runtime.ErrBadNonce) ||
		errors.Is(err, runtime.ErrKnownTx) ||
		errors.Is(err, tx.ErrUnsigned) ||
		errors.Is(err, tx.ErrInvalidSignature) ||
		errors.Is(err, tx.ErrInvalidMethod)
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var raw RawTx
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	trx, err := raw.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}

	receipt, err := t.rt.Execute(trx)
	if err != nil {
		if isBadTx(err) {
			return utils.BadRequest(errors.WithMessage(err, "bad tx"))
		}
		return err
	}
	return utils.WriteJSON(w, ConvertReceipt(receipt))
}

func (t *Transactions) handleGetTransactionReceiptByID(w http.ResponseWriter, req *http.Request) error {
	txID, err := levr.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	receipt, err := t.rt.GetReceipt(txID)
	if err != nil {
		if errors.Is(err, runtime.ErrReceiptNotFound) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, ConvertReceipt(receipt))
}

func (t *Transactions) handleGetNonce(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	nonce, err := t.rt.Nonce(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Nonce{Address: addr, Nonce: nonce})
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /transactions").
		HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/nonces/{address}").
		Methods(http.MethodGet).
		Name("GET /transactions/nonces/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetNonce))
	sub.Path("/{id}/receipt").
		Methods(http.MethodGet).
		Name("GET /transactions/{id}/receipt").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionReceiptByID))
}
