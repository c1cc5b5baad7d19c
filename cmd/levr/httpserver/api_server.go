// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/co"
	"github.com/quantidexyz/levr/levr"
)

const (
	// GenesisIDHeader tells clients which ledger they talk to.
	GenesisIDHeader = "x-genesis-id"
	maxBodySize     = 200 * 1024
)

// StartAPIServer serves handler on addr. A zero timeout disables the request deadline.
func StartAPIServer(addr string, handler http.Handler, genesisID levr.Bytes32, timeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = handleXGenesisID(handler, genesisID)
	handler = requestBodyLimit(handler)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// handleAPITimeout bounds plain requests. Websocket upgrades live until either side hangs up.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	timed := http.TimeoutHandler(h, timeout, "request timeout")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			h.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})
}

func handleXGenesisID(h http.Handler, genesisID levr.Bytes32) http.Handler {
	id := genesisID.String()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actual := r.Header.Get(GenesisIDHeader)
		if actual == "" {
			actual = r.URL.Query().Get(GenesisIDHeader)
		}
		w.Header().Set(GenesisIDHeader, id)
		if actual != "" && actual != id {
			http.Error(w, "genesis id mismatch", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		h.ServeHTTP(w, r)
	})
}
