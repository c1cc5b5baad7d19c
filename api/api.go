// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/quantidexyz/levr/api/events"
	"github.com/quantidexyz/levr/api/staking"
	"github.com/quantidexyz/levr/api/subscriptions"
	"github.com/quantidexyz/levr/api/transactions"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	PprofOn         bool
	SkipLogs        bool
	EnableReqLogger *atomic.Bool
	EnableMetrics   bool
	LogsLimit       uint64
}

// New return api router
func New(
	rt *runtime.Runtime,
	logDB *logdb.LogDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(rt).
		Mount(router, "/staking")
	transactions.New(rt).
		Mount(router, "/transactions")
	if !opts.SkipLogs {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = RequestLoggerHandler(handler, logger, enabled)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
