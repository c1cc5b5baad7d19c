// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/quantidexyz/levr/api"
	"github.com/quantidexyz/levr/cmd/levr/httpserver"
	"github.com/quantidexyz/levr/co"
	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/health"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/metrics"
	"github.com/quantidexyz/levr/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Levr",
		Usage:     "Node of the Levr staking ledger",
		Copyright: "2025 Quantide <https://levr.xyz/>",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			skipLogsFlag,
			verifyLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			ntpServerFlag,
			maxClockDriftFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "run a devnet ledger for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiLogsLimitFlag,
					enableAPILogsFlag,
					persistFlag,
					verbosityFlag,
					jsonLogsFlag,
					pprofFlag,
					skipLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
				},
				Action: soloAction,
			},
			{
				Name:  "reindex",
				Usage: "rebuild the event log db from stored receipts",
				Flags: []cli.Flag{networkFlag, dataDirFlag, cacheFlag, verbosityFlag, yesFlag},
				Action: func(ctx *cli.Context) error {
					return logDBAction(ctx, true)
				},
			},
			{
				Name:  "verify-logdb",
				Usage: "check the event log db against stored receipts",
				Flags: []cli.Flag{networkFlag, dataDirFlag, cacheFlag, verbosityFlag},
				Action: func(ctx *cli.Context) error {
					return logDBAction(ctx, false)
				},
			},
			{
				Name:  "tx",
				Usage: "sign and submit a staking transaction to a node",
				Flags: []cli.Flag{
					apiURLFlag,
					keyFileFlag,
					methodFlag,
					amountFlag,
					tokenFlag,
					recipientFlag,
					pullFlag,
				},
				Action: txAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// node holds what both run modes start besides the ledger itself.
type node struct {
	logLevel   *slog.LevelVar
	apiLogs    *atomic.Bool
	health     *health.Health
	closers    []func()
	adminURL   string
	metricsURL string
}

func (n *node) close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		n.closers[i]()
	}
}

func startServices(ctx *cli.Context, n *node, gene *genesis.Genesis, rtEnv *ledger) (string, error) {
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return "", errors.Wrap(err, "unable to start metrics server")
		}
		n.metricsURL = url
		n.closers = append(n.closers, func() { log.Info("stopping metrics server..."); closeFunc() })
	}

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), n.logLevel, n.health, n.apiLogs)
		if err != nil {
			return "", errors.Wrap(err, "unable to start admin server")
		}
		n.adminURL = url
		n.closers = append(n.closers, func() { log.Info("stopping admin server..."); closeFunc() })
	}

	apiHandler, apiCloser := api.New(rtEnv.rt, rtEnv.logDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		SkipLogs:        ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger: n.apiLogs,
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
	})
	n.closers = append(n.closers, apiCloser)

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		apiHandler,
		gene.ID(),
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return "", err
	}
	n.closers = append(n.closers, func() { log.Info("stopping API server..."); srvCloser() })
	return apiURL, nil
}

// ledger is the opened storage of a run.
type ledger struct {
	mainDB *lvldb.LevelDB
	logDB  *logdb.LogDB
	rt     *runtime.Runtime
	dir    string
}

func (l *ledger) close() {
	if l.rt != nil {
		l.rt.Close()
	}
	if l.logDB != nil {
		log.Info("closing log database...")
		l.logDB.Close()
	}
	if l.mainDB != nil {
		log.Info("closing main database...")
		l.mainDB.Close()
	}
}

func openLedger(ctx *cli.Context, gene *genesis.Genesis, persist bool) (*ledger, error) {
	l := &ledger{dir: "Memory"}
	var err error
	if persist {
		if l.dir, err = makeInstanceDir(ctx, gene); err != nil {
			return nil, err
		}
		if l.mainDB, err = openMainDB(ctx, l.dir); err != nil {
			return nil, err
		}
		if l.logDB, err = openLogDB(l.dir); err != nil {
			l.close()
			return nil, err
		}
	} else {
		if l.mainDB, err = openMemMainDB(); err != nil {
			return nil, err
		}
		if l.logDB, err = openMemLogDB(); err != nil {
			l.close()
			return nil, err
		}
	}
	if l.rt, err = initRuntime(gene, l.mainDB, l.logDB); err != nil {
		l.close()
		return nil, err
	}
	return l, nil
}

func newNode(ctx *cli.Context) *node {
	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	return &node{
		logLevel: initLogger(int(ctx.Uint64(verbosityFlag.Name)), ctx.Bool(jsonLogsFlag.Name)),
		apiLogs:  apiLogs,
		health:   health.New(ctx.Duration(maxClockDriftFlag.Name)),
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	n := newNode(ctx)
	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	l, err := openLedger(ctx, gene, true)
	if err != nil {
		return err
	}
	defer l.close()

	if ctx.Bool(verifyLogsFlag.Name) {
		if err := verifyLogDB(exitSignal, l.rt, l.logDB); err != nil {
			return errors.Wrap(err, "verify log db")
		}
	}

	apiURL, err := startServices(ctx, n, gene, l)
	defer n.close()
	if err != nil {
		return err
	}

	printStartupMessage(gene, l.rt, l.dir, apiURL)
	return run(exitSignal, ctx, n, l)
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	n := newNode(ctx)
	gene := genesis.NewDevnet()

	l, err := openLedger(ctx, gene, ctx.Bool(persistFlag.Name))
	if err != nil {
		return err
	}
	defer l.close()

	apiURL, err := startServices(ctx, n, gene, l)
	defer n.close()
	if err != nil {
		return err
	}

	printSoloStartupMessage(gene, l.rt, l.dir, apiURL)
	return run(exitSignal, ctx, n, l)
}

// run keeps the health status current until exit.
func run(exitSignal context.Context, ctx *cli.Context, n *node, l *ledger) error {
	if n.adminURL != "" {
		log.Info("admin server started", "url", n.adminURL)
	}
	if n.metricsURL != "" {
		log.Info("metrics server started", "url", n.metricsURL)
	}

	var goes co.Goes
	goes.Go(func() { watchHead(exitSignal, l.rt, n.health) })
	if server := ctx.String(ntpServerFlag.Name); server != "" {
		maxDrift := ctx.Duration(maxClockDriftFlag.Name)
		if maxDrift <= 0 {
			maxDrift = health.DefaultMaxClockDrift
		}
		goes.Go(func() { watchClock(exitSignal, server, n.health, maxDrift) })
	}

	<-exitSignal.Done()
	goes.Wait()
	return nil
}

func logDBAction(ctx *cli.Context, rebuild bool) error {
	exitSignal := handleExitSignal()
	initLogger(int(ctx.Uint64(verbosityFlag.Name)), false)

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	if rebuild && !ctx.Bool(yesFlag.Name) {
		ok, err := confirmFromNewTTY("The event log db will be dropped and rebuilt, continue? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	l, err := openLedger(ctx, gene, true)
	if err != nil {
		return err
	}
	defer l.close()

	if rebuild {
		return rebuildLogDB(exitSignal, l.rt, l.logDB)
	}
	return verifyLogDB(exitSignal, l.rt, l.logDB)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
