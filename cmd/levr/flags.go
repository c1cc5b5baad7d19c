// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/quantidexyz/levr/log"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "path to a genesis file (.json|.yaml), or 'dev' for the builtin devnet",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 1024,
		Usage: "megabytes of ram allocated to the ledger database cache",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip writing event logs (/logs API will be disabled)",
	}
	verifyLogsFlag = cli.BoolFlag{
		Name:   "verify-logs",
		Usage:  "verify log db at startup",
		Hidden: true,
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to check the local clock, empty to disable",
	}
	maxClockDriftFlag = cli.DurationFlag{
		Name:  "max-clock-drift",
		Value: 0,
		Usage: "largest clock offset of a healthy node (default 5s)",
	}

	// solo mode only flags
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "blockchain data storage option, if set data will be saved to disk",
	}

	// tx command flags
	apiURLFlag = cli.StringFlag{
		Name:  "api-url",
		Value: "http://localhost:8669",
		Usage: "URL of the node API",
	}
	keyFileFlag = cli.StringFlag{
		Name:  "key-file",
		Usage: "file holding the hex encoded private key (prompted when omitted)",
	}
	methodFlag = cli.StringFlag{
		Name:  "method",
		Usage: "stake|unstake|claim|accrue|accrueFromBoost|whitelistToken|unwhitelistToken|cleanupFinishedRewardToken",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in base units, decimal or 0x prefixed hex",
	}
	tokenFlag = cli.StringFlag{
		Name:  "token",
		Usage: "token address, comma separated for claim",
	}
	recipientFlag = cli.StringFlag{
		Name:  "recipient",
		Usage: "receiver of unstaked tokens or claimed rewards, defaults to the sender",
	}
	pullFlag = cli.BoolFlag{
		Name:  "pull",
		Usage: "accrueFromBoost pulls the amount from the sender",
	}

	// reindex command flags
	yesFlag = cli.BoolFlag{
		Name:  "yes",
		Usage: "do not ask for confirmation",
	}
)
