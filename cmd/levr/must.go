// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/user"
	"path/filepath"
	goruntime "runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/runtime"
)

func fatal(args ...any) {
	var w io.Writer
	if goruntime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	network := ctx.String(networkFlag.Name)
	switch network {
	case "":
		return nil, fmt.Errorf("missing --%s flag", networkFlag.Name)
	case "dev":
		return genesis.NewDevnet(), nil
	default:
		return genesis.LoadCustomNet(network)
	}
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch goruntime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "io.levr.node")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "io.levr.node")
		default:
			return filepath.Join(home, ".levr")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// makeInstanceDir returns a directory unique to the genesis, so ledgers of different networks never mix.
func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", fmt.Errorf("create instance dir [%v]: %w", instanceDir, err)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	log.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger database [%v]: %w", path, err)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	path := filepath.Join(dir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, fmt.Errorf("open log database [%v]: %w", path, err)
	}
	return db, nil
}

func openMemMainDB() (*lvldb.LevelDB, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	return db, nil
}

func openMemLogDB() (*logdb.LogDB, error) {
	db, err := logdb.NewMem()
	if err != nil {
		return nil, fmt.Errorf("open log database: %w", err)
	}
	return db, nil
}

func initRuntime(gene *genesis.Genesis, mainDB *lvldb.LevelDB, logDB *logdb.LogDB) (*runtime.Runtime, error) {
	rt, err := runtime.New(mainDB, logDB, runtime.SystemClock)
	if err != nil {
		return nil, fmt.Errorf("open runtime: %w", err)
	}
	if err := gene.Apply(rt); err != nil {
		rt.Close()
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	return rt, nil
}

func makeName(name string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", name, fullVersion(), goruntime.GOOS, goruntime.Version())
}

func printStartupMessage(gene *genesis.Genesis, rt *runtime.Runtime, dataDir, apiURL string) {
	head, height := rt.Head()
	params := gene.Params()

	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Head         [ %v #%v @%v ]
    Underlying   [ %v ]
    Staked token [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		makeName("Levr"),
		gene.ID(), gene.Name(),
		head, height, time.Unix(int64(rt.Now()), 0),
		params.Underlying,
		params.StakedToken,
		dataDir,
		apiURL)
}

func printSoloStartupMessage(gene *genesis.Genesis, rt *runtime.Runtime, dataDir, apiURL string) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	head, height := rt.Head()
	params := gene.Params()

	var info strings.Builder
	fmt.Fprintf(&info, `Starting %v
    Network      [ %v %v ]
    Head         [ %v #%v @%v ]
    Underlying   [ %v ]
    Reward token [ %v ]
    Admin        [ %v ]
    Treasury     [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]`,
		makeName("Levr solo"),
		gene.ID(), gene.Name(),
		head, height, time.Unix(int64(rt.Now()), 0),
		params.Underlying,
		genesis.DevRewardToken,
		params.Admin,
		params.Treasury,
		dataDir,
		apiURL)

	info.WriteString(tableHead)
	for _, a := range genesis.DevAccounts() {
		fmt.Fprintf(&info, tableContent,
			a.Address,
			levr.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	info.WriteString(tableEnd + "\r\n")

	fmt.Print(info.String())
}
