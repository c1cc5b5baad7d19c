// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/quantidexyz/levr/genesis"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/lvldb"
	"github.com/quantidexyz/levr/runtime"
	"github.com/quantidexyz/levr/tx"
)

// DefaultLaunchTime is the clock of a new chain.
const DefaultLaunchTime = uint64(1_700_000_000)

// Chain is an in-memory ledger with a manual clock and the devnet genesis applied.
type Chain struct {
	db      *lvldb.LevelDB
	logDB   *logdb.LogDB
	rt      *runtime.Runtime
	genesis *genesis.Genesis
	now     atomic.Uint64
}

// NewIntegrationTestChain creates a Chain for testing.
func NewIntegrationTestChain() (*Chain, error) {
	return NewIntegrationTestChainWithGenesis(genesis.NewDevnet())
}

// NewIntegrationTestChainWithGenesis creates a Chain for testing with a custom genesis.
func NewIntegrationTestChainWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}

	c := &Chain{db: db, logDB: logDB, genesis: gene}
	c.now.Store(DefaultLaunchTime)

	c.rt, err = runtime.New(db, logDB, c.now.Load)
	if err != nil {
		return nil, err
	}
	if err := gene.Apply(c.rt); err != nil {
		return nil, fmt.Errorf("unable to apply genesis: %w", err)
	}
	return c, nil
}

// Runtime returns the runtime of the chain.
func (c *Chain) Runtime() *runtime.Runtime { return c.rt }

// LogDB returns the event index of the chain.
func (c *Chain) LogDB() *logdb.LogDB { return c.logDB }

// Genesis returns the applied genesis.
func (c *Chain) Genesis() *genesis.Genesis { return c.genesis }

// Now returns the current clock.
func (c *Chain) Now() uint64 { return c.now.Load() }

// Advance moves the clock forward.
func (c *Chain) Advance(seconds uint64) {
	c.now.Add(seconds)
}

// BuildTx signs a transaction of account carrying its next nonce.
func (c *Chain) BuildTx(account genesis.DevAccount, builder *tx.Builder) (*tx.Transaction, error) {
	nonce, err := c.rt.Nonce(account.Address)
	if err != nil {
		return nil, err
	}
	return tx.Sign(builder.Nonce(nonce).Build(), account.PrivateKey)
}

// Send signs and executes a transaction of account.
func (c *Chain) Send(account genesis.DevAccount, builder *tx.Builder) (*runtime.Receipt, error) {
	trx, err := c.BuildTx(account, builder)
	if err != nil {
		return nil, err
	}
	receipt, err := c.rt.Execute(trx)
	if err != nil {
		return nil, fmt.Errorf("unable to execute tx: %w", err)
	}
	return receipt, nil
}

// Close releases the databases.
func (c *Chain) Close() {
	c.rt.Close()
	c.logDB.Close()
	c.db.Close()
}

// Ether returns n whole tokens of 18 decimals.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), levr.Precision)
}
