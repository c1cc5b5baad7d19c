// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime applies signed transactions to the staking engine one at a time
// and persists the outcome.
package runtime

import (
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin"
	"github.com/quantidexyz/levr/builtin/bank"
	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/cache"
	"github.com/quantidexyz/levr/kv"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/state"
	"github.com/quantidexyz/levr/tx"
)

var logger = log.WithContext("pkg", "runtime")

const (
	metaBucket    = kv.Bucket("m")
	nonceBucket   = kv.Bucket("n")
	receiptBucket = kv.Bucket("r")
	heightBucket  = kv.Bucket("h")
)

var (
	keyHead   = []byte("head")
	keyHeight = []byte("height")
	keyTime   = []byte("time")
)

var (
	ErrBadNonce          = errors.New("bad nonce")
	ErrKnownTx           = errors.New("known transaction")
	ErrAlreadyGenesis    = errors.New("genesis already applied")
	ErrReceiptNotFound   = errors.New("receipt not found")
	errUnsupportedMethod = errors.New("unsupported method")
)

// Clock returns unix seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// Alloc is a balance created at genesis.
type Alloc struct {
	Token  levr.Address
	Owner  levr.Address
	Amount *big.Int
}

// Runtime is safe for concurrent use. Transactions are applied in arrival order.
type Runtime struct {
	db       kv.Store
	logDB    *logdb.LogDB
	clock    Clock
	receipts *cache.LRU

	mu     sync.Mutex // serializes writes
	tipMu  sync.RWMutex
	head   levr.Bytes32
	height uint64
	time   uint64

	feed  event.Feed
	scope event.SubscriptionScope
}

// New opens the runtime over db. logDB may be nil to skip event indexing.
func New(db kv.Store, logDB *logdb.LogDB, clock Clock) (*Runtime, error) {
	if clock == nil {
		clock = SystemClock
	}
	receipts, err := cache.NewLRU(1024)
	if err != nil {
		return nil, err
	}
	r := &Runtime{db: db, logDB: logDB, clock: clock, receipts: receipts}

	meta := metaBucket.NewGetter(db)
	if head, err := meta.Get(keyHead); err == nil {
		r.head = levr.BytesToBytes32(head)
	} else if !meta.IsNotFound(err) {
		return nil, err
	}
	if r.height, err = getUint64(meta, keyHeight); err != nil {
		return nil, err
	}
	if r.time, err = getUint64(meta, keyTime); err != nil {
		return nil, err
	}
	return r, nil
}

func getUint64(g kv.Getter, key []byte) (uint64, error) {
	v, err := g.Get(key)
	if err != nil {
		if g.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func putUint64(p kv.Putter, key []byte, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return p.Put(key, b[:])
}

// Close stops every subscription.
func (r *Runtime) Close() {
	r.scope.Close()
}

// Head returns the digest of every committed change and the number of commits.
func (r *Runtime) Head() (levr.Bytes32, uint64) {
	r.tipMu.RLock()
	defer r.tipMu.RUnlock()
	return r.head, r.height
}

// now never goes backwards, even if the clock does.
func (r *Runtime) now() uint64 {
	return max(r.clock(), r.time)
}

// Now returns the time the next transaction would run at.
func (r *Runtime) Now() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now()
}

// SubscribeReceipts delivers the receipt of every committed transaction.
func (r *Runtime) SubscribeReceipts(ch chan *Receipt) event.Subscription {
	return r.scope.Track(r.feed.Subscribe(ch))
}

// Genesis initializes the staking engine and mints allocs.
func (r *Runtime) Genesis(params staking.Params, allocs []Alloc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := state.New(r.db)
	engine := builtin.Staking.WithState(st)
	ok, err := engine.IsInitialized()
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyGenesis
	}
	if err := engine.Initialize(params); err != nil {
		return err
	}
	b := builtin.Bank.WithState(st)
	for _, a := range allocs {
		if err := b.Mint(a.Token, a.Owner, a.Amount); err != nil {
			return errors.WithMessagef(err, "alloc %v to %v", a.Token, a.Owner)
		}
	}
	now := r.now()
	if err := r.commit(st, now, func(kv.Putter) error { return nil }); err != nil {
		return err
	}
	logger.Info("genesis applied", "underlying", params.Underlying, "allocs", len(allocs), "head", r.head)
	return nil
}

// Nonce returns the nonce the next transaction of origin must carry.
func (r *Runtime) Nonce(origin levr.Address) (uint64, error) {
	return getUint64(nonceBucket.NewGetter(r.db), origin.Bytes())
}

// Execute applies trx. Reverted executions yield a receipt; any other error leaves no trace.
func (r *Runtime) Execute(trx *tx.Transaction) (*Receipt, error) {
	start := time.Now()
	if err := trx.Validate(); err != nil {
		return nil, err
	}
	origin, err := trx.Origin()
	if err != nil {
		return nil, err
	}
	txID := trx.Hash()

	r.mu.Lock()
	defer r.mu.Unlock()

	if has, err := receiptBucket.NewGetter(r.db).Has(txID.Bytes()); err != nil {
		return nil, err
	} else if has {
		return nil, ErrKnownTx
	}
	nonce, err := r.Nonce(origin)
	if err != nil {
		return nil, err
	}
	if trx.Nonce() != nonce {
		return nil, errors.WithMessagef(ErrBadNonce, "want %d, got %d", nonce, trx.Nonce())
	}

	now := r.now()
	st := state.New(r.db)
	engine := builtin.Staking.WithState(st)
	output, execErr := dispatch(engine, trx, origin, now)

	receipt := &Receipt{
		TxID:   txID,
		Origin: origin,
		Method: trx.Method(),
		Nonce:  trx.Nonce(),
		Time:   now,
		Height: r.height + 1,
		Output: output,
	}
	if receipt.Output == nil {
		receipt.Output = new(big.Int)
	}
	status := "success"
	if execErr != nil {
		if !reverts.IsRevertErr(execErr) {
			return nil, execErr
		}
		status = "reverted"
		receipt.Reverted = true
		receipt.RevertReason = execErr.Error()
		logger.Debug("transaction reverted", "id", txID, "method", trx.Method(), "reason", execErr)
	} else {
		receipt.Events = convertEvents(engine.Events())
	}

	data, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		return nil, err
	}
	if err := r.commit(st, now, func(p kv.Putter) error {
		if err := putUint64(nonceBucket.NewPutter(p), origin.Bytes(), nonce+1); err != nil {
			return err
		}
		var h [8]byte
		binary.BigEndian.PutUint64(h[:], receipt.Height)
		if err := heightBucket.NewPutter(p).Put(h[:], txID.Bytes()); err != nil {
			return err
		}
		return receiptBucket.NewPutter(p).Put(txID.Bytes(), data)
	}); err != nil {
		return nil, err
	}
	r.receipts.Add(txID, receipt)

	if r.logDB != nil && len(receipt.Events) > 0 {
		w := r.logDB.NewWriter()
		w.Write(txID, origin, now, receipt.LogEvents())
		if err := w.Commit(); err != nil {
			logger.Error("failed to index events", "id", txID, "err", err)
		}
	}
	r.feed.Send(receipt)

	method := trx.Method().String()
	metricTxCounter().AddWithLabel(1, map[string]string{"method": method, "status": status})
	metricTxDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"method": method})
	if total, err := engine.TotalStaked(); err == nil && total.IsInt64() {
		metricTotalStake().Set(new(big.Int).Quo(total, levr.Precision).Int64())
	}
	logger.Debug("transaction committed", "id", txID, "method", trx.Method(), "height", receipt.Height)
	return receipt, nil
}

// commit writes the staged state and extra records in one batch and advances the head.
func (r *Runtime) commit(st *state.State, now uint64, extra func(kv.Putter) error) error {
	stage := st.Stage()
	bulk := r.db.Bulk()
	if err := stage.Commit(bulk); err != nil {
		return err
	}
	if err := extra(bulk); err != nil {
		return err
	}
	stageHash := stage.Hash()
	head := levr.Blake2b(r.head.Bytes(), stageHash.Bytes())
	meta := metaBucket.NewPutter(bulk)
	if err := meta.Put(keyHead, head.Bytes()); err != nil {
		return err
	}
	if err := putUint64(meta, keyHeight, r.height+1); err != nil {
		return err
	}
	if err := putUint64(meta, keyTime, now); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit")
	}
	r.tipMu.Lock()
	r.head = head
	r.height++
	r.time = now
	r.tipMu.Unlock()
	metricHeight().Set(int64(r.height))
	return nil
}

func dispatch(engine *staking.Engine, trx *tx.Transaction, origin levr.Address, now uint64) (*big.Int, error) {
	recipient := trx.Recipient()
	if recipient.IsZero() {
		recipient = origin
	}
	switch trx.Method() {
	case tx.MethodStake:
		return nil, engine.Stake(origin, trx.Amount(), now)
	case tx.MethodUnstake:
		return engine.Unstake(origin, trx.Amount(), recipient, now)
	case tx.MethodClaim:
		return nil, engine.Claim(origin, trx.Tokens(), recipient, now)
	case tx.MethodAccrue:
		return engine.Accrue(trx.Token(), now)
	case tx.MethodAccrueFromBoost:
		return nil, engine.AccrueFromBoost(origin, trx.Token(), trx.Amount(), trx.Pull(), now)
	case tx.MethodWhitelist:
		return nil, engine.WhitelistToken(origin, trx.Token(), now)
	case tx.MethodUnwhitelist:
		return nil, engine.UnwhitelistToken(origin, trx.Token(), now)
	case tx.MethodCleanup:
		return nil, engine.CleanupFinishedRewardToken(trx.Token(), now)
	}
	return nil, errors.WithMessagef(errUnsupportedMethod, "%v", trx.Method())
}

// GetReceipt returns the receipt of a committed transaction.
func (r *Runtime) GetReceipt(txID levr.Bytes32) (*Receipt, error) {
	v, err := r.receipts.GetOrLoad(txID, func(any) (any, error) {
		data, err := receiptBucket.NewGetter(r.db).Get(txID.Bytes())
		if err != nil {
			if r.db.IsNotFound(err) {
				return nil, ErrReceiptNotFound
			}
			return nil, err
		}
		var receipt Receipt
		if err := rlp.DecodeBytes(data, &receipt); err != nil {
			return nil, err
		}
		return &receipt, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Receipt), nil
}

// ReceiptAt returns the receipt committed at height. Heights without a transaction, like genesis, have none.
func (r *Runtime) ReceiptAt(height uint64) (*Receipt, error) {
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], height)
	txID, err := heightBucket.NewGetter(r.db).Get(h[:])
	if err != nil {
		if r.db.IsNotFound(err) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return r.GetReceipt(levr.BytesToBytes32(txID))
}

// View is a read-only snapshot of the committed state.
type View struct {
	Engine *staking.Engine
	Bank   *bank.Bank
	Now    uint64
}

// View runs fn on the committed state. Changes fn makes are discarded.
func (r *Runtime) View(fn func(v *View) error) error {
	st := state.New(r.db)
	return fn(&View{
		Engine: builtin.Staking.WithState(st),
		Bank:   builtin.Bank.WithState(st),
		Now:    r.Now(),
	})
}
