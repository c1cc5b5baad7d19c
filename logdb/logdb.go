// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes committed staking events in sqlite for querying.
package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/levr"
)

const eventColumns = "seq, txID, txOrigin, time, eventIndex, name, account, recipient, token, amount"

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New creates or opens the log db at path.
func New(path string) (*LogDB, error) {
	return open(path, "file:"+path+"?_journal_mode=WAL")
}

// NewMem creates a log db in memory.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// FilterEvents returns events matching filter. A nil filter returns every event.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT "+eventColumns+" FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := "SELECT " + eventColumns + " FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ?"
		}
	}
	for i, c := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if c.Name != nil {
			args = append(args, *c.Name)
			stmt += " AND name = ?"
		}
		if c.Account != nil {
			args = append(args, c.Account.Bytes())
			stmt += " AND account = ?"
		}
		if c.Token != nil {
			args = append(args, c.Token.Bytes())
			stmt += " AND token = ?"
		}
		if c.TxID != nil {
			args = append(args, c.TxID.Bytes())
			stmt += " AND txID = ?"
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			ev                                Event
			txID, origin, acc, recipient, tok []byte
			amount                            string
		)
		if err := rows.Scan(&ev.Seq, &txID, &origin, &ev.Time, &ev.Index, &ev.Name, &acc, &recipient, &tok, &amount); err != nil {
			return nil, err
		}
		ev.TxID = levr.BytesToBytes32(txID)
		ev.TxOrigin = levr.BytesToAddress(origin)
		ev.Account = levr.BytesToAddress(acc)
		ev.Recipient = levr.BytesToAddress(recipient)
		ev.Token = levr.BytesToAddress(tok)
		var ok bool
		if ev.Amount, ok = new(big.Int).SetString(amount, 10); !ok {
			return nil, fmt.Errorf("corrupted amount %q at seq %d", amount, ev.Seq)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// HasTx reports whether any event of txID is stored.
func (db *LogDB) HasTx(ctx context.Context, txID levr.Bytes32) (bool, error) {
	stmt, err := db.stmtCache.Prepare("SELECT 1 FROM event WHERE txID = ? LIMIT 1")
	if err != nil {
		return false, err
	}
	var one int
	err = stmt.QueryRowContext(ctx, txID.Bytes()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Truncate removes every event.
func (db *LogDB) Truncate() error {
	if _, err := db.db.Exec("DELETE FROM event"); err != nil {
		return errors.Wrap(err, "truncate")
	}
	db.stmtCache.Clear()
	return nil
}

// NewWriter starts a batch of inserts.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db}
}

// Writer buffers events and inserts them in one sql transaction.
type Writer struct {
	db     *LogDB
	events []*Event
}

// Write queues the events of one transaction.
func (w *Writer) Write(txID levr.Bytes32, origin levr.Address, time uint64, events []*Event) {
	for i, ev := range events {
		cpy := *ev
		cpy.TxID = txID
		cpy.TxOrigin = origin
		cpy.Time = time
		cpy.Index = uint32(i)
		if cpy.Amount == nil {
			cpy.Amount = new(big.Int)
		}
		w.events = append(w.events, &cpy)
	}
}

// Len returns the number of queued events.
func (w *Writer) Len() int {
	return len(w.events)
}

// Commit inserts the queued events.
func (w *Writer) Commit() (err error) {
	if len(w.events) == 0 {
		return nil
	}
	tx, err := w.db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare("INSERT INTO event(txID, txOrigin, time, eventIndex, name, account, recipient, token, amount) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range w.events {
		if _, err = stmt.Exec(
			ev.TxID.Bytes(),
			ev.TxOrigin.Bytes(),
			ev.Time,
			ev.Index,
			ev.Name,
			ev.Account.Bytes(),
			ev.Recipient.Bytes(),
			ev.Token.Bytes(),
			ev.Amount.String(),
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	metricEventsWritten().Add(int64(len(w.events)))
	w.events = w.events[:0]
	return nil
}
