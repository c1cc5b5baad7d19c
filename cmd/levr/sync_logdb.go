// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/logdb"
	"github.com/quantidexyz/levr/runtime"
)

// first height that can carry a transaction, the genesis commit is height 1
const firstTxHeight = 2

// pumpReceipts sends the receipts of heights [from, to] in order. Heights without one are skipped.
func pumpReceipts(ctx context.Context, rt *runtime.Runtime, from, to uint64, ch chan<- *runtime.Receipt) error {
	defer close(ch)
	for h := from; h <= to; h++ {
		r, err := rt.ReceiptAt(h)
		if err != nil {
			if errors.Is(err, runtime.ErrReceiptNotFound) {
				continue
			}
			return errors.WithMessagef(err, "receipt at %d", h)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- r:
		}
	}
	return nil
}

// rebuildLogDB drops every indexed event and indexes the receipts again.
func rebuildLogDB(ctx context.Context, rt *runtime.Runtime, logDB *logdb.LogDB) error {
	_, height := rt.Head()
	fmt.Println(">> Rebuilding log db <<")

	if err := logDB.Truncate(); err != nil {
		return err
	}
	if height < firstTxHeight {
		return nil
	}

	bar := pb.New64(int64(height)).
		Set64(firstTxHeight - 1).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	g, ctx := errgroup.WithContext(ctx)
	ch := make(chan *runtime.Receipt, 1000)
	g.Go(func() error {
		return pumpReceipts(ctx, rt, firstTxHeight, height, ch)
	})
	g.Go(func() error {
		w := logDB.NewWriter()
		for r := range ch {
			w.Write(r.TxID, r.Origin, r.Time, r.LogEvents())
			if w.Len() > 2048 {
				if err := w.Commit(); err != nil {
					return err
				}
			}
			bar.Set64(int64(r.Height))
		}
		if err := w.Commit(); err != nil {
			return err
		}
		bar.Set64(int64(height))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	bar.Finish()
	return nil
}

// verifyLogDB checks that the indexed events are exactly the events of the stored receipts.
func verifyLogDB(ctx context.Context, rt *runtime.Runtime, logDB *logdb.LogDB) error {
	_, height := rt.Head()
	fmt.Println(">> Verifying log db <<")

	bar := pb.New64(int64(height)).
		Set64(0).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	g, ctx := errgroup.WithContext(ctx)
	ch := make(chan *runtime.Receipt, 512)
	g.Go(func() error {
		return pumpReceipts(ctx, rt, firstTxHeight, height, ch)
	})
	g.Go(func() error {
		for r := range ch {
			txID := r.TxID
			indexed, err := logDB.FilterEvents(ctx, &logdb.EventFilter{
				CriteriaSet: []*logdb.EventCriteria{{TxID: &txID}},
			})
			if err != nil {
				return err
			}
			if err := verifyReceiptLogs(r, indexed); err != nil {
				return errors.WithMessagef(err, "height %d", r.Height)
			}
			bar.Set64(int64(r.Height))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	bar.Finish()
	return nil
}

// logRow is the comparable part of an indexed event.
type logRow struct {
	TxID     levr.Bytes32
	TxOrigin levr.Address
	Time     uint64
	Index    uint32
	Name     string
	Account  levr.Address
	Recip    levr.Address
	Token    levr.Address
	Amount   string
}

func toRows(events []*logdb.Event) []logRow {
	rows := make([]logRow, 0, len(events))
	for _, ev := range events {
		amount := "0"
		if ev.Amount != nil {
			amount = ev.Amount.String()
		}
		rows = append(rows, logRow{
			TxID:     ev.TxID,
			TxOrigin: ev.TxOrigin,
			Time:     ev.Time,
			Index:    ev.Index,
			Name:     ev.Name,
			Account:  ev.Account,
			Recip:    ev.Recipient,
			Token:    ev.Token,
			Amount:   amount,
		})
	}
	return rows
}

func verifyReceiptLogs(r *runtime.Receipt, indexed []*logdb.Event) error {
	expected := r.LogEvents()
	for i, ev := range expected {
		ev.TxID = r.TxID
		ev.TxOrigin = r.Origin
		ev.Time = r.Time
		ev.Index = uint32(i)
	}

	e, a := toRows(expected), toRows(indexed)
	if !reflect.DeepEqual(e, a) {
		fmt.Println("\nDiff event logs")
		fmt.Println(jsonDiff(e, a))
		return errors.New("incorrect logs")
	}
	return nil
}

func jsonDiff(expected, actual any) string {
	e, _ := json.MarshalIndent(expected, "", "  ")
	a, _ := json.MarshalIndent(actual, "", "  ")
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Expected",
		FromDate: "",
		ToFile:   "Actual",
		ToDate:   "",
		Context:  1,
	})
	return diff
}
