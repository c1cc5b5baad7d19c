// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"sync"

	"github.com/quantidexyz/levr/runtime"
)

// receiptDispatcher fans receipts out to websocket listeners without ever blocking the runtime.
type receiptDispatcher struct {
	rt        *runtime.Runtime
	listeners map[chan *runtime.Receipt]struct{}
	mu        sync.RWMutex
}

func newReceiptDispatcher(rt *runtime.Runtime) *receiptDispatcher {
	return &receiptDispatcher{
		rt:        rt,
		listeners: make(map[chan *runtime.Receipt]struct{}),
	}
}

func (d *receiptDispatcher) Subscribe(ch chan *runtime.Receipt) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[ch] = struct{}{}
}

func (d *receiptDispatcher) Unsubscribe(ch chan *runtime.Receipt) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, ch)
}

func (d *receiptDispatcher) DispatchLoop(done <-chan struct{}) {
	ch := make(chan *runtime.Receipt, 256)
	sub := d.rt.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case r := <-ch:
			d.mu.RLock()
			for lsn := range d.listeners {
				select {
				case lsn <- r:
				default: // slow listeners miss receipts
					metricDroppedMessages().Add(1)
				}
			}
			d.mu.RUnlock()
		case <-sub.Err():
			return
		case <-done:
			return
		}
	}
}
