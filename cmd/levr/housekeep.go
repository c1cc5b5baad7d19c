// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/beevik/ntp"

	"github.com/quantidexyz/levr/health"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/runtime"
)

var logger = log.WithContext("pkg", "levr")

const clockCheckInterval = 10 * time.Minute

// watchHead reports every commit to h until ctx is done.
func watchHead(ctx context.Context, rt *runtime.Runtime, h *health.Health) {
	head, height := rt.Head()
	h.NewHead(head, height)

	ch := make(chan *runtime.Receipt, 16)
	sub := rt.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				logger.Warn("receipt subscription failed", "err", err)
			}
			return
		case <-ch:
			head, height := rt.Head()
			h.NewHead(head, height)
		}
	}
}

// watchClock measures the local clock against server. Vesting runs on wall clock seconds,
// so a drifting clock makes the node unhealthy.
func watchClock(ctx context.Context, server string, h *health.Health, maxDrift time.Duration) {
	if server == "" {
		return
	}
	check := func() {
		resp, err := ntp.Query(server)
		if err != nil {
			logger.Debug("failed to access NTP", "err", err)
			return
		}
		h.ClockDrift(resp.ClockOffset)
		offset := resp.ClockOffset
		if offset < 0 {
			offset = -offset
		}
		if offset > maxDrift {
			logger.Warn("clock offset detected", "offset", resp.ClockOffset)
		}
	}

	check()
	ticker := time.NewTicker(clockCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
