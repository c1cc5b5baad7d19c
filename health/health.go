// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks whether the node can serve time dependent reads and writes.
package health

import (
	"sync"
	"time"

	"github.com/quantidexyz/levr/levr"
)

// DefaultMaxClockDrift is the largest wall clock offset tolerated by a healthy node.
const DefaultMaxClockDrift = 5 * time.Second

type Status struct {
	Healthy    bool         `json:"healthy"`
	Head       levr.Bytes32 `json:"head"`
	Height     uint64       `json:"height"`
	LastCommit *time.Time   `json:"lastCommit"`
	ClockDrift string       `json:"clockDrift"`
	ClockValid bool         `json:"clockValid"`
}

type Health struct {
	lock       sync.RWMutex
	head       levr.Bytes32
	height     uint64
	lastCommit time.Time
	drift      time.Duration
	maxDrift   time.Duration
}

func New(maxDrift time.Duration) *Health {
	if maxDrift <= 0 {
		maxDrift = DefaultMaxClockDrift
	}
	return &Health{maxDrift: maxDrift}
}

// NewHead records a commit.
func (h *Health) NewHead(head levr.Bytes32, height uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.head = head
	h.height = height
	h.lastCommit = time.Now()
}

// ClockDrift records the latest measured offset of the local clock.
func (h *Health) ClockDrift(drift time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.drift = drift
}

// Status is healthy once a head is known and the clock drift is within bounds.
func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	drift := h.drift
	if drift < 0 {
		drift = -drift
	}
	clockValid := drift <= h.maxDrift

	var lastCommit *time.Time
	if !h.lastCommit.IsZero() {
		t := h.lastCommit
		lastCommit = &t
	}
	return &Status{
		Healthy:    clockValid && !h.head.IsZero(),
		Head:       h.head,
		Height:     h.height,
		LastCommit: lastCommit,
		ClockDrift: h.drift.String(),
		ClockValid: clockValid,
	}
}
