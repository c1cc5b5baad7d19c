// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantidexyz/levr/levr"
)

func TestHealth_NewHead(t *testing.T) {
	h := New(0)
	assert.False(t, h.Status().Healthy)
	assert.Nil(t, h.Status().LastCommit)

	head := levr.Bytes32{0x01, 0x02, 0x03}
	h.NewHead(head, 7)

	status := h.Status()
	assert.True(t, status.Healthy)
	assert.Equal(t, head, status.Head)
	assert.Equal(t, uint64(7), status.Height)
	assert.NotNil(t, status.LastCommit)
	assert.WithinDuration(t, time.Now(), *status.LastCommit, time.Second)
}

func TestHealth_ClockDrift(t *testing.T) {
	h := New(time.Second)
	h.NewHead(levr.Bytes32{0x01}, 1)

	h.ClockDrift(-500 * time.Millisecond)
	assert.True(t, h.Status().Healthy)
	assert.Equal(t, "-500ms", h.Status().ClockDrift)

	h.ClockDrift(-2 * time.Second)
	status := h.Status()
	assert.False(t, status.Healthy)
	assert.False(t, status.ClockValid)

	h.ClockDrift(2 * time.Second)
	assert.False(t, h.Status().Healthy)
}
