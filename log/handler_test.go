// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	out := new(bytes.Buffer)
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(out, &lvl, false))

	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.Info("staked", "amount", big.NewInt(1000), "reason", "first stake")
	line := out.String()
	assert.Contains(t, line, "INFO ")
	assert.Contains(t, line, "staked")
	assert.Contains(t, line, "amount=1000")
	assert.Contains(t, line, `reason="first stake"`)
}

func TestJSONHandler_BigValues(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(JSONHandler(out))

	l.Warn("settled", "vested", uint256.NewInt(42), "acc", (*big.Int)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "warn", rec["lvl"])
	assert.Equal(t, "42", rec["vested"])
	assert.Equal(t, "<nil>", rec["acc"])
}

func TestWithContext_FollowsRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	pkgLogger := WithContext("pkg", "test")

	out := new(bytes.Buffer)
	SetDefault(NewLogger(LogfmtHandler(out)))

	pkgLogger.Info("hello", "k", 1)
	assert.Contains(t, out.String(), "pkg=test")
	assert.Contains(t, out.String(), "k=1")
	assert.Contains(t, out.String(), "lvl=info")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(LegacyLevelCrit))
	assert.Equal(t, LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelTrace, FromLegacyLevel(LegacyLevelTrace))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
}
