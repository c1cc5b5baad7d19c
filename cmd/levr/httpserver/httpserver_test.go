// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/health"
	"github.com/quantidexyz/levr/levr"
)

func do(t *testing.T, req *http.Request) (string, *http.Response) {
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body), res
}

func TestAPIServer(t *testing.T) {
	genesisID := levr.Blake2b([]byte("genesis"))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(200 * time.Millisecond)
		}
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.Write([]byte("ok"))
	})

	url, closer, err := StartAPIServer("localhost:0", handler, genesisID, 50*time.Millisecond)
	require.NoError(t, err)
	defer closer()

	req, _ := http.NewRequest(http.MethodGet, url, nil)
	body, res := do(t, req)
	assert.Equal(t, "ok", body)
	assert.Equal(t, genesisID.String(), res.Header.Get(GenesisIDHeader))

	req, _ = http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set(GenesisIDHeader, levr.Bytes32{}.String())
	_, res = do(t, req)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	req, _ = http.NewRequest(http.MethodPost, url, bytes.NewReader(make([]byte, maxBodySize+1)))
	_, res = do(t, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, url+"slow", nil)
	body, res = do(t, req)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, "request timeout", body)
}

func TestAdminServer(t *testing.T) {
	var level slog.LevelVar
	apiLogs := &atomic.Bool{}
	url, closer, err := StartAdminServer("localhost:0", &level, health.New(0), apiLogs)
	require.NoError(t, err)
	defer closer()

	req, _ := http.NewRequest(http.MethodPost, url+"/apilogs", strings.NewReader(`{"enabled": true}`))
	_, res := do(t, req)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, apiLogs.Load())

	req, _ = http.NewRequest(http.MethodGet, url+"/health", nil)
	_, res = do(t, req)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestMetricsServer(t *testing.T) {
	_, _, err := StartMetricsServer("256.0.0.1:1")
	assert.Error(t, err)
}
