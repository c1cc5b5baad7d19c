// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/health"
	"github.com/quantidexyz/levr/levr"
)

func getHealth(t *testing.T, url string) (*health.Status, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var status health.Status
	require.NoError(t, json.Unmarshal(body, &status))
	return &status, res.StatusCode
}

func TestHealth(t *testing.T) {
	h := health.New(time.Second)
	router := mux.NewRouter()
	NewAPI(h).Mount(router, "/health")
	ts := httptest.NewServer(router)
	defer ts.Close()

	status, code := getHealth(t, ts.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)

	head := levr.Blake2b([]byte("head"))
	h.NewHead(head, 2)
	status, code = getHealth(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
	assert.Equal(t, head, status.Head)
	assert.Equal(t, uint64(2), status.Height)
	assert.NotNil(t, status.LastCommit)

	h.ClockDrift(-2 * time.Second)
	status, code = getHealth(t, ts.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.ClockValid)
}
