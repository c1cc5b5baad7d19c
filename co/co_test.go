// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		goes  Goes
		count atomic.Int32
	)
	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		goes.Go(func() { count.Add(1) })
	}
	goes.GoCtx(ctx, func(ctx context.Context) {
		<-ctx.Done()
		count.Add(1)
	})
	cancel()

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("goroutines did not finish")
	}
	goes.Wait()
	assert.Equal(t, int32(11), count.Load())
}
