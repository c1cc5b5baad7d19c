// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/kv"
	"github.com/quantidexyz/levr/lvldb"
)

func TestBucket(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1 := kv.Bucket("a")
	b2 := kv.Bucket("b")

	require.NoError(t, b1.NewPutter(db).Put([]byte("k"), []byte("v1")))
	require.NoError(t, b2.NewPutter(db).Put([]byte("k"), []byte("v2")))

	v, err := b1.NewGetter(db).Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = db.Get([]byte("bk"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	has, err := b2.NewGetter(db).Has([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, has)

	_, err = b2.NewGetter(db).Get([]byte("missing"))
	assert.True(t, b2.NewGetter(db).IsNotFound(err))

	require.NoError(t, b1.NewPutter(db).Delete([]byte("k")))
	_, err = db.Get([]byte("ak"))
	assert.True(t, db.IsNotFound(err))

	it := db.Iterate(b2.Range())
	defer it.Release()
	count := 0
	for it.Next() {
		count++
		assert.Equal(t, []byte("bk"), it.Key())
	}
	assert.NoError(t, it.Error())
	assert.Equal(t, 1, count)
}
