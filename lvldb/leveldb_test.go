// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		invalidKey = []byte("abc")
	)

	fileDB, err := New(t.TempDir(), Options{16, 16})
	require.NoError(t, err)
	defer fileDB.Close()

	memDB, err := NewMem()
	require.NoError(t, err)
	defer memDB.Close()

	for _, db := range []*LevelDB{fileDB, memDB} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(invalidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDB_Bulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b := db.Bulk()
	require.NoError(t, b.Put([]byte("a1"), []byte("x")))
	require.NoError(t, b.Put([]byte("a2"), []byte("y")))
	require.NoError(t, b.Put([]byte("b1"), []byte("z")))
	assert.Equal(t, 3, b.Len())

	// not visible before write
	has, err := db.Has([]byte("a1"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, b.Write())

	it := db.Iterate(kv.Range{Start: []byte("a"), Limit: []byte("b")})
	defer it.Release()
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}
