// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/lvldb"
)

func TestStateReadWrite(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New(db)
	addr := levr.BytesToAddress([]byte("contract"))
	key := levr.BytesToBytes32([]byte("slot"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	value := levr.BytesToBytes32([]byte("value"))
	st.SetStorage(addr, key, value)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	st.SetStorage(addr, key, levr.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStateRevert(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New(db)
	addr := levr.BytesToAddress([]byte("contract"))
	key := levr.BytesToBytes32([]byte("slot"))

	values := []levr.Bytes32{
		levr.BytesToBytes32([]byte("v1")),
		levr.BytesToBytes32([]byte("v2")),
		levr.BytesToBytes32([]byte("v3")),
	}

	var revisions []int
	for _, v := range values {
		revisions = append(revisions, st.NewCheckpoint())
		st.SetStorage(addr, key, v)
	}

	for i := len(revisions) - 1; i >= 0; i-- {
		got, err := st.GetStorage(addr, key)
		require.NoError(t, err)
		assert.Equal(t, values[i], got)
		st.RevertTo(revisions[i])
	}

	got, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStateEncodeDecode(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New(db)
	addr := levr.BytesToAddress([]byte("contract"))
	key := levr.BytesToBytes32([]byte("big"))

	type pair struct {
		A *big.Int
		B uint64
	}

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&pair{big.NewInt(42), 7})
	}))

	var p pair
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &p)
	}))
	assert.Equal(t, big.NewInt(42), p.A)
	assert.Equal(t, uint64(7), p.B)

	// list values read back as hash of raw
	h, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	raw, _ := st.GetRawStorage(addr, key)
	assert.Equal(t, levr.Blake2b(raw), h)

	boom := errors.New("boom")
	err = st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, boom })
	var stateErr *Error
	assert.True(t, errors.As(err, &stateErr))
	assert.ErrorIs(t, err, boom)
}

func TestStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := levr.BytesToAddress([]byte("contract"))
	k1 := levr.BytesToBytes32([]byte("k1"))
	k2 := levr.BytesToBytes32([]byte("k2"))

	st := New(db)
	st.SetStorage(addr, k1, levr.BytesToBytes32([]byte("a")))
	st.SetStorage(addr, k1, levr.BytesToBytes32([]byte("b")))
	st.SetStorage(addr, k2, levr.BytesToBytes32([]byte("c")))

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	assert.Equal(t, stage.Hash(), st.Stage().Hash())

	bulk := db.Bulk()
	require.NoError(t, stage.Commit(bulk))
	require.NoError(t, bulk.Write())

	fresh := New(db)
	v, err := fresh.GetStorage(addr, k1)
	require.NoError(t, err)
	assert.Equal(t, levr.BytesToBytes32([]byte("b")), v)

	// clearing a slot deletes it
	fresh.SetStorage(addr, k2, levr.Bytes32{})
	require.NoError(t, fresh.Stage().Commit(db))
	has, err := db.Has(append(append([]byte(StorageBucket), addr[:]...), k2[:]...))
	require.NoError(t, err)
	assert.False(t, has)
}
