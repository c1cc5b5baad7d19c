// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/quantidexyz/levr/kv"
	"github.com/quantidexyz/levr/levr"
)

type change struct {
	key []byte
	val []byte
}

// Stage abstracts changes on the storage.
type Stage struct {
	changes []change
}

func newStage(m map[storageKey]rlp.RawValue) *Stage {
	changes := make([]change, 0, len(m))
	for k, v := range m {
		changes = append(changes, change{k.dbKey(), v})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].key, changes[j].key) < 0
	})
	return &Stage{changes}
}

// Len returns count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of all changes.
func (s *Stage) Hash() levr.Bytes32 {
	hasher := levr.NewBlake2b()
	for _, c := range s.changes {
		hasher.Write(c.key)
		hasher.Write(c.val)
	}
	var h levr.Bytes32
	hasher.Sum(h[:0])
	return h
}

// Commit writes all changes into putter.
func (s *Stage) Commit(putter kv.Putter) error {
	p := StorageBucket.NewPutter(putter)
	for _, c := range s.changes {
		if len(c.val) == 0 {
			if err := p.Delete(c.key); err != nil {
				return err
			}
			continue
		}
		if err := p.Put(c.key, c.val); err != nil {
			return err
		}
	}
	return nil
}
