// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/quantidexyz/levr/kv"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/stackedmap"
)

// StorageBucket is the kv bucket holding all committed slots.
const StorageBucket = kv.Bucket("s")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr levr.Address
	key  levr.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(k.addr)+len(k.key))
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State manages the storage of all contracts.
type State struct {
	db kv.Getter
	sm *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object over the committed slots in db.
func New(db kv.Getter) *State {
	s := &State{db: StorageBucket.NewGetter(db)}
	s.sm = stackedmap.New(s.load)
	s.sm.Push() // base level, never reverted
	return s
}

func (s *State) load(k storageKey) (rlp.RawValue, bool, error) {
	v, err := s.db.Get(k.dbKey())
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr levr.Address, key levr.Bytes32) (levr.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return levr.Bytes32{}, err
	}
	if len(raw) == 0 {
		return levr.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return levr.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return levr.Blake2b(raw), nil
	}
	return levr.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr levr.Address, key, value levr.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr levr.Address, key levr.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr levr.Address, key levr.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr levr.Address, key levr.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr levr.Address, key levr.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(max(revision, 1))
}

// Stage makes a stage object to compute digest or commit all changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return newStage(changes)
}
