// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/staking/accumulator"
	"github.com/quantidexyz/levr/builtin/staking/registry"
	"github.com/quantidexyz/levr/builtin/staking/vesting"
	"github.com/quantidexyz/levr/levr"
)

// tokenState is the working copy of one reward token during an operation.
type tokenState struct {
	entry  *registry.Entry
	stream *vesting.Stream
	acc    *accumulator.Accumulator
}

// settlement holds every listed token, settled to now. Operations read and
// mutate it, then flush writes it back.
type settlement struct {
	now         uint64
	totalStaked *big.Int
	order       []levr.Address
	tokens      map[levr.Address]*tokenState
}

func (s *settlement) get(token levr.Address) *tokenState {
	return s.tokens[token]
}

// active iterates the recognised tokens in registration order.
func (s *settlement) active(cb func(token levr.Address, ts *tokenState) error) error {
	for _, token := range s.order {
		ts := s.tokens[token]
		if !ts.entry.Exists {
			continue
		}
		if err := cb(token, ts); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) loadToken(token levr.Address) (*tokenState, error) {
	entry, err := e.registry.Get(token)
	if err != nil {
		return nil, err
	}
	stream, err := e.streams.Get(token)
	if err != nil {
		return nil, err
	}
	acc, err := e.accs.Get(token)
	if err != nil {
		return nil, err
	}
	return &tokenState{entry, stream, acc}, nil
}

// settleAll settles every stream first, then folds what vested into every accumulator.
// Every public operation starts with it.
func (e *Engine) settleAll(now uint64) (*settlement, error) {
	all, err := e.registry.All()
	if err != nil {
		return nil, err
	}
	total, err := e.ledger.TotalStaked()
	if err != nil {
		return nil, err
	}
	s := &settlement{
		now:         now,
		totalStaked: total,
		order:       all,
		tokens:      make(map[levr.Address]*tokenState, len(all)),
	}
	for _, token := range all {
		ts, err := e.loadToken(token)
		if err != nil {
			return nil, err
		}
		s.tokens[token] = ts
	}

	vested := make([]*big.Int, len(all))
	for i, token := range all {
		if vested[i], err = s.tokens[token].stream.Settle(now, total); err != nil {
			return nil, errors.Wrapf(err, "settle stream %v", token)
		}
	}
	for i, token := range all {
		if err := s.tokens[token].acc.Distribute(vested[i], total); err != nil {
			return nil, errors.Wrapf(err, "settle accumulator %v", token)
		}
	}
	return s, nil
}

// track adds a token registered during the operation.
func (e *Engine) track(s *settlement, token levr.Address) (*tokenState, error) {
	if ts, ok := s.tokens[token]; ok {
		entry, err := e.registry.Get(token)
		if err != nil {
			return nil, err
		}
		ts.entry = entry
		return ts, nil
	}
	ts, err := e.loadToken(token)
	if err != nil {
		return nil, err
	}
	s.order = append(s.order, token)
	s.tokens[token] = ts
	return ts, nil
}

func (e *Engine) flush(s *settlement) error {
	for _, token := range s.order {
		ts := s.tokens[token]
		if err := e.streams.Set(token, ts.stream); err != nil {
			return err
		}
		if err := e.accs.Set(token, ts.acc); err != nil {
			return err
		}
	}
	return nil
}

// checkpointDebts credits owner's pending rewards of every listed token before
// the balance moves from balance to newBalance.
func (e *Engine) checkpointDebts(s *settlement, owner levr.Address, balance, newBalance *big.Int) error {
	for _, token := range s.order {
		d, err := e.accs.GetDebt(owner, token)
		if err != nil {
			return err
		}
		if err := s.tokens[token].acc.Checkpoint(balance, newBalance, d); err != nil {
			return err
		}
		if err := e.accs.SetDebt(owner, token, d); err != nil {
			return err
		}
	}
	return nil
}
