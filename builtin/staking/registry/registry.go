// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry tracks recognised reward tokens.
//
// Tokens are kept in an append-only list. Cleanup only clears the flags of an entry,
// so accumulator history of a token is never lost.
package registry

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/levr"
)

var (
	slotEntries        = levr.BytesToBytes32([]byte("reward-tokens"))
	slotTokenList      = levr.BytesToBytes32([]byte("reward-token-list"))
	slotNonWhitelisted = levr.BytesToBytes32([]byte("non-whitelisted-count"))
	slotUnderlying     = levr.BytesToBytes32([]byte("underlying"))
)

// Entry is the registration of a reward token.
type Entry struct {
	Exists      bool
	Whitelisted bool
	Listed      bool // present in the token list
}

// Service manages the reward token registry.
type Service struct {
	entries        *solidity.Mapping[levr.Address, *Entry]
	list           *solidity.Raw[[]levr.Address]
	nonWhitelisted *solidity.Raw[uint64]
	underlying     *solidity.Address
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		entries:        solidity.NewMapping[levr.Address, *Entry](sctx, slotEntries),
		list:           solidity.NewRaw[[]levr.Address](sctx, slotTokenList),
		nonWhitelisted: solidity.NewRaw[uint64](sctx, slotNonWhitelisted),
		underlying:     solidity.NewAddress(sctx, slotUnderlying),
	}
}

// Init registers the underlying token. It is always recognised and never counted.
func (s *Service) Init(underlying levr.Address) error {
	s.underlying.Set(underlying)
	return s.put(underlying, &Entry{Exists: true, Whitelisted: true})
}

func (s *Service) Underlying() (levr.Address, error) {
	return s.underlying.Get()
}

// Get returns the entry of token.
func (s *Service) Get(token levr.Address) (*Entry, error) {
	return s.entries.Get(token)
}

// NonWhitelistedCount returns how many recognised tokens count against the cap.
func (s *Service) NonWhitelistedCount() (uint64, error) {
	return s.nonWhitelisted.Get()
}

// All returns every token ever registered, the underlying first.
func (s *Service) All() ([]levr.Address, error) {
	return s.list.Get()
}

// Active returns the recognised tokens.
func (s *Service) Active() ([]levr.Address, error) {
	all, err := s.list.Get()
	if err != nil {
		return nil, err
	}
	active := make([]levr.Address, 0, len(all))
	for _, token := range all {
		entry, err := s.entries.Get(token)
		if err != nil {
			return nil, err
		}
		if entry.Exists {
			active = append(active, token)
		}
	}
	return active, nil
}

// Register recognises token if needed. It returns true if the token was newly recognised.
func (s *Service) Register(token levr.Address, maxTokens uint64) (bool, error) {
	entry, err := s.entries.Get(token)
	if err != nil {
		return false, err
	}
	if entry.Exists {
		return false, nil
	}
	count, err := s.nonWhitelisted.Get()
	if err != nil {
		return false, err
	}
	if count >= maxTokens {
		return false, errors.WithMessagef(reverts.ErrMaxRewardTokensReached, "%d of %d", count, maxTokens)
	}
	if err := s.nonWhitelisted.Set(count + 1); err != nil {
		return false, err
	}
	entry.Exists = true
	return true, s.put(token, entry)
}

// Whitelist exempts token from the cap, recognising it if needed.
func (s *Service) Whitelist(token levr.Address) error {
	if err := s.requireNotUnderlying(token); err != nil {
		return err
	}
	entry, err := s.entries.Get(token)
	if err != nil {
		return err
	}
	if entry.Whitelisted {
		return reverts.ErrAlreadyWhitelisted
	}
	if entry.Exists {
		if err := s.decrement(); err != nil {
			return err
		}
	}
	entry.Exists = true
	entry.Whitelisted = true
	return s.put(token, entry)
}

// Unwhitelist makes token count against the cap again. The token stays recognised.
// unvested and reserve are the token's current stream state; both must be zero.
// The token needs a free slot under maxTokens.
func (s *Service) Unwhitelist(token levr.Address, maxTokens uint64, unvested, reserve *big.Int) error {
	if err := s.requireNotUnderlying(token); err != nil {
		return err
	}
	entry, err := s.entries.Get(token)
	if err != nil {
		return err
	}
	if !entry.Whitelisted {
		return reverts.ErrTokenNotWhitelisted
	}
	if unvested.Sign() != 0 || reserve.Sign() != 0 {
		return reverts.ErrRewardsStillPending
	}
	count, err := s.nonWhitelisted.Get()
	if err != nil {
		return err
	}
	if count >= maxTokens {
		return errors.WithMessagef(reverts.ErrMaxRewardTokensReached, "%d of %d", count, maxTokens)
	}
	if err := s.nonWhitelisted.Set(count + 1); err != nil {
		return err
	}
	entry.Whitelisted = false
	return s.put(token, entry)
}

// Cleanup stops recognising token. Callers check that its stream is finished and drained.
func (s *Service) Cleanup(token levr.Address) error {
	if err := s.requireNotUnderlying(token); err != nil {
		return err
	}
	entry, err := s.entries.Get(token)
	if err != nil {
		return err
	}
	if !entry.Exists {
		return reverts.ErrTokenNotWhitelisted
	}
	if !entry.Whitelisted {
		if err := s.decrement(); err != nil {
			return err
		}
	}
	entry.Exists = false
	entry.Whitelisted = false
	return s.entries.Set(token, entry)
}

func (s *Service) requireNotUnderlying(token levr.Address) error {
	underlying, err := s.underlying.Get()
	if err != nil {
		return err
	}
	if token == underlying {
		return reverts.ErrCannotModifyUnderlying
	}
	return nil
}

func (s *Service) decrement() error {
	count, err := s.nonWhitelisted.Get()
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("non-whitelisted token count underflow")
	}
	return s.nonWhitelisted.Set(count - 1)
}

// put stores entry, appending token to the list on first sight.
func (s *Service) put(token levr.Address, entry *Entry) error {
	if !entry.Listed {
		list, err := s.list.Get()
		if err != nil {
			return err
		}
		if err := s.list.Set(append(list, token)); err != nil {
			return err
		}
		entry.Listed = true
	}
	return s.entries.Set(token, entry)
}
