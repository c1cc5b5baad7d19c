// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/staking/fixedpoint"
	"github.com/quantidexyz/levr/levr"
)

//
// Getters - no state change
//

// StreamInfo is the settled state of one reward token.
type StreamInfo struct {
	Token         levr.Address
	Exists        bool
	Whitelisted   bool
	Start         uint64
	End           uint64
	LastUpdate    uint64
	OriginalTotal *big.Int
	TotalVested   *big.Int
	Unvested      *big.Int
	AccPerShare   *big.Int
	AvailablePool *big.Int
	Reserve       *big.Int
}

// IsInitialized returns whether Initialize has succeeded.
func (e *Engine) IsInitialized() (bool, error) {
	p, err := e.params.Get()
	if err != nil {
		return false, err
	}
	return !p.Underlying.IsZero(), nil
}

// Params returns the parameters set at initialisation.
func (e *Engine) Params() (*Params, error) {
	return e.loadParams()
}

// VotingPower returns the voting power of owner in token-days.
func (e *Engine) VotingPower(owner levr.Address, now uint64) (*big.Int, error) {
	pos, err := e.ledger.GetPosition(owner)
	if err != nil {
		return nil, err
	}
	return pos.VotingPower(now), nil
}

// StakedBalance returns the staked balance of owner.
func (e *Engine) StakedBalance(owner levr.Address) (*big.Int, error) {
	pos, err := e.ledger.GetPosition(owner)
	if err != nil {
		return nil, err
	}
	return pos.Balance, nil
}

// StakeStartTime returns the time-weighted stake start of owner, zero if not staked.
func (e *Engine) StakeStartTime(owner levr.Address) (uint64, error) {
	pos, err := e.ledger.GetPosition(owner)
	if err != nil {
		return 0, err
	}
	return pos.StartTime, nil
}

func (e *Engine) TotalStaked() (*big.Int, error) {
	return e.ledger.TotalStaked()
}

// EscrowBalance returns the custody of token backing staked principal.
func (e *Engine) EscrowBalance(token levr.Address) (*big.Int, error) {
	return e.ledger.Escrow(token)
}

// RewardTokens returns the recognised reward tokens, the underlying first.
func (e *Engine) RewardTokens() ([]levr.Address, error) {
	return e.registry.Active()
}

// Claimable returns what owner could claim of token at now.
func (e *Engine) Claimable(owner, token levr.Address, now uint64) (*big.Int, error) {
	s, err := e.settleAll(now)
	if err != nil {
		return nil, err
	}
	ts := s.get(token)
	if ts == nil {
		return new(big.Int), nil
	}
	pos, err := e.ledger.GetPosition(owner)
	if err != nil {
		return nil, err
	}
	d, err := e.accs.GetDebt(owner, token)
	if err != nil {
		return nil, err
	}
	return ts.acc.Pending(pos.Balance, d)
}

// StreamInfo returns the state of token settled to now.
func (e *Engine) StreamInfo(token levr.Address, now uint64) (*StreamInfo, error) {
	s, err := e.settleAll(now)
	if err != nil {
		return nil, err
	}
	ts := s.get(token)
	if ts == nil {
		return nil, reverts.ErrTokenNotWhitelisted
	}
	return &StreamInfo{
		Token:         token,
		Exists:        ts.entry.Exists,
		Whitelisted:   ts.entry.Whitelisted,
		Start:         ts.stream.Start,
		End:           ts.stream.End,
		LastUpdate:    ts.stream.LastUpdate,
		OriginalTotal: ts.stream.OriginalTotal,
		TotalVested:   ts.stream.TotalVested,
		Unvested:      ts.stream.Unvested,
		AccPerShare:   ts.acc.AccPerShare,
		AvailablePool: ts.acc.AvailablePool,
		Reserve:       ts.acc.Reserve,
	}, nil
}

// Outstanding returns the custody of token that Accrue would schedule at now.
func (e *Engine) Outstanding(token levr.Address, now uint64) (*big.Int, error) {
	s, err := e.settleAll(now)
	if err != nil {
		return nil, err
	}
	return e.outstanding(token, s.get(token))
}

// RewardRatePerSecond returns the current release rate of token.
func (e *Engine) RewardRatePerSecond(token levr.Address, now uint64) (*big.Int, error) {
	s, err := e.settleAll(now)
	if err != nil {
		return nil, err
	}
	ts := s.get(token)
	if ts == nil || s.totalStaked.Sign() == 0 {
		return new(big.Int), nil
	}
	return ts.stream.RatePerSecond(now), nil
}

// APRBps returns the annualised underlying reward rate over the staked total, in basis points.
func (e *Engine) APRBps(now uint64) (*big.Int, error) {
	p, err := e.loadParams()
	if err != nil {
		return nil, err
	}
	s, err := e.settleAll(now)
	if err != nil {
		return nil, err
	}
	ts := s.get(p.Underlying)
	if ts == nil || s.totalStaked.Sign() == 0 {
		return new(big.Int), nil
	}
	yearly := new(big.Int).Mul(ts.stream.RatePerSecond(now), new(big.Int).SetUint64(levr.SecondsPerYear))
	return fixedpoint.MulDiv(yearly, new(big.Int).SetUint64(levr.BasisPoints), s.totalStaked)
}
