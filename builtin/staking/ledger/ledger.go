// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps stake positions, the staked total and escrow.
package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/builtin/staking/fixedpoint"
	"github.com/quantidexyz/levr/levr"
)

var (
	slotPositions   = levr.BytesToBytes32([]byte("positions"))
	slotTotalStaked = levr.BytesToBytes32([]byte("total-staked"))
	slotEscrow      = levr.BytesToBytes32([]byte("escrow"))
)

// Position is the stake of one owner. A zero balance always has a zero StartTime.
type Position struct {
	Balance   *big.Int
	StartTime uint64
}

func (p *Position) normalize() {
	p.Balance = fixedpoint.OrZero(p.Balance)
}

// IsEmpty returns whether the position holds no stake.
func (p *Position) IsEmpty() bool {
	return p.Balance.Sign() == 0
}

// VotingPower returns balance x seconds staked in token-days.
func (p *Position) VotingPower(now uint64) *big.Int {
	if p.IsEmpty() || p.StartTime == 0 || now <= p.StartTime {
		return new(big.Int)
	}
	vp := new(big.Int).Mul(p.Balance, new(big.Int).SetUint64(now-p.StartTime))
	return vp.Div(vp, levr.VotingPowerDenominator)
}

// WeightedStart returns the start time that keeps voting power unchanged
// when amount is added to a position at now.
func WeightedStart(balance *big.Int, start uint64, amount *big.Int, now uint64) (uint64, error) {
	if balance.Sign() == 0 || start == 0 {
		return now, nil
	}
	newBalance := new(big.Int).Add(balance, amount)
	age, err := fixedpoint.MulDiv(balance, new(big.Int).SetUint64(elapsed(now, start)), newBalance)
	if err != nil {
		return 0, err
	}
	return now - age.Uint64(), nil
}

// ReducedStart returns the start time after amount is withdrawn at now.
// The accumulated age shrinks by the fraction withdrawn, so voting power
// scales by the square of the fraction kept.
func ReducedStart(balance *big.Int, start uint64, amount *big.Int, now uint64) (uint64, error) {
	remaining := new(big.Int).Sub(balance, amount)
	if remaining.Sign() <= 0 || start == 0 {
		return 0, nil
	}
	age, err := fixedpoint.MulDiv(new(big.Int).SetUint64(elapsed(now, start)), remaining, balance)
	if err != nil {
		return 0, err
	}
	return now - age.Uint64(), nil
}

func elapsed(now, start uint64) uint64 {
	if now <= start {
		return 0
	}
	return now - start
}

// Service manages stake positions and escrow.
type Service struct {
	positions   *solidity.Mapping[levr.Address, *Position]
	totalStaked *solidity.Uint256
	escrow      *solidity.Mapping[levr.Address, *big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		positions:   solidity.NewMapping[levr.Address, *Position](sctx, slotPositions),
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		escrow:      solidity.NewMapping[levr.Address, *big.Int](sctx, slotEscrow),
	}
}

// GetPosition returns the position of owner, empty if never staked.
func (s *Service) GetPosition(owner levr.Address) (*Position, error) {
	p, err := s.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	p.normalize()
	return p, nil
}

func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// Escrow returns the custodied amount of token backing staked principal.
func (s *Service) Escrow(token levr.Address) (*big.Int, error) {
	return s.escrow.Get(token)
}

// Stake adds amount of token to the position of owner at now.
func (s *Service) Stake(owner, token levr.Address, amount *big.Int, now uint64) (*Position, error) {
	if amount.Sign() <= 0 {
		return nil, errors.WithMessage(reverts.ErrInvalidInput, "stake amount must be positive")
	}
	pos, err := s.GetPosition(owner)
	if err != nil {
		return nil, err
	}
	start, err := WeightedStart(pos.Balance, pos.StartTime, amount, now)
	if err != nil {
		return nil, err
	}
	pos.Balance = new(big.Int).Add(pos.Balance, amount)
	pos.StartTime = start
	if err := s.positions.Set(owner, pos); err != nil {
		return nil, err
	}
	if err := s.totalStaked.Add(amount); err != nil {
		return nil, err
	}
	escrow, err := s.escrow.Get(token)
	if err != nil {
		return nil, err
	}
	if err := s.escrow.Set(token, escrow.Add(escrow, amount)); err != nil {
		return nil, err
	}
	return pos, nil
}

// Unstake removes amount of token from the position of owner at now.
// custody is the amount of token actually held; escrow may never exceed it.
func (s *Service) Unstake(owner, token levr.Address, amount *big.Int, now uint64, custody *big.Int) (*Position, error) {
	if amount.Sign() <= 0 {
		return nil, errors.WithMessage(reverts.ErrInvalidInput, "unstake amount must be positive")
	}
	pos, err := s.GetPosition(owner)
	if err != nil {
		return nil, err
	}
	if pos.Balance.Cmp(amount) < 0 {
		return nil, errors.WithMessagef(reverts.ErrInsufficientStake, "unstake %v of %v", amount, pos.Balance)
	}
	escrow, err := s.escrow.Get(token)
	if err != nil {
		return nil, err
	}
	if escrow.Cmp(amount) < 0 || custody.Cmp(escrow) < 0 {
		return nil, errors.WithMessagef(reverts.ErrInsufficientEscrow, "escrow %v, custody %v, amount %v", escrow, custody, amount)
	}

	start, err := ReducedStart(pos.Balance, pos.StartTime, amount, now)
	if err != nil {
		return nil, err
	}
	pos.Balance = new(big.Int).Sub(pos.Balance, amount)
	pos.StartTime = start
	if pos.IsEmpty() {
		s.positions.Delete(owner)
	} else if err := s.positions.Set(owner, pos); err != nil {
		return nil, err
	}
	if err := s.totalStaked.Sub(amount); err != nil {
		return nil, err
	}
	if err := s.escrow.Set(token, escrow.Sub(escrow, amount)); err != nil {
		return nil, err
	}
	return pos, nil
}
