// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accumulator implements the per-share reward ledger of a single reward token.
package accumulator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/staking/fixedpoint"
	"github.com/quantidexyz/levr/levr"
)

// Accumulator tracks the reward per staked unit of a token.
type Accumulator struct {
	AccPerShare   *big.Int // scaled by levr.AccScale
	Reserve       *big.Int // reward owed to stakers or still vesting
	AvailablePool *big.Int // vested and not yet claimed
	Undistributed *big.Int `rlp:"optional"` // vested but below the per-share resolution, folded in later
	TotalDebt     *big.Int `rlp:"optional"` // sum of every Debt.Debt
	TotalCredited *big.Int `rlp:"optional"` // sum of every Debt.Credited
}

// Debt is a staker's snapshot against an accumulator.
type Debt struct {
	Debt     *big.Int // balance * AccPerShare / AccScale at the last checkpoint
	Credited *big.Int // settled on a balance change but not yet claimed
}

func New() *Accumulator {
	a := &Accumulator{}
	a.normalize()
	return a
}

func (a *Accumulator) normalize() {
	a.AccPerShare = fixedpoint.OrZero(a.AccPerShare)
	a.Reserve = fixedpoint.OrZero(a.Reserve)
	a.AvailablePool = fixedpoint.OrZero(a.AvailablePool)
	a.Undistributed = fixedpoint.OrZero(a.Undistributed)
	a.TotalDebt = fixedpoint.OrZero(a.TotalDebt)
	a.TotalCredited = fixedpoint.OrZero(a.TotalCredited)
}

func NewDebt() *Debt {
	d := &Debt{}
	d.normalize()
	return d
}

func (d *Debt) normalize() {
	d.Debt = fixedpoint.OrZero(d.Debt)
	d.Credited = fixedpoint.OrZero(d.Credited)
}

// Distribute folds newly vested reward into the per-share value.
// The part lost to the per-share rounding is carried to the next call, so
// the stakers receive every vested unit however often it runs.
// Without stakers the reward only waits in Undistributed.
func (a *Accumulator) Distribute(newly, totalStaked *big.Int) error {
	carry := new(big.Int).Add(a.Undistributed, newly)
	if carry.Sign() == 0 || totalStaked.Sign() == 0 {
		a.Undistributed = carry
		a.AvailablePool.Add(a.AvailablePool, newly)
		return nil
	}
	inc, err := fixedpoint.MulDiv(carry, levr.AccScale, totalStaked)
	if err != nil {
		return errors.Wrap(err, "distribute")
	}
	distributed, err := fixedpoint.MulDiv(inc, totalStaked, levr.AccScale)
	if err != nil {
		return errors.Wrap(err, "distribute")
	}
	a.AccPerShare.Add(a.AccPerShare, inc)
	a.Undistributed = carry.Sub(carry, distributed)
	a.AvailablePool.Add(a.AvailablePool, newly)
	return nil
}

// Dust returns the part of the reserve no staker can ever claim: what is left
// after the rounded-down claims of every holder of totalStaked. Only a finished
// stream has no unvested reserve, so callers check that first.
func (a *Accumulator) Dust(totalStaked *big.Int) (*big.Int, error) {
	owed, err := a.accrued(totalStaked)
	if err != nil {
		return nil, err
	}
	owed = fixedpoint.SubFloor(owed, a.TotalDebt)
	owed.Add(owed, a.TotalCredited)
	return fixedpoint.SubFloor(a.Reserve, owed), nil
}

// Sweep removes amount of dust from the reserve.
func (a *Accumulator) Sweep(amount *big.Int) {
	a.Reserve = fixedpoint.SubFloor(a.Reserve, amount)
	a.AvailablePool = fixedpoint.SubFloor(a.AvailablePool, amount)
}

// rebase replaces the snapshot of d and keeps the totals in step.
func (a *Accumulator) rebase(d *Debt, debt, credited *big.Int) {
	a.TotalDebt = fixedpoint.SubFloor(a.TotalDebt, d.Debt)
	a.TotalDebt.Add(a.TotalDebt, debt)
	a.TotalCredited = fixedpoint.SubFloor(a.TotalCredited, d.Credited)
	a.TotalCredited.Add(a.TotalCredited, credited)
	d.Debt = debt
	d.Credited = credited
}

// AddReserve records amount as owed to the stream.
func (a *Accumulator) AddReserve(amount *big.Int) {
	a.Reserve.Add(a.Reserve, amount)
}

func (a *Accumulator) accrued(balance *big.Int) (*big.Int, error) {
	return fixedpoint.MulDiv(balance, a.AccPerShare, levr.AccScale)
}

// Pending returns what the holder of balance can claim now.
func (a *Accumulator) Pending(balance *big.Int, d *Debt) (*big.Int, error) {
	acc, err := a.accrued(balance)
	if err != nil {
		return nil, err
	}
	pending := fixedpoint.SubFloor(acc, d.Debt)
	return pending.Add(pending, d.Credited), nil
}

// Checkpoint credits what balance earned so far and re-bases the debt on newBalance.
// It must run before every balance change.
func (a *Accumulator) Checkpoint(balance, newBalance *big.Int, d *Debt) error {
	pending, err := a.Pending(balance, d)
	if err != nil {
		return err
	}
	debt, err := a.accrued(newBalance)
	if err != nil {
		return err
	}
	a.rebase(d, debt, pending)
	return nil
}

// Claim pays out the pending amount of balance. It never pays partially:
// if the reserve cannot cover the full amount nothing changes.
func (a *Accumulator) Claim(balance *big.Int, d *Debt) (*big.Int, error) {
	pending, err := a.Pending(balance, d)
	if err != nil {
		return nil, err
	}
	if a.Reserve.Cmp(pending) < 0 {
		return nil, errors.WithMessagef(reverts.ErrInsufficientRewardLiquidity, "pending %v, reserve %v", pending, a.Reserve)
	}
	debt, err := a.accrued(balance)
	if err != nil {
		return nil, err
	}
	a.Reserve.Sub(a.Reserve, pending)
	a.AvailablePool = fixedpoint.SubFloor(a.AvailablePool, pending)
	a.rebase(d, debt, new(big.Int))
	return pending, nil
}
