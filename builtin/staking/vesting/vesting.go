// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vesting implements the per-token linear release schedule.
//
// Vested amounts are always recomputed from the schedule's original total, so the
// rounding error of one settlement is corrected by the next one and never compounds.
package vesting

import (
	"math/big"

	"github.com/quantidexyz/levr/builtin/staking/fixedpoint"
)

// Stream is a linear schedule releasing OriginalTotal over [Start, End].
type Stream struct {
	Start         uint64
	End           uint64
	OriginalTotal *big.Int
	TotalVested   *big.Int
	Unvested      *big.Int // OriginalTotal - TotalVested
	LastUpdate    uint64
}

// New returns an empty stream.
func New() *Stream {
	s := &Stream{}
	s.normalize()
	return s
}

func (s *Stream) normalize() {
	s.OriginalTotal = fixedpoint.OrZero(s.OriginalTotal)
	s.TotalVested = fixedpoint.OrZero(s.TotalVested)
	s.Unvested = fixedpoint.OrZero(s.Unvested)
}

// Clone returns a deep copy.
func (s *Stream) Clone() *Stream {
	return &Stream{
		Start:         s.Start,
		End:           s.End,
		OriginalTotal: new(big.Int).Set(s.OriginalTotal),
		TotalVested:   new(big.Int).Set(s.TotalVested),
		Unvested:      new(big.Int).Set(s.Unvested),
		LastUpdate:    s.LastUpdate,
	}
}

// Active reports whether any value is still waiting to be released.
func (s *Stream) Active() bool {
	return s.TotalVested.Cmp(s.OriginalTotal) < 0
}

// Finished reports whether the schedule window has fully elapsed at now.
func (s *Stream) Finished(now uint64) bool {
	return now >= s.End
}

// Remaining returns the value not yet delivered from the current schedule.
func (s *Stream) Remaining() *big.Int {
	return fixedpoint.SubFloor(s.OriginalTotal, s.TotalVested)
}

// Settle releases what should have vested by now and returns the newly vested amount.
// With no stakers the schedule is paused: nothing vests and LastUpdate stays put.
func (s *Stream) Settle(now uint64, totalStaked *big.Int) (*big.Int, error) {
	if totalStaked.Sign() == 0 {
		return new(big.Int), nil
	}
	if !s.Active() || now <= s.Start {
		if now > s.LastUpdate {
			s.LastUpdate = now
		}
		return new(big.Int), nil
	}

	var newly *big.Int
	if now >= s.End {
		newly = s.Remaining()
	} else {
		should, err := fixedpoint.MulDivUint64(s.OriginalTotal, now-s.Start, s.End-s.Start)
		if err != nil {
			return nil, err
		}
		newly = fixedpoint.SubFloor(should, s.TotalVested)
	}

	s.TotalVested.Add(s.TotalVested, newly)
	s.Unvested.Sub(s.Unvested, newly)
	s.LastUpdate = now
	return newly, nil
}

// Resume shifts a schedule paused at LastUpdate so that it continues from now.
// It is called when the first staker arrives after an empty period.
func (s *Stream) Resume(now uint64) {
	if !s.Active() || s.LastUpdate >= now || s.LastUpdate >= s.End {
		return
	}
	delta := now - s.LastUpdate
	s.Start += delta
	s.End += delta
	s.LastUpdate = now
}

// Reset starts a new schedule of amount plus the undelivered remainder over [now, now+window].
func (s *Stream) Reset(now, window uint64, amount *big.Int) {
	total := new(big.Int).Add(amount, s.Remaining())
	s.OriginalTotal = total
	s.TotalVested = new(big.Int)
	s.Unvested = new(big.Int).Set(total)
	s.Start = now
	s.End = now + window
	s.LastUpdate = now
}

// RatePerSecond returns the current release rate of the undelivered remainder.
func (s *Stream) RatePerSecond(now uint64) *big.Int {
	if !s.Active() || now >= s.End {
		return new(big.Int)
	}
	from := max(now, s.Start)
	return new(big.Int).Div(s.Remaining(), new(big.Int).SetUint64(s.End-from))
}
