// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixedpoint provides the uint256 arithmetic shared by the reward math.
package fixedpoint

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrOverflow     = errors.New("fixedpoint: overflow")
	ErrDivideByZero = errors.New("fixedpoint: divide by zero")
	ErrNegative     = errors.New("fixedpoint: negative operand")
)

func toU256(x *big.Int) (*uint256.Int, error) {
	if x.Sign() < 0 {
		return nil, ErrNegative
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

// MulDiv returns floor(a*b/c) computed with a 512-bit intermediate.
// The result must fit into 256 bits.
func MulDiv(a, b, c *big.Int) (*big.Int, error) {
	if c.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	ua, err := toU256(a)
	if err != nil {
		return nil, err
	}
	ub, err := toU256(b)
	if err != nil {
		return nil, err
	}
	uc, err := toU256(c)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ua, ub, uc)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// MulDivUint64 is MulDiv for an uint64 multiplier and divisor.
func MulDivUint64(a *big.Int, b, c uint64) (*big.Int, error) {
	return MulDiv(a, new(big.Int).SetUint64(b), new(big.Int).SetUint64(c))
}

// SubFloor returns max(a-b, 0).
func SubFloor(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}

// Min returns a copy of the smaller value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// OrZero returns x, or a new zero if x is nil.
func OrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}
