// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a user-facing violation. The whole operation that returned it has no effect.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrInvalidInput                = New("invalid input")
	ErrInsufficientStake           = New("insufficient stake")
	ErrInsufficientEscrow          = New("insufficient escrow")
	ErrInsufficientRewardLiquidity = New("insufficient reward liquidity")
	ErrInsufficientAvailable       = New("insufficient available rewards")
	ErrInsufficientBalance         = New("insufficient balance")
	ErrTokenNotWhitelisted         = New("token not whitelisted")
	ErrMaxRewardTokensReached      = New("max reward tokens reached")
	ErrAlreadyWhitelisted          = New("token already whitelisted")
	ErrCannotModifyUnderlying      = New("cannot modify underlying")
	ErrStreamNotFinished           = New("stream not finished")
	ErrRewardsStillPending         = New("rewards still pending")
	ErrAlreadyInitialized          = New("already initialized")
	ErrNotInitialized              = New("not initialized")
	ErrUnauthorized                = New("unauthorized")
)
