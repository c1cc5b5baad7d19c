// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/quantidexyz/levr/levr"
)

// Event names.
const (
	EventInitialized        = "Initialized"
	EventStaked             = "Staked"
	EventUnstaked           = "Unstaked"
	EventRewardsClaimed     = "RewardsClaimed"
	EventRewardsAccrued     = "RewardsAccrued"
	EventStreamReset        = "StreamReset"
	EventTokenWhitelisted   = "TokenWhitelisted"
	EventTokenUnwhitelisted = "TokenUnwhitelisted"
	EventTokenCleanedUp     = "TokenCleanedUp"
	EventDustSwept          = "DustSwept"
)

// Event is emitted by a successful operation.
type Event struct {
	Name      string
	Account   levr.Address // acting account, zero if permissionless
	Recipient levr.Address
	Token     levr.Address
	Amount    *big.Int
}

func (e *Engine) emit(name string, account, recipient, token levr.Address, amount *big.Int) {
	if amount == nil {
		amount = new(big.Int)
	}
	e.events = append(e.events, &Event{
		Name:      name,
		Account:   account,
		Recipient: recipient,
		Token:     token,
		Amount:    new(big.Int).Set(amount),
	})
}

// Events returns the events of all successful operations so far.
func (e *Engine) Events() []*Event {
	return append([]*Event(nil), e.events...)
}
