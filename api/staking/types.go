// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/levr"
)

func bigJSON(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(v)
}

type Params struct {
	Underlying      levr.Address `json:"underlying"`
	StakedToken     levr.Address `json:"stakedToken"`
	Treasury        levr.Address `json:"treasury"`
	Admin           levr.Address `json:"admin"`
	StreamWindow    uint64       `json:"streamWindow"`
	MaxRewardTokens uint64       `json:"maxRewardTokens"`
	ClaimOnFullExit bool         `json:"claimOnFullExit"`
}

func convertParams(p *staking.Params) *Params {
	return &Params{
		Underlying:      p.Underlying,
		StakedToken:     p.StakedToken,
		Treasury:        p.Treasury,
		Admin:           p.Admin,
		StreamWindow:    p.StreamWindow,
		MaxRewardTokens: p.MaxRewardTokens,
		ClaimOnFullExit: p.ClaimOnFullExit,
	}
}

type Totals struct {
	Time        uint64                `json:"time"`
	TotalStaked *math.HexOrDecimal256 `json:"totalStaked"`
	APRBps      *math.HexOrDecimal256 `json:"aprBps"`
	Head        levr.Bytes32          `json:"head"`
	Height      uint64                `json:"height"`
}

type Staker struct {
	Address        levr.Address          `json:"address"`
	Balance        *math.HexOrDecimal256 `json:"balance"`
	VotingPower    *math.HexOrDecimal256 `json:"votingPower"`
	StakeStartTime uint64                `json:"stakeStartTime"`
}

type Claimable struct {
	Token  levr.Address          `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Stream describes the vesting schedule and accumulator of one reward token.
type Stream struct {
	Token         levr.Address          `json:"token"`
	Exists        bool                  `json:"exists"`
	Whitelisted   bool                  `json:"whitelisted"`
	Start         uint64                `json:"start"`
	End           uint64                `json:"end"`
	LastUpdate    uint64                `json:"lastUpdate"`
	OriginalTotal *math.HexOrDecimal256 `json:"originalTotal"`
	TotalVested   *math.HexOrDecimal256 `json:"totalVested"`
	Unvested      *math.HexOrDecimal256 `json:"unvested"`
	AccPerShare   *math.HexOrDecimal256 `json:"accPerShare"`
	AvailablePool *math.HexOrDecimal256 `json:"availablePool"`
	Reserve       *math.HexOrDecimal256 `json:"reserve"`
	RatePerSecond *math.HexOrDecimal256 `json:"ratePerSecond,omitempty"`
	Outstanding   *math.HexOrDecimal256 `json:"outstanding,omitempty"`
}

func convertStream(info *staking.StreamInfo) *Stream {
	return &Stream{
		Token:         info.Token,
		Exists:        info.Exists,
		Whitelisted:   info.Whitelisted,
		Start:         info.Start,
		End:           info.End,
		LastUpdate:    info.LastUpdate,
		OriginalTotal: bigJSON(info.OriginalTotal),
		TotalVested:   bigJSON(info.TotalVested),
		Unvested:      bigJSON(info.Unvested),
		AccPerShare:   bigJSON(info.AccPerShare),
		AvailablePool: bigJSON(info.AvailablePool),
		Reserve:       bigJSON(info.Reserve),
	}
}

type Balance struct {
	Token   levr.Address          `json:"token"`
	Owner   levr.Address          `json:"owner"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}
