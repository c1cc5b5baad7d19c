// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/levr"
)

// Params are fixed at initialisation.
type Params struct {
	Underlying      levr.Address // staked asset, always a reward token
	StakedToken     levr.Address // claim token minted 1:1 on stake
	Treasury        levr.Address // the only caller of AccrueFromBoost
	Admin           levr.Address // manages the whitelist
	StreamWindow    uint64       // seconds
	MaxRewardTokens uint64       // non-whitelisted tokens recognised at once
	ClaimOnFullExit bool         // claim every reward token when a position is closed
}

// withDefaults fills unset tunables.
func (p Params) withDefaults() *Params {
	if p.StreamWindow == 0 {
		p.StreamWindow = levr.DefaultStreamWindow
	}
	if p.MaxRewardTokens == 0 {
		p.MaxRewardTokens = levr.DefaultMaxRewardTokens
	}
	return &p
}

func (p *Params) validate() error {
	switch {
	case p.Underlying.IsZero():
		return errors.WithMessage(reverts.ErrInvalidInput, "underlying is zero")
	case p.StakedToken.IsZero():
		return errors.WithMessage(reverts.ErrInvalidInput, "staked token is zero")
	case p.StakedToken == p.Underlying:
		return errors.WithMessage(reverts.ErrInvalidInput, "staked token equals underlying")
	case p.Admin.IsZero():
		return errors.WithMessage(reverts.ErrInvalidInput, "admin is zero")
	case p.StreamWindow < levr.MinStreamWindow || p.StreamWindow > levr.MaxStreamWindow:
		return errors.WithMessagef(reverts.ErrInvalidInput, "stream window %ds out of range", p.StreamWindow)
	}
	return nil
}
