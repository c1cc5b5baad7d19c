// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/api/utils"
	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/runtime"
)

type Staking struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staking {
	return &Staking{rt}
}

// viewError maps engine errors to http errors.
func viewError(err error) error {
	switch {
	case errors.Is(err, reverts.ErrNotInitialized):
		return utils.HTTPError(err, http.StatusServiceUnavailable)
	case errors.Is(err, reverts.ErrTokenNotWhitelisted):
		return utils.NotFound(err)
	case reverts.IsRevertErr(err):
		return utils.BadRequest(err)
	}
	return err
}

func (s *Staking) handleGetParams(w http.ResponseWriter, _ *http.Request) error {
	var params *Params
	err := s.rt.View(func(v *runtime.View) error {
		p, err := v.Engine.Params()
		if err != nil {
			return err
		}
		params = convertParams(p)
		return nil
	})
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, params)
}

func (s *Staking) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	totals := &Totals{}
	totals.Head, totals.Height = s.rt.Head()
	err := s.rt.View(func(v *runtime.View) error {
		total, err := v.Engine.TotalStaked()
		if err != nil {
			return err
		}
		apr, err := v.Engine.APRBps(v.Now)
		if err != nil {
			return err
		}
		totals.Time = v.Now
		totals.TotalStaked = bigJSON(total)
		totals.APRBps = bigJSON(apr)
		return nil
	})
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, totals)
}

func (s *Staking) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	staker := &Staker{Address: addr}
	err = s.rt.View(func(v *runtime.View) error {
		balance, err := v.Engine.StakedBalance(addr)
		if err != nil {
			return err
		}
		vp, err := v.Engine.VotingPower(addr, v.Now)
		if err != nil {
			return err
		}
		if staker.StakeStartTime, err = v.Engine.StakeStartTime(addr); err != nil {
			return err
		}
		staker.Balance = bigJSON(balance)
		staker.VotingPower = bigJSON(vp)
		return nil
	})
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, staker)
}

func (s *Staking) handleGetClaimable(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var claimable []*Claimable
	err = s.rt.View(func(v *runtime.View) error {
		tokens, err := v.Engine.RewardTokens()
		if err != nil {
			return err
		}
		for _, token := range tokens {
			amount, err := v.Engine.Claimable(addr, token, v.Now)
			if err != nil {
				return err
			}
			claimable = append(claimable, &Claimable{Token: token, Amount: bigJSON(amount)})
		}
		return nil
	})
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, claimable)
}

func (s *Staking) handleGetTokens(w http.ResponseWriter, _ *http.Request) error {
	var streams []*Stream
	err := s.rt.View(func(v *runtime.View) error {
		tokens, err := v.Engine.RewardTokens()
		if err != nil {
			return err
		}
		for _, token := range tokens {
			info, err := v.Engine.StreamInfo(token, v.Now)
			if err != nil {
				return err
			}
			streams = append(streams, convertStream(info))
		}
		return nil
	})
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, streams)
}

func (s *Staking) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	token, err := utils.AddressVar(req, "token")
	if err != nil {
		return err
	}
	var stream *Stream
	err = s.rt.View(func(v *runtime.View) error {
		info, err := v.Engine.StreamInfo(token, v.Now)
		if err != nil {
			return err
		}
		rate, err := v.Engine.RewardRatePerSecond(token, v.Now)
		if err != nil {
			return err
		}
		outstanding, err := v.Engine.Outstanding(token, v.Now)
		if err != nil {
			return err
		}
		stream = convertStream(info)
		stream.RatePerSecond = bigJSON(rate)
		stream.Outstanding = bigJSON(outstanding)
		return nil
	})
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, stream)
}

func (s *Staking) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	token, err := utils.AddressVar(req, "token")
	if err != nil {
		return err
	}
	owner, err := utils.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	balance := &Balance{Token: token, Owner: owner}
	err = s.rt.View(func(v *runtime.View) error {
		bal, err := v.Bank.BalanceOf(token, owner)
		if err != nil {
			return err
		}
		balance.Balance = bigJSON(bal)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, balance)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/params").
		Methods(http.MethodGet).
		Name("GET /staking/params").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetParams))
	sub.Path("/totals").
		Methods(http.MethodGet).
		Name("GET /staking/totals").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
	sub.Path("/stakers/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/stakers/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStaker))
	sub.Path("/stakers/{address}/claimable").
		Methods(http.MethodGet).
		Name("GET /staking/stakers/{address}/claimable").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetClaimable))
	sub.Path("/tokens").
		Methods(http.MethodGet).
		Name("GET /staking/tokens").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTokens))
	sub.Path("/tokens/{token}").
		Methods(http.MethodGet).
		Name("GET /staking/tokens/{token}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetToken))
	sub.Path("/balances/{token}/{owner}").
		Methods(http.MethodGet).
		Name("GET /staking/balances/{token}/{owner}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetBalance))
}
