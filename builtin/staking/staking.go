// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the staking engine: a time-weighted stake ledger
// paying many reward tokens, each released linearly over a rolling window.
//
// Every operation runs settle-streams, settle-accumulators, then its own effect,
// and either completes or leaves no trace.
package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/quantidexyz/levr/builtin/reverts"
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/builtin/staking/accumulator"
	"github.com/quantidexyz/levr/builtin/staking/fixedpoint"
	"github.com/quantidexyz/levr/builtin/staking/ledger"
	"github.com/quantidexyz/levr/builtin/staking/registry"
	"github.com/quantidexyz/levr/builtin/staking/vesting"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/log"
	"github.com/quantidexyz/levr/state"
)

var (
	logger     = log.WithContext("pkg", "staking")
	slotParams = levr.BytesToBytes32([]byte("params"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Bank holds custody of every token. Its failures abort the operation.
type Bank interface {
	BalanceOf(token, owner levr.Address) (*big.Int, error)
	Transfer(token, from, to levr.Address, amount *big.Int) error
	Mint(token, to levr.Address, amount *big.Int) error
	Burn(token, from levr.Address, amount *big.Int) error
}

// FeeCollector moves externally earned fees of a token into the engine's custody.
// It is optional and its failures are ignored.
type FeeCollector interface {
	Collect(token levr.Address) error
}

// Engine implements native methods of the staking contract.
type Engine struct {
	addr  levr.Address
	state *state.State
	bank  Bank
	fees  FeeCollector

	params   *solidity.Raw[*Params]
	registry *registry.Service
	streams  *vesting.Service
	accs     *accumulator.Service
	ledger   *ledger.Service

	events []*Event
}

// New create a new instance. fees may be nil.
func New(addr levr.Address, state *state.State, bank Bank, fees FeeCollector) *Engine {
	sctx := solidity.NewContext(addr, state)
	return &Engine{
		addr:     addr,
		state:    state,
		bank:     bank,
		fees:     fees,
		params:   solidity.NewRaw[*Params](sctx, slotParams),
		registry: registry.New(sctx),
		streams:  vesting.NewService(sctx),
		accs:     accumulator.NewService(sctx),
		ledger:   ledger.New(sctx),
	}
}

// Address returns the custody address of the engine.
func (e *Engine) Address() levr.Address {
	return e.addr
}

// atomic runs fn and reverts every state change and event of it on failure.
func (e *Engine) atomic(fn func() error) error {
	rev := e.state.NewCheckpoint()
	n := len(e.events)
	if err := fn(); err != nil {
		e.state.RevertTo(rev)
		e.events = e.events[:n]
		return err
	}
	return nil
}

func (e *Engine) loadParams() (*Params, error) {
	p, err := e.params.Get()
	if err != nil {
		return nil, err
	}
	if p.Underlying.IsZero() {
		return nil, reverts.ErrNotInitialized
	}
	return p, nil
}

// Initialize sets the parameters once.
func (e *Engine) Initialize(params Params) error {
	return e.atomic(func() error {
		existing, err := e.params.Get()
		if err != nil {
			return err
		}
		if !existing.Underlying.IsZero() {
			return reverts.ErrAlreadyInitialized
		}
		p := params.withDefaults()
		if err := p.validate(); err != nil {
			return err
		}
		if err := e.params.Set(p); err != nil {
			return err
		}
		if err := e.registry.Init(p.Underlying); err != nil {
			return err
		}
		e.emit(EventInitialized, p.Admin, levr.Address{}, p.Underlying, nil)
		logger.Info("initialized", "underlying", p.Underlying, "window", p.StreamWindow, "maxTokens", p.MaxRewardTokens)
		return nil
	})
}

// Stake moves amount of underlying from staker into custody.
func (e *Engine) Stake(staker levr.Address, amount *big.Int, now uint64) error {
	logger.Debug("staking", "staker", staker, "amount", amount)
	err := e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if staker.IsZero() || amount == nil || amount.Sign() <= 0 {
			return errors.WithMessage(reverts.ErrInvalidInput, "stake requires a staker and a positive amount")
		}

		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		if s.totalStaked.Sign() == 0 {
			if err := e.wake(p, s); err != nil {
				return err
			}
		}

		if err := e.bank.Transfer(p.Underlying, staker, e.addr, amount); err != nil {
			return errors.WithMessage(err, "pull underlying")
		}
		pos, err := e.ledger.GetPosition(staker)
		if err != nil {
			return err
		}
		newBalance := new(big.Int).Add(pos.Balance, amount)
		if err := e.checkpointDebts(s, staker, pos.Balance, newBalance); err != nil {
			return err
		}
		if _, err := e.ledger.Stake(staker, p.Underlying, amount, now); err != nil {
			return err
		}
		if err := e.bank.Mint(p.StakedToken, staker, amount); err != nil {
			return err
		}
		if err := e.flush(s); err != nil {
			return err
		}
		e.emit(EventStaked, staker, staker, p.Underlying, amount)
		return nil
	})
	if err != nil {
		logger.Debug("stake failed", "staker", staker, "error", err)
		return err
	}
	logger.Info("staked", "staker", staker, "amount", amount)
	return nil
}

// wake runs when the first staker arrives after an empty period: paused streams
// resume where they stopped and custody received meanwhile is scheduled.
func (e *Engine) wake(p *Params, s *settlement) error {
	return s.active(func(token levr.Address, ts *tokenState) error {
		ts.stream.Resume(s.now)
		available, err := e.outstanding(token, ts)
		if err != nil {
			return err
		}
		if available.Sign() > 0 {
			e.schedule(p, s, token, ts, available, levr.Address{})
		}
		return nil
	})
}

// Unstake returns amount of underlying to recipient and the staker's voting power afterwards.
// Pending rewards stay claimable unless the position closes under ClaimOnFullExit.
func (e *Engine) Unstake(staker levr.Address, amount *big.Int, recipient levr.Address, now uint64) (*big.Int, error) {
	logger.Debug("unstaking", "staker", staker, "amount", amount, "recipient", recipient)
	var votingPower *big.Int
	err := e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if staker.IsZero() || recipient.IsZero() || amount == nil || amount.Sign() <= 0 {
			return errors.WithMessage(reverts.ErrInvalidInput, "unstake requires a staker, a recipient and a positive amount")
		}

		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		pos, err := e.ledger.GetPosition(staker)
		if err != nil {
			return err
		}
		if pos.Balance.Cmp(amount) < 0 {
			return errors.WithMessagef(reverts.ErrInsufficientStake, "unstake %v of %v", amount, pos.Balance)
		}
		custody, err := e.bank.BalanceOf(p.Underlying, e.addr)
		if err != nil {
			return err
		}
		newBalance := new(big.Int).Sub(pos.Balance, amount)
		if err := e.checkpointDebts(s, staker, pos.Balance, newBalance); err != nil {
			return err
		}
		after, err := e.ledger.Unstake(staker, p.Underlying, amount, now, custody)
		if err != nil {
			return err
		}
		if err := e.bank.Burn(p.StakedToken, staker, amount); err != nil {
			return err
		}
		if err := e.bank.Transfer(p.Underlying, e.addr, recipient, amount); err != nil {
			return errors.WithMessage(err, "send underlying")
		}
		e.emit(EventUnstaked, staker, recipient, p.Underlying, amount)

		if p.ClaimOnFullExit && after.IsEmpty() {
			if err := s.active(func(token levr.Address, ts *tokenState) error {
				_, err := e.claimToken(s, staker, after.Balance, token, ts, recipient)
				return err
			}); err != nil {
				return err
			}
		}
		if err := e.flush(s); err != nil {
			return err
		}
		votingPower = after.VotingPower(now)
		return nil
	})
	if err != nil {
		logger.Debug("unstake failed", "staker", staker, "error", err)
		return nil, err
	}
	logger.Info("unstaked", "staker", staker, "amount", amount)
	return votingPower, nil
}

// Claim pays the staker's pending rewards of tokens to recipient.
// Tokens never registered are skipped.
func (e *Engine) Claim(staker levr.Address, tokens []levr.Address, recipient levr.Address, now uint64) error {
	logger.Debug("claiming", "staker", staker, "tokens", len(tokens), "recipient", recipient)
	err := e.atomic(func() error {
		if _, err := e.loadParams(); err != nil {
			return err
		}
		if staker.IsZero() || recipient.IsZero() || len(tokens) == 0 {
			return errors.WithMessage(reverts.ErrInvalidInput, "claim requires a staker, a recipient and tokens")
		}
		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		pos, err := e.ledger.GetPosition(staker)
		if err != nil {
			return err
		}
		for _, token := range tokens {
			ts := s.get(token)
			if ts == nil {
				continue
			}
			if _, err := e.claimToken(s, staker, pos.Balance, token, ts, recipient); err != nil {
				return err
			}
		}
		return e.flush(s)
	})
	if err != nil {
		logger.Debug("claim failed", "staker", staker, "error", err)
	}
	return err
}

func (e *Engine) claimToken(s *settlement, owner levr.Address, balance *big.Int, token levr.Address, ts *tokenState, recipient levr.Address) (*big.Int, error) {
	d, err := e.accs.GetDebt(owner, token)
	if err != nil {
		return nil, err
	}
	paid, err := ts.acc.Claim(balance, d)
	if err != nil {
		return nil, errors.WithMessagef(err, "claim %v", token)
	}
	if err := e.accs.SetDebt(owner, token, d); err != nil {
		return nil, err
	}
	if paid.Sign() == 0 {
		return paid, nil
	}
	if err := e.bank.Transfer(token, e.addr, recipient, paid); err != nil {
		return nil, errors.WithMessagef(err, "pay %v", token)
	}
	e.emit(EventRewardsClaimed, owner, recipient, token, paid)
	return paid, nil
}

// Accrue schedules the unaccounted custody balance of token. It returns the scheduled amount.
func (e *Engine) Accrue(token levr.Address, now uint64) (*big.Int, error) {
	accrued := new(big.Int)
	err := e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if token.IsZero() || token == p.StakedToken {
			return errors.WithMessage(reverts.ErrInvalidInput, "token cannot be a reward")
		}
		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		e.collectFees(s, token)

		ts := s.get(token)
		available, err := e.outstanding(token, ts)
		if err != nil {
			return err
		}
		if available.Sign() == 0 {
			return nil
		}
		if ts, err = e.register(p, s, token); err != nil {
			return err
		}
		e.schedule(p, s, token, ts, available, levr.Address{})
		accrued = available
		return e.flush(s)
	})
	if err != nil {
		logger.Debug("accrue failed", "token", token, "error", err)
		return nil, err
	}
	if accrued.Sign() > 0 {
		logger.Info("accrued", "token", token, "amount", accrued)
	}
	return accrued, nil
}

// collectFees asks the optional fee collector for more custody once s is settled.
// A failing collector leaves no trace and never blocks accounting.
func (e *Engine) collectFees(s *settlement, token levr.Address) {
	if e.fees == nil {
		return
	}
	rev := e.state.NewCheckpoint()
	if err := e.fees.Collect(token); err != nil {
		e.state.RevertTo(rev)
		logger.Warn("fee collection failed", "token", token, "at", s.now, "error", err)
	}
}

// AccrueFromBoost schedules amount of token on behalf of the treasury.
// With pull the amount is first drawn from the treasury, otherwise it must already be unaccounted custody.
func (e *Engine) AccrueFromBoost(caller, token levr.Address, amount *big.Int, pull bool, now uint64) error {
	err := e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if p.Treasury.IsZero() || caller != p.Treasury {
			return reverts.ErrUnauthorized
		}
		if token.IsZero() || token == p.StakedToken || amount == nil || amount.Sign() <= 0 {
			return errors.WithMessage(reverts.ErrInvalidInput, "boost requires a reward token and a positive amount")
		}
		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		if pull {
			if err := e.bank.Transfer(token, p.Treasury, e.addr, amount); err != nil {
				return errors.WithMessage(err, "pull from treasury")
			}
		} else {
			available, err := e.outstanding(token, s.get(token))
			if err != nil {
				return err
			}
			if available.Cmp(amount) < 0 {
				return errors.WithMessagef(reverts.ErrInsufficientAvailable, "available %v, boost %v", available, amount)
			}
		}
		ts, err := e.register(p, s, token)
		if err != nil {
			return err
		}
		e.schedule(p, s, token, ts, amount, caller)
		return e.flush(s)
	})
	if err != nil {
		logger.Debug("boost failed", "token", token, "error", err)
		return err
	}
	logger.Info("boosted", "token", token, "amount", amount, "pull", pull)
	return nil
}

func (e *Engine) register(p *Params, s *settlement, token levr.Address) (*tokenState, error) {
	if _, err := e.registry.Register(token, p.MaxRewardTokens); err != nil {
		return nil, err
	}
	return e.track(s, token)
}

// schedule resets the stream of token to release amount plus its undelivered remainder.
func (e *Engine) schedule(p *Params, s *settlement, token levr.Address, ts *tokenState, amount *big.Int, account levr.Address) {
	ts.stream.Reset(s.now, p.StreamWindow, amount)
	ts.acc.AddReserve(amount)
	e.emit(EventRewardsAccrued, account, levr.Address{}, token, amount)
	e.emit(EventStreamReset, account, levr.Address{}, token, ts.stream.OriginalTotal)
}

// outstanding returns custody of token not backing escrow or reserve. ts may be nil.
func (e *Engine) outstanding(token levr.Address, ts *tokenState) (*big.Int, error) {
	custody, err := e.bank.BalanceOf(token, e.addr)
	if err != nil {
		return nil, err
	}
	committed, err := e.ledger.Escrow(token)
	if err != nil {
		return nil, err
	}
	if ts != nil {
		committed.Add(committed, ts.acc.Reserve)
	}
	return fixedpoint.SubFloor(custody, committed), nil
}

// WhitelistToken exempts token from the reward token cap.
func (e *Engine) WhitelistToken(caller, token levr.Address, now uint64) error {
	return e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if caller != p.Admin {
			return reverts.ErrUnauthorized
		}
		if token.IsZero() || token == p.StakedToken {
			return errors.WithMessage(reverts.ErrInvalidInput, "token cannot be a reward")
		}
		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		if err := e.registry.Whitelist(token); err != nil {
			return err
		}
		if _, err := e.track(s, token); err != nil {
			return err
		}
		e.emit(EventTokenWhitelisted, caller, levr.Address{}, token, nil)
		return e.flush(s)
	})
}

// UnwhitelistToken makes token count against the cap again. Its stream must be fully delivered.
func (e *Engine) UnwhitelistToken(caller, token levr.Address, now uint64) error {
	return e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if caller != p.Admin {
			return reverts.ErrUnauthorized
		}
		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		if token == p.Underlying {
			return reverts.ErrCannotModifyUnderlying
		}
		ts := s.get(token)
		if ts == nil || !ts.entry.Exists {
			return reverts.ErrTokenNotWhitelisted
		}
		if err := e.sweepDust(p, s, token, ts); err != nil {
			return err
		}
		if err := e.registry.Unwhitelist(token, p.MaxRewardTokens, ts.stream.Remaining(), ts.acc.Reserve); err != nil {
			return err
		}
		e.emit(EventTokenUnwhitelisted, caller, levr.Address{}, token, nil)
		return e.flush(s)
	})
}

// CleanupFinishedRewardToken stops recognising a token whose stream ended and whose reserve is drained.
func (e *Engine) CleanupFinishedRewardToken(token levr.Address, now uint64) error {
	return e.atomic(func() error {
		p, err := e.loadParams()
		if err != nil {
			return err
		}
		if token == p.Underlying {
			return reverts.ErrCannotModifyUnderlying
		}
		s, err := e.settleAll(now)
		if err != nil {
			return err
		}
		ts := s.get(token)
		if ts == nil || !ts.entry.Exists {
			return reverts.ErrTokenNotWhitelisted
		}
		if !ts.stream.Finished(now) {
			return reverts.ErrStreamNotFinished
		}
		if err := e.sweepDust(p, s, token, ts); err != nil {
			return err
		}
		if ts.acc.Reserve.Sign() != 0 {
			return errors.WithMessagef(reverts.ErrRewardsStillPending, "reserve %v", ts.acc.Reserve)
		}
		if err := e.registry.Cleanup(token); err != nil {
			return err
		}
		e.emit(EventTokenCleanedUp, levr.Address{}, levr.Address{}, token, nil)
		return e.flush(s)
	})
}

// sweepDust releases the reserve of a fully vested token that no staker can claim,
// the remainder of rounding every claim down. It goes to the treasury, or stays
// in custody as unaccounted balance without one.
func (e *Engine) sweepDust(p *Params, s *settlement, token levr.Address, ts *tokenState) error {
	if ts.stream.Remaining().Sign() != 0 || ts.acc.Reserve.Sign() == 0 {
		return nil
	}
	dust, err := ts.acc.Dust(s.totalStaked)
	if err != nil {
		return err
	}
	if dust.Sign() == 0 {
		return nil
	}
	ts.acc.Sweep(dust)
	if !p.Treasury.IsZero() {
		if err := e.bank.Transfer(token, e.addr, p.Treasury, dust); err != nil {
			return errors.WithMessagef(err, "sweep %v", token)
		}
	}
	e.emit(EventDustSwept, levr.Address{}, p.Treasury, token, dust)
	logger.Debug("swept dust", "token", token, "amount", dust)
	return nil
}
