// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/levr"
)

var (
	slotAccumulators = levr.BytesToBytes32([]byte("accumulators"))
	slotDebts        = levr.BytesToBytes32([]byte("reward-debts"))
)

// DebtKey identifies the debt of an owner against a token.
type DebtKey struct {
	Owner levr.Address
	Token levr.Address
}

func (k DebtKey) Bytes() []byte {
	return append(k.Owner.Bytes(), k.Token.Bytes()...)
}

// Service persists accumulators and reward debts.
type Service struct {
	accumulators *solidity.Mapping[levr.Address, *Accumulator]
	debts        *solidity.Mapping[DebtKey, *Debt]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		accumulators: solidity.NewMapping[levr.Address, *Accumulator](sctx, slotAccumulators),
		debts:        solidity.NewMapping[DebtKey, *Debt](sctx, slotDebts),
	}
}

func (s *Service) Get(token levr.Address) (*Accumulator, error) {
	acc, err := s.accumulators.Get(token)
	if err != nil {
		return nil, err
	}
	acc.normalize()
	return acc, nil
}

func (s *Service) Set(token levr.Address, acc *Accumulator) error {
	return s.accumulators.Set(token, acc)
}

func (s *Service) GetDebt(owner, token levr.Address) (*Debt, error) {
	d, err := s.debts.Get(DebtKey{owner, token})
	if err != nil {
		return nil, err
	}
	d.normalize()
	return d, nil
}

func (s *Service) SetDebt(owner, token levr.Address, d *Debt) error {
	if d.Debt.Sign() == 0 && d.Credited.Sign() == 0 {
		s.debts.Delete(DebtKey{owner, token})
		return nil
	}
	return s.debts.Set(DebtKey{owner, token}, d)
}
