// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"gopkg.in/yaml.v3"

	"github.com/quantidexyz/levr/builtin/staking"
	"github.com/quantidexyz/levr/levr"
	"github.com/quantidexyz/levr/runtime"
)

// CustomGenesis is user customized genesis.
type CustomGenesis struct {
	Name     string    `json:"name" yaml:"name"`
	Params   Params    `json:"params" yaml:"params"`
	Accounts []Account `json:"accounts" yaml:"accounts"`
}

// Params the staking parameters of a custom genesis. Zero tunables take their defaults.
type Params struct {
	Underlying      levr.Address `json:"underlying" yaml:"underlying"`
	StakedToken     levr.Address `json:"stakedToken" yaml:"stakedToken"`
	Treasury        levr.Address `json:"treasury" yaml:"treasury"`
	Admin           levr.Address `json:"admin" yaml:"admin"`
	StreamWindow    uint64       `json:"streamWindow" yaml:"streamWindow"`
	MaxRewardTokens uint64       `json:"maxRewardTokens" yaml:"maxRewardTokens"`
	ClaimOnFullExit bool         `json:"claimOnFullExit" yaml:"claimOnFullExit"`
}

// Account is a token balance allocated at genesis.
type Account struct {
	Address levr.Address          `json:"address" yaml:"address"`
	Token   levr.Address          `json:"token" yaml:"token"`
	Balance *math.HexOrDecimal256 `json:"balance" yaml:"balance"`
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	name := gen.Name
	if name == "" {
		name = "customnet"
	}

	allocs := make([]runtime.Alloc, 0, len(gen.Accounts))
	for _, a := range gen.Accounts {
		if a.Balance == nil {
			return nil, fmt.Errorf("%s: balance must be set", a.Address)
		}
		bal := (*big.Int)(a.Balance)
		if bal.Sign() < 1 {
			return nil, fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
		if a.Token.IsZero() {
			return nil, fmt.Errorf("%s: token must be set", a.Address)
		}
		allocs = append(allocs, runtime.Alloc{Token: a.Token, Owner: a.Address, Amount: new(big.Int).Set(bal)})
	}

	return newGenesis(name, staking.Params{
		Underlying:      gen.Params.Underlying,
		StakedToken:     gen.Params.StakedToken,
		Treasury:        gen.Params.Treasury,
		Admin:           gen.Params.Admin,
		StreamWindow:    gen.Params.StreamWindow,
		MaxRewardTokens: gen.Params.MaxRewardTokens,
		ClaimOnFullExit: gen.Params.ClaimOnFullExit,
	}, allocs)
}

// DecodeCustomGenesis reads a custom genesis in strict mode, as yaml if isYAML is set, json otherwise.
func DecodeCustomGenesis(r io.Reader, isYAML bool) (*CustomGenesis, error) {
	var gen CustomGenesis
	if isYAML {
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&gen); err != nil {
			return nil, err
		}
		return &gen, nil
	}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&gen); err != nil {
		return nil, err
	}
	return &gen, nil
}

// LoadCustomNet builds the genesis described by the file at path.
func LoadCustomNet(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(path))
	gen, err := DecodeCustomGenesis(file, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, fmt.Errorf("decode genesis file: %w", err)
	}
	return NewCustomNet(gen)
}
