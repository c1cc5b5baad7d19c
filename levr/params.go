// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package levr

import "math/big"

// Constants of the staking ledger.
const (
	SecondsPerDay  uint64 = 24 * 60 * 60
	SecondsPerYear uint64 = 365 * SecondsPerDay

	BasisPoints uint64 = 10_000

	DefaultStreamWindow    uint64 = 3 * SecondsPerDay // linear vesting window of a reward schedule
	MinStreamWindow        uint64 = 60 * 60
	MaxStreamWindow        uint64 = 90 * SecondsPerDay
	DefaultMaxRewardTokens uint64 = 10 // non-whitelisted reward tokens allowed at once
)

var (
	// Precision is the unit of the underlying token, 18 decimals.
	Precision = big.NewInt(1e18)
	// AccScale scales per-share reward accumulators. It is wide enough that a
	// settlement of one unit against any realistic total stake still moves them.
	AccScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)
	// VotingPowerDenominator normalizes balance x seconds into token-days.
	VotingPowerDenominator = new(big.Int).Mul(Precision, new(big.Int).SetUint64(SecondsPerDay))
)
