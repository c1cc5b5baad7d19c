// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import "github.com/pkg/errors"

// Method selects the staking operation a transaction invokes.
type Method uint8

const (
	MethodStake Method = iota + 1
	MethodUnstake
	MethodClaim
	MethodAccrue
	MethodAccrueFromBoost
	MethodWhitelist
	MethodUnwhitelist
	MethodCleanup
)

var methodNames = map[Method]string{
	MethodStake:           "stake",
	MethodUnstake:         "unstake",
	MethodClaim:           "claim",
	MethodAccrue:          "accrue",
	MethodAccrueFromBoost: "accrueFromBoost",
	MethodWhitelist:       "whitelistToken",
	MethodUnwhitelist:     "unwhitelistToken",
	MethodCleanup:         "cleanupFinishedRewardToken",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseMethod returns the method named s.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown method %q", s)
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
