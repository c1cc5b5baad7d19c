// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"github.com/quantidexyz/levr/builtin/solidity"
	"github.com/quantidexyz/levr/levr"
)

var slotStreams = levr.BytesToBytes32([]byte("streams"))

// Service persists one stream per reward token.
type Service struct {
	streams *solidity.Mapping[levr.Address, *Stream]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		streams: solidity.NewMapping[levr.Address, *Stream](sctx, slotStreams),
	}
}

// Get returns the stream of token, an empty one if never scheduled.
func (s *Service) Get(token levr.Address) (*Stream, error) {
	stream, err := s.streams.Get(token)
	if err != nil {
		return nil, err
	}
	stream.normalize()
	return stream, nil
}

func (s *Service) Set(token levr.Address, stream *Stream) error {
	return s.streams.Set(token, stream)
}
