// Package chaintest provides an in-memory coordinator contract for tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/shuliakovsky/peer-monitor/pkg/chain"
)

type Peer struct {
	Reward  int64
	Wins    int64
	Address string
}

// Contract answers CallContract by decoding the ABI call and packing the
// configured values. Unknown peers read as zero.
type Contract struct {
	Peers  map[string]Peer
	Owners map[common.Address][]string
	Err    error

	mu    sync.Mutex
	calls map[string]int
	abi   abi.ABI
}

func New(peers map[string]Peer) *Contract {
	parsed, err := abi.JSON(strings.NewReader(chain.DefaultABI))
	if err != nil {
		panic(err)
	}
	return &Contract{
		Peers:  peers,
		Owners: map[common.Address][]string{},
		calls:  map[string]int{},
		abi:    parsed,
	}
}

// Calls returns how many times method was invoked.
func (c *Contract) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *Contract) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("short calldata")
	}
	m, err := c.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.calls[m.Name]++
	c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	args, err := m.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	switch m.Name {
	case "getTotalRewards":
		ids := args[0].([]string)
		out := make([]*big.Int, len(ids))
		for i, id := range ids {
			out[i] = big.NewInt(c.Peers[id].Reward)
		}
		return m.Outputs.Pack(out)
	case "getTotalWins":
		return m.Outputs.Pack(big.NewInt(c.Peers[args[0].(string)].Wins))
	case "getEoa":
		ids := args[0].([]string)
		out := make([]common.Address, len(ids))
		for i, id := range ids {
			out[i] = common.HexToAddress(c.Peers[id].Address)
		}
		return m.Outputs.Pack(out)
	case "getPeerId":
		eoas := args[0].([]common.Address)
		out := make([][]string, len(eoas))
		for i, a := range eoas {
			out[i] = c.Owners[a]
			if out[i] == nil {
				out[i] = []string{}
			}
		}
		return m.Outputs.Pack(out)
	}
	return nil, fmt.Errorf("unsupported method %s", m.Name)
}
