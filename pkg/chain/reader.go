package chain

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

//go:embed coordinator.abi.json
var DefaultABI string

const (
	methodRewards = "getTotalRewards"
	methodWins    = "getTotalWins"
	methodEoa     = "getEoa"
	methodPeerID  = "getPeerId"
)

// Caller is the read-only subset of *ethclient.Client used by Reader.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ShapeError reports a contract result that does not match the request.
type ShapeError struct {
	Method string
	Want   int
	Got    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %d results, got %d", e.Method, e.Want, e.Got)
}

type Reader struct {
	caller   Caller
	contract common.Address
	abi      abi.ABI
	logger   *zap.Logger
	closer   func()
}

// NewReader binds a contract at address using abiJSON (DefaultABI when empty).
func NewReader(caller Caller, address, abiJSON string, logger *zap.Logger) (*Reader, error) {
	checksummed, err := ChecksumAddress(address)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	if abiJSON == "" {
		abiJSON = DefaultABI
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	for _, m := range []string{methodRewards, methodWins, methodEoa, methodPeerID} {
		if _, ok := parsed.Methods[m]; !ok {
			return nil, fmt.Errorf("abi lacks method %s", m)
		}
	}
	return &Reader{
		caller:   caller,
		contract: common.HexToAddress(checksummed),
		abi:      parsed,
		logger:   logger,
	}, nil
}

// Dial connects to rpcURL over hc and binds the contract.
func Dial(ctx context.Context, rpcURL, address, abiJSON string, hc *http.Client, logger *zap.Logger) (*Reader, error) {
	var opts []rpc.ClientOption
	if hc != nil {
		opts = append(opts, rpc.WithHTTPClient(hc))
	}
	rc, err := rpc.DialOptions(ctx, rpcURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	client := ethclient.NewClient(rc)
	r, err := NewReader(client, address, abiJSON, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.closer = client.Close
	logger.Info("contract_reader_ready",
		zap.String("contract", r.contract.Hex()),
	)
	return r, nil
}

func (r *Reader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

func (r *Reader) Contract() common.Address { return r.contract }

func (r *Reader) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: pack: %w", method, err)
	}
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: call: %w", method, err)
	}
	res, err := r.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s: unpack: %w", method, err)
	}
	if len(res) != 1 {
		return nil, &ShapeError{Method: method, Want: 1, Got: len(res)}
	}
	r.logger.Debug("contract_call", zap.String("method", method), zap.Int("bytes", len(out)))
	return res, nil
}

func (r *Reader) TotalRewards(ctx context.Context, peerIDs []string) ([]*big.Int, error) {
	res, err := r.call(ctx, methodRewards, peerIDs)
	if err != nil {
		return nil, err
	}
	rewards, ok := res[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", methodRewards, res[0])
	}
	if len(rewards) != len(peerIDs) {
		return nil, &ShapeError{Method: methodRewards, Want: len(peerIDs), Got: len(rewards)}
	}
	return rewards, nil
}

func (r *Reader) TotalWins(ctx context.Context, peerID string) (*big.Int, error) {
	res, err := r.call(ctx, methodWins, peerID)
	if err != nil {
		return nil, err
	}
	wins, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", methodWins, res[0])
	}
	return wins, nil
}

// Addresses returns the EOA registered for each peer, in input order.
func (r *Reader) Addresses(ctx context.Context, peerIDs []string) ([]common.Address, error) {
	res, err := r.call(ctx, methodEoa, peerIDs)
	if err != nil {
		return nil, err
	}
	addrs, ok := res[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", methodEoa, res[0])
	}
	if len(addrs) != len(peerIDs) {
		return nil, &ShapeError{Method: methodEoa, Want: len(peerIDs), Got: len(addrs)}
	}
	return addrs, nil
}

// AddressMap is Addresses keyed by peer ID with checksummed values.
func (r *Reader) AddressMap(ctx context.Context, peerIDs []string) (map[string]string, error) {
	addrs, err := r.Addresses(ctx, peerIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(peerIDs))
	for i, id := range peerIDs {
		out[id] = addrs[i].Hex()
	}
	return out, nil
}

// PeerIDs returns the peers registered under each owner address.
func (r *Reader) PeerIDs(ctx context.Context, eoas []common.Address) ([][]string, error) {
	res, err := r.call(ctx, methodPeerID, eoas)
	if err != nil {
		return nil, err
	}
	ids, ok := res[0].([][]string)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", methodPeerID, res[0])
	}
	if len(ids) != len(eoas) {
		return nil, &ShapeError{Method: methodPeerID, Want: len(eoas), Got: len(ids)}
	}
	return ids, nil
}
