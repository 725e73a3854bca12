// Package source holds the interchangeable fetch strategies: contract only,
// tracker only, or contract figures enriched with tracker data.
package source

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shuliakovsky/peer-monitor/pkg/chain"
	"github.com/shuliakovsky/peer-monitor/pkg/config"
	"github.com/shuliakovsky/peer-monitor/pkg/peers"
	"github.com/shuliakovsky/peer-monitor/pkg/tracker"
)

type Source interface {
	Name() string
	Fetch(ctx context.Context) (*peers.Snapshot, error)
}

// ChainReader is the contract surface used by the strategies.
type ChainReader interface {
	TotalRewards(ctx context.Context, peerIDs []string) ([]*big.Int, error)
	TotalWins(ctx context.Context, peerID string) (*big.Int, error)
	PeerIDs(ctx context.Context, eoas []common.Address) ([][]string, error)
}

type AddressLookup interface {
	GetOrRefresh(ctx context.Context, peerIDs []string) (map[string]string, error)
}

type TrackerClient interface {
	Fetch(ctx context.Context, peerIDs []string) (*tracker.Report, error)
}

// Targets are the configured peers plus owner addresses whose peers are
// looked up on chain every cycle.
type Targets struct {
	PeerIDs []string
	Owners  []string
}

type Deps struct {
	Reader  ChainReader
	Cache   AddressLookup
	Tracker TrackerClient
}

// New picks the strategy named by cfg.Source.
func New(cfg *config.Config, deps Deps) (Source, error) {
	targets := Targets{PeerIDs: cfg.PeerIDs, Owners: cfg.OwnerAddresses}
	switch cfg.Source {
	case config.SourceContract:
		if deps.Reader == nil || deps.Cache == nil {
			return nil, fmt.Errorf("contract source needs a chain reader and address cache")
		}
		return &Contract{targets: targets, reader: deps.Reader, cache: deps.Cache}, nil
	case config.SourceTracker:
		if deps.Tracker == nil {
			return nil, fmt.Errorf("tracker source needs a tracker client")
		}
		if len(targets.Owners) > 0 {
			return nil, fmt.Errorf("tracker source cannot resolve owner addresses")
		}
		return &Tracker{peerIDs: targets.PeerIDs, client: deps.Tracker}, nil
	case config.SourceHybrid:
		if deps.Reader == nil || deps.Cache == nil || deps.Tracker == nil {
			return nil, fmt.Errorf("hybrid source needs chain reader, address cache and tracker client")
		}
		return &Hybrid{
			contract: &Contract{targets: targets, reader: deps.Reader, cache: deps.Cache},
			client:   deps.Tracker,
		}, nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

// resolve returns configured peers followed by owner-registered peers,
// without duplicates.
func (t Targets) resolve(ctx context.Context, r ChainReader) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range t.PeerIDs {
		add(id)
	}
	if len(t.Owners) > 0 {
		eoas, err := chain.ParseAddresses(t.Owners)
		if err != nil {
			return nil, err
		}
		lists, err := r.PeerIDs(ctx, eoas)
		if err != nil {
			return nil, err
		}
		for i, ids := range lists {
			if len(ids) == 0 {
				return nil, fmt.Errorf("owner %s has no registered peers", eoas[i].Hex())
			}
			for _, id := range ids {
				add(id)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no peers to monitor")
	}
	return out, nil
}
