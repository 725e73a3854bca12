package source

import (
	"context"
	"fmt"

	"github.com/shuliakovsky/peer-monitor/pkg/metrics"
	"github.com/shuliakovsky/peer-monitor/pkg/peers"
)

// Contract reads rewards, wins and owning addresses from the coordinator.
type Contract struct {
	targets Targets
	reader  ChainReader
	cache   AddressLookup
}

func (c *Contract) Name() string { return "contract" }

func (c *Contract) Fetch(ctx context.Context) (*peers.Snapshot, error) {
	snap, err := c.fetch(ctx)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("contract").Inc()
		return nil, err
	}
	return snap, nil
}

func (c *Contract) fetch(ctx context.Context) (*peers.Snapshot, error) {
	ids, err := c.targets.resolve(ctx, c.reader)
	if err != nil {
		return nil, fmt.Errorf("resolve peers: %w", err)
	}
	rewards, err := c.reader.TotalRewards(ctx, ids)
	if err != nil {
		return nil, err
	}
	addrs, err := c.cache.GetOrRefresh(ctx, ids)
	if err != nil {
		return nil, err
	}

	snap := &peers.Snapshot{Records: make([]peers.Record, 0, len(ids))}
	for i, id := range ids {
		wins, err := c.reader.TotalWins(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", id, err)
		}
		snap.Records = append(snap.Records, peers.Record{
			ID:      id,
			Address: addrs[id],
			Reward:  rewards[i],
			Wins:    wins,
		})
	}
	return snap, nil
}
