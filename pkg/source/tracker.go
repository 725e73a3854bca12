package source

import (
	"context"

	"github.com/shuliakovsky/peer-monitor/pkg/peers"
)

// Tracker takes every figure from the tracking API.
type Tracker struct {
	peerIDs []string
	client  TrackerClient
}

func (t *Tracker) Name() string { return "tracker" }

func (t *Tracker) Fetch(ctx context.Context) (*peers.Snapshot, error) {
	rep, err := t.client.Fetch(ctx, t.peerIDs)
	if err != nil {
		return nil, err
	}
	return &peers.Snapshot{Records: rep.Records, Stats: rep.Stats}, nil
}

// Hybrid keeps contract rewards, wins and addresses and adds the tracker's
// rank, votes, online state, last-seen and network stats.
type Hybrid struct {
	contract *Contract
	client   TrackerClient
}

func (h *Hybrid) Name() string { return "hybrid" }

func (h *Hybrid) Fetch(ctx context.Context) (*peers.Snapshot, error) {
	snap, err := h.contract.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	rep, err := h.client.Fetch(ctx, snap.IDs())
	if err != nil {
		return nil, err
	}
	byID := rep.ByID()
	for i := range snap.Records {
		r := &snap.Records[i]
		t, ok := byID[r.ID]
		if !ok {
			continue
		}
		r.Name = t.Name
		r.Rank = t.Rank
		r.Votes = t.Votes
		r.Online = t.Online
		r.LastSeen = t.LastSeen
	}
	snap.Stats = rep.Stats
	return snap, nil
}
