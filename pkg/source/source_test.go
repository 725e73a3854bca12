package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/cache"
	"github.com/shuliakovsky/peer-monitor/pkg/chain"
	"github.com/shuliakovsky/peer-monitor/pkg/chain/chaintest"
	"github.com/shuliakovsky/peer-monitor/pkg/config"
	"github.com/shuliakovsky/peer-monitor/pkg/tracker"
)

const (
	contractAddr = "0x69C6e1D608ec64885E7b185d39b04B491a71768C"
	addrA        = "0x00000000000000000000000000000000000000Aa"
	addrB        = "0x00000000000000000000000000000000000000bB"
	owner        = "0x1111111111111111111111111111111111111111"
)

func newChain(t *testing.T) (*chaintest.Contract, *chain.Reader, *cache.AddressCache) {
	t.Helper()
	fake := chaintest.New(map[string]chaintest.Peer{
		"p1": {Reward: 10, Wins: 1, Address: addrA},
		"p2": {Reward: 20, Wins: 2, Address: addrB},
		"p3": {Reward: 30, Wins: 3, Address: addrB},
	})
	r, err := chain.NewReader(fake, contractAddr, "", zap.NewNop())
	require.NoError(t, err)
	c := cache.NewAddressCache(filepath.Join(t.TempDir(), "cache.json"), r, zap.NewNop())
	return fake, r, c
}

func TestContract_Fetch(t *testing.T) {
	fake, r, c := newChain(t)
	src, err := New(&config.Config{Source: config.SourceContract, PeerIDs: []string{"p1", "p2"}}, Deps{Reader: r, Cache: c})
	require.NoError(t, err)

	snap, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Records, 2)
	require.Equal(t, "p1", snap.Records[0].ID)
	require.Equal(t, int64(10), snap.Records[0].Reward.Int64())
	require.Equal(t, int64(1), snap.Records[0].Wins.Int64())
	require.Equal(t, common.HexToAddress(addrA).Hex(), snap.Records[0].Address)
	require.Equal(t, int64(20), snap.Records[1].Reward.Int64())
	require.Equal(t, int64(2), snap.Records[1].Wins.Int64())
	require.Equal(t, common.HexToAddress(addrB).Hex(), snap.Records[1].Address)

	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, fake.Calls("getEoa"), "addresses come from the same-day cache")
	require.Equal(t, 2, fake.Calls("getTotalRewards"))
}

func TestContract_ResolvesOwners(t *testing.T) {
	fake, r, c := newChain(t)
	fake.Owners[common.HexToAddress(owner)] = []string{"p2", "p3"}
	src, err := New(&config.Config{
		Source:         config.SourceContract,
		PeerIDs:        []string{"p1", "p2"},
		OwnerAddresses: []string{owner},
	}, Deps{Reader: r, Cache: c})
	require.NoError(t, err)

	snap, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2", "p3"}, snap.IDs())
}

func TestContract_OwnerWithoutPeersFails(t *testing.T) {
	_, r, c := newChain(t)
	src, err := New(&config.Config{Source: config.SourceContract, OwnerAddresses: []string{owner}}, Deps{Reader: r, Cache: c})
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.ErrorContains(t, err, "no registered peers")
}

func TestContract_RPCErrorPropagates(t *testing.T) {
	fake, r, c := newChain(t)
	fake.Err = errors.New("connection refused")
	src, err := New(&config.Config{Source: config.SourceContract, PeerIDs: []string{"p1"}}, Deps{Reader: r, Cache: c})
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.ErrorContains(t, err, "connection refused")
}

func TestHybrid_MergesTracker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"peers":[{"peerId":"p1","peerName":"calm owl","rank":3,"reward":999,"online":true,"lastSeen":"2025-06-01T10:00:00Z"}],"stats":{"totalPeers":50}}`))
	}))
	defer srv.Close()

	_, r, c := newChain(t)
	tc := tracker.New(tracker.Options{BaseURL: srv.URL, Method: "POST"}, srv.Client(), zap.NewNop())
	src, err := New(&config.Config{Source: config.SourceHybrid, PeerIDs: []string{"p1", "p2"}}, Deps{Reader: r, Cache: c, Tracker: tc})
	require.NoError(t, err)

	snap, err := src.Fetch(context.Background())
	require.NoError(t, err)
	p1 := snap.Records[0]
	require.Equal(t, "calm owl", p1.Name)
	require.Equal(t, 3, *p1.Rank)
	require.True(t, *p1.Online)
	require.Equal(t, int64(10), p1.Reward.Int64(), "rewards stay on-chain")
	require.Nil(t, snap.Records[1].Rank)
	require.Equal(t, int64(50), *snap.Stats.TotalPeers)
}

func TestTracker_StatusErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tc := tracker.New(tracker.Options{BaseURL: srv.URL}, srv.Client(), zap.NewNop())
	src, err := New(&config.Config{Source: config.SourceTracker, PeerIDs: []string{"p1"}}, Deps{Tracker: tc})
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	var se *tracker.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 500, se.Code)
}

func TestNew_MissingDeps(t *testing.T) {
	_, err := New(&config.Config{Source: config.SourceHybrid}, Deps{})
	require.Error(t, err)
	_, err = New(&config.Config{Source: "dashboard"}, Deps{})
	require.ErrorContains(t, err, "unknown source")
	_, err = New(&config.Config{Source: config.SourceTracker, OwnerAddresses: []string{owner}}, Deps{Tracker: &tracker.Client{}})
	require.Error(t, err)
}
