package message

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shuliakovsky/peer-monitor/pkg/peers"
	"github.com/shuliakovsky/peer-monitor/pkg/timefmt"
)

func newTestBuilder() *Builder {
	b := NewBuilder("https://explorer.example/", timefmt.New(330, "IST"))
	b.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return b
}

func TestBuild_TwoPeersInOrder(t *testing.T) {
	b := newTestBuilder()
	recs := []peers.Record{
		{ID: "p1", Address: "0xA", Reward: big.NewInt(10), Wins: big.NewInt(1)},
		{ID: "p2", Address: "0xB", Reward: big.NewInt(20), Wins: big.NewInt(2)},
	}

	out := b.Build(recs, nil, "")
	blocks := strings.Split(out, "\n\n")
	require.Len(t, blocks, 2)

	require.Contains(t, blocks[0], "<b>Peer 1</b>")
	require.Contains(t, blocks[0], "Peer ID: <code>p1</code>")
	require.Contains(t, blocks[0], "EOA: <code>0xA</code>")
	require.Contains(t, blocks[0], "Total Reward: 10")
	require.Contains(t, blocks[0], "Total Wins: 1")
	require.Contains(t, blocks[0], `<a href="https://explorer.example/address/0xA?tab=internal_txns">View on Explorer</a>`)

	require.Contains(t, blocks[1], "<b>Peer 2</b>")
	require.Contains(t, blocks[1], "EOA: <code>0xB</code>")
	require.Contains(t, blocks[1], "Total Reward: 20")
	require.Contains(t, blocks[1], "Total Wins: 2")
}

func TestBuild_Deterministic(t *testing.T) {
	b := newTestBuilder()
	recs := []peers.Record{{ID: "p1", LastSeen: "2025-06-01T11:00:00Z"}}
	require.Equal(t, b.Build(recs, nil, "tail"), b.Build(recs, nil, "tail"))
}

func TestBuild_EscapesOnce(t *testing.T) {
	b := newTestBuilder()
	recs := []peers.Record{{ID: "<p&1>", Name: "a<b"}}

	out := b.Build(recs, nil, "ERR <timeout> & retry &amp; done")
	require.Contains(t, out, "Peer ID: <code>&lt;p&amp;1&gt;</code>")
	require.Contains(t, out, "Name: <code>a&lt;b</code>")
	require.Contains(t, out, "<b>Last Logs:</b>\n<code>ERR &lt;timeout&gt; &amp; retry &amp;amp; done</code>")
	require.NotContains(t, out, "&amp;lt;")
}

func TestBuild_OptionalFields(t *testing.T) {
	b := newTestBuilder()
	rank, votes, online := 7, int64(4), false
	total, onlinePeers := int64(1000), int64(321)
	recs := []peers.Record{{
		ID: "p1", Rank: &rank, Votes: &votes, Online: &online,
		LastSeen: "2025-06-01T10:00:00Z",
	}}
	stats := &peers.Stats{TotalPeers: &total, OnlinePeers: &onlinePeers, TotalRewards: big.NewInt(5)}

	out := b.Build(recs, stats, "")
	require.Contains(t, out, "Rank: 7")
	require.Contains(t, out, "Votes: 4")
	require.Contains(t, out, "Status: 🔴 Offline")
	require.Contains(t, out, "Last Seen: 2025-06-01 15:30:00 IST (2h ago)")
	require.Contains(t, out, "Total Reward: 0")
	require.NotContains(t, out, "View on Explorer")
	require.Contains(t, out, "<b>Network Stats</b>\nTotal Peers: 1000\nOnline Peers: 321\nTotal Rewards: 5")
	require.NotContains(t, out, "Last Logs")
}

func TestBuildError(t *testing.T) {
	b := newTestBuilder()
	out := b.BuildError(errors.New(`tracker: unexpected HTTP status 500: <html>`))
	require.Equal(t, "Error fetching data:\n<code>tracker: unexpected HTTP status 500: &lt;html&gt;</code>", out)
}

func TestBuild_TrimsLogTailToFit(t *testing.T) {
	b := newTestBuilder()
	recs := []peers.Record{{ID: "p1", Reward: big.NewInt(1), Wins: big.NewInt(1)}}
	lines := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat("x", 40)+" <step>")
	}
	lines = append(lines, "newest line")

	out := b.Build(recs, nil, strings.Join(lines, "\n"))
	require.LessOrEqual(t, Length(out), MaxLength)
	require.Contains(t, out, "<b>Peer 1</b>")
	require.Contains(t, out, "newest line</code>")
	require.Less(t, strings.Count(out, "&lt;step&gt;"), 200)
}
