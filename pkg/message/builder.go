// Package message renders peer snapshots as Telegram HTML.
package message

import (
	"fmt"
	"html"
	"math/big"
	"strings"
	"time"

	"github.com/shuliakovsky/peer-monitor/pkg/peers"
	"github.com/shuliakovsky/peer-monitor/pkg/timefmt"
)

type Builder struct {
	ExplorerURL string
	Time        *timefmt.Formatter
	Now         func() time.Time
	// MaxLength caps the rendered text; zero means no cap.
	MaxLength int
}

func NewBuilder(explorerURL string, tf *timefmt.Formatter) *Builder {
	return &Builder{ExplorerURL: strings.TrimRight(explorerURL, "/"), Time: tf, Now: time.Now, MaxLength: MaxLength}
}

// Build renders one block per record, optional network stats and, when
// logTail is non-empty, a trailing log section. Every peer-supplied value is
// escaped exactly once. Oldest log lines are dropped until the text fits
// MaxLength.
func (b *Builder) Build(records []peers.Record, stats *peers.Stats, logTail string) string {
	blocks := make([]string, 0, len(records)+2)
	for i, r := range records {
		blocks = append(blocks, b.peerBlock(i+1, r))
	}
	if !stats.Empty() {
		blocks = append(blocks, statsBlock(stats))
	}
	out := strings.Join(blocks, "\n\n")
	if logTail != "" {
		out += b.logSection(out, logTail)
	}
	return out
}

func (b *Builder) logSection(body, logTail string) string {
	lines := strings.Split(logTail, "\n")
	for len(lines) > 0 {
		sec := "\n\n<b>Last Logs:</b>\n<code>" + html.EscapeString(strings.Join(lines, "\n")) + "</code>"
		if b.MaxLength <= 0 || Length(body)+Length(sec) <= b.MaxLength {
			return sec
		}
		lines = lines[1:]
	}
	return ""
}

// BuildError renders a failed cycle.
func (b *Builder) BuildError(err error) string {
	return "Error fetching data:\n<code>" + html.EscapeString(err.Error()) + "</code>"
}

func (b *Builder) peerBlock(n int, r peers.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Peer %d</b>\n", n)
	if r.Name != "" {
		fmt.Fprintf(&sb, "Name: <code>%s</code>\n", html.EscapeString(r.Name))
	}
	fmt.Fprintf(&sb, "Peer ID: <code>%s</code>\n", html.EscapeString(r.ID))
	if r.Address != "" {
		fmt.Fprintf(&sb, "EOA: <code>%s</code>\n", html.EscapeString(r.Address))
	}
	if r.Rank != nil {
		fmt.Fprintf(&sb, "Rank: %d\n", *r.Rank)
	}
	fmt.Fprintf(&sb, "Total Reward: %s\n", bigString(r.Reward))
	fmt.Fprintf(&sb, "Total Wins: %s", bigString(r.Wins))
	if r.Votes != nil {
		fmt.Fprintf(&sb, "\nVotes: %d", *r.Votes)
	}
	if r.Online != nil {
		if *r.Online {
			sb.WriteString("\nStatus: 🟢 Online")
		} else {
			sb.WriteString("\nStatus: 🔴 Offline")
		}
	}
	if r.LastSeen != "" {
		seen := r.LastSeen
		if b.Time != nil {
			seen = b.Time.Format(seen, b.now())
		}
		fmt.Fprintf(&sb, "\nLast Seen: %s", html.EscapeString(seen))
	}
	if r.Address != "" && b.ExplorerURL != "" {
		link := fmt.Sprintf("%s/address/%s?tab=internal_txns", b.ExplorerURL, r.Address)
		fmt.Fprintf(&sb, "\n<a href=\"%s\">View on Explorer</a>", html.EscapeString(link))
	}
	return sb.String()
}

func statsBlock(s *peers.Stats) string {
	lines := []string{"<b>Network Stats</b>"}
	if s.TotalPeers != nil {
		lines = append(lines, fmt.Sprintf("Total Peers: %d", *s.TotalPeers))
	}
	if s.OnlinePeers != nil {
		lines = append(lines, fmt.Sprintf("Online Peers: %d", *s.OnlinePeers))
	}
	if s.TotalRewards != nil {
		lines = append(lines, "Total Rewards: "+s.TotalRewards.String())
	}
	if s.CurrentRound != nil {
		lines = append(lines, fmt.Sprintf("Round: %d", *s.CurrentRound))
	}
	if s.CurrentStage != nil {
		lines = append(lines, fmt.Sprintf("Stage: %d", *s.CurrentStage))
	}
	return strings.Join(lines, "\n")
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
