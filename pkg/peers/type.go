package peers

import "math/big"

// Record is one peer's performance figures for a single cycle.
type Record struct {
	ID       string
	Name     string
	Address  string
	Reward   *big.Int
	Wins     *big.Int
	Rank     *int
	Votes    *int64
	Online   *bool
	LastSeen string
}

// Stats holds optional network-wide figures reported by the tracker.
type Stats struct {
	TotalPeers   *int64
	OnlinePeers  *int64
	TotalRewards *big.Int
	CurrentRound *int64
	CurrentStage *int64
}

// Empty reports whether no aggregate figure is set.
func (s *Stats) Empty() bool {
	if s == nil {
		return true
	}
	return s.TotalPeers == nil && s.OnlinePeers == nil && s.TotalRewards == nil &&
		s.CurrentRound == nil && s.CurrentStage == nil
}

// Snapshot is the fetch stage output for one cycle.
type Snapshot struct {
	Records []Record
	Stats   *Stats
}

// IDs returns the peer identifiers in record order.
func (s *Snapshot) IDs() []string {
	out := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.ID)
	}
	return out
}
