package tracker

import (
	"encoding/json"
	"fmt"

	"github.com/shuliakovsky/peer-monitor/pkg/peers"
)

// StatusError is returned for non-2xx tracker responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tracker: unexpected HTTP status %d", e.Code)
	}
	return fmt.Sprintf("tracker: unexpected HTTP status %d: %s", e.Code, e.Body)
}

// ShapeError is returned when a body cannot be read as the expected object.
type ShapeError struct {
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tracker: unexpected response shape: %s: %v", e.Reason, e.Err)
	}
	return "tracker: unexpected response shape: " + e.Reason
}

func (e *ShapeError) Unwrap() error { return e.Err }

type peerJSON struct {
	PeerID   string      `json:"peerId"`
	PeerName string      `json:"peerName"`
	Rank     *int        `json:"rank"`
	Reward   json.Number `json:"reward"`
	Wins     json.Number `json:"wins"`
	Votes    *int64      `json:"votes"`
	Online   *bool       `json:"online"`
	LastSeen string      `json:"lastSeen"`
}

type statsJSON struct {
	TotalPeers   *int64      `json:"totalPeers"`
	OnlinePeers  *int64      `json:"onlinePeers"`
	TotalRewards json.Number `json:"totalRewards"`
	CurrentRound *int64      `json:"currentRound"`
	CurrentStage *int64      `json:"currentStage"`
}

// envelope accepts either a bare peer object (GET lookups) or a
// {"peers": [...], "stats": {...}} listing (POST lookups).
type envelope struct {
	peerJSON
	Peers []peerJSON `json:"peers"`
	Stats *statsJSON `json:"stats"`
}

// Report is the tracker view of the requested peers.
type Report struct {
	Records []peers.Record
	Stats   *peers.Stats
}

// ByID indexes the report records.
func (r *Report) ByID() map[string]peers.Record {
	out := make(map[string]peers.Record, len(r.Records))
	for _, rec := range r.Records {
		out[rec.ID] = rec
	}
	return out
}
