package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/metrics"
	"github.com/shuliakovsky/peer-monitor/pkg/peers"
	"github.com/shuliakovsky/peer-monitor/pkg/transport"
)

const maxBody = 1 << 20

type Options struct {
	BaseURL    string
	Path       string
	Method     string // GET or POST
	QueryParam string
	APIKey     string
	AuthHeader string
}

type Client struct {
	opts   Options
	http   *http.Client
	logger *zap.Logger
}

func New(opts Options, hc *http.Client, logger *zap.Logger) *Client {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	opts.Method = strings.ToUpper(opts.Method)
	if opts.QueryParam == "" {
		opts.QueryParam = "name"
	}
	if opts.AuthHeader == "" {
		opts.AuthHeader = "Authorization"
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{opts: opts, http: hc, logger: logger}
}

// Fetch returns one record per requested peer, in request order. Fields the
// tracker leaves out keep their zero defaults.
func (c *Client) Fetch(ctx context.Context, peerIDs []string) (*Report, error) {
	var (
		rep *Report
		err error
	)
	if c.opts.Method == http.MethodPost {
		rep, err = c.fetchBatch(ctx, peerIDs)
	} else {
		rep, err = c.fetchEach(ctx, peerIDs)
	}
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("tracker").Inc()
		return nil, err
	}
	return rep, nil
}

func (c *Client) fetchEach(ctx context.Context, peerIDs []string) (*Report, error) {
	rep := &Report{}
	for _, id := range peerIDs {
		u := c.endpoint() + "?" + url.Values{c.opts.QueryParam: {id}}.Encode()
		env, err := c.do(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", id, err)
		}
		p := env.peerJSON
		if len(env.Peers) > 0 {
			p = env.Peers[0]
		}
		rec, err := toRecord(id, p)
		if err != nil {
			return nil, err
		}
		rep.Records = append(rep.Records, rec)
		if env.Stats != nil && rep.Stats == nil {
			if rep.Stats, err = toStats(env.Stats); err != nil {
				return nil, err
			}
		}
	}
	return rep, nil
}

func (c *Client) fetchBatch(ctx context.Context, peerIDs []string) (*Report, error) {
	body, err := json.Marshal(map[string]any{"peerIds": peerIDs})
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, c.endpoint(), body)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]peerJSON, len(env.Peers))
	for _, p := range env.Peers {
		byID[p.PeerID] = p
	}
	rep := &Report{}
	for _, id := range peerIDs {
		rec, err := toRecord(id, byID[id])
		if err != nil {
			return nil, err
		}
		rep.Records = append(rep.Records, rec)
	}
	if env.Stats != nil {
		if rep.Stats, err = toStats(env.Stats); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func (c *Client) endpoint() string {
	u := strings.TrimRight(c.opts.BaseURL, "/")
	if c.opts.Path != "" {
		u += "/" + strings.TrimLeft(c.opts.Path, "/")
	}
	return u
}

func (c *Client) headers(withBody bool) map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if withBody {
		h["Content-Type"] = "application/json"
	}
	if c.opts.APIKey != "" {
		if strings.EqualFold(c.opts.AuthHeader, "Authorization") {
			h[c.opts.AuthHeader] = "Bearer " + c.opts.APIKey
		} else {
			h[c.opts.AuthHeader] = c.opts.APIKey
		}
	}
	return h
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) (*envelope, error) {
	hdr := c.headers(body != nil)
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	start := transport.LogRequest(c.logger, "tracker", method, u, hdr, body)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("tracker_request_error", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("tracker request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("tracker read body: %w", err)
	}
	transport.LogResponse(c.logger, "tracker", resp.StatusCode, raw, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("tracker_bad_status", zap.Int("status", resp.StatusCode))
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ShapeError{Reason: "body is not a JSON object", Err: err}
	}
	return &env, nil
}

func toRecord(id string, p peerJSON) (peers.Record, error) {
	reward, err := parseNumber("reward", p.Reward)
	if err != nil {
		return peers.Record{}, err
	}
	wins, err := parseNumber("wins", p.Wins)
	if err != nil {
		return peers.Record{}, err
	}
	return peers.Record{
		ID:       id,
		Name:     p.PeerName,
		Reward:   reward,
		Wins:     wins,
		Rank:     p.Rank,
		Votes:    p.Votes,
		Online:   p.Online,
		LastSeen: p.LastSeen,
	}, nil
}

func toStats(s *statsJSON) (*peers.Stats, error) {
	out := &peers.Stats{
		TotalPeers:   s.TotalPeers,
		OnlinePeers:  s.OnlinePeers,
		CurrentRound: s.CurrentRound,
		CurrentStage: s.CurrentStage,
	}
	if s.TotalRewards != "" {
		v, err := parseNumber("totalRewards", s.TotalRewards)
		if err != nil {
			return nil, err
		}
		out.TotalRewards = v
	}
	return out, nil
}

// parseNumber reads integers of any size; fractional values are truncated.
// An absent field is zero.
func parseNumber(field string, n json.Number) (*big.Int, error) {
	if n == "" {
		return new(big.Int), nil
	}
	if v, ok := new(big.Int).SetString(string(n), 10); ok {
		return v, nil
	}
	f, ok := new(big.Float).SetString(string(n))
	if !ok {
		return nil, &ShapeError{Reason: fmt.Sprintf("%s %q is not a number", field, n)}
	}
	v, _ := f.Int(nil)
	return v, nil
}
