package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingResolver struct {
	calls int
	err   error
}

func (r *countingResolver) AddressMap(_ context.Context, ids []string) (map[string]string, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := map[string]string{}
	for _, id := range ids {
		out[id] = "0x" + id
	}
	return out, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newCache(t *testing.T, r Resolver, c *clock) (*AddressCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peer_cache.json")
	return NewAddressCache(path, r, zap.NewNop(), WithClock(c.now)), path
}

func TestGetOrRefresh_SameDayCallsOnce(t *testing.T) {
	res := &countingResolver{}
	clk := &clock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)}
	c, _ := newCache(t, res, clk)
	ctx := context.Background()

	first, err := c.GetOrRefresh(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	clk.t = clk.t.Add(14 * time.Hour)
	second, err := c.GetOrRefresh(ctx, []string{"p1", "p2"})
	require.NoError(t, err)

	require.Equal(t, 1, res.calls)
	require.Equal(t, first, second)
}

func TestGetOrRefresh_NewDayRecomputes(t *testing.T) {
	res := &countingResolver{}
	clk := &clock{t: time.Date(2025, 6, 1, 23, 59, 0, 0, time.Local)}
	c, path := newCache(t, res, clk)
	ctx := context.Background()

	_, err := c.GetOrRefresh(ctx, []string{"p1"})
	require.NoError(t, err)
	clk.t = clk.t.Add(2 * time.Minute)
	_, err = c.GetOrRefresh(ctx, []string{"p1"})
	require.NoError(t, err)
	require.Equal(t, 2, res.calls)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var e entry
	require.NoError(t, json.Unmarshal(b, &e))
	require.Equal(t, "2025-06-02", e.Date)
	require.Equal(t, map[string]string{"p1": "0xp1"}, e.Mapping)
}

func TestGetOrRefresh_PartialMissRecomputesAll(t *testing.T) {
	res := &countingResolver{}
	clk := &clock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)}
	c, _ := newCache(t, res, clk)
	ctx := context.Background()

	_, err := c.GetOrRefresh(ctx, []string{"p1"})
	require.NoError(t, err)
	got, err := c.GetOrRefresh(ctx, []string{"p1", "p2"})
	require.NoError(t, err)

	require.Equal(t, 2, res.calls)
	require.Equal(t, map[string]string{"p1": "0xp1", "p2": "0xp2"}, got)
}

func TestGetOrRefresh_CorruptFileIsMiss(t *testing.T) {
	res := &countingResolver{}
	clk := &clock{t: time.Now()}
	c, path := newCache(t, res, clk)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := c.GetOrRefresh(context.Background(), []string{"p1"})
	require.NoError(t, err)
	require.Equal(t, 1, res.calls)
}

func TestGetOrRefresh_ResolverError(t *testing.T) {
	res := &countingResolver{err: errors.New("rpc down")}
	c, path := newCache(t, res, &clock{t: time.Now()})

	_, err := c.GetOrRefresh(context.Background(), []string{"p1"})
	require.ErrorContains(t, err, "rpc down")
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestFresh(t *testing.T) {
	loc := time.FixedZone("UTC+5:30", 330*60)
	now := time.Date(2025, 6, 1, 0, 30, 0, 0, loc)

	require.True(t, Fresh("2025-06-01", now))
	require.False(t, Fresh("2025-05-31", now))
	require.False(t, Fresh("2025-06-02", now))
	require.False(t, Fresh("garbage", now))
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), NextMidnight(now))
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, loc), StartOfDay(now))
}
