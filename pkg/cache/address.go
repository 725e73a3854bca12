package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/metrics"
)

// Resolver looks up the address for every requested peer ID.
type Resolver interface {
	AddressMap(ctx context.Context, peerIDs []string) (map[string]string, error)
}

type entry struct {
	Date    string            `json:"date"`
	Mapping map[string]string `json:"mapping"`
}

// AddressCache keeps the peer ID -> address mapping for one calendar day.
// The whole file is one entry: any miss recomputes every requested ID.
type AddressCache struct {
	path     string
	resolver Resolver
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*AddressCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *AddressCache) { c.now = now }
}

func NewAddressCache(path string, resolver Resolver, logger *zap.Logger, opts ...Option) *AddressCache {
	c := &AddressCache{path: path, resolver: resolver, logger: logger, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *AddressCache) GetOrRefresh(ctx context.Context, peerIDs []string) (map[string]string, error) {
	now := c.now()
	if e, ok := c.load(); ok && Fresh(e.Date, now) && covers(e.Mapping, peerIDs) {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return e.Mapping, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	mapping, err := c.resolver.AddressMap(ctx, peerIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve addresses: %w", err)
	}
	e := entry{Date: now.Format(DateLayout), Mapping: mapping}
	if err := c.store(e); err != nil {
		// the next cycle resolves again
		c.logger.Warn("address_cache_write_error", zap.String("path", c.path), zap.Error(err))
	} else {
		c.logger.Info("address_cache_refreshed",
			zap.String("date", e.Date),
			zap.Int("peers", len(mapping)),
		)
	}
	return mapping, nil
}

func covers(m map[string]string, ids []string) bool {
	for _, id := range ids {
		if _, ok := m[id]; !ok {
			return false
		}
	}
	return true
}

func (c *AddressCache) load() (entry, bool) {
	var e entry
	b, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("address_cache_read_error", zap.String("path", c.path), zap.Error(err))
		}
		return e, false
	}
	if err := json.Unmarshal(b, &e); err != nil {
		c.logger.Warn("address_cache_corrupt", zap.String("path", c.path), zap.Error(err))
		return e, false
	}
	return e, true
}

// store replaces the cache file via a temp file and rename.
func (c *AddressCache) store(e entry) error {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
