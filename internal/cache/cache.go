package cache

import (
	"github.com/dgraph-io/ristretto"

	"syncserver/internal/useragent"
)

// UserAgents memoizes User-Agent parsing. Clients send a handful of distinct
// headers, so most requests hit.
type UserAgents struct {
	cache *ristretto.Cache
	parse func(string) useragent.Info
}

func NewUserAgents(maxSizePow2 int, parse func(string) useragent.Info) (*UserAgents, error) {
	maxCost := max(1, int64(1)<<maxSizePow2)
	numCounters := max(1, maxCost/100) // ~100 bytes per entry estimate

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &UserAgents{cache: cache, parse: parse}, nil
}

func (c *UserAgents) Parse(raw string) useragent.Info {
	if val, found := c.cache.Get(raw); found {
		return val.(useragent.Info)
	}
	info := c.parse(raw)
	c.cache.Set(raw, info, cost(info))
	return info
}

// Wait blocks until pending sets are applied.
func (c *UserAgents) Wait() {
	c.cache.Wait()
}

func (c *UserAgents) Close() {
	c.cache.Close()
}

func (c *UserAgents) Stats() (hits, misses uint64, ratio float64) {
	metrics := c.cache.Metrics
	hits = metrics.Hits()
	misses = metrics.Misses()
	ratio = metrics.Ratio()
	return
}

func cost(info useragent.Info) int64 {
	return int64(len(info.Raw) + len(info.Name) + len(info.BrowserFamily) +
		len(info.BrowserVersion) + len(info.OSFamily) + len(info.OSVersion))
}
