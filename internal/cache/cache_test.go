package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncserver/internal/cache"
	"syncserver/internal/useragent"
)

type countingParser struct {
	calls map[string]int
}

func newCountingParser() *countingParser {
	return &countingParser{calls: make(map[string]int)}
}

func (p *countingParser) parse(raw string) useragent.Info {
	p.calls[raw]++
	return useragent.Info{Raw: raw, Name: "Firefox", BrowserFamily: "Firefox"}
}

func TestNew_ValidSize(t *testing.T) {
	c, err := cache.NewUserAgents(10, useragent.Parse) // 2^10 = 1KB
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()
}

func TestNew_ZeroSize(t *testing.T) {
	c, err := cache.NewUserAgents(0, useragent.Parse) // 2^0 = 1 byte (min)
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()
}

func TestParse_MissCallsParser(t *testing.T) {
	p := newCountingParser()
	c, err := cache.NewUserAgents(20, p.parse)
	require.NoError(t, err)
	defer c.Close()

	info := c.Parse("agent/1.0")

	assert.Equal(t, "agent/1.0", info.Raw)
	assert.Equal(t, "Firefox", info.Name)
	assert.Equal(t, 1, p.calls["agent/1.0"])
}

func TestParse_HitSkipsParser(t *testing.T) {
	p := newCountingParser()
	c, err := cache.NewUserAgents(20, p.parse)
	require.NoError(t, err)
	defer c.Close()

	first := c.Parse("agent/1.0")
	c.Wait()
	second := c.Parse("agent/1.0")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls["agent/1.0"])
}

func TestParse_DistinctKeys(t *testing.T) {
	p := newCountingParser()
	c, err := cache.NewUserAgents(20, p.parse)
	require.NoError(t, err)
	defer c.Close()

	agents := []string{"agent/1", "agent/2", "agent/3"}
	for _, a := range agents {
		c.Parse(a)
	}
	c.Wait()

	for _, a := range agents {
		got := c.Parse(a)
		assert.Equal(t, a, got.Raw)
		assert.Equal(t, 1, p.calls[a], "agent %q parsed more than once", a)
	}
}

func TestStats_AfterOperations(t *testing.T) {
	c, err := cache.NewUserAgents(20, useragent.Parse)
	require.NoError(t, err)
	defer c.Close()

	hits, misses, _ := c.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(0), misses)

	// miss, then hit
	c.Parse("curl/8.0")
	c.Wait()
	c.Parse("curl/8.0")

	hits, misses, ratio := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}
