package tags_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncserver/internal/tags"
	"syncserver/internal/useragent"
)

func TestAddTag_SkipsEmpty(t *testing.T) {
	ts := tags.New()
	ts.AddTag("a", "")
	ts.AddExtra("b", "")

	assert.Equal(t, 0, ts.Len())
	assert.Equal(t, tags.Missing, ts.Get("a"))
}

func TestFromMap_SkipsEmpty(t *testing.T) {
	ts := tags.FromMap(map[string]string{"a": "1", "b": ""})

	assert.Equal(t, map[string]string{"a": "1"}, ts.Tags())
}

func TestExtend_RightPrecedence(t *testing.T) {
	left := tags.New()
	left.AddTag("k", "left")
	left.AddTag("only_left", "x")
	left.AddExtra("e", "left")

	right := tags.New()
	right.AddTag("k", "right")
	right.AddExtra("e", "right")
	right.AddExtra("only_right", "y")

	left.Extend(right)

	assert.Equal(t, map[string]string{"k": "right", "only_left": "x"}, left.Tags())
	assert.Equal(t, map[string]string{"e": "right", "only_right": "y"}, left.Extra())
}

func TestExtend_Nil(t *testing.T) {
	ts := tags.With("k", "v")
	ts.Extend(nil)

	assert.Equal(t, "v", ts.Get("k"))
}

func TestMerge_NeverStoresEmpty(t *testing.T) {
	sets := []map[string]string{
		{"a": "", "b": "1"},
		{"b": "", "c": ""},
		{"d": "2"},
	}

	merged := tags.New()
	for _, m := range sets {
		merged = merged.Merge(tags.FromMap(m))
	}

	for k, v := range merged.Tags() {
		assert.NotEmpty(t, v, "key %q stored empty", k)
	}
	assert.Equal(t, map[string]string{"b": "1", "d": "2"}, merged.Tags())
}

func TestMerge_DoesNotMutateReceiver(t *testing.T) {
	base := tags.With("k", "base")
	merged := base.Merge(tags.With("k", "other"))

	assert.Equal(t, "base", base.Get("k"))
	assert.Equal(t, "other", merged.Get("k"))
}

func TestTags_ReturnsCopy(t *testing.T) {
	ts := tags.With("k", "v")
	m := ts.Tags()
	m["k"] = "changed"

	assert.Equal(t, "v", ts.Get("k"))
}

func TestNilTags_Reads(t *testing.T) {
	var ts *tags.Tags

	assert.Equal(t, tags.Missing, ts.Get("k"))
	assert.Empty(t, ts.Tags())
	assert.Empty(t, ts.Extra())
	assert.Equal(t, 0, ts.Len())
	assert.Equal(t, 0, ts.Clone().Len())
}

func TestLogValue(t *testing.T) {
	ts := tags.With("k", "v")
	ts.AddExtra("e", "x")

	v := ts.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())
	assert.Len(t, v.Group(), 2)
}

func TestFromRequest_Firefox(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/1.5/42/storage/meta/global", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:72.0) Gecko/20100101 Firefox/72.0")

	parse := func(string) useragent.Info {
		return useragent.Info{
			Name:           "Firefox",
			BrowserFamily:  "Firefox",
			BrowserVersion: "72.0",
			OSFamily:       "Windows",
			OSVersion:      "NT 10.0",
		}
	}

	ts := tags.FromRequest(req, parse)

	assert.Equal(t, map[string]string{
		"ua.os.ver":         "NT 10.0",
		"ua.os.family":      "Windows",
		"ua.browser.ver":    "72.0",
		"ua.name":           "Firefox",
		"ua.browser.family": "Firefox",
		"uri.method":        "GET",
	}, ts.Tags())
	assert.Equal(t, "/1.5/42/storage/meta/global", ts.Extra()[tags.ExtraPath])
	assert.NotEmpty(t, ts.Extra()[tags.ExtraUA])
}

func TestFromRequest_NoEmptyTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/1.5/42/storage/meta/global", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (curl) Gecko/20100101 curl")

	ts := tags.FromRequest(req, nil)

	for k, v := range ts.Tags() {
		assert.NotEmpty(t, v, "tag %q is empty", k)
	}
	assert.Equal(t, "GET", ts.Get(tags.KeyMethod))
}

func TestFromRequest_NoUserAgent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Del("User-Agent")

	ts := tags.FromRequest(req, nil)

	assert.Equal(t, map[string]string{"uri.method": "POST"}, ts.Tags())
}
