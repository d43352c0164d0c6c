package tags

import (
	"net/http"

	"syncserver/internal/useragent"
)

// Seed tag keys.
const (
	KeyUAName          = "ua.name"
	KeyUABrowserFamily = "ua.browser.family"
	KeyUABrowserVer    = "ua.browser.ver"
	KeyUAOSFamily      = "ua.os.family"
	KeyUAOSVer         = "ua.os.ver"
	KeyMethod          = "uri.method"

	ExtraUA        = "ua"
	ExtraPath      = "uri.path"
	ExtraRequestID = "request_id"
)

// FromRequest seeds a Tags from the request line and User-Agent header.
// A nil parse falls back to useragent.Parse.
func FromRequest(r *http.Request, parse func(string) useragent.Info) *Tags {
	if parse == nil {
		parse = useragent.Parse
	}

	t := New()
	if raw := r.UserAgent(); raw != "" {
		info := parse(raw)
		t.AddTag(KeyUAOSFamily, info.OSFamily)
		t.AddTag(KeyUABrowserFamily, info.BrowserFamily)
		t.AddTag(KeyUAName, info.Name)
		t.AddTag(KeyUAOSVer, info.OSVersion)
		t.AddTag(KeyUABrowserVer, info.BrowserVersion)
		t.AddExtra(ExtraUA, raw)
	}
	t.AddTag(KeyMethod, r.Method)
	if r.URL != nil {
		t.AddExtra(ExtraPath, r.URL.RequestURI())
	}
	return t
}
