// Package useragent turns User-Agent headers into low-cardinality values
// suitable for metric tags.
package useragent

import (
	"regexp"
	"strconv"

	ua "github.com/mileusna/useragent"
)

const other = "Other"

// Info is the parsed form of a User-Agent header. Family fields are bucketed
// into a small fixed set; Name and versions are passed through from the parser.
type Info struct {
	Raw            string
	Name           string
	BrowserFamily  string
	BrowserVersion string
	OSFamily       string
	OSVersion      string
}

var (
	browserFamilies = map[string]struct{}{
		"Firefox": {}, "Chrome": {}, "Safari": {}, "Edge": {}, "Opera": {},
	}
	osFamilies = map[string]struct{}{
		"Windows": {}, "macOS": {}, "iOS": {}, "Android": {}, "Linux": {},
	}
)

// Parse never fails; unknown agents produce empty fields.
func Parse(raw string) Info {
	parsed := ua.Parse(raw)
	return Info{
		Raw:            raw,
		Name:           parsed.Name,
		BrowserFamily:  family(parsed.Name, browserFamilies),
		BrowserVersion: parsed.Version,
		OSFamily:       family(parsed.OS, osFamilies),
		OSVersion:      parsed.OSVersion,
	}
}

func family(name string, known map[string]struct{}) string {
	if name == "" {
		return ""
	}
	if _, ok := known[name]; ok {
		return name
	}
	return other
}

// Firefox for iOS builds before 20 crash on some response headers.
var legacyIOSSync = regexp.MustCompile(`^Firefox-iOS-Sync/(?P<major>[0-9]+)\.[.0-9]+b.*\s\(.+;\siPhone\sOS\s.+\)\s\(.*\)$`)

// SafeIOSMajor is the first Firefox-iOS-Sync major version that handles
// ordinary responses.
const SafeIOSMajor = 20

// IsLegacyIOSSync reports whether raw identifies a Firefox-iOS-Sync client
// older than SafeIOSMajor.
func IsLegacyIOSSync(raw string) bool {
	m := legacyIOSSync.FindStringSubmatch(raw)
	if m == nil {
		return false
	}
	major, err := strconv.Atoi(m[legacyIOSSync.SubexpIndex("major")])
	if err != nil {
		major = SafeIOSMajor
	}
	return major > 0 && major < SafeIOSMajor
}
