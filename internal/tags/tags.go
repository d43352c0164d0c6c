// Package tags holds the per-request correlation data shared by metrics,
// structured logs and error reports.
package tags

import (
	"log/slog"
	"maps"
	"slices"
)

// Missing is returned by Get for keys that are not present.
const Missing = "None"

// Tags is a pair of string maps. Values in Tags are bounded in cardinality and
// safe to attach to metrics; values in Extra only travel with error reports.
// Empty values are never stored.
//
// A nil *Tags is a valid empty set for all read methods.
type Tags struct {
	tags  map[string]string
	extra map[string]string
}

func New() *Tags {
	return &Tags{
		tags:  make(map[string]string),
		extra: make(map[string]string),
	}
}

// FromMap builds a Tags with the given metric tags, skipping empty values.
func FromMap(m map[string]string) *Tags {
	t := New()
	for k, v := range m {
		t.AddTag(k, v)
	}
	return t
}

// With returns a Tags holding a single tag.
func With(key, value string) *Tags {
	t := New()
	t.AddTag(key, value)
	return t
}

func (t *Tags) AddTag(key, value string) {
	if value == "" {
		return
	}
	t.tags[key] = value
}

func (t *Tags) AddExtra(key, value string) {
	if value == "" {
		return
	}
	t.extra[key] = value
}

// Extend merges other into t; keys present in both take other's value.
func (t *Tags) Extend(other *Tags) {
	if other == nil {
		return
	}
	for k, v := range other.tags {
		t.AddTag(k, v)
	}
	for k, v := range other.extra {
		t.AddExtra(k, v)
	}
}

// Merge returns a new Tags holding t followed by others, later sets winning.
func (t *Tags) Merge(others ...*Tags) *Tags {
	out := t.Clone()
	for _, o := range others {
		out.Extend(o)
	}
	return out
}

func (t *Tags) Clone() *Tags {
	out := New()
	out.Extend(t)
	return out
}

// Get returns the tag or extra value for key, tags first, or Missing.
func (t *Tags) Get(key string) string {
	if v, ok := t.Lookup(key); ok {
		return v
	}
	return Missing
}

func (t *Tags) Lookup(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	if v, ok := t.tags[key]; ok {
		return v, true
	}
	v, ok := t.extra[key]
	return v, ok
}

// Tags returns a copy of the metric tags.
func (t *Tags) Tags() map[string]string {
	if t == nil {
		return map[string]string{}
	}
	return maps.Clone(t.tags)
}

// Extra returns a copy of the report-only extras.
func (t *Tags) Extra() map[string]string {
	if t == nil {
		return map[string]string{}
	}
	return maps.Clone(t.extra)
}

func (t *Tags) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tags) + len(t.extra)
}

// LogValue renders both maps as slog groups with sorted keys.
func (t *Tags) LogValue() slog.Value {
	if t == nil {
		return slog.GroupValue()
	}
	return slog.GroupValue(
		slog.Attr{Key: "tags", Value: groupOf(t.tags)},
		slog.Attr{Key: "extra", Value: groupOf(t.extra)},
	)
}

func groupOf(m map[string]string) slog.Value {
	attrs := make([]slog.Attr, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		attrs = append(attrs, slog.String(k, m[k]))
	}
	return slog.GroupValue(attrs...)
}
