package metrics

import (
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusSink keeps one vector per metric name. The label set of a vector
// is fixed by the first sample seen for that name; later samples are
// projected onto it, missing labels reported as empty.
type PrometheusSink struct {
	namespace string
	registry  *prometheus.Registry

	mu       sync.Mutex
	counters map[string]*promVec[*prometheus.CounterVec]
	gauges   map[string]*promVec[*prometheus.GaugeVec]
	timings  map[string]*promVec[*prometheus.HistogramVec]
}

type promVec[V any] struct {
	vec  V
	keys []string
}

func NewPrometheusSink(namespace string, registry *prometheus.Registry) *PrometheusSink {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &PrometheusSink{
		namespace: sanitize(namespace),
		registry:  registry,
		counters:  make(map[string]*promVec[*prometheus.CounterVec]),
		gauges:    make(map[string]*promVec[*prometheus.GaugeVec]),
		timings:   make(map[string]*promVec[*prometheus.HistogramVec]),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *PrometheusSink) Count(name string, value int64, tags map[string]string) error {
	s.mu.Lock()
	v, err := vecFor(s, s.counters, name, tags, func(opts prometheus.Opts, labels []string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts(opts), labels)
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	c, err := v.vec.GetMetricWithLabelValues(v.values(tags)...)
	if err != nil {
		return err
	}
	c.Add(float64(value))
	return nil
}

func (s *PrometheusSink) Gauge(name string, value float64, tags map[string]string) error {
	s.mu.Lock()
	v, err := vecFor(s, s.gauges, name, tags, func(opts prometheus.Opts, labels []string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts(opts), labels)
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	g, err := v.vec.GetMetricWithLabelValues(v.values(tags)...)
	if err != nil {
		return err
	}
	g.Set(value)
	return nil
}

func (s *PrometheusSink) Timing(name string, value time.Duration, tags map[string]string) error {
	s.mu.Lock()
	v, err := vecFor(s, s.timings, name+"_seconds", tags, func(opts prometheus.Opts, labels []string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      opts.Name,
			Help:      opts.Help,
			Buckets:   prometheus.DefBuckets,
		}, labels)
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	h, err := v.vec.GetMetricWithLabelValues(v.values(tags)...)
	if err != nil {
		return err
	}
	h.Observe(value.Seconds())
	return nil
}

func vecFor[V prometheus.Collector](
	s *PrometheusSink,
	vecs map[string]*promVec[V],
	name string,
	tags map[string]string,
	build func(prometheus.Opts, []string) V,
) (*promVec[V], error) {
	if v, ok := vecs[name]; ok {
		return v, nil
	}

	keys := slices.Sorted(maps.Keys(tags))
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = sanitize(k)
	}

	vec := build(prometheus.Opts{
		Namespace: s.namespace,
		Name:      sanitize(name),
		Help:      name,
	}, labels)
	if err := s.registry.Register(vec); err != nil {
		return nil, err
	}

	v := &promVec[V]{vec: vec, keys: keys}
	vecs[name] = v
	return v, nil
}

func (v *promVec[V]) values(tags map[string]string) []string {
	out := make([]string, len(v.keys))
	for i, k := range v.keys {
		out[i] = tags[k]
	}
	return out
}

var nameReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")

func sanitize(name string) string {
	return nameReplacer.Replace(name)
}
