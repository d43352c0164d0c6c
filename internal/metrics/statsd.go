package metrics

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// StatsdSink ships metrics over UDP using the DogStatsD tag format.
type StatsdSink struct {
	client statsd.ClientInterface
}

func NewStatsdSink(host string, port int, namespace string) (*StatsdSink, error) {
	opts := []statsd.Option{statsd.WithoutTelemetry(), statsd.WithoutClientSideAggregation()}
	if namespace != "" {
		opts = append(opts, statsd.WithNamespace(namespace+"."))
	}
	client, err := statsd.New(fmt.Sprintf("%s:%d", host, port), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}
	return &StatsdSink{client: client}, nil
}

func (s *StatsdSink) Count(name string, value int64, tags map[string]string) error {
	return s.client.Count(name, value, statsdTags(tags), 1)
}

func (s *StatsdSink) Gauge(name string, value float64, tags map[string]string) error {
	return s.client.Gauge(name, value, statsdTags(tags), 1)
}

func (s *StatsdSink) Timing(name string, value time.Duration, tags map[string]string) error {
	return s.client.Timing(name, value, statsdTags(tags), 1)
}

// Close flushes buffered metrics.
func (s *StatsdSink) Close() error {
	return s.client.Close()
}

func statsdTags(tags map[string]string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		out = append(out, k+":"+tags[k])
	}
	return out
}
