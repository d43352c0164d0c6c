package metrics_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncserver/internal/metrics"
)

type batchWriter struct {
	mu      sync.Mutex
	batches [][]metrics.Sample
	err     error
}

func (w *batchWriter) WriteSamples(_ context.Context, batch []metrics.Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, append([]metrics.Sample(nil), batch...))
	return w.err
}

func (w *batchWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func newTestRecorder(w metrics.SampleWriter, cfg metrics.RecorderConfig) *metrics.Recorder {
	return metrics.NewRecorder(w, cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestRecorder_FlushOnThreshold(t *testing.T) {
	w := &batchWriter{}
	r := newTestRecorder(w, metrics.RecorderConfig{BufferSize: 10, FlushThreshold: 2, FlushInterval: time.Hour})
	r.Start(context.Background())
	defer r.Close()

	require.NoError(t, r.Count("a", 1, nil))
	require.NoError(t, r.Gauge("b", 2, nil))

	assert.Eventually(t, func() bool { return w.total() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRecorder_FlushOnClose(t *testing.T) {
	w := &batchWriter{}
	r := newTestRecorder(w, metrics.RecorderConfig{BufferSize: 10, FlushThreshold: 100, FlushInterval: time.Hour})
	r.Start(context.Background())

	require.NoError(t, r.Timing("t", 1500*time.Microsecond, map[string]string{"k": "v"}))
	r.Close()
	r.Close()

	require.Equal(t, 1, w.total())
	s := w.batches[0][0]
	assert.Equal(t, metrics.KindTiming, s.Kind)
	assert.Equal(t, 1.5, s.Value)
	assert.Equal(t, map[string]string{"k": "v"}, s.Tags)
}

func TestRecorder_BufferFull(t *testing.T) {
	w := &batchWriter{}
	r := newTestRecorder(w, metrics.RecorderConfig{BufferSize: 1, FlushThreshold: 1, FlushInterval: time.Hour})

	require.NoError(t, r.Count("a", 1, nil))
	assert.ErrorIs(t, r.Count("b", 1, nil), metrics.ErrBufferFull)
}

func TestRecorder_WriteErrorKeepsRunning(t *testing.T) {
	w := &batchWriter{err: errors.New("copy failed")}
	r := newTestRecorder(w, metrics.RecorderConfig{BufferSize: 10, FlushThreshold: 1, FlushInterval: time.Hour})
	r.Start(context.Background())
	defer r.Close()

	require.NoError(t, r.Count("a", 1, nil))
	assert.Eventually(t, func() bool { return w.total() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, r.Count("b", 1, nil))
	assert.Eventually(t, func() bool { return w.total() == 2 }, time.Second, 5*time.Millisecond)
}

type copyFromer struct {
	table   pgx.Identifier
	columns []string
	rows    int
}

func (c *copyFromer) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	c.table = table
	c.columns = columns
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return 0, err
		}
		c.rows++
	}
	return int64(c.rows), src.Err()
}

func TestPgxWriter(t *testing.T) {
	db := &copyFromer{}
	w := metrics.NewPgxWriter(db)

	err := w.WriteSamples(context.Background(), []metrics.Sample{
		{Time: time.Now(), Kind: metrics.KindCount, Name: "a", Value: 1},
		{Time: time.Now(), Kind: metrics.KindGauge, Name: "b", Value: 2, Tags: map[string]string{"k": "v"}},
	})

	require.NoError(t, err)
	assert.Equal(t, pgx.Identifier{"metric_samples"}, db.table)
	assert.Equal(t, []string{"time", "kind", "name", "value", "tags"}, db.columns)
	assert.Equal(t, 2, db.rows)
}
