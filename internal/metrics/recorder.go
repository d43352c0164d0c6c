package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

type SampleKind string

const (
	KindCount  SampleKind = "count"
	KindGauge  SampleKind = "gauge"
	KindTiming SampleKind = "timing"
)

// Sample is one buffered metric submission.
type Sample struct {
	Time  time.Time
	Kind  SampleKind
	Name  string
	Value float64
	Tags  map[string]string
}

// SampleWriter persists a batch of samples.
type SampleWriter interface {
	WriteSamples(ctx context.Context, batch []Sample) error
}

type RecorderConfig struct {
	BufferSize     int
	FlushThreshold int
	FlushInterval  time.Duration
}

// Recorder is a Sink that buffers samples in memory and flushes them to a
// SampleWriter in batches. Samples are dropped when the buffer is full.
type Recorder struct {
	writer       SampleWriter
	logger       *slog.Logger
	cfg          RecorderConfig
	samples      chan Sample
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	now          func() time.Time
}

func NewRecorder(writer SampleWriter, cfg RecorderConfig, logger *slog.Logger) *Recorder {
	cfg.BufferSize = max(1, cfg.BufferSize)
	cfg.FlushThreshold = max(1, cfg.FlushThreshold)
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Recorder{
		writer:     writer,
		logger:     logger,
		cfg:        cfg,
		samples:    make(chan Sample, cfg.BufferSize),
		shutdownCh: make(chan struct{}),
		now:        time.Now,
	}
}

func (r *Recorder) Count(name string, value int64, tags map[string]string) error {
	return r.record(KindCount, name, float64(value), tags)
}

func (r *Recorder) Gauge(name string, value float64, tags map[string]string) error {
	return r.record(KindGauge, name, value, tags)
}

func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) error {
	return r.record(KindTiming, name, float64(value.Microseconds())/1000.0, tags)
}

func (r *Recorder) record(kind SampleKind, name string, value float64, tags map[string]string) error {
	select {
	case r.samples <- Sample{Time: r.now(), Kind: kind, Name: name, Value: value, Tags: tags}:
		return nil
	default:
		return ErrBufferFull
	}
}

func (r *Recorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.flushSamples(ctx)

	r.logger.Info("metrics recorder started",
		slog.Int("buffer_size", r.cfg.BufferSize),
		slog.Duration("flush_interval", r.cfg.FlushInterval))
}

// Close flushes what is buffered and stops the flush loop.
func (r *Recorder) Close() {
	r.shutdownOnce.Do(func() {
		close(r.shutdownCh)
		r.wg.Wait()
	})
}

func (r *Recorder) flushSamples(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Sample, 0, r.cfg.BufferSize)

	for {
		select {
		case <-ctx.Done():
			r.drainAndFlush(batch)
			return
		case <-r.shutdownCh:
			r.drainAndFlush(batch)
			return
		case m := <-r.samples:
			batch = append(batch, m)
			if len(batch) >= r.cfg.FlushThreshold {
				r.writeBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.writeBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *Recorder) drainAndFlush(batch []Sample) {
	for {
		select {
		case m := <-r.samples:
			batch = append(batch, m)
		default:
			if len(batch) > 0 {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				r.writeBatch(ctx, batch)
				cancel()
			}
			return
		}
	}
}

func (r *Recorder) writeBatch(ctx context.Context, batch []Sample) {
	if len(batch) == 0 {
		return
	}
	if err := r.writer.WriteSamples(ctx, batch); err != nil {
		r.logger.Error("failed to write metrics batch",
			slog.Int("size", len(batch)),
			slog.String("error", err.Error()))
	}
}

// CopyFromer is the subset of pgxpool.Pool used by PgxWriter.
type CopyFromer interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PgxWriter stores samples in the metric_samples table.
type PgxWriter struct {
	db CopyFromer
}

func NewPgxWriter(db CopyFromer) *PgxWriter {
	return &PgxWriter{db: db}
}

func (w *PgxWriter) WriteSamples(ctx context.Context, batch []Sample) error {
	rows := make([][]any, len(batch))
	for i, m := range batch {
		tagsJSON, _ := json.Marshal(m.Tags)
		rows[i] = []any{m.Time, string(m.Kind), m.Name, m.Value, tagsJSON}
	}

	_, err := w.db.CopyFrom(ctx,
		pgx.Identifier{"metric_samples"},
		[]string{"time", "kind", "name", "value", "tags"},
		pgx.CopyFromRows(rows),
	)
	return err
}
