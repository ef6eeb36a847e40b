package recordstore

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"doubles/internal/adapters/http/perf"
	"doubles/internal/domain/session"
)

// DefaultSlowCallMs is the default threshold for slow remote-call warnings.
// Remote store round trips are expected to take hundreds of milliseconds,
// so the threshold sits well above what a local query would warrant.
const DefaultSlowCallMs = 1500

var slowCallMs int64
var slowCallOnce sync.Once

// getSlowCallThreshold returns the slow-call threshold in milliseconds.
func getSlowCallThreshold() float64 {
	slowCallOnce.Do(func() {
		ms := DefaultSlowCallMs
		if v := os.Getenv("DOUBLES_SLOW_CALL_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				ms = n
			}
		}
		atomic.StoreInt64(&slowCallMs, int64(ms))
	})
	return float64(atomic.LoadInt64(&slowCallMs))
}

// TimedStore wraps a Store to log slow remote calls and record timings to a
// collector. Satisfies Store, so it can be passed to anything that takes one.
type TimedStore struct {
	store     Store
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedStore satisfies Store.
var _ Store = (*TimedStore)(nil)

// NewTimedStore wraps a store with timing instrumentation.
func NewTimedStore(store Store, collector *perf.Collector) *TimedStore {
	return &TimedStore{
		store:     store,
		collector: collector,
		threshold: getSlowCallThreshold(),
	}
}

// observe logs and records one completed call.
func (t *TimedStore) observe(name string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if durationMs >= t.threshold {
		slog.Warn("slow_store_call", "call", name, "duration_ms", durationMs)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindStoreCall,
			Path:       name,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

func (t *TimedStore) ListAll(ctx context.Context) ([]session.Session, error) {
	defer t.observe("store.ListAll", time.Now())
	return t.store.ListAll(ctx)
}

func (t *TimedStore) Create(ctx context.Context, draft session.Draft) (string, error) {
	defer t.observe("store.Create", time.Now())
	return t.store.Create(ctx, draft)
}

func (t *TimedStore) Update(ctx context.Context, id string, fields Fields) error {
	defer t.observe("store.Update", time.Now())
	return t.store.Update(ctx, id, fields)
}

func (t *TimedStore) Delete(ctx context.Context, id string) error {
	defer t.observe("store.Delete", time.Now())
	return t.store.Delete(ctx, id)
}
