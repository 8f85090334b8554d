package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"physiobill/pkg/domain"
)

var errDiskFull = errors.New("disk full")

// recordingPersister keeps the last saved snapshot and can be told to fail.
type recordingPersister struct {
	mu      sync.Mutex
	loaded  domain.Snapshot
	saved   []domain.Snapshot
	failErr error
	loadErr error
}

func (r *recordingPersister) Load(context.Context) (domain.Snapshot, error) {
	if r.loadErr != nil {
		return domain.Snapshot{}, r.loadErr
	}
	return r.loaded.Clone(), nil
}

func (r *recordingPersister) Save(_ context.Context, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.saved = append(r.saved, snap.Clone())
	return nil
}

func (r *recordingPersister) saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *recordingPersister) last() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[len(r.saved)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 16, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%04d", n)
	}
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
	c.mu.Unlock()
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) record(level, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, level+":"+msg)
	l.mu.Unlock()
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.record("error", msg) }

func (l *captureLogger) has(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e == entry {
			return true
		}
	}
	return false
}

type fixture struct {
	store   *Store
	persist *recordingPersister
	clock   *fakeClock
	metrics *captureMetricsRecorder
	logger  *captureLogger
}

func newFixture() fixture {
	p := &recordingPersister{}
	clock := newFakeClock()
	metrics := &captureMetricsRecorder{}
	logger := &captureLogger{}
	s := NewStore(p,
		WithClock(clock.Now),
		WithIDGenerator(sequentialIDs()),
		WithMetrics(metrics),
		WithLogger(logger),
	)
	return fixture{store: s, persist: p, clock: clock, metrics: metrics, logger: logger}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
