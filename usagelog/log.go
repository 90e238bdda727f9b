package usagelog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skosovsky/unversion/internal/cast"
)

// ErrEmptyKey is returned by Record for an absent prompt key.
// The one structural validation the log performs; everything else is lenient.
var ErrEmptyKey = errors.New("usagelog: prompt key must not be empty")

// Entry is one recorded prompt invocation. Immutable once appended.
// The key is not validated against any prompt store; logging an unknown key
// is permitted and simply uncorrelated.
type Entry struct {
	ID        string         `json:"id"`
	Key       string         `json:"key"`
	Timestamp time.Time      `json:"timestamp"`
	Stage     string         `json:"stage,omitempty"`
	Model     string         `json:"model,omitempty"`
	Session   string         `json:"session_id,omitempty"`
	LatencyMS float64        `json:"latency_ms,omitempty"` // 0 means not recorded
	Success   bool           `json:"success"`
	Metadata  map[string]any `json:"metadata,omitempty"` // string, float64, or bool values only
}

// Stats aggregates the entries recorded for one key.
// A key with no entries yields zeroed stats, never an error.
type Stats struct {
	Key            string
	TotalUsage     int
	SuccessCount   int
	AvgLatencyMS   float64 // mean over entries with a latency; 0 when LatencySamples is 0
	LatencySamples int
	LastUsed       time.Time // zero when the key was never used
	ByStage        map[string]int
}

// KeyCount pairs a prompt key with its usage count, for Top.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Log is an in-process, append-only usage log. Safe for concurrent use.
// Optionally bounded (WithMaxEntries) and forwarded to a Sink (WithSink).
type Log struct {
	logger *slog.Logger
	max    int
	clock  func() time.Time
	sink   Sink

	mu      sync.Mutex
	entries []Entry
	closed  bool

	queue chan Entry
	done  chan struct{}
}

// New creates a Log. When a Sink is configured, a forwarding goroutine is
// started; call Close to stop it and flush queued entries.
func New(opts ...Option) *Log {
	l := &Log{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.sink != nil {
		l.queue = make(chan Entry, forwardQueueSize)
		l.done = make(chan struct{})
		go l.forward()
	}
	return l
}

// Record appends an entry for key with the log-assigned timestamp and the
// supplied optional fields. Success defaults to true. Metadata values are
// normalized to string/float64/bool; anything else is stored as its string
// form rather than rejected. The only error is ErrEmptyKey.
// Forwarding to the Sink happens off this path and never delays the caller.
func (l *Log) Record(key string, opts ...EntryOption) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}
	e := Entry{
		ID:        uuid.NewString(),
		Key:       key,
		Timestamp: l.clock(),
		Success:   true,
	}
	for _, opt := range opts {
		opt(&e)
	}
	e.Metadata = normalizeMetadata(e.Metadata)

	l.mu.Lock()
	l.entries = append(l.entries, e)
	if l.max > 0 && len(l.entries) > l.max {
		// oldest-first eviction; shift instead of reslice so the backing
		// array does not pin evicted entries
		n := copy(l.entries, l.entries[len(l.entries)-l.max:])
		l.entries = l.entries[:n]
	}
	// enqueue under the lock so the send cannot race a Close of the queue;
	// the send is non-blocking either way
	if l.queue != nil && !l.closed {
		select {
		case l.queue <- e:
		default:
			l.logger.Debug("forward queue full, dropping usage entry", "key", e.Key)
		}
	}
	l.mu.Unlock()
	return e, nil
}

// Stats aggregates all entries recorded for key.
func (l *Log) Stats(key string) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := Stats{Key: key, ByStage: make(map[string]int)}
	var latencySum float64
	for _, e := range l.entries {
		if e.Key != key {
			continue
		}
		st.TotalUsage++
		if e.Success {
			st.SuccessCount++
		}
		if e.LatencyMS > 0 {
			latencySum += e.LatencyMS
			st.LatencySamples++
		}
		if e.Stage != "" {
			st.ByStage[e.Stage]++
		}
		if e.Timestamp.After(st.LastUsed) {
			st.LastUsed = e.Timestamp
		}
	}
	if st.LatencySamples > 0 {
		st.AvgLatencyMS = latencySum / float64(st.LatencySamples)
	}
	return st
}

// Recent returns up to limit entries, most recent first, optionally
// restricted by filters.
func (l *Log) Recent(limit int, filters ...Filter) []Entry {
	if limit <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, min(limit, len(l.entries)))
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		if matches(e, filters) {
			out = append(out, e)
		}
	}
	return out
}

// Top returns up to limit keys by usage count, descending, ties broken by
// key ascending for determinism.
func (l *Log) Top(limit int) []KeyCount {
	if limit <= 0 {
		return nil
	}
	l.mu.Lock()
	counts := make(map[string]int)
	for _, e := range l.entries {
		counts[e.Key]++
	}
	l.mu.Unlock()
	out := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close stops the forwarding goroutine after draining queued entries.
// Safe to call multiple times; Record keeps working afterwards, entries are
// just no longer forwarded.
func (l *Log) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	if l.queue != nil {
		close(l.queue)
		<-l.done
	}
	return nil
}

// normalizeMetadata coerces metadata values to the closed set of primitive
// kinds (string, float64, bool). Unsupported kinds become their string form;
// malformed metadata never causes Record to fail.
func normalizeMetadata(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		switch x := v.(type) {
		case string:
			out[k] = x
		case bool:
			out[k] = x
		default:
			if f, ok := cast.ToFloat64(v); ok {
				out[k] = f
			} else {
				out[k] = fmt.Sprint(v)
			}
		}
	}
	return out
}
