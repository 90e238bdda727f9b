package usagelog

import (
	"log/slog"
	"time"
)

// Option configures a Log (functional options pattern).
type Option func(*Log)

// WithMaxEntries bounds the in-memory log to n entries with oldest-first
// eviction, so long-running processes do not grow without limit.
// n <= 0 (the default) means unbounded.
func WithMaxEntries(n int) Option {
	return func(l *Log) { l.max = n }
}

// WithSink forwards every recorded entry to sink, best-effort and off the
// caller's path. Sink failures are logged, never surfaced to Record callers.
func WithSink(sink Sink) Option {
	return func(l *Log) { l.sink = sink }
}

// WithLogger sets the slog logger for forwarding diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.clock = now
		}
	}
}

// EntryOption sets an optional field on an entry being recorded.
type EntryOption func(*Entry)

// WithStage sets the caller-supplied pipeline stage label (e.g. "chat").
func WithStage(stage string) EntryOption {
	return func(e *Entry) { e.Stage = stage }
}

// WithModel sets the identifier of the consuming model (e.g. "gpt-4").
func WithModel(model string) EntryOption {
	return func(e *Entry) { e.Model = model }
}

// WithSession sets a session id for grouping related invocations.
func WithSession(id string) EntryOption {
	return func(e *Entry) { e.Session = id }
}

// WithLatency sets the caller-measured invocation latency in milliseconds.
func WithLatency(ms float64) EntryOption {
	return func(e *Entry) { e.LatencyMS = ms }
}

// WithSuccess overrides the success flag (default true).
func WithSuccess(ok bool) EntryOption {
	return func(e *Entry) { e.Success = ok }
}

// WithMetadata merges arbitrary caller metadata into the entry. Values are
// normalized to string/float64/bool on record; unknown kinds are stored as
// their string form.
func WithMetadata(meta map[string]any) EntryOption {
	return func(e *Entry) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any, len(meta))
		}
		for k, v := range meta {
			e.Metadata[k] = v
		}
	}
}

// Filter restricts Recent results.
type Filter func(Entry) bool

// ByKey keeps entries for one prompt key.
func ByKey(key string) Filter {
	return func(e Entry) bool { return e.Key == key }
}

// ByStage keeps entries for one stage label.
func ByStage(stage string) Filter {
	return func(e Entry) bool { return e.Stage == stage }
}

// BySession keeps entries for one session id.
func BySession(id string) Filter {
	return func(e Entry) bool { return e.Session == id }
}

func matches(e Entry, filters []Filter) bool {
	for _, f := range filters {
		if !f(e) {
			return false
		}
	}
	return true
}
