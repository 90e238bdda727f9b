package usagelog

import (
	"context"
	"time"
)

// forwardQueueSize bounds the in-flight forwarding queue. When the sink
// cannot keep up the oldest waiting entry is not blocked on; new entries
// are dropped instead, keeping Record non-blocking.
const forwardQueueSize = 256

// forwardTimeout caps a single sink write.
const forwardTimeout = 5 * time.Second

// Sink receives recorded entries, typically for external analytics.
// Implementations must be safe for calls from a single forwarding goroutine.
// Write errors are logged by the Log and never reach Record callers;
// forwarding is strictly additive and not required for correctness.
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// forward drains the queue until Close. Runs in its own goroutine.
func (l *Log) forward() {
	defer close(l.done)
	for e := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
		if err := l.sink.Write(ctx, e); err != nil {
			l.logger.Warn("usage sink write failed", "key", e.Key, "error", err)
		}
		cancel()
	}
}
