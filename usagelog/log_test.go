package usagelog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRecord_AssignsIDTimestampAndDefaults(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := New(WithClock(func() time.Time { return now }))

	e, err := l.Record("greeting", WithStage("chat"), WithModel("gpt-4"))
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "greeting", e.Key)
	assert.Equal(t, "chat", e.Stage)
	assert.Equal(t, "gpt-4", e.Model)
	assert.True(t, e.Success)
}

func TestRecord_EmptyKey(t *testing.T) {
	t.Parallel()
	l := New()
	_, err := l.Record("")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.Equal(t, 0, l.Len())
}

func TestRecord_MetadataNormalized(t *testing.T) {
	t.Parallel()
	l := New()
	e, err := l.Record("x", WithMetadata(map[string]any{
		"str":   "s",
		"int":   7,
		"float": 1.5,
		"flag":  true,
		"odd":   []string{"a", "b"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "s", e.Metadata["str"])
	assert.Equal(t, float64(7), e.Metadata["int"])
	assert.Equal(t, 1.5, e.Metadata["float"])
	assert.Equal(t, true, e.Metadata["flag"])
	assert.Equal(t, "[a b]", e.Metadata["odd"])
}

func TestStats_Aggregates(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	l := New(WithClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}))

	for range 3 {
		_, err := l.Record("x", WithModel("m"))
		require.NoError(t, err)
	}
	_, err := l.Record("x", WithStage("chat"), WithLatency(100), WithSuccess(false))
	require.NoError(t, err)
	_, err = l.Record("x", WithStage("chat"), WithLatency(300))
	require.NoError(t, err)
	_, err = l.Record("other")
	require.NoError(t, err)

	st := l.Stats("x")
	assert.Equal(t, "x", st.Key)
	assert.Equal(t, 5, st.TotalUsage)
	assert.Equal(t, 4, st.SuccessCount)
	assert.Equal(t, 2, st.LatencySamples)
	assert.InDelta(t, 200, st.AvgLatencyMS, 0.001)
	assert.Equal(t, base.Add(5*time.Second), st.LastUsed)
	assert.Equal(t, map[string]int{"chat": 2}, st.ByStage)
}

func TestStats_UnknownKeyIsZeroed(t *testing.T) {
	t.Parallel()
	l := New()
	st := l.Stats("never-used")
	assert.Equal(t, 0, st.TotalUsage)
	assert.Equal(t, 0, st.SuccessCount)
	assert.Equal(t, 0, st.LatencySamples)
	assert.True(t, st.LastUsed.IsZero())
}

func TestStats_ThreeRecordings(t *testing.T) {
	t.Parallel()
	l := New()
	for range 3 {
		_, err := l.Record("x", WithModel("m"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, l.Stats("x").TotalUsage)
}

func TestRecent_MostRecentFirst(t *testing.T) {
	t.Parallel()
	l := New()
	for _, key := range []string{"a", "b", "c"} {
		_, err := l.Record(key)
		require.NoError(t, err)
	}
	recent := l.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Key)
	assert.Equal(t, "b", recent[1].Key)

	assert.Len(t, l.Recent(10), 3)
	assert.Nil(t, l.Recent(0))
}

func TestRecent_Filters(t *testing.T) {
	t.Parallel()
	l := New()
	_, err := l.Record("a", WithStage("chat"), WithSession("s1"))
	require.NoError(t, err)
	_, err = l.Record("a", WithStage("eval"), WithSession("s2"))
	require.NoError(t, err)
	_, err = l.Record("b", WithStage("chat"), WithSession("s1"))
	require.NoError(t, err)

	byKey := l.Recent(10, ByKey("a"))
	require.Len(t, byKey, 2)

	byStage := l.Recent(10, ByStage("chat"))
	require.Len(t, byStage, 2)
	assert.Equal(t, "b", byStage[0].Key)

	combined := l.Recent(10, ByKey("a"), BySession("s1"))
	require.Len(t, combined, 1)
	assert.Equal(t, "eval", l.Recent(10, BySession("s2"))[0].Stage)
	assert.Equal(t, "chat", combined[0].Stage)
}

func TestTop_OrderAndTies(t *testing.T) {
	t.Parallel()
	l := New()
	for range 2 {
		_, err := l.Record("a")
		require.NoError(t, err)
	}
	_, err := l.Record("b")
	require.NoError(t, err)

	top := l.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, KeyCount{Key: "a", Count: 2}, top[0])

	// ties broken by key ascending
	_, err = l.Record("b")
	require.NoError(t, err)
	top = l.Top(10)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Key)
	assert.Equal(t, "b", top[1].Key)
}

func TestMaxEntries_OldestEvictedFirst(t *testing.T) {
	t.Parallel()
	l := New(WithMaxEntries(3))
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		_, err := l.Record(key)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, l.Len())
	recent := l.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].Key)
	assert.Equal(t, "c", recent[2].Key)
	assert.Equal(t, 0, l.Stats("a").TotalUsage)
}

func TestRecord_ConcurrentAppends(t *testing.T) {
	t.Parallel()
	l := New()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, err := l.Record("x")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, l.Stats("x").TotalUsage)
}

// collectSink records everything it receives.
type collectSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (c *collectSink) Write(_ context.Context, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *collectSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func TestSink_ReceivesEntries(t *testing.T) {
	t.Parallel()
	sink := &collectSink{}
	l := New(WithSink(sink))
	for range 3 {
		_, err := l.Record("x")
		require.NoError(t, err)
	}
	assert.Eventually(t, func() bool { return sink.len() == 3 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, l.Close())
}

func TestSink_FailureNeverReachesCaller(t *testing.T) {
	t.Parallel()
	failing := sinkFunc(func(context.Context, Entry) error { return errors.New("collector down") })
	l := New(WithSink(failing))
	_, err := l.Record("x")
	require.NoError(t, err)
	require.NoError(t, l.Close())
	assert.Equal(t, 1, l.Stats("x").TotalUsage)
}

type sinkFunc func(context.Context, Entry) error

func (f sinkFunc) Write(ctx context.Context, e Entry) error { return f(ctx, e) }

func TestClose_DrainsAndIsIdempotent(t *testing.T) {
	t.Parallel()
	sink := &collectSink{}
	l := New(WithSink(sink))
	for range 10 {
		_, err := l.Record("x")
		require.NoError(t, err)
	}
	require.NoError(t, l.Close())
	assert.Equal(t, 10, sink.len())
	require.NoError(t, l.Close())

	// recording still works after Close, entries are just not forwarded
	_, err := l.Record("x")
	require.NoError(t, err)
	assert.Equal(t, 11, l.Stats("x").TotalUsage)
	assert.Equal(t, 10, sink.len())
}

func TestNew_NoSinkNoGoroutine(t *testing.T) {
	t.Parallel()
	l := New()
	_, err := l.Record("x")
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
