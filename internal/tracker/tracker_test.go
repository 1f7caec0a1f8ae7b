package tracker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const window = 500 * time.Millisecond

func TestRecordAndIsRecent(t *testing.T) {
	tr := New(zaptest.NewLogger(t), clock.NewMock())
	t0 := time.Unix(1_700_000_000, 0)

	assert.False(t, tr.IsRecent("a", "priceChange24h", t0, window))

	tr.RecordPrevious("a", "priceChange24h", 12.5, t0)

	assert.True(t, tr.IsRecent("a", "priceChange24h", t0, window))
	assert.True(t, tr.IsRecent("a", "priceChange24h", t0.Add(499*time.Millisecond), window))
	assert.False(t, tr.IsRecent("a", "priceChange24h", t0.Add(500*time.Millisecond), window))
	assert.False(t, tr.IsRecent("a", "volume24h", t0, window), "fields are tracked separately")

	rec, ok := tr.Get("a", "priceChange24h")
	require.True(t, ok)
	assert.Equal(t, 12.5, rec.Value)

	_, ok = tr.Lookup("a", "priceChange24h", t0.Add(time.Second), window)
	assert.False(t, ok, "stale entries are never reported")
}

func TestRecordOverwrites(t *testing.T) {
	tr := New(zaptest.NewLogger(t), nil)
	t0 := time.Unix(1_700_000_000, 0)

	tr.RecordPrevious("a", "priceChange24h", 1, t0)
	tr.RecordPrevious("a", "priceChange24h", 2, t0.Add(400*time.Millisecond))

	rec, ok := tr.Lookup("a", "priceChange24h", t0.Add(800*time.Millisecond), window)
	require.True(t, ok, "second mutation restarts the window")
	assert.Equal(t, 2.0, rec.Value)
	assert.Equal(t, 1, tr.Len())
}

func TestSweep(t *testing.T) {
	tr := New(zaptest.NewLogger(t), nil)
	t0 := time.Unix(1_700_000_000, 0)

	for i := 0; i < 10; i++ {
		tr.RecordPrevious(fmt.Sprintf("tok-%d", i), "priceChange24h", float64(i), t0.Add(time.Duration(i)*100*time.Millisecond))
	}

	removed := tr.Sweep(t0.Add(time.Second), window)
	// entries recorded at 0..500ms are at least 500ms old at t0+1s
	assert.Equal(t, 6, removed)
	assert.Equal(t, 4, tr.Len())

	_, swept := tr.Stats()
	assert.Equal(t, uint64(6), swept)
}

func TestJanitorReclaimsExpired(t *testing.T) {
	mock := clock.NewMock()
	tr := New(zaptest.NewLogger(t), mock)

	tr.RecordPrevious("a", "priceChange24h", 1, mock.Now())
	tr.StartJanitor(context.Background(), 100*time.Millisecond, window)
	defer tr.Close()

	require.Eventually(t, func() bool {
		mock.Add(100 * time.Millisecond)
		return tr.Len() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := New(zaptest.NewLogger(t), nil)
	tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	tr.StartJanitor(ctx, time.Millisecond, window)
	cancel()
	tr.Close()
	tr.Close()
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := New(zaptest.NewLogger(t), nil)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.RecordPrevious(fmt.Sprintf("tok-%d", j%20), "priceChange24h", float64(id), now)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.IsRecent(fmt.Sprintf("tok-%d", j%20), "priceChange24h", now, window)
				tr.Sweep(now, window)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, tr.Len())
}

func TestTokenKeySeparatesCategories(t *testing.T) {
	tr := New(zaptest.NewLogger(t), nil)
	t0 := time.Unix(1000, 0)

	tr.RecordPrevious(TokenKey("new-pairs", "a"), "priceChange24h", 5, t0)

	assert.True(t, tr.IsRecent(TokenKey("new-pairs", "a"), "priceChange24h", t0, 500*time.Millisecond))
	assert.False(t, tr.IsRecent(TokenKey("migrated", "a"), "priceChange24h", t0, 500*time.Millisecond))
}
