package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestIntervalRunsUntilStopped(t *testing.T) {
	mock := clock.NewMock()
	var runs int64

	iv, err := NewInterval("feed", mock, 3*time.Second, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, iv.Start(context.Background()))

	require.Eventually(t, func() bool {
		mock.Add(3 * time.Second)
		return atomic.LoadInt64(&runs) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	iv.Stop()
	after := atomic.LoadInt64(&runs)

	for i := 0; i < 5; i++ {
		mock.Add(3 * time.Second)
	}
	assert.Equal(t, after, atomic.LoadInt64(&runs), "no task after Stop returns")
	assert.Equal(t, uint64(after), iv.Runs())
}

func TestOnceFiresOnce(t *testing.T) {
	mock := clock.NewMock()
	var runs int64

	once, err := NewOnce("seed", mock, 800*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, once.Start(context.Background()))

	require.Eventually(t, func() bool {
		mock.Add(100 * time.Millisecond)
		return atomic.LoadInt64(&runs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	for i := 0; i < 20; i++ {
		mock.Add(time.Second)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&runs))
	once.Stop()
}

func TestOnceStoppedBeforeDelay(t *testing.T) {
	var runs int64
	once, err := NewOnce("seed", clock.New(), time.Hour, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, once.Start(context.Background()))

	once.Stop()
	once.Stop()
	assert.Equal(t, int64(0), atomic.LoadInt64(&runs))
}

func TestStopWaitsForRunningTask(t *testing.T) {
	started := make(chan struct{})
	var finished int64

	iv, err := NewInterval("slow", clock.New(), time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		atomic.StoreInt64(&finished, 1)
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, iv.Start(context.Background()))

	<-started
	iv.Stop()
	assert.Equal(t, int64(1), atomic.LoadInt64(&finished))
}

func TestTaskPanicIsRecovered(t *testing.T) {
	mock := clock.NewMock()
	var runs int64

	iv, err := NewInterval("panicky", mock, time.Second, func(ctx context.Context) {
		if atomic.AddInt64(&runs, 1) == 1 {
			panic("boom")
		}
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, iv.Start(context.Background()))
	defer iv.Stop()

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return atomic.LoadInt64(&runs) >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerValidation(t *testing.T) {
	noop := func(context.Context) {}

	_, err := NewInterval("zero", nil, 0, noop, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewOnce("nil-task", nil, time.Second, nil, zaptest.NewLogger(t))
	assert.Error(t, err)

	iv, err := NewInterval("twice", nil, time.Hour, noop, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, iv.Start(context.Background()))
	defer iv.Stop()
	assert.ErrorIs(t, iv.Start(context.Background()), ErrAlreadyStarted)
}

func TestParentContextStopsTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int64

	iv, err := NewInterval("ctx", clock.New(), time.Millisecond, func(context.Context) {
		atomic.AddInt64(&runs, 1)
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, iv.Start(ctx))

	require.Eventually(t, func() bool { return atomic.LoadInt64(&runs) > 0 }, time.Second, time.Millisecond)
	cancel()
	iv.Stop()

	n := atomic.LoadInt64(&runs)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, atomic.LoadInt64(&runs))
}
