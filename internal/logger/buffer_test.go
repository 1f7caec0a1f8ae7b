package logger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogBufferConcurrentAccess(t *testing.T) {
	buffer := NewLogBuffer(100)

	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				buffer.Add(LogEntry{
					Level:   zapcore.InfoLevel,
					Message: fmt.Sprintf("Log from goroutine %d, iteration %d", id, j),
				})
			}
		}(i)
	}

	// Concurrent reads
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = buffer.GetRecentLogs(10)
			_ = buffer.GetStats()
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(numGoroutines*logsPerGoroutine), buffer.GetStats())
	assert.Len(t, buffer.GetRecentLogs(0), 100)
}

func TestLogBufferWrapsOldestFirst(t *testing.T) {
	buffer := NewLogBuffer(3)
	_, ok := buffer.Last()
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		buffer.Add(LogEntry{Message: fmt.Sprint(i)})
	}

	var got []string
	for _, e := range buffer.GetRecentLogs(0) {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"2", "3", "4"}, got)

	recent := buffer.GetRecentLogs(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].Message)

	last, ok := buffer.Last()
	require.True(t, ok)
	assert.Equal(t, "4", last.Message)
}

func TestLogBufferCore(t *testing.T) {
	buffer := NewLogBuffer(10)
	logger := zap.New(buffer.Core(zapcore.WarnLevel)).Named("feed").With(zap.String("category", "migrated"))

	logger.Info("ignored")
	logger.Warn("Mutation target vanished, skipping tick", zap.String("id", "migrated-3"))

	last, ok := buffer.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(1), buffer.GetStats())
	assert.Equal(t, zapcore.WarnLevel, last.Level)
	assert.Equal(t, "feed", last.Logger)
	assert.Equal(t, "migrated", last.Fields["category"])
	assert.Equal(t, "migrated-3", last.Fields["id"])
}
