package logger

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time
	Level     zapcore.Level
	Logger    string
	Message   string
	Fields    map[string]interface{}
}

// LogBuffer is a thread-safe ring of the most recent entries
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	totalEntries uint64
}

// NewLogBuffer creates a ring holding up to maxSize entries
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
}

// Add appends an entry, overwriting the oldest one when full
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++
}

// GetRecentLogs returns up to limit of the newest entries, oldest first.
// limit <= 0 returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	if lb.wrapped {
		count = lb.maxSize
	}
	if limit > 0 && limit < count {
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	start := lb.currentIndex - count
	for i := 0; i < count; i++ {
		index := ((start+i)%lb.maxSize + lb.maxSize) % lb.maxSize
		logs = append(logs, lb.ringBuffer[index])
	}
	return logs
}

// Last returns the newest entry
func (lb *LogBuffer) Last() (LogEntry, bool) {
	logs := lb.GetRecentLogs(1)
	if len(logs) == 0 {
		return LogEntry{}, false
	}
	return logs[0], true
}

// GetStats returns how many entries were ever added
func (lb *LogBuffer) GetStats() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries
}

// Core returns a zap core feeding this buffer with entries at or above level
func (lb *LogBuffer) Core(level zapcore.LevelEnabler) zapcore.Core {
	return &bufferCore{LevelEnabler: level, buffer: lb}
}

type bufferCore struct {
	zapcore.LevelEnabler
	buffer  *LogBuffer
	context []zapcore.Field
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	ctx := make([]zapcore.Field, 0, len(c.context)+len(fields))
	ctx = append(ctx, c.context...)
	ctx = append(ctx, fields...)
	return &bufferCore{LevelEnabler: c.LevelEnabler, buffer: c.buffer, context: ctx}
}

func (c *bufferCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *bufferCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.context {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	c.buffer.Add(LogEntry{
		Timestamp: entry.Time,
		Level:     entry.Level,
		Logger:    entry.LoggerName,
		Message:   entry.Message,
		Fields:    enc.Fields,
	})
	return nil
}

func (c *bufferCore) Sync() error { return nil }
