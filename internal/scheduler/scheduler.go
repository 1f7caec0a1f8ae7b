// Package scheduler runs tasks on timers with explicit start and stop, so
// callers never rely on ambient timer side effects.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"
	"go.uber.org/zap"
)

var (
	ErrAlreadyStarted  = errors.New("scheduler already started")
	ErrInvalidDuration = errors.New("scheduler duration must be positive")
)

// Task is the unit of scheduled work. It must return promptly when ctx is
// cancelled.
type Task func(ctx context.Context)

// Scheduler is a started/stopped timer driving a Task.
type Scheduler interface {
	Start(ctx context.Context) error
	// Stop halts the timer and waits for a running task to return. No task
	// starts after Stop returns. Safe to call more than once.
	Stop()
}

type mode int

const (
	modeOnce mode = iota
	modeInterval
)

// Timer is the Scheduler implementation behind NewOnce and NewInterval.
type Timer struct {
	name   string
	mode   mode
	every  time.Duration
	task   Task
	clock  clock.Clock
	logger *zap.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	runs   uint64
	panics uint64
}

// NewOnce runs task once, delay after Start, unless stopped first.
func NewOnce(name string, clk clock.Clock, delay time.Duration, task Task, logger *zap.Logger) (*Timer, error) {
	return newTimer(name, modeOnce, clk, delay, task, logger)
}

// NewInterval runs task every interval after Start until stopped.
func NewInterval(name string, clk clock.Clock, every time.Duration, task Task, logger *zap.Logger) (*Timer, error) {
	return newTimer(name, modeInterval, clk, every, task, logger)
}

func newTimer(name string, m mode, clk clock.Clock, d time.Duration, task Task, logger *zap.Logger) (*Timer, error) {
	if d <= 0 {
		return nil, fmt.Errorf("%w: %s got %v", ErrInvalidDuration, name, d)
	}
	if task == nil {
		return nil, fmt.Errorf("scheduler %s: nil task", name)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Timer{
		name:   name,
		mode:   m,
		every:  d,
		task:   task,
		clock:  clk,
		logger: logger.Named("scheduler").With(zap.String("timer", name)),
	}, nil
}

// Start arms the timer. The timer stops by itself when ctx is done.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrAlreadyStarted
	}
	t.started = true

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	if t.mode == modeOnce {
		go t.runOnce(runCtx)
	} else {
		go t.runInterval(runCtx)
	}

	t.logger.Debug("Timer started", zap.Duration("every", t.every))
	return nil
}

// Stop cancels the timer and waits for its goroutine.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
}

// Runs returns how many times the task has been invoked
func (t *Timer) Runs() uint64 {
	return atomic.LoadUint64(&t.runs)
}

func (t *Timer) runOnce(ctx context.Context) {
	defer t.wg.Done()

	timer := t.clock.Timer(t.every)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		if ctx.Err() != nil {
			return
		}
		t.invoke(ctx)
	}
}

func (t *Timer) runInterval(ctx context.Context) {
	defer t.wg.Done()

	ticker := t.clock.Ticker(t.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			t.invoke(ctx)
		}
	}
}

func (t *Timer) invoke(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&t.panics, 1)
			t.logger.Error("Scheduled task panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	atomic.AddUint64(&t.runs, 1)
	t.task(ctx)
}
