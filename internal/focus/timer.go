// Package focus implements the focus timer and its terminal UI.
package focus

import (
	"fmt"
	"time"
)

// Timer is a pausable stopwatch. Elapsed time is always recomputed from
// the clock, so a delayed tick never loses time.
type Timer struct {
	now         func() time.Time
	startedAt   time.Time
	accumulated time.Duration
	running     bool
}

// NewTimer returns a stopped timer reading the wall clock
func NewTimer() *Timer {
	return NewTimerWithClock(time.Now)
}

// NewTimerWithClock returns a stopped timer reading now
func NewTimerWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

// Start starts or resumes the timer. Starting a running timer does nothing.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.startedAt = t.now()
	t.running = true
}

// Pause stops the timer, keeping the elapsed time
func (t *Timer) Pause() {
	if !t.running {
		return
	}
	t.accumulated += t.now().Sub(t.startedAt)
	t.running = false
}

// Toggle pauses a running timer or resumes a paused one
func (t *Timer) Toggle() {
	if t.running {
		t.Pause()
		return
	}
	t.Start()
}

// Reset stops the timer and zeroes it
func (t *Timer) Reset() {
	t.accumulated = 0
	t.running = false
	t.startedAt = time.Time{}
}

// Running reports whether the timer is counting
func (t *Timer) Running() bool {
	return t.running
}

// Elapsed returns the total time counted so far
func (t *Timer) Elapsed() time.Duration {
	elapsed := t.accumulated
	if t.running {
		elapsed += t.now().Sub(t.startedAt)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// FormatClock renders d as MM:SS, or H:MM:SS from one hour up
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
