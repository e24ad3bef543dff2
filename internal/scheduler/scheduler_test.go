package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"work-tracker/internal/config"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		input       string
		expected    string
		expectError bool
	}{
		{input: "03:00", expected: "0 0 3 * * *"},
		{input: "23:59", expected: "0 59 23 * * *"},
		{input: " 7:05 ", expected: "0 5 7 * * *"},
		{input: "24:00", expectError: true},
		{input: "12:60", expectError: true},
		{input: "noon", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			spec, err := BuildDailySpec(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
		})
	}
}

func TestScheduleDailyComputesNextRun(t *testing.T) {
	s := New(time.UTC, time.Second)

	id, err := s.ScheduleDaily("03:00", "cleanup", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	next := s.Next(id)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := New(time.UTC, time.Second)

	_, err := s.ScheduleInterval(0, "noop", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRegisterMaintenance(t *testing.T) {
	cfg := config.NewConfig().Maintenance
	noop := func(ctx context.Context) error { return nil }

	s := New(time.UTC, time.Second)
	require.NoError(t, s.RegisterMaintenance(cfg, MaintenanceJobs{RefreshOverdue: noop, CleanupCompleted: noop}))
	assert.Equal(t, 2, s.Entries())

	partial := New(time.UTC, time.Second)
	require.NoError(t, partial.RegisterMaintenance(cfg, MaintenanceJobs{RefreshOverdue: noop}))
	assert.Equal(t, 1, partial.Entries())

	cfg.CleanupAt = "25:00"
	bad := New(time.UTC, time.Second)
	assert.Error(t, bad.RegisterMaintenance(cfg, MaintenanceJobs{CleanupCompleted: noop}))
}

func TestRunNowPassesDeadline(t *testing.T) {
	s := New(time.UTC, 50*time.Millisecond)

	var sawDeadline atomic.Bool
	s.RunNow("check", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		return nil
	})
	assert.True(t, sawDeadline.Load())

	assert.NotPanics(t, func() {
		s.RunNow("fails", func(ctx context.Context) error { return errors.New("boom") })
	})
}

func TestIntervalJobRuns(t *testing.T) {
	s := New(time.UTC, time.Second)

	var runs atomic.Int32
	_, err := s.ScheduleInterval(time.Second, "count", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
