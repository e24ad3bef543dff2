// Package scheduler runs the periodic maintenance jobs behind `wt watch`.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"work-tracker/internal/config"
	"work-tracker/internal/logging"
)

// Job is one unit of maintenance work
type Job func(ctx context.Context) error

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// New returns a scheduler in loc. Each job run gets timeout to finish.
func New(loc *time.Location, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		timeout: timeout,
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *Scheduler) ScheduleDaily(timeStr, name string, job Job) (cron.EntryID, error) {
	spec, err := BuildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, s.wrap(name, job))
}

// ScheduleInterval registers a periodic job every given duration.
func (s *Scheduler) ScheduleInterval(interval time.Duration, name string, job Job) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), s.wrap(name, job))
}

// MaintenanceJobs are the jobs RegisterMaintenance schedules
type MaintenanceJobs struct {
	RefreshOverdue   Job
	CleanupCompleted Job
}

// RegisterMaintenance schedules the overdue refresh every OverdueInterval
// and the cleanup daily at CleanupAt. Nil jobs are skipped.
func (s *Scheduler) RegisterMaintenance(cfg config.MaintenanceConfig, jobs MaintenanceJobs) error {
	if jobs.RefreshOverdue != nil {
		if _, err := s.ScheduleInterval(cfg.OverdueInterval, "refresh overdue", jobs.RefreshOverdue); err != nil {
			return fmt.Errorf("failed to schedule overdue refresh: %w", err)
		}
	}
	if jobs.CleanupCompleted != nil {
		if _, err := s.ScheduleDaily(cfg.CleanupAt, "cleanup completed", jobs.CleanupCompleted); err != nil {
			return fmt.Errorf("failed to schedule cleanup: %w", err)
		}
	}
	return nil
}

// RunNow runs job once, synchronously, with the scheduler's timeout
func (s *Scheduler) RunNow(name string, job Job) {
	s.wrap(name, job)()
}

// Entries returns the number of scheduled jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next returns when the job with id runs next
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job(ctx); err != nil {
			logging.Error("maintenance job failed", "job", name, "err", err)
			return
		}
		logging.Debugf("maintenance job %q finished in %s\n", name, time.Since(start))
	}
}

// BuildDailySpec converts HH:MM into a six-field cron spec
func BuildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
