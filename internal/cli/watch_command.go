package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"work-tracker/internal/api"
	"work-tracker/internal/config"
	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/scheduler"
)

// WatchOptions holds the watch flags
type WatchOptions struct {
	// Once runs each job a single time and returns
	Once bool
}

// WatchCommand runs the maintenance jobs on a schedule until interrupted
type WatchCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	maintenance  config.MaintenanceConfig
	timeout      time.Duration

	// jobs run on separate cron goroutines
	mu  sync.Mutex
	out io.Writer
}

// NewWatchCommand creates a new watch command handler
func NewWatchCommand(app *App) *WatchCommand {
	return &WatchCommand{
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		maintenance:  app.config.Maintenance,
		timeout:      app.config.Application.Timeout,
		out:          app.out,
	}
}

// Execute runs the watch command. It returns when ctx is done.
func (c *WatchCommand) Execute(ctx context.Context, opts WatchOptions) error {
	sched := scheduler.New(time.Local, c.timeout)
	jobs := scheduler.MaintenanceJobs{
		RefreshOverdue:   c.refreshOverdue,
		CleanupCompleted: c.cleanupCompleted,
	}

	if opts.Once {
		sched.RunNow("refresh overdue", jobs.RefreshOverdue)
		sched.RunNow("cleanup completed", jobs.CleanupCompleted)
		return nil
	}

	if err := sched.RegisterMaintenance(c.maintenance, jobs); err != nil {
		return c.errorHandler.Handle("schedule maintenance", err)
	}

	sched.RunNow("refresh overdue", jobs.RefreshOverdue)
	sched.Start()
	c.printf("Watching: overdue refresh every %s, cleanup daily at %s. Press Ctrl+C to stop.\n",
		c.maintenance.OverdueInterval, c.maintenance.CleanupAt)

	<-ctx.Done()
	sched.Stop()
	c.printf("Stopped\n")
	return nil
}

func (c *WatchCommand) refreshOverdue(ctx context.Context) error {
	n, err := c.businessAPI.RefreshOverdue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		c.printf("Marked %d task(s) overdue\n", n)
	}
	logging.Info("overdue refresh", "updated", n)
	return nil
}

// cleanupCompleted cleans up the logged-in user's tasks. Without a session
// there is nothing to clean and the run is skipped.
func (c *WatchCommand) cleanupCompleted(ctx context.Context) error {
	result, err := c.businessAPI.CleanupCompleted(ctx, ageShorthand(c.maintenance.CleanupAge))
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeAuthentication) {
			logging.Info("cleanup skipped, not logged in")
			return nil
		}
		return err
	}
	if result.Deleted > 0 {
		c.printf("Deleted %d completed task(s)\n", result.Deleted)
	}
	logging.Info("cleanup completed", "deleted", result.Deleted, "cutoff", result.Cutoff.Format("2006-01-02"))
	return nil
}

func (c *WatchCommand) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// ageShorthand renders d as whole days, at least one
func ageShorthand(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return fmt.Sprintf("%dd", days)
}
