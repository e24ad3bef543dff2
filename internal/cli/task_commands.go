package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"work-tracker/internal/api"
	"work-tracker/internal/errors"
)

// parseTaskID parses a positive task ID argument
func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError("task_id", arg, "must be a positive number")
	}
	return id, nil
}

// AddCommand handles the add command
type AddCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the add command. The title is the joined args.
func (c *AddCommand) Execute(ctx context.Context, args []string, input api.TaskInput) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "add", "usage: wt add \"task title\" [flags]")
	}
	title := strings.Join(args, " ")
	input.Title = &title

	task, err := c.businessAPI.AddTask(ctx, input)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}
	fmt.Fprintf(c.out, "Added task #%d: %s\n", task.ID, task.Title)
	return nil
}

// ShowCommand prints one task in full
type ShowCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context, arg string) error {
	id, err := parseTaskID(arg)
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}
	task, err := c.businessAPI.GetTask(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}
	theme, _ := c.businessAPI.GetTheme(ctx)
	NewTaskPrinter(c.out, theme, c.businessAPI.Today()).PrintTask(*task)
	return nil
}

// HistoryCommand lists completed tasks
type HistoryCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewHistoryCommand creates a new history command handler
func NewHistoryCommand(app *App) *HistoryCommand {
	return &HistoryCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context) error {
	tasks, err := c.businessAPI.ListCompletedTasks(ctx)
	if err != nil {
		return c.errorHandler.Handle("list completed tasks", err)
	}
	theme, _ := c.businessAPI.GetTheme(ctx)
	NewTaskPrinter(c.out, theme, c.businessAPI.Today()).PrintTasks(tasks)
	return nil
}

// DoneCommand marks a task completed
type DoneCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App) *DoneCommand {
	return &DoneCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the done command
func (c *DoneCommand) Execute(ctx context.Context, arg string) error {
	id, err := parseTaskID(arg)
	if err != nil {
		return c.errorHandler.Handle("complete task", err)
	}
	result, err := c.businessAPI.CompleteTask(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("complete task", err)
	}
	if result.Reward == nil {
		fmt.Fprintf(c.out, "Task #%d was already completed\n", result.Task.ID)
		return nil
	}
	fmt.Fprintf(c.out, "Completed task #%d: %s\n", result.Task.ID, result.Task.Title)
	printReward(c.out, result.Reward)
	return nil
}

// ReopenCommand marks a completed task pending again
type ReopenCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewReopenCommand creates a new reopen command handler
func NewReopenCommand(app *App) *ReopenCommand {
	return &ReopenCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the reopen command
func (c *ReopenCommand) Execute(ctx context.Context, arg string) error {
	id, err := parseTaskID(arg)
	if err != nil {
		return c.errorHandler.Handle("reopen task", err)
	}
	task, err := c.businessAPI.ReopenTask(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("reopen task", err)
	}
	fmt.Fprintf(c.out, "Reopened task #%d: %s\n", task.ID, task.Title)
	return nil
}

// CleanupCommand deletes old completed tasks
type CleanupCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewCleanupCommand creates a new cleanup command handler
func NewCleanupCommand(app *App) *CleanupCommand {
	return &CleanupCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the cleanup command
func (c *CleanupCommand) Execute(ctx context.Context, olderThan string) error {
	result, err := c.businessAPI.CleanupCompleted(ctx, olderThan)
	if err != nil {
		return c.errorHandler.Handle("clean up tasks", err)
	}
	fmt.Fprintf(c.out, "Deleted %d completed task(s) due before %s\n", result.Deleted, result.Cutoff.Format("2006-01-02"))
	return nil
}
