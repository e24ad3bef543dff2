package cli

import (
	"context"
	"fmt"
	"io"

	"work-tracker/internal/api"
)

// EditCommand handles the edit command
type EditCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the edit command. ref picks the task; input holds only the
// fields given on the command line.
func (c *EditCommand) Execute(ctx context.Context, args []string, ref TaskRefOptions, input api.TaskInput) error {
	taskRef, err := taskRef(args, ref)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	resolved, err := c.businessAPI.EditTask(ctx, taskRef, input)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}
	printResolution(c.out, resolved)
	fmt.Fprintf(c.out, "Updated task #%d: %s\n", resolved.Task.ID, resolved.Task.Title)
	return nil
}
