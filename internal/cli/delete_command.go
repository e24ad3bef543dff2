package cli

import (
	"context"
	"fmt"
	"io"

	"work-tracker/internal/api"
	"work-tracker/internal/errors"
)

// TaskRefOptions picks a task by ID argument or by --title and --start
type TaskRefOptions struct {
	Title     string
	StartDate string
}

// taskRef builds the reference from an optional ID argument and the flags
func taskRef(args []string, opts TaskRefOptions) (api.TaskRef, error) {
	if len(args) > 0 {
		if opts.Title != "" {
			return api.TaskRef{}, errors.NewInvalidInputError("task", args[0], "give either an ID or --title, not both")
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return api.TaskRef{}, err
		}
		return api.TaskRef{ID: id}, nil
	}
	if opts.Title == "" {
		return api.TaskRef{}, errors.NewInvalidInputError("task", "", "a task ID or --title is required")
	}
	return api.TaskRef{Title: opts.Title, StartDate: opts.StartDate}, nil
}

// DeleteOptions holds the delete flags
type DeleteOptions struct {
	TaskRefOptions
	// Yes skips the confirmation prompt
	Yes bool
}

// DeleteCommand handles the delete command
type DeleteCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	prompter     Prompter
	out          io.Writer
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		prompter:     app.prompter,
		out:          app.out,
	}
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context, args []string, opts DeleteOptions) error {
	ref, err := taskRef(args, opts.TaskRefOptions)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	if !opts.Yes {
		label := opts.Title
		if ref.ID > 0 {
			label = fmt.Sprintf("#%d", ref.ID)
		}
		ok, err := c.prompter.Confirm(fmt.Sprintf("Delete task %s? This cannot be undone.", label))
		if err != nil {
			return c.errorHandler.Handle("delete task", err)
		}
		if !ok {
			fmt.Fprintln(c.out, "Delete cancelled.")
			return nil
		}
	}

	resolved, err := c.businessAPI.DeleteTask(ctx, ref)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	printResolution(c.out, resolved)
	fmt.Fprintf(c.out, "Deleted task #%d: %s\n", resolved.Task.ID, resolved.Task.Title)
	return nil
}
