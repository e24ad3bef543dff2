package cli

import (
	"context"
	"io"
	"strings"

	"work-tracker/internal/api"
)

// ListCommand handles the list command
type ListCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the list command. Any args are joined into a search text
// matched against title, description and category.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))

	tasks, err := c.businessAPI.ListActiveTasks(ctx, text)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	theme, _ := c.businessAPI.GetTheme(ctx)
	NewTaskPrinter(c.out, theme, c.businessAPI.Today()).PrintTasks(tasks)
	return nil
}
