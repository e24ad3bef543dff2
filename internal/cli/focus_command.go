package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"work-tracker/internal/api"
)

// FocusCommand runs the focus timer and awards EXP for the time focused
type FocusCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	runner       FocusRunner
	timeout      time.Duration
	out          io.Writer
}

// NewFocusCommand creates a new focus command handler
func NewFocusCommand(app *App) *FocusCommand {
	return &FocusCommand{
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		runner:       app.focusRunner,
		timeout:      app.config.Application.Timeout,
		out:          app.out,
	}
}

// Execute runs the focus command. ctx is not bounded by the app timeout
// while the timer is showing.
func (c *FocusCommand) Execute(ctx context.Context, args []string) error {
	// Check the session before taking over the terminal
	if _, err := c.businessAPI.CurrentUser(ctx); err != nil {
		return c.errorHandler.Handle("start focus session", err)
	}

	label := strings.TrimSpace(strings.Join(args, " "))
	if label == "" {
		label = "Focus session"
	}
	theme, _ := c.businessAPI.GetTheme(ctx)

	elapsed, err := c.runner(label, theme)
	if err != nil {
		return c.errorHandler.Handle("run focus timer", err)
	}

	awardCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	result, err := c.businessAPI.CompleteFocusSession(awardCtx, elapsed)
	if err != nil {
		return c.errorHandler.Handle("record focus session", err)
	}

	fmt.Fprintf(c.out, "Focused for %s\n", c.businessAPI.FormatDuration(result.Duration))
	printReward(c.out, result.Reward)
	return nil
}
