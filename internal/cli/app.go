package cli

import (
	"io"
	"os"
	"time"

	"work-tracker/internal/api"
	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/focus"
)

// FocusRunner shows the focus timer and returns the time focused
type FocusRunner func(label string, theme domain.Theme) (time.Duration, error)

// App holds what every command handler needs
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	out         io.Writer
	prompter    Prompter
	focusRunner FocusRunner
}

// AppOption customizes an App
type AppOption func(*App)

// WithOutput sends command output to w instead of stdout
func WithOutput(w io.Writer) AppOption {
	return func(a *App) { a.out = w }
}

// WithPrompter replaces the interactive prompts
func WithPrompter(p Prompter) AppOption {
	return func(a *App) { a.prompter = p }
}

// WithFocusRunner replaces the focus timer UI
func WithFocusRunner(r FocusRunner) AppOption {
	return func(a *App) { a.focusRunner = r }
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config, opts ...AppOption) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		businessAPI: businessAPI,
		config:      cfg,
		out:         os.Stdout,
		prompter:    NewHuhPrompter(),
		focusRunner: func(label string, theme domain.Theme) (time.Duration, error) {
			return focus.Run(label, theme)
		},
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}
