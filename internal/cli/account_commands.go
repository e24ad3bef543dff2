package cli

import (
	"context"
	"fmt"
	"io"

	"work-tracker/internal/api"
	"work-tracker/internal/errors"
)

// CredentialsOptions holds the flags shared by register and login. Empty
// values are prompted for.
type CredentialsOptions struct {
	Username string
	Password string
}

// credentials fills in missing values from the prompter
func credentials(prompter Prompter, opts CredentialsOptions) (CredentialsOptions, error) {
	var err error
	if opts.Username == "" {
		if opts.Username, err = prompter.Input("Username"); err != nil {
			return opts, err
		}
	}
	if opts.Password == "" {
		if opts.Password, err = prompter.Password("Password"); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// RegisterCommand handles the register command
type RegisterCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	prompter     Prompter
	out          io.Writer
}

// NewRegisterCommand creates a new register command handler
func NewRegisterCommand(app *App) *RegisterCommand {
	return &RegisterCommand{
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		prompter:     app.prompter,
		out:          app.out,
	}
}

// Execute runs the register command
func (c *RegisterCommand) Execute(ctx context.Context, opts CredentialsOptions) error {
	opts, err := credentials(c.prompter, opts)
	if err != nil {
		return c.errorHandler.Handle("register", err)
	}
	user, err := c.businessAPI.Register(ctx, opts.Username, opts.Password)
	if err != nil {
		return c.errorHandler.Handle("register", err)
	}
	fmt.Fprintf(c.out, "Registered user: %s\n", user.Username)
	return nil
}

// LoginCommand handles the login command
type LoginCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	prompter     Prompter
	out          io.Writer
}

// NewLoginCommand creates a new login command handler
func NewLoginCommand(app *App) *LoginCommand {
	return &LoginCommand{
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		prompter:     app.prompter,
		out:          app.out,
	}
}

// Execute runs the login command
func (c *LoginCommand) Execute(ctx context.Context, opts CredentialsOptions) error {
	opts, err := credentials(c.prompter, opts)
	if err != nil {
		return c.errorHandler.Handle("log in", err)
	}
	session, err := c.businessAPI.Login(ctx, opts.Username, opts.Password)
	if err != nil {
		return c.errorHandler.Handle("log in", err)
	}
	fmt.Fprintf(c.out, "Logged in as %s\n", session.Username)
	return nil
}

// LogoutCommand handles the logout command
type LogoutCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the logout command
func (c *LogoutCommand) Execute(ctx context.Context) error {
	if err := c.businessAPI.Logout(ctx); err != nil {
		return c.errorHandler.Handle("log out", err)
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

// WhoamiCommand shows the logged-in user
type WhoamiCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewWhoamiCommand creates a new whoami command handler
func NewWhoamiCommand(app *App) *WhoamiCommand {
	return &WhoamiCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the whoami command
func (c *WhoamiCommand) Execute(ctx context.Context) error {
	user, err := c.businessAPI.CurrentUser(ctx)
	if err != nil {
		if c.errorHandler.IsNotLoggedIn(err) {
			fmt.Fprintln(c.out, "Not logged in")
			return nil
		}
		return c.errorHandler.Handle("get current user", err)
	}
	fmt.Fprintln(c.out, user.Username)
	return nil
}

// PasswdOptions holds the passwd flags. Empty values are prompted for.
type PasswdOptions struct {
	Current string
	New     string
}

// PasswdCommand handles the passwd command
type PasswdCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	prompter     Prompter
	out          io.Writer
}

// NewPasswdCommand creates a new passwd command handler
func NewPasswdCommand(app *App) *PasswdCommand {
	return &PasswdCommand{
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		prompter:     app.prompter,
		out:          app.out,
	}
}

// Execute runs the passwd command
func (c *PasswdCommand) Execute(ctx context.Context, opts PasswdOptions) error {
	if _, err := c.businessAPI.CurrentUser(ctx); err != nil {
		return c.errorHandler.Handle("change password", err)
	}

	var err error
	if opts.Current == "" {
		if opts.Current, err = c.prompter.Password("Current password"); err != nil {
			return c.errorHandler.Handle("change password", err)
		}
	}
	if opts.New == "" {
		if opts.New, err = c.prompter.Password("New password"); err != nil {
			return c.errorHandler.Handle("change password", err)
		}
		confirm, err := c.prompter.Password("Confirm new password")
		if err != nil {
			return c.errorHandler.Handle("change password", err)
		}
		if confirm != opts.New {
			return c.errorHandler.Handle("change password", errors.NewValidationError("passwords do not match", nil))
		}
	}

	if err := c.businessAPI.ChangePassword(ctx, opts.Current, opts.New); err != nil {
		return c.errorHandler.Handle("change password", err)
	}
	fmt.Fprintln(c.out, "Password changed")
	return nil
}
