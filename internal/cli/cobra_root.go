package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"work-tracker/internal/api"
	"work-tracker/internal/config"
)

// SetupFunc builds the BusinessAPI once configuration is known. The
// returned closer, if any, is closed after the command finishes.
type SetupFunc func(cfg *config.Config) (api.BusinessAPI, io.Closer, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd        *cobra.Command
	setup      SetupFunc
	appOptions []AppOption
	app        *App
	closer     io.Closer
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(setup SetupFunc, opts ...AppOption) *RootCommand {
	root := &RootCommand{
		setup:      setup,
		appOptions: opts,
	}

	root.cmd = &cobra.Command{
		Use:   "wt",
		Short: "A command-line personal task tracker",
		Long: `Work Tracker (wt) keeps your personal tasks in a local SQLite database,
rewards finished work with EXP and levels, and runs a focus timer.

EXAMPLES:
  wt register --username alice             # Create an account (password is prompted)
  wt login --username alice                # Log in and remember the session
  wt add "Write report" --due 2025-03-20   # Add a task
  wt list                                  # Active tasks, overdue in red, due today in orange
  wt done 3                                # Complete task #3 and earn EXP
  wt edit --title "Write report" --notes "draft sent"
  wt delete 3 --yes                        # Delete without confirmation
  wt cleanup --older-than 30d              # Delete completed tasks due over 30 days ago
  wt stats --from 2025-01-01               # Task statistics
  wt focus "Deep work"                     # Focus timer, 1 EXP per full minute by default
  wt watch                                 # Keep overdue flags and cleanup up to date

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > defaults

  Database Configuration:
    WT_DB_DIR                              Data directory (default: ~/.worktracker)
    WT_DB_FILENAME                         Database filename (default: worktracker.db)
    WT_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)
    WT_DB_WRITE_TIMEOUT                    Write timeout (default: 5s)
    WT_SESSION_FILENAME                    Session file (default: login_state.json)
    WT_SETTINGS_FILENAME                   Settings file (default: user_settings.json)

  Security and Rewards:
    WT_PBKDF2_ITERATIONS                   Password hash iterations (default: 200000)
    WT_REWARD_EXP_PER_TASK                 EXP per completed task (default: 20)
    WT_REWARD_EXP_PER_FOCUS_MINUTE         EXP per focused minute (default: 1)

  Maintenance:
    WT_CLEANUP_AGE                         Cleanup age for wt watch (default: 720h)
    WT_CLEANUP_AT                          Daily cleanup time HH:MM (default: 03:00)
    WT_OVERDUE_INTERVAL                    Overdue refresh interval (default: 15m)

  Application Configuration:
    WT_APP_TIMEOUT                         Application timeout (default: 60s)
    WT_APP_VERBOSE                         Enable verbose output (default: false)
    WT_DEBUG                               Debug logging to stderr (default: false)
    WT_ENV                                 development, testing or production`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.initialize()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command with args and releases the resources
// opened for it
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	err := r.cmd.ExecuteContext(ctx)
	if r.closer != nil {
		if closeErr := r.closer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.closer = nil
	}
	return err
}

// initialize loads configuration with flag overrides and builds the App
func (r *RootCommand) initialize() error {
	cfg, err := config.NewLoader().LoadWithOverrides(r.getConfigOverrides())
	if err != nil {
		return err
	}

	businessAPI, closer, err := r.setup(cfg)
	if err != nil {
		return err
	}
	r.closer = closer
	r.app = NewApp(businessAPI, cfg, r.appOptions...)
	return nil
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Database configuration
	flags.String("db-dir", "", "Data directory (overrides WT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides WT_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides WT_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides WT_DB_WRITE_TIMEOUT)")
	flags.String("session-file", "", "Session filename (overrides WT_SESSION_FILENAME)")
	flags.String("settings-file", "", "Settings filename (overrides WT_SETTINGS_FILENAME)")

	// Security and rewards
	flags.Int("pbkdf2-iterations", 0, "Password hash iterations (overrides WT_PBKDF2_ITERATIONS)")
	flags.Int("exp-per-task", 0, "EXP per completed task (overrides WT_REWARD_EXP_PER_TASK)")
	flags.Int("exp-per-focus-minute", 0, "EXP per focused minute (overrides WT_REWARD_EXP_PER_FOCUS_MINUTE)")

	// Maintenance
	flags.Duration("cleanup-age", 0, "Cleanup age used by watch (overrides WT_CLEANUP_AGE)")
	flags.String("cleanup-at", "", "Daily cleanup time HH:MM (overrides WT_CLEANUP_AT)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides WT_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides WT_APP_VERBOSE)")
	flags.Bool("debug", false, "Log debug output to stderr (overrides WT_DEBUG)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.registerCommand(),
		r.loginCommand(),
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the saved session",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewLogoutCommand(r.app).Execute(ctx)
			}),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged-in user",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewWhoamiCommand(r.app).Execute(ctx)
			}),
		},
		r.passwdCommand(),
		r.addCommand(),
		&cobra.Command{
			Use:   "list [text]",
			Short: "List active tasks",
			Long: `List active tasks. Overdue tasks are shown in red and tasks due today in orange.

Text filters search within titles, descriptions and categories.

Examples:
  wt list              # All active tasks
  wt list report       # Active tasks mentioning "report"`,
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewListCommand(r.app).Execute(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show every field of a task",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewShowCommand(r.app).Execute(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "history",
			Short: "List completed tasks",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewHistoryCommand(r.app).Execute(ctx)
			}),
		},
		&cobra.Command{
			Use:   "done <id>",
			Short: "Mark a task completed and earn EXP",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewDoneCommand(r.app).Execute(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "reopen <id>",
			Short: "Mark a completed task pending again",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewReopenCommand(r.app).Execute(ctx, args[0])
			}),
		},
		r.editCommand(),
		r.deleteCommand(),
		r.cleanupCommand(),
		r.statsCommand(),
		&cobra.Command{
			Use:   "reward",
			Short: "Show EXP, level and avatar",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewRewardCommand(r.app).Execute(ctx)
			}),
		},
		r.avatarCommand(),
		&cobra.Command{
			Use:       "theme [light|dark]",
			Short:     "Show or set the colour theme",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{"light", "dark"},
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewThemeCommand(r.app).Execute(ctx, args)
			}),
		},
		r.focusCommand(),
		r.watchCommand(),
	)
}

func (r *RootCommand) registerCommand() *cobra.Command {
	var opts CredentialsOptions
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewRegisterCommand(r.app).Execute(ctx, opts)
		}),
	}
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func (r *RootCommand) loginCommand() *cobra.Command {
	var opts CredentialsOptions
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewLoginCommand(r.app).Execute(ctx, opts)
		}),
	}
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func (r *RootCommand) passwdCommand() *cobra.Command {
	var opts PasswdOptions
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewPasswdCommand(r.app).Execute(ctx, opts)
		}),
	}
	cmd.Flags().StringVar(&opts.Current, "current", "", "Current password (prompted when omitted)")
	cmd.Flags().StringVar(&opts.New, "new", "", "New password (prompted when omitted)")
	return cmd
}

func (r *RootCommand) addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a task. The start date defaults to today.

Examples:
  wt add "Write report" --due 2025-03-20 --priority High
  wt add Standup --category work --notify`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewAddCommand(r.app).Execute(ctx, args, taskInputFromFlags(cmd, "start"))
		}),
	}
	addTaskFlags(cmd, "start")
	return cmd
}

func (r *RootCommand) editCommand() *cobra.Command {
	var ref TaskRefOptions
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Update a task's fields",
		Long: `Update a task picked by ID, or by --title with an optional --start date.
When several tasks share a title and no start date matches, the most recent one is used.

Examples:
  wt edit 3 --priority Low
  wt edit --title "Write report" --start 2025-03-10 --status "In Progress"
  wt edit 3 --rename "Write final report"`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			input := taskInputFromFlags(cmd, "set-start")
			if cmd.Flags().Changed("rename") {
				title, _ := cmd.Flags().GetString("rename")
				input.Title = &title
			}
			return NewEditCommand(r.app).Execute(ctx, args, ref, input)
		}),
	}
	cmd.Flags().StringVar(&ref.Title, "title", "", "Title of the task to edit")
	cmd.Flags().StringVar(&ref.StartDate, "start", "", "Start date of the task to edit (YYYY-MM-DD)")
	cmd.Flags().String("rename", "", "New title")
	addTaskFlags(cmd, "set-start")
	return cmd
}

func (r *RootCommand) deleteCommand() *cobra.Command {
	var opts DeleteOptions
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Long: `Delete a task picked by ID, or by --title with an optional --start date.

This operation cannot be undone. You will be asked to confirm unless --yes is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewDeleteCommand(r.app).Execute(ctx, args, opts)
		}),
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "Title of the task to delete")
	cmd.Flags().StringVar(&opts.StartDate, "start", "", "Start date of the task to delete (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (r *RootCommand) cleanupCommand() *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old completed tasks",
		Long: `Delete completed tasks whose due date is older than the given age.

Ages support: 30d, 2w, 6mo, 1y`,
		Args: cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewCleanupCommand(r.app).Execute(ctx, olderThan)
		}),
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Age of completed tasks to delete")
	return cmd
}

func (r *RootCommand) statsCommand() *cobra.Command {
	var opts StatsOptions
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return NewStatsCommand(r.app).Execute(ctx, opts)
		}),
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "Only tasks starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Only tasks due on or before this date (YYYY-MM-DD)")
	return cmd
}

func (r *RootCommand) avatarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "List or equip avatars",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List avatars and their unlock levels",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewAvatarListCommand(r.app).Execute(ctx)
			}),
		},
		&cobra.Command{
			Use:   "equip <name>",
			Short: "Equip an unlocked avatar",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return NewAvatarEquipCommand(r.app).Execute(ctx, args[0])
			}),
		},
	)
	return cmd
}

func (r *RootCommand) focusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "focus [label]",
		Short: "Run the focus timer",
		Long: `Run a focus timer in the terminal. Space or p pauses and resumes, r resets,
q finishes the session. Every full minute focused earns EXP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The timer is interactive and not bounded by the app timeout
			return NewFocusCommand(r.app).Execute(cmd.Context(), args)
		},
	}
}

func (r *RootCommand) watchCommand() *cobra.Command {
	var opts WatchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run maintenance jobs until interrupted",
		Long: `Mark overdue tasks every WT_OVERDUE_INTERVAL and delete the logged-in user's
completed tasks older than WT_CLEANUP_AGE daily at WT_CLEANUP_AT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return NewWatchCommand(r.app).Execute(ctx, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Once, "once", false, "Run each job once and exit")
	return cmd
}

// run wraps a handler with the application timeout
func (r *RootCommand) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()
		return fn(ctx, cmd, args)
	}
}

// addTaskFlags adds the task field flags. startFlag names the flag that
// sets the start date.
func addTaskFlags(cmd *cobra.Command, startFlag string) {
	flags := cmd.Flags()
	flags.String("description", "", "Description")
	flags.String("priority", "", "Priority, e.g. High")
	flags.String("category", "", "Category")
	flags.String("location", "", "Location")
	flags.String("notes", "", "Notes")
	flags.String("status", "", "Pending, In Progress, Completed or Overdue")
	flags.String(startFlag, "", "Start date (YYYY-MM-DD)")
	flags.String("due", "", "Due date (YYYY-MM-DD)")
	flags.Bool("notify", false, "Enable notifications")
}

// taskInputFromFlags returns the task fields given on the command line
func taskInputFromFlags(cmd *cobra.Command, startFlag string) api.TaskInput {
	flags := cmd.Flags()
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetString(name)
		return &value
	}

	input := api.TaskInput{
		Description: str("description"),
		Priority:    str("priority"),
		Category:    str("category"),
		Location:    str("location"),
		Notes:       str("notes"),
		Status:      str("status"),
		StartDate:   str(startFlag),
		DueDate:     str("due"),
	}
	if flags.Changed("notify") {
		notify, _ := flags.GetBool("notify")
		input.Notify = &notify
	}
	return input
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.app != nil && r.app.config.Application.Timeout > 0 {
		return r.app.config.Application.Timeout
	}
	return 60 * time.Second
}

// getConfigOverrides collects the global flags that were set
func (r *RootCommand) getConfigOverrides() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetString(name)
		return &value
	}
	integer := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetInt(name)
		return &value
	}
	duration := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetDuration(name)
		return &value
	}
	boolean := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetBool(name)
		return &value
	}

	overrides.DBDir = str("db-dir")
	overrides.DBFilename = str("db-filename")
	overrides.DBQueryTimeout = duration("db-query-timeout")
	overrides.DBWriteTimeout = duration("db-write-timeout")
	overrides.SessionFilename = str("session-file")
	overrides.SettingsFilename = str("settings-file")
	overrides.PBKDF2Iterations = integer("pbkdf2-iterations")
	overrides.ExpPerTask = integer("exp-per-task")
	overrides.ExpPerFocusMinute = integer("exp-per-focus-minute")
	overrides.CleanupAge = duration("cleanup-age")
	overrides.CleanupAt = str("cleanup-at")
	overrides.Timeout = duration("app-timeout")
	overrides.Verbose = boolean("verbose")
	overrides.Debug = boolean("debug")

	return overrides
}

