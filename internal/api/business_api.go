package api

import (
	"context"
	"strings"
	"time"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/services"
	"work-tracker/internal/session"
	"work-tracker/internal/settings"
	"work-tracker/internal/validation"
)

// TaskInput carries task fields as typed on the command line. Nil fields
// are not set; dates are YYYY-MM-DD.
type TaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	Location    *string
	Notes       *string
	Status      *string
	StartDate   *string
	DueDate     *string
	Notify      *bool
}

// TaskRef identifies a task either by ID or by title with an optional
// start date used to disambiguate.
type TaskRef struct {
	ID        int64
	Title     string
	StartDate string
}

// BusinessAPI defines the operations the CLI performs on behalf of the
// logged-in user
type BusinessAPI interface {
	// ========== Accounts ==========

	// Register creates an account
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Login checks credentials and saves the session
	Login(ctx context.Context, username, password string) (*domain.Session, error)

	// Logout clears the saved session
	Logout(ctx context.Context) error

	// CurrentUser returns the logged-in user or a not logged in error
	CurrentUser(ctx context.Context) (*domain.User, error)

	// ChangePassword replaces the logged-in user's password
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error

	// ========== Tasks ==========

	AddTask(ctx context.Context, input TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListActiveTasks(ctx context.Context, text string) ([]domain.Task, error)
	ListCompletedTasks(ctx context.Context) ([]domain.Task, error)
	CompleteTask(ctx context.Context, id int64) (*services.CompletionResult, error)
	ReopenTask(ctx context.Context, id int64) (*domain.Task, error)
	EditTask(ctx context.Context, ref TaskRef, input TaskInput) (*services.ResolvedTask, error)
	DeleteTask(ctx context.Context, ref TaskRef) (*services.ResolvedTask, error)

	// CleanupCompleted deletes completed tasks older than shorthand like 30d
	CleanupCompleted(ctx context.Context, olderThan string) (*services.CleanupResult, error)

	// RefreshOverdue marks open tasks past their due date, for every user
	RefreshOverdue(ctx context.Context) (int64, error)

	// ========== Analytics and rewards ==========

	GetStatistics(ctx context.Context, from, to string) (*domain.TaskStatistics, error)
	GetReward(ctx context.Context) (*domain.Reward, error)
	ListAvatars(ctx context.Context) ([]services.AvatarStatus, error)
	EquipAvatar(ctx context.Context, name string) (*domain.Reward, error)
	CompleteFocusSession(ctx context.Context, elapsed time.Duration) (*services.FocusResult, error)

	// ========== Settings ==========

	GetTheme(ctx context.Context) (domain.Theme, error)
	SetTheme(ctx context.Context, theme string) (domain.Theme, error)

	// ========== Helpers ==========

	Today() time.Time
	FormatDuration(d time.Duration) string
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	services *services.ServiceContainer
	sessions *session.Store
	settings *settings.Store
}

// NewBusinessAPI creates a BusinessAPI over repo with the session and
// settings files named by cfg
func NewBusinessAPI(repo sqlite.Repository, cfg *config.Config) BusinessAPI {
	return NewBusinessAPIWithServices(
		services.NewServiceContainer(repo, cfg),
		session.NewStore(cfg.GetSessionPath()),
		settings.NewStore(cfg.GetSettingsPath()),
	)
}

// NewBusinessAPIWithServices creates a BusinessAPI from already wired parts
func NewBusinessAPIWithServices(container *services.ServiceContainer, sessions *session.Store, settingsStore *settings.Store) BusinessAPI {
	return &businessAPIImpl{
		services: container,
		sessions: sessions,
		settings: settingsStore,
	}
}

// ========== Accounts ==========

func (b *businessAPIImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := b.services.UserService.Register(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, wrapValidation("invalid registration", err)
	}
	return user, nil
}

func (b *businessAPIImpl) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	user, err := b.services.UserService.Authenticate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, err
	}
	return b.sessions.Save(*user)
}

func (b *businessAPIImpl) Logout(ctx context.Context) error {
	return b.sessions.Clear()
}

func (b *businessAPIImpl) CurrentUser(ctx context.Context) (*domain.User, error) {
	sess, err := b.sessions.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.NewNotLoggedInError()
	}

	user, err := b.services.UserService.GetUserByUsername(ctx, sess.Username)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			logging.Warn("session refers to a missing user", "username", sess.Username)
			return nil, errors.NewNotLoggedInError()
		}
		return nil, err
	}
	return user, nil
}

func (b *businessAPIImpl) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return err
	}
	err = b.services.UserService.ChangePassword(ctx, user.Username, currentPassword, newPassword)
	return wrapValidation("invalid password", err)
}

// ========== Tasks ==========

func (b *businessAPIImpl) AddTask(ctx context.Context, input TaskInput) (*domain.Task, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	update, err := b.toUpdate(input)
	if err != nil {
		return nil, err
	}
	created, err := b.services.TaskService.CreateTask(ctx, *user, update.ApplyTo(domain.Task{}))
	if err != nil {
		return nil, wrapValidation("invalid task", err)
	}
	return created, nil
}

func (b *businessAPIImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := b.services.TaskService.GetTask(ctx, *user, id)
	if err != nil {
		return nil, wrapValidation("invalid task ID", err)
	}
	return task, nil
}

func (b *businessAPIImpl) ListActiveTasks(ctx context.Context, text string) ([]domain.Task, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return b.services.TaskService.ListActive(ctx, *user)
	}
	open := false
	return b.services.SearchService.SearchTasks(ctx, *user, text, &open)
}

func (b *businessAPIImpl) ListCompletedTasks(ctx context.Context) ([]domain.Task, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return b.services.TaskService.ListCompleted(ctx, *user)
}

func (b *businessAPIImpl) CompleteTask(ctx context.Context, id int64) (*services.CompletionResult, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	result, err := b.services.TaskService.CompleteTask(ctx, *user, id)
	if err != nil {
		return nil, wrapValidation("invalid task ID", err)
	}
	return result, nil
}

func (b *businessAPIImpl) ReopenTask(ctx context.Context, id int64) (*domain.Task, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := b.services.TaskService.ReopenTask(ctx, *user, id)
	if err != nil {
		return nil, wrapValidation("invalid task ID", err)
	}
	return task, nil
}

func (b *businessAPIImpl) EditTask(ctx context.Context, ref TaskRef, input TaskInput) (*services.ResolvedTask, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	update, err := b.toUpdate(input)
	if err != nil {
		return nil, err
	}

	if ref.ID > 0 {
		task, err := b.services.TaskService.UpdateTask(ctx, *user, ref.ID, update)
		if err != nil {
			return nil, wrapValidation("invalid task", err)
		}
		return &services.ResolvedTask{Task: task, Candidates: 1, ExactStart: true}, nil
	}

	start, err := b.refStart(ref)
	if err != nil {
		return nil, err
	}
	resolved, err := b.services.SearchService.UpdateTaskByTitle(ctx, *user, ref.Title, start, update)
	if err != nil {
		return nil, wrapValidation("invalid task", err)
	}
	return resolved, nil
}

func (b *businessAPIImpl) DeleteTask(ctx context.Context, ref TaskRef) (*services.ResolvedTask, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if ref.ID > 0 {
		task, err := b.services.TaskService.GetTask(ctx, *user, ref.ID)
		if err != nil {
			return nil, err
		}
		if err := b.services.TaskService.DeleteTask(ctx, *user, ref.ID); err != nil {
			return nil, err
		}
		return &services.ResolvedTask{Task: task, Candidates: 1, ExactStart: true}, nil
	}

	start, err := b.refStart(ref)
	if err != nil {
		return nil, err
	}
	resolved, err := b.services.SearchService.DeleteTaskByTitle(ctx, *user, ref.Title, start)
	if err != nil {
		return nil, wrapValidation("invalid task", err)
	}
	return resolved, nil
}

func (b *businessAPIImpl) CleanupCompleted(ctx context.Context, olderThan string) (*services.CleanupResult, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	age, err := b.services.TimeService.ParseAge(olderThan)
	if err != nil {
		return nil, err
	}
	return b.services.TaskService.CleanupCompleted(ctx, *user, age)
}

func (b *businessAPIImpl) RefreshOverdue(ctx context.Context) (int64, error) {
	return b.services.TaskService.RefreshOverdue(ctx)
}

// ========== Analytics and rewards ==========

func (b *businessAPIImpl) GetStatistics(ctx context.Context, from, to string) (*domain.TaskStatistics, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	dateRange, err := b.services.TimeService.ParseDateRange(from, to)
	if err != nil {
		return nil, wrapValidation("invalid date range", err)
	}
	return b.services.ReportingService.GetStatistics(ctx, *user, *dateRange)
}

func (b *businessAPIImpl) GetReward(ctx context.Context) (*domain.Reward, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return b.services.RewardService.GetReward(ctx, *user)
}

func (b *businessAPIImpl) ListAvatars(ctx context.Context) ([]services.AvatarStatus, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return b.services.RewardService.ListAvatars(ctx, *user)
}

func (b *businessAPIImpl) EquipAvatar(ctx context.Context, name string) (*domain.Reward, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return b.services.RewardService.EquipAvatar(ctx, *user, strings.TrimSpace(name))
}

func (b *businessAPIImpl) CompleteFocusSession(ctx context.Context, elapsed time.Duration) (*services.FocusResult, error) {
	user, err := b.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return b.services.RewardService.AwardFocusSession(ctx, *user, elapsed)
}

// ========== Settings ==========

func (b *businessAPIImpl) GetTheme(ctx context.Context) (domain.Theme, error) {
	return b.settings.Theme()
}

func (b *businessAPIImpl) SetTheme(ctx context.Context, theme string) (domain.Theme, error) {
	return b.settings.SetTheme(strings.ToLower(strings.TrimSpace(theme)))
}

// ========== Helpers ==========

func (b *businessAPIImpl) Today() time.Time {
	return b.services.TimeService.Today()
}

func (b *businessAPIImpl) FormatDuration(d time.Duration) string {
	return b.services.TimeService.FormatDuration(d)
}

// toUpdate parses the input's dates and copies the rest across
func (b *businessAPIImpl) toUpdate(input TaskInput) (services.TaskUpdate, error) {
	update := services.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
		Location:    input.Location,
		Notes:       input.Notes,
		Status:      input.Status,
		Notify:      input.Notify,
	}

	ve := validation.NewValidationError()
	if input.StartDate != nil {
		start, err := b.services.TimeService.ParseDate("start_date", *input.StartDate)
		ve.Merge("start_date", err)
		update.StartDate = &start
	}
	if input.DueDate != nil {
		due, err := b.services.TimeService.ParseDate("due_date", *input.DueDate)
		ve.Merge("due_date", err)
		update.DueDate = &due
	}
	if err := ve.OrNil(); err != nil {
		return services.TaskUpdate{}, errors.NewValidationError("invalid task", err)
	}
	return update, nil
}

func (b *businessAPIImpl) refStart(ref TaskRef) (time.Time, error) {
	if strings.TrimSpace(ref.Title) == "" {
		return time.Time{}, errors.NewValidationError("a task ID or title is required", nil)
	}
	start, err := b.services.TimeService.ParseDate("start_date", ref.StartDate)
	if err != nil {
		return time.Time{}, errors.NewValidationError("invalid task reference", err)
	}
	return start, nil
}

// wrapValidation gives field-level validation errors an AppError envelope
// so the CLI reports them uniformly. Other errors pass through.
func wrapValidation(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) || !validation.IsValidationError(err) {
		return err
	}
	return errors.NewValidationError(message, err)
}
