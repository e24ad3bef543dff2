package services

import (
	"context"
	"time"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/repository/sqlite"
)

// DateRange bounds a statistics or listing query. Zero ends are open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TaskUpdate is a partial edit of a task. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	Location    *string
	Notes       *string
	Notify      *bool
	Status      *string
	StartDate   *time.Time
	DueDate     *time.Time
}

// IsEmpty reports whether the update changes nothing
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Category == nil && u.Location == nil && u.Notes == nil &&
		u.Notify == nil && u.Status == nil && u.StartDate == nil && u.DueDate == nil
}

// ResolvedTask is the task a (title, start date) reference resolved to.
// Candidates counts every task that matched at the winning step, so
// callers can warn when the reference was ambiguous.
type ResolvedTask struct {
	Task       *domain.Task `json:"task"`
	Candidates int          `json:"candidates"`
	// ExactStart is false when the start date did not match and the
	// newest same-titled task was used instead.
	ExactStart bool `json:"exact_start"`
}

// Ambiguous reports whether more than one task matched
func (r *ResolvedTask) Ambiguous() bool {
	return r.Candidates > 1
}

// RewardUpdate describes an EXP change
type RewardUpdate struct {
	Reward    domain.Reward `json:"reward"`
	ExpGained int           `json:"exp_gained"`
	LeveledUp bool          `json:"leveled_up"`
}

// CompletionResult is returned when a task is marked completed. Reward is
// nil when the task was already completed and nothing was awarded.
type CompletionResult struct {
	Task   *domain.Task  `json:"task"`
	Reward *RewardUpdate `json:"reward,omitempty"`
}

// FocusResult is the outcome of a finished focus session
type FocusResult struct {
	Duration time.Duration `json:"duration"`
	Minutes  int           `json:"minutes"`
	Reward   *RewardUpdate `json:"reward"`
}

// CleanupResult reports an age-based cleanup
type CleanupResult struct {
	Cutoff  time.Time `json:"cutoff"`
	Deleted int64     `json:"deleted"`
}

// AvatarStatus is a catalog entry as seen by one user
type AvatarStatus struct {
	Avatar   domain.Avatar `json:"avatar"`
	Unlocked bool          `json:"unlocked"`
	Equipped bool          `json:"equipped"`
}

// UserService handles registration and authentication
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TaskService handles task lifecycle operations for one user at a time
type TaskService interface {
	CreateTask(ctx context.Context, user domain.User, task domain.Task) (*domain.Task, error)
	GetTask(ctx context.Context, user domain.User, id int64) (*domain.Task, error)
	ListActive(ctx context.Context, user domain.User) ([]domain.Task, error)
	ListCompleted(ctx context.Context, user domain.User) ([]domain.Task, error)
	UpdateTask(ctx context.Context, user domain.User, id int64, update TaskUpdate) (*domain.Task, error)
	CompleteTask(ctx context.Context, user domain.User, id int64) (*CompletionResult, error)
	ReopenTask(ctx context.Context, user domain.User, id int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, user domain.User, id int64) error
	CleanupCompleted(ctx context.Context, user domain.User, olderThan time.Duration) (*CleanupResult, error)
	RefreshOverdue(ctx context.Context) (int64, error)
}

// SearchService handles text search and title-based task resolution
type SearchService interface {
	SearchTasks(ctx context.Context, user domain.User, text string, completed *bool) ([]domain.Task, error)
	ResolveTask(ctx context.Context, user domain.User, title string, startDate time.Time) (*ResolvedTask, error)
	UpdateTaskByTitle(ctx context.Context, user domain.User, title string, startDate time.Time, update TaskUpdate) (*ResolvedTask, error)
	DeleteTaskByTitle(ctx context.Context, user domain.User, title string, startDate time.Time) (*ResolvedTask, error)
}

// RewardService handles EXP, levels and avatars
type RewardService interface {
	GetReward(ctx context.Context, user domain.User) (*domain.Reward, error)
	AddExp(ctx context.Context, user domain.User, amount int) (*RewardUpdate, error)
	EquipAvatar(ctx context.Context, user domain.User, name string) (*domain.Reward, error)
	ListAvatars(ctx context.Context, user domain.User) ([]AvatarStatus, error)
	AwardFocusSession(ctx context.Context, user domain.User, elapsed time.Duration) (*FocusResult, error)
}

// ReportingService handles task analytics
type ReportingService interface {
	GetStatistics(ctx context.Context, user domain.User, dateRange DateRange) (*domain.TaskStatistics, error)
}

// TimeService handles date parsing and formatting against an injectable clock
type TimeService interface {
	Now() time.Time
	Today() time.Time
	ParseDate(field, value string) (time.Time, error)
	ParseDateRange(from, to string) (*DateRange, error)
	ParseAge(shorthand string) (time.Duration, error)
	FormatDuration(duration time.Duration) string
}

// ServiceContainer holds all service instances
type ServiceContainer struct {
	UserService      UserService
	TaskService      TaskService
	SearchService    SearchService
	RewardService    RewardService
	ReportingService ReportingService
	TimeService      TimeService
}

// NewServiceContainer wires every service against repo and cfg using the
// wall clock
func NewServiceContainer(repo sqlite.Repository, cfg *config.Config) *ServiceContainer {
	return NewServiceContainerWithTime(repo, cfg, NewTimeService())
}

// NewServiceContainerWithTime wires every service using timeService as
// the clock
func NewServiceContainerWithTime(repo sqlite.Repository, cfg *config.Config, timeService TimeService) *ServiceContainer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	rewardService := NewRewardService(repo, cfg)
	taskService := NewTaskService(repo, cfg, timeService, rewardService)
	return &ServiceContainer{
		UserService:      NewUserService(repo, cfg),
		TaskService:      taskService,
		SearchService:    NewSearchService(repo, cfg, taskService),
		RewardService:    rewardService,
		ReportingService: NewReportingService(repo, timeService),
		TimeService:      timeService,
	}
}
