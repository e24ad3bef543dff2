package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/validation"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo          sqlite.Repository
	cfg           *config.Config
	timeService   TimeService
	rewardService RewardService
	mapper        *domain.Mapper
	taskValidator *validation.TaskValidator
	dateValidator *validation.DateValidator
}

// NewTaskService creates a new TaskService instance
func NewTaskService(repo sqlite.Repository, cfg *config.Config, timeService TimeService, rewardService RewardService) TaskService {
	return &taskServiceImpl{
		repo:          repo,
		cfg:           cfg,
		timeService:   timeService,
		rewardService: rewardService,
		mapper:        domain.NewMapper(),
		taskValidator: validation.NewTaskValidatorWithConfig(cfg),
		dateValidator: validation.NewDateValidator(),
	}
}

// CreateTask creates a task owned by user. The start date defaults to
// today and the status to Pending.
func (t *taskServiceImpl) CreateTask(ctx context.Context, user domain.User, task domain.Task) (*domain.Task, error) {
	if user.ID <= 0 {
		return nil, errors.NewNotLoggedInError()
	}

	userID := user.ID
	task.ID = 0
	task.UserID = &userID
	task.Username = user.Username
	task.Title = strings.TrimSpace(task.Title)
	if task.StartDate.IsZero() {
		task.StartDate = t.timeService.Today()
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	} else if parsed, ok := domain.ParseStatus(string(task.Status)); ok {
		task.Status = parsed
	}
	task.Completed = task.Status.Is(domain.StatusCompleted)

	if err := t.taskValidator.ValidateTaskForCreation(task); err != nil {
		return nil, err
	}

	dbTask := t.mapper.Task.ToDatabase(task)
	if err := t.repo.CreateTask(ctx, &dbTask); err != nil {
		return nil, err
	}

	logging.Debugf("created task %d for %s\n", dbTask.ID, user.Username)
	created := t.mapper.Task.FromDatabase(dbTask)
	return &created, nil
}

// GetTask retrieves a task by ID, enforcing ownership
func (t *taskServiceImpl) GetTask(ctx context.Context, user domain.User, id int64) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return nil, err
	}

	dbTask, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task := t.mapper.Task.FromDatabase(*dbTask)
	if !task.OwnedBy(user) {
		return nil, errors.NewPermissionError("access task", "task "+strconv.FormatInt(id, 10))
	}
	return &task, nil
}

// ListActive returns the user's open tasks ordered by due date
func (t *taskServiceImpl) ListActive(ctx context.Context, user domain.User) ([]domain.Task, error) {
	return t.list(ctx, domain.ForUser(user).WithCompleted(false))
}

// ListCompleted returns the user's completed tasks ordered by due date
func (t *taskServiceImpl) ListCompleted(ctx context.Context, user domain.User) ([]domain.Task, error) {
	return t.list(ctx, domain.ForUser(user).WithCompleted(true))
}

func (t *taskServiceImpl) list(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	if err := t.dateValidator.ValidateFilter(filter); err != nil {
		return nil, err
	}
	dbTasks, err := t.repo.ListTasks(ctx, t.mapper.Filter.ToDatabase(filter))
	if err != nil {
		return nil, err
	}
	return t.mapper.Task.FromDatabaseSlice(dbTasks), nil
}

// UpdateTask applies a partial edit. Moving a task to Completed through an
// edit awards EXP the same way CompleteTask does.
func (t *taskServiceImpl) UpdateTask(ctx context.Context, user domain.User, id int64, update TaskUpdate) (*domain.Task, error) {
	if update.IsEmpty() {
		return nil, errors.NewValidationError("nothing to update", nil)
	}

	existing, err := t.GetTask(ctx, user, id)
	if err != nil {
		return nil, err
	}

	updated := update.ApplyTo(*existing)
	if err := t.taskValidator.ValidateTaskForUpdate(updated); err != nil {
		return nil, err
	}

	if !existing.Completed && updated.Completed {
		if _, err := t.saveCompletion(ctx, user, updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	dbTask := t.mapper.Task.ToDatabase(updated)
	if err := t.repo.UpdateTask(ctx, &dbTask); err != nil {
		return nil, err
	}

	result := t.mapper.Task.FromDatabase(dbTask)
	return &result, nil
}

// CompleteTask marks a task completed and awards ExpPerTask. Completing an
// already completed task is a no-op that awards nothing.
func (t *taskServiceImpl) CompleteTask(ctx context.Context, user domain.User, id int64) (*CompletionResult, error) {
	task, err := t.GetTask(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return &CompletionResult{Task: task}, nil
	}

	completed := task.Complete()
	update, err := t.saveCompletion(ctx, user, completed)
	if err != nil {
		return nil, err
	}

	logging.Info("task completed", "task_id", id, "username", user.Username, "exp_gained", update.ExpGained)
	return &CompletionResult{Task: &completed, Reward: update}, nil
}

// saveCompletion stores task together with its ExpPerTask award
func (t *taskServiceImpl) saveCompletion(ctx context.Context, user domain.User, task domain.Task) (*RewardUpdate, error) {
	before, err := t.rewardService.GetReward(ctx, user)
	if err != nil {
		return nil, err
	}
	after := before.AddExp(t.cfg.Rewards.ExpPerTask)

	dbTask := t.mapper.Task.ToDatabase(task)
	dbReward := t.mapper.Reward.ToDatabase(after)
	if err := t.repo.UpdateTaskWithReward(ctx, &dbTask, &dbReward); err != nil {
		return nil, err
	}
	return newRewardUpdate(user, *before, after), nil
}

// ReopenTask moves a completed task back to Pending. EXP is not taken back.
func (t *taskServiceImpl) ReopenTask(ctx context.Context, user domain.User, id int64) (*domain.Task, error) {
	task, err := t.GetTask(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !task.Completed {
		return task, nil
	}

	if err := t.repo.SetTaskCompletion(ctx, id, false); err != nil {
		return nil, err
	}
	reopened := task.Reopen()
	return &reopened, nil
}

// DeleteTask deletes a task after checking ownership
func (t *taskServiceImpl) DeleteTask(ctx context.Context, user domain.User, id int64) error {
	if _, err := t.GetTask(ctx, user, id); err != nil {
		return err
	}
	return t.repo.DeleteTask(ctx, id)
}

// CleanupCompleted deletes the user's completed tasks whose due date is
// more than olderThan days before today
func (t *taskServiceImpl) CleanupCompleted(ctx context.Context, user domain.User, olderThan time.Duration) (*CleanupResult, error) {
	if olderThan <= 0 {
		return nil, errors.NewValidationError("cleanup age must be positive", nil)
	}

	days := int(olderThan / (24 * time.Hour))
	cutoff := t.timeService.Today().AddDate(0, 0, -days)

	deleted, err := t.repo.DeleteCompletedBefore(ctx, user.ID, user.Username, domain.FormatDate(cutoff))
	if err != nil {
		return nil, err
	}

	if deleted > 0 {
		logging.Info("cleaned up completed tasks", "username", user.Username, "deleted", deleted, "cutoff", domain.FormatDate(cutoff))
	}
	return &CleanupResult{Cutoff: cutoff, Deleted: deleted}, nil
}

// RefreshOverdue marks every open task due before today as Overdue
func (t *taskServiceImpl) RefreshOverdue(ctx context.Context) (int64, error) {
	return t.repo.MarkOverdue(ctx, domain.FormatDate(t.timeService.Today()))
}

// ApplyTo returns task with every non-nil field of u applied. Known
// statuses are normalized and the completed flag follows the status.
func (u TaskUpdate) ApplyTo(task domain.Task) domain.Task {
	if u.Title != nil {
		task.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.Category != nil {
		task.Category = *u.Category
	}
	if u.Location != nil {
		task.Location = *u.Location
	}
	if u.Notes != nil {
		task.Notes = *u.Notes
	}
	if u.Notify != nil {
		task.Notify = *u.Notify
	}
	if u.StartDate != nil {
		task.StartDate = *u.StartDate
		task.StoredStartDate = ""
	}
	if u.DueDate != nil {
		task.DueDate = *u.DueDate
		task.StoredDueDate = ""
	}
	if u.Status != nil {
		status := domain.TaskStatus(strings.TrimSpace(*u.Status))
		if parsed, ok := domain.ParseStatus(*u.Status); ok {
			status = parsed
		}
		task.Status = status
		task.Completed = status.Is(domain.StatusCompleted)
	}
	return task
}
