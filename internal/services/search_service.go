package services

import (
	"context"
	"strings"
	"time"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/validation"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	repo          sqlite.Repository
	taskService   TaskService
	taskValidator *validation.TaskValidator
	dateValidator *validation.DateValidator
	mapper        *domain.Mapper
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo sqlite.Repository, cfg *config.Config, taskService TaskService) SearchService {
	return &searchServiceImpl{
		repo:          repo,
		taskService:   taskService,
		taskValidator: validation.NewTaskValidatorWithConfig(cfg),
		dateValidator: validation.NewDateValidator(),
		mapper:        domain.NewMapper(),
	}
}

// SearchTasks returns the user's tasks whose title, description or
// category contains text, case-insensitively. completed narrows the result
// to open or finished tasks when non-nil.
func (s *searchServiceImpl) SearchTasks(ctx context.Context, user domain.User, text string, completed *bool) ([]domain.Task, error) {
	filter := domain.ForUser(user)
	filter.Text = strings.TrimSpace(text)
	filter.Completed = completed

	if err := s.dateValidator.ValidateFilter(filter); err != nil {
		return nil, err
	}

	dbTasks, err := s.repo.ListTasks(ctx, s.mapper.Filter.ToDatabase(filter))
	if err != nil {
		return nil, err
	}
	return s.mapper.Task.FromDatabaseSlice(dbTasks), nil
}

// ResolveTask finds the task a user means by title. With a start date the
// newest task matching both wins; if none matches, or no start date is
// given, the newest task with that title is used.
func (s *searchServiceImpl) ResolveTask(ctx context.Context, user domain.User, title string, startDate time.Time) (*ResolvedTask, error) {
	title, err := s.taskValidator.GetValidTitle(title)
	if err != nil {
		return nil, err
	}

	if !startDate.IsZero() {
		matches, err := s.repo.FindTasksByTitle(ctx, user.ID, user.Username, title, domain.FormatDate(startDate))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return s.resolved(matches, true), nil
		}
		logging.Debugf("no %q task starting %s, falling back to newest by title\n", title, domain.FormatDate(startDate))
	}

	matches, err := s.repo.FindTasksByTitle(ctx, user.ID, user.Username, title, "")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFoundError("task", title)
	}
	return s.resolved(matches, startDate.IsZero()), nil
}

// UpdateTaskByTitle resolves the task and applies update to it
func (s *searchServiceImpl) UpdateTaskByTitle(ctx context.Context, user domain.User, title string, startDate time.Time, update TaskUpdate) (*ResolvedTask, error) {
	resolved, err := s.ResolveTask(ctx, user, title, startDate)
	if err != nil {
		return nil, err
	}

	updated, err := s.taskService.UpdateTask(ctx, user, resolved.Task.ID, update)
	if err != nil {
		return nil, err
	}
	resolved.Task = updated
	return resolved, nil
}

// DeleteTaskByTitle resolves the task and deletes it
func (s *searchServiceImpl) DeleteTaskByTitle(ctx context.Context, user domain.User, title string, startDate time.Time) (*ResolvedTask, error) {
	resolved, err := s.ResolveTask(ctx, user, title, startDate)
	if err != nil {
		return nil, err
	}

	if err := s.taskService.DeleteTask(ctx, user, resolved.Task.ID); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolved picks the newest match; the repository returns newest first
func (s *searchServiceImpl) resolved(matches []*sqlite.Task, exactStart bool) *ResolvedTask {
	task := s.mapper.Task.FromDatabase(*matches[0])
	return &ResolvedTask{
		Task:       &task,
		Candidates: len(matches),
		ExactStart: exactStart,
	}
}
