package services

import (
	"context"

	"work-tracker/internal/domain"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/validation"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo          sqlite.Repository
	timeService   TimeService
	dateValidator *validation.DateValidator
	mapper        *domain.Mapper
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo sqlite.Repository, timeService TimeService) ReportingService {
	return &reportingServiceImpl{
		repo:          repo,
		timeService:   timeService,
		dateValidator: validation.NewDateValidator(),
		mapper:        domain.NewMapper(),
	}
}

// GetStatistics summarizes the user's tasks within dateRange. Status text
// is grouped case-insensitively, so legacy "completed" and "Completed"
// rows count together. Completed counts the completed flag, not the
// status text.
func (r *reportingServiceImpl) GetStatistics(ctx context.Context, user domain.User, dateRange DateRange) (*domain.TaskStatistics, error) {
	filter := domain.ForUser(user)
	filter.From = dateRange.From
	filter.To = dateRange.To

	if err := r.dateValidator.ValidateFilter(filter); err != nil {
		return nil, err
	}
	dbFilter := r.mapper.Filter.ToDatabase(filter)

	statusCounts, err := r.repo.CountTasksByStatus(ctx, dbFilter)
	if err != nil {
		return nil, err
	}

	stats := &domain.TaskStatistics{
		ByStatus: make(map[domain.TaskStatus]int),
		ByMonth:  make([]domain.MonthCount, 0),
	}
	for _, sc := range statusCounts {
		status := domain.TaskStatus(sc.Status)
		if parsed, ok := domain.ParseStatus(sc.Status); ok {
			status = parsed
		}
		stats.ByStatus[status] += sc.Count
		stats.Total += sc.Count
	}
	stats.InProgress = stats.ByStatus[domain.StatusInProgress]
	stats.Pending = stats.ByStatus[domain.StatusPending]

	completedFilter := dbFilter
	completed := true
	completedFilter.Completed = &completed
	completedTasks, err := r.repo.ListTasks(ctx, completedFilter)
	if err != nil {
		return nil, err
	}
	stats.Completed = len(completedTasks)

	// Overdue is derived from dates so it does not depend on the
	// maintenance job having run.
	openFilter := dbFilter
	open := false
	openFilter.Completed = &open
	openTasks, err := r.repo.ListTasks(ctx, openFilter)
	if err != nil {
		return nil, err
	}
	today := r.timeService.Today()
	for _, task := range r.mapper.Task.FromDatabaseSlice(openTasks) {
		if task.IsOverdue(today) {
			stats.Overdue++
		}
	}

	monthCounts, err := r.repo.CountTasksByMonth(ctx, dbFilter)
	if err != nil {
		return nil, err
	}
	for _, mc := range monthCounts {
		stats.ByMonth = append(stats.ByMonth, domain.MonthCount{Month: mc.Month, Count: mc.Count})
	}

	return stats, nil
}
