package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"work-tracker/internal/domain"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/validation"
)

func seedStatistics(t *testing.T) (*ServiceContainer, domain.User) {
	t.Helper()
	services, repo := setupServices(t)
	user := registerUser(t, services, "alice")
	ctx := context.Background()

	createTask(t, services, user, "Late", "2025-03-01", "2025-03-10")
	_, err := services.TaskService.CreateTask(ctx, user, domain.Task{
		Title: "Ongoing", Status: domain.StatusInProgress, StartDate: date("2025-02-01"), DueDate: date("2025-03-20"),
	})
	require.NoError(t, err)
	done := createTask(t, services, user, "Done", "2025-03-02", "2025-03-05")
	_, err = services.TaskService.CompleteTask(ctx, user, done.ID)
	require.NoError(t, err)

	// Rows written by older versions used lowercase status text.
	userID := user.ID
	require.NoError(t, repo.CreateTask(ctx, &sqlite.Task{
		UserID: &userID, Username: user.Username, Title: "Legacy", Status: "completed",
		StartDate: "2025-02-10", DueDate: "2025-02-12", Completed: true,
	}))

	other := registerUser(t, services, "bob")
	createTask(t, services, other, "Not mine", "2025-03-01", "2025-03-02")

	return services, user
}

func TestReportingService_GetStatistics(t *testing.T) {
	services, user := seedStatistics(t)

	stats, err := services.ReportingService.GetStatistics(context.Background(), user, DateRange{})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 2, stats.ByStatus[domain.StatusCompleted])
	assert.Equal(t, []domain.MonthCount{
		{Month: "2025-02", Count: 2},
		{Month: "2025-03", Count: 2},
	}, stats.ByMonth)
}

func TestReportingService_GetStatisticsWithRange(t *testing.T) {
	services, user := seedStatistics(t)

	stats, err := services.ReportingService.GetStatistics(context.Background(), user, DateRange{From: date("2025-03-01")})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, []domain.MonthCount{{Month: "2025-03", Count: 2}}, stats.ByMonth)

	_, err = services.ReportingService.GetStatistics(context.Background(), user, DateRange{
		From: date("2025-03-10"), To: date("2025-03-01"),
	})
	assert.True(t, validation.IsValidationError(err))
}

func TestReportingService_EmptyUser(t *testing.T) {
	services, _ := setupServices(t)
	user := registerUser(t, services, "alice")

	stats, err := services.ReportingService.GetStatistics(context.Background(), user, DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Empty(t, stats.ByMonth)
	assert.NotNil(t, stats.ByStatus)
}
