package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/repository/sqlite"
)

// fixedNow is 2025-03-15 10:30 local time
var fixedNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.Local)

func date(s string) time.Time {
	return domain.ParseDate(s)
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Security.PBKDF2Iterations = 1000
	return cfg
}

func setupServices(t *testing.T) (*ServiceContainer, sqlite.Repository) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	timeService := NewTimeServiceWithClock(func() time.Time { return fixedNow })
	return NewServiceContainerWithTime(repo, testConfig(), timeService), repo
}

func registerUser(t *testing.T, services *ServiceContainer, username string) domain.User {
	t.Helper()
	user, err := services.UserService.Register(context.Background(), username, "secret")
	require.NoError(t, err)
	return *user
}

func createTask(t *testing.T, services *ServiceContainer, user domain.User, title, start, due string) *domain.Task {
	t.Helper()
	task, err := services.TaskService.CreateTask(context.Background(), user, domain.Task{
		Title:     title,
		StartDate: date(start),
		DueDate:   date(due),
	})
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
