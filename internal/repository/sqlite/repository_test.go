package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "work-tracker/internal/errors"
)

func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createUser(t *testing.T, repo *SQLiteRepository, username string) *User {
	t.Helper()
	user := &User{Username: username, Password: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func newTask(user *User, title, start, due string) *Task {
	id := user.ID
	return &Task{UserID: &id, Username: user.Username, Title: title, Status: "Pending", StartDate: start, DueDate: due}
}

func TestCreateAndGetUser(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	user := createUser(t, repo, "alice")
	assert.Greater(t, user.ID, int64(0))

	byID, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.Password)
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	repo := setupTestDB(t)
	createUser(t, repo, "alice")

	err := repo.CreateUser(context.Background(), &User{Username: "alice", Password: "other"})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConflict))
}

func TestGetUser_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetUserByUsername(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), "not found")
}

func TestListUsersAndUpdatePassword(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	createUser(t, repo, "bob")
	createUser(t, repo, "alice")

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	require.NoError(t, repo.UpdatePassword(ctx, "bob", "new-hash"))
	bob, err := repo.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", bob.Password)

	err = repo.UpdatePassword(ctx, "carol", "x")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestCreateAndGetTask(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	task := newTask(user, "Write report", "2024-03-01", "2024-03-05")
	task.Priority = "High"
	task.Notify = true
	require.NoError(t, repo.CreateTask(ctx, task))
	assert.Greater(t, task.ID, int64(0))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestGetTask_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetTask(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestListTasks_OrderingAndScope(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	require.NoError(t, repo.CreateTask(ctx, newTask(alice, "later", "2024-01-01", "2024-02-01")))
	require.NoError(t, repo.CreateTask(ctx, newTask(alice, "undated", "2024-01-01", "")))
	require.NoError(t, repo.CreateTask(ctx, newTask(alice, "sooner", "2024-01-01", "2024-01-10")))
	require.NoError(t, repo.CreateTask(ctx, newTask(bob, "bobs", "2024-01-01", "2024-01-05")))

	tasks, err := repo.ListTasks(ctx, TaskFilter{UserID: alice.ID, Username: alice.Username})
	require.NoError(t, err)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"sooner", "later", "undated"}, titles)
}

func TestListTasks_EmptyIsNotNil(t *testing.T) {
	repo := setupTestDB(t)
	user := createUser(t, repo, "alice")

	tasks, err := repo.ListTasks(context.Background(), TaskFilter{UserID: user.ID, Username: user.Username})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestListTasks_IncludesLegacyRowsByUsername(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")

	_, err := repo.db.Exec(`INSERT INTO tasks (username, title, due_date, notify, completed) VALUES ('alice', 'legacy', '2024-01-01', 'yes', NULL)`)
	require.NoError(t, err)

	tasks, err := repo.ListTasks(ctx, TaskFilter{UserID: alice.ID, Username: alice.Username})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].UserID)
	assert.True(t, tasks[0].Notify)
	assert.False(t, tasks[0].Completed)
	assert.Equal(t, "Pending", tasks[0].Status)
}

func TestListTasks_Filters(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	a := newTask(user, "Quarterly report", "2024-01-05", "2024-01-20")
	b := newTask(user, "Groceries", "2024-02-01", "2024-02-02")
	b.Category = "home"
	c := newTask(user, "100% done_ish", "2024-03-01", "2024-03-02")
	for _, task := range []*Task{a, b, c} {
		require.NoError(t, repo.CreateTask(ctx, task))
	}
	require.NoError(t, repo.SetTaskCompletion(ctx, b.ID, true))

	base := TaskFilter{UserID: user.ID, Username: user.Username}
	completed := true

	tests := []struct {
		name     string
		modify   func(f *TaskFilter)
		expected []string
	}{
		{"completed only", func(f *TaskFilter) { f.Completed = &completed }, []string{"Groceries"}},
		{"text in title", func(f *TaskFilter) { f.Text = "report" }, []string{"Quarterly report"}},
		{"text in category", func(f *TaskFilter) { f.Text = "HOME" }, []string{"Groceries"}},
		{"literal percent", func(f *TaskFilter) { f.Text = "100%" }, []string{"100% done_ish"}},
		{"date range", func(f *TaskFilter) { f.From = "2024-01-01"; f.To = "2024-02-28" }, []string{"Quarterly report", "Groceries"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.modify(&f)
			tasks, err := repo.ListTasks(ctx, f)
			require.NoError(t, err)

			titles := make([]string, len(tasks))
			for i, task := range tasks {
				titles[i] = task.Title
			}
			assert.Equal(t, tt.expected, titles)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	task := newTask(user, "Draft", "2024-03-01", "2024-03-05")
	require.NoError(t, repo.CreateTask(ctx, task))

	task.Title = "Final"
	task.Status = "In Progress"
	task.Notes = "check numbers"
	require.NoError(t, repo.UpdateTask(ctx, task))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "In Progress", got.Status)
	assert.Equal(t, "check numbers", got.Notes)

	missing := newTask(user, "ghost", "", "")
	missing.ID = 999
	assert.True(t, apperrors.IsErrorType(repo.UpdateTask(ctx, missing), apperrors.ErrorTypeNotFound))
}

func TestUpdateTaskWithReward(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	task := newTask(user, "Ship", "2024-03-01", "2024-03-05")
	require.NoError(t, repo.CreateTask(ctx, task))

	task.Completed = true
	task.Status = "Completed"
	require.NoError(t, repo.UpdateTaskWithReward(ctx, task, &Reward{UserID: user.ID, Exp: 20, Level: 1, Avatar: "default.png"}))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	reward, err := repo.GetReward(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, reward.Exp)
}

func TestUpdateTaskWithReward_RollsBackOnRewardFailure(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	task := newTask(user, "Ship", "2024-03-01", "2024-03-05")
	require.NoError(t, repo.CreateTask(ctx, task))

	task.Completed = true
	task.Status = "Completed"
	err := repo.UpdateTaskWithReward(ctx, task, &Reward{UserID: 42, Exp: 20, Level: 1, Avatar: "default.png"})
	require.Error(t, err)

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, "Pending", got.Status)
}

func TestSetTaskCompletion(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	task := newTask(user, "Ship", "2024-03-01", "2024-03-05")
	require.NoError(t, repo.CreateTask(ctx, task))

	require.NoError(t, repo.SetTaskCompletion(ctx, task.ID, true))
	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Completed", got.Status)

	require.NoError(t, repo.SetTaskCompletion(ctx, task.ID, false))
	got, err = repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, "Pending", got.Status)
}

func TestDeleteTask(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	task := newTask(user, "Temp", "2024-03-01", "2024-03-05")
	require.NoError(t, repo.CreateTask(ctx, task))

	require.NoError(t, repo.DeleteTask(ctx, task.ID))
	_, err := repo.GetTask(ctx, task.ID)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	assert.True(t, apperrors.IsErrorType(repo.DeleteTask(ctx, task.ID), apperrors.ErrorTypeNotFound))
}

func TestFindTasksByTitle(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	first := newTask(alice, "Standup", "2024-03-01", "2024-03-01")
	second := newTask(alice, "Standup", "2024-03-02", "2024-03-02")
	third := newTask(alice, "Standup", "2024-03-01", "2024-03-01")
	other := newTask(bob, "Standup", "2024-03-01", "2024-03-01")
	for _, task := range []*Task{first, second, third, other} {
		require.NoError(t, repo.CreateTask(ctx, task))
	}

	matches, err := repo.FindTasksByTitle(ctx, alice.ID, alice.Username, "Standup", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, third.ID, matches[0].ID, "newest first")
	assert.Equal(t, first.ID, matches[1].ID)

	all, err := repo.FindTasksByTitle(ctx, alice.ID, alice.Username, "Standup", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.FindTasksByTitle(ctx, alice.ID, alice.Username, "standup", "")
	require.NoError(t, err)
	assert.Empty(t, none, "title match is exact")
}

func TestDeleteCompletedBefore(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	old := newTask(user, "old done", "2024-01-01", "2024-01-02")
	recent := newTask(user, "recent done", "2024-03-01", "2024-03-02")
	open := newTask(user, "old open", "2024-01-01", "2024-01-02")
	for _, task := range []*Task{old, recent, open} {
		require.NoError(t, repo.CreateTask(ctx, task))
	}
	require.NoError(t, repo.SetTaskCompletion(ctx, old.ID, true))
	require.NoError(t, repo.SetTaskCompletion(ctx, recent.ID, true))

	n, err := repo.DeleteCompletedBefore(ctx, user.ID, user.Username, "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetTask(ctx, old.ID)
	assert.Error(t, err)
	_, err = repo.GetTask(ctx, recent.ID)
	assert.NoError(t, err)
	_, err = repo.GetTask(ctx, open.ID)
	assert.NoError(t, err)
}

func TestMarkOverdue(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	late := newTask(user, "late", "2024-01-01", "2024-01-02")
	lateInProgress := newTask(user, "late wip", "2024-01-01", "2024-01-02")
	lateInProgress.Status = "in progress"
	done := newTask(user, "done", "2024-01-01", "2024-01-02")
	future := newTask(user, "future", "2024-01-01", "2099-01-01")
	for _, task := range []*Task{late, lateInProgress, done, future} {
		require.NoError(t, repo.CreateTask(ctx, task))
	}
	require.NoError(t, repo.SetTaskCompletion(ctx, done.ID, true))

	n, err := repo.MarkOverdue(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.GetTask(ctx, lateInProgress.ID)
	require.NoError(t, err)
	assert.Equal(t, "Overdue", got.Status)

	got, err = repo.GetTask(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", got.Status)

	n, err = repo.MarkOverdue(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "already overdue tasks are not touched again")
}

func TestRewards(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	_, err := repo.GetReward(ctx, user.ID)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	require.NoError(t, repo.UpsertReward(ctx, &Reward{UserID: user.ID, Exp: 0, Level: 1, Avatar: "default.png"}))
	require.NoError(t, repo.UpsertReward(ctx, &Reward{UserID: user.ID, Exp: 250, Level: 3, Avatar: "fox.png"}))

	reward, err := repo.GetReward(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &Reward{UserID: user.ID, Exp: 250, Level: 3, Avatar: "fox.png"}, reward)
}

func TestRewards_ForeignKey(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.UpsertReward(context.Background(), &Reward{UserID: 42, Exp: 0, Level: 1, Avatar: "default.png"})
	assert.Error(t, err, "foreign keys are enforced")
}

func TestCountTasks(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	tasks := []*Task{
		newTask(user, "a", "2024-01-05", "2024-01-06"),
		newTask(user, "b", "2024-01-20", "2024-01-21"),
		newTask(user, "c", "2024-02-01", "2024-02-02"),
		newTask(user, "d", "", "2024-02-02"),
	}
	tasks[2].Status = "In Progress"
	for _, task := range tasks {
		require.NoError(t, repo.CreateTask(ctx, task))
	}

	filter := TaskFilter{UserID: user.ID, Username: user.Username}

	byStatus, err := repo.CountTasksByStatus(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []StatusCount{{Status: "In Progress", Count: 1}, {Status: "Pending", Count: 3}}, byStatus)

	byMonth, err := repo.CountTasksByMonth(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []MonthCount{{Month: "2024-01", Count: 2}, {Month: "2024-02", Count: 1}}, byMonth)
}

func TestQueryTimeout(t *testing.T) {
	repo, err := NewWithOptions(":memory:", Options{QueryTimeout: time.Nanosecond, WriteTimeout: time.Nanosecond})
	require.NoError(t, err)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.ListUsers(ctx)
	assert.Error(t, err)
}
