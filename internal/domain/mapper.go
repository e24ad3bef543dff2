package domain

import (
	"strings"

	"work-tracker/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(domainTask Task) sqlite.Task {
	status := domainTask.Status
	if status == "" {
		status = StatusPending
	}
	return sqlite.Task{
		ID:          domainTask.ID,
		UserID:      domainTask.UserID,
		Username:    domainTask.Username,
		Title:       domainTask.Title,
		Description: domainTask.Description,
		Priority:    domainTask.Priority,
		Category:    domainTask.Category,
		Location:    domainTask.Location,
		Notes:       domainTask.Notes,
		Notify:      domainTask.Notify,
		Status:      string(status),
		StartDate:   storedDate(domainTask.StartDate, domainTask.StoredStartDate),
		DueDate:     storedDate(domainTask.DueDate, domainTask.StoredDueDate),
		Completed:   domainTask.Completed,
	}
}

// FromDatabase converts a database Task to a domain Task. Known statuses
// are normalized to their canonical spelling; unknown text is kept.
func (m *TaskMapper) FromDatabase(dbTask sqlite.Task) Task {
	status := TaskStatus(strings.TrimSpace(dbTask.Status))
	if parsed, ok := ParseStatus(dbTask.Status); ok {
		status = parsed
	}
	return Task{
		ID:          dbTask.ID,
		UserID:      dbTask.UserID,
		Username:    dbTask.Username,
		Title:       dbTask.Title,
		Description: dbTask.Description,
		Priority:    dbTask.Priority,
		Category:    dbTask.Category,
		Location:    dbTask.Location,
		Notes:       dbTask.Notes,
		Notify:      dbTask.Notify,
		Status:      status,
		StartDate:   ParseDate(dbTask.StartDate),
		DueDate:     ParseDate(dbTask.DueDate),
		Completed:   dbTask.Completed,

		StoredStartDate: unparsedDate(dbTask.StartDate),
		StoredDueDate:   unparsedDate(dbTask.DueDate),
	}
}

// FromDatabaseSlice converts a slice of database Tasks to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) []Task {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		domainTasks[i] = m.FromDatabase(*task)
	}
	return domainTasks
}

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(domainUser User) sqlite.User {
	return sqlite.User{
		ID:       domainUser.ID,
		Username: domainUser.Username,
		Password: domainUser.PasswordHash,
	}
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(dbUser sqlite.User) User {
	return User{
		ID:           dbUser.ID,
		Username:     dbUser.Username,
		PasswordHash: dbUser.Password,
	}
}

// RewardMapper handles conversion between domain and database Reward models.
type RewardMapper struct{}

// NewRewardMapper creates a new RewardMapper instance.
func NewRewardMapper() *RewardMapper {
	return &RewardMapper{}
}

// ToDatabase converts a domain Reward to a database Reward.
func (m *RewardMapper) ToDatabase(r Reward) sqlite.Reward {
	return sqlite.Reward{UserID: r.UserID, Exp: r.Exp, Level: r.Level, Avatar: r.Avatar}
}

// FromDatabase converts a database Reward to a domain Reward. A stored
// level that disagrees with the EXP is recomputed.
func (m *RewardMapper) FromDatabase(r sqlite.Reward) Reward {
	avatar := r.Avatar
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Reward{UserID: r.UserID, Exp: r.Exp, Level: LevelForExp(r.Exp), Avatar: avatar}
}

// FilterMapper handles conversion between domain and database task filters.
type FilterMapper struct{}

// NewFilterMapper creates a new FilterMapper instance.
func NewFilterMapper() *FilterMapper {
	return &FilterMapper{}
}

// ToDatabase converts a domain TaskFilter to a database TaskFilter.
func (m *FilterMapper) ToDatabase(f TaskFilter) sqlite.TaskFilter {
	return sqlite.TaskFilter{
		UserID:    f.UserID,
		Username:  f.Username,
		Completed: f.Completed,
		Text:      strings.TrimSpace(f.Text),
		From:      FormatDate(f.From),
		To:        FormatDate(f.To),
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task   *TaskMapper
	User   *UserMapper
	Reward *RewardMapper
	Filter *FilterMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:   NewTaskMapper(),
		User:   NewUserMapper(),
		Reward: NewRewardMapper(),
		Filter: NewFilterMapper(),
	}
}
