package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"work-tracker/internal/domain"
	"work-tracker/internal/errors"
	"work-tracker/internal/repository/sqlite"
)

func TestRewardService_GetRewardCreatesMissingRow(t *testing.T) {
	services, repo := setupServices(t)
	ctx := context.Background()

	// Users created before rewards existed have no row.
	dbUser := &sqlite.User{Username: "legacy", Password: "x"}
	require.NoError(t, repo.CreateUser(ctx, dbUser))
	user := domain.User{ID: dbUser.ID, Username: dbUser.Username}

	reward, err := services.RewardService.GetReward(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.NewReward(user.ID), *reward)

	stored, err := repo.GetReward(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Level)
}

func TestRewardService_AddExp(t *testing.T) {
	tests := []struct {
		name          string
		amounts       []int
		expectedExp   int
		expectedLevel int
		lastGained    int
		lastLeveledUp bool
	}{
		{
			name:          "250 EXP from zero reaches level 3",
			amounts:       []int{250},
			expectedExp:   250,
			expectedLevel: 3,
			lastGained:    250,
			lastLeveledUp: true,
		},
		{
			name:          "small award stays on level 1",
			amounts:       []int{20},
			expectedExp:   20,
			expectedLevel: 1,
			lastGained:    20,
		},
		{
			name:          "crossing a boundary levels up",
			amounts:       []int{90, 20},
			expectedExp:   110,
			expectedLevel: 2,
			lastGained:    20,
			lastLeveledUp: true,
		},
		{
			name:          "EXP clamps at the level 30 ceiling",
			amounts:       []int{2890, 500},
			expectedExp:   domain.MaxExp,
			expectedLevel: domain.MaxLevel,
			lastGained:    10,
			lastLeveledUp: true,
		},
		{
			name:          "no gain at the ceiling",
			amounts:       []int{5000, 20},
			expectedExp:   domain.MaxExp,
			expectedLevel: domain.MaxLevel,
			lastGained:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, _ := setupServices(t)
			user := registerUser(t, services, "alice")
			ctx := context.Background()

			var update *RewardUpdate
			for _, amount := range tt.amounts {
				var err error
				update, err = services.RewardService.AddExp(ctx, user, amount)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expectedExp, update.Reward.Exp)
			assert.Equal(t, tt.expectedLevel, update.Reward.Level)
			assert.Equal(t, tt.lastGained, update.ExpGained)
			assert.Equal(t, tt.lastLeveledUp, update.LeveledUp)

			reward, err := services.RewardService.GetReward(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedExp, reward.Exp)
			assert.Equal(t, tt.expectedLevel, reward.Level)
		})
	}
}

func TestRewardService_AddExpRejectsNegative(t *testing.T) {
	services, _ := setupServices(t)
	user := registerUser(t, services, "alice")

	_, err := services.RewardService.AddExp(context.Background(), user, -5)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestRewardService_EquipAvatar(t *testing.T) {
	services, _ := setupServices(t)
	user := registerUser(t, services, "alice")
	ctx := context.Background()

	_, err := services.RewardService.EquipAvatar(ctx, user, "fox.png")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "level 5")

	_, err = services.RewardService.EquipAvatar(ctx, user, "unicorn.png")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	_, err = services.RewardService.AddExp(ctx, user, 400)
	require.NoError(t, err)

	reward, err := services.RewardService.EquipAvatar(ctx, user, "fox.png")
	require.NoError(t, err)
	assert.Equal(t, "fox.png", reward.Avatar)

	stored, err := services.RewardService.GetReward(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "fox.png", stored.Avatar)
}

func TestRewardService_ListAvatars(t *testing.T) {
	services, _ := setupServices(t)
	user := registerUser(t, services, "alice")
	ctx := context.Background()

	_, err := services.RewardService.AddExp(ctx, user, 950)
	require.NoError(t, err)

	avatars, err := services.RewardService.ListAvatars(ctx, user)
	require.NoError(t, err)
	require.Len(t, avatars, len(domain.Avatars()))

	unlocked := map[string]bool{}
	for _, a := range avatars {
		unlocked[a.Avatar.Name] = a.Unlocked
	}
	assert.True(t, unlocked["default.png"])
	assert.True(t, unlocked["fox.png"])
	assert.True(t, unlocked["owl.png"])
	assert.False(t, unlocked["dragon.png"])
	assert.False(t, unlocked["phoenix.png"])

	assert.True(t, avatars[0].Equipped)
}

func TestRewardService_AwardFocusSession(t *testing.T) {
	tests := []struct {
		name            string
		elapsed         time.Duration
		expectedMinutes int
		expectedExp     int
	}{
		{name: "full minutes only", elapsed: 25*time.Minute + 59*time.Second, expectedMinutes: 25, expectedExp: 25},
		{name: "under a minute", elapsed: 45 * time.Second, expectedMinutes: 0, expectedExp: 0},
		{name: "negative treated as zero", elapsed: -time.Minute, expectedMinutes: 0, expectedExp: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, _ := setupServices(t)
			user := registerUser(t, services, "alice")

			result, err := services.RewardService.AwardFocusSession(context.Background(), user, tt.elapsed)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedMinutes, result.Minutes)
			assert.Equal(t, tt.expectedExp, result.Reward.ExpGained)
			assert.Equal(t, tt.expectedExp, result.Reward.Reward.Exp)
		})
	}
}

func TestRewardService_AwardFocusSessionCapsLargeProducts(t *testing.T) {
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := testConfig()
	cfg.Rewards.ExpPerFocusMinute = math.MaxInt / 2
	services := NewServiceContainerWithTime(repo, cfg, NewTimeServiceWithClock(func() time.Time { return fixedNow }))
	user := registerUser(t, services, "alice")

	_, err = services.RewardService.AddExp(context.Background(), user, 500)
	require.NoError(t, err)

	result, err := services.RewardService.AwardFocusSession(context.Background(), user, 3*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 180, result.Minutes)
	assert.Equal(t, domain.MaxExp, result.Reward.Reward.Exp)
	assert.Equal(t, domain.MaxLevel, result.Reward.Reward.Level)
}
