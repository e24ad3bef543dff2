package services

import (
	"context"
	"fmt"
	"time"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/repository/sqlite"
)

// rewardServiceImpl implements the RewardService interface
type rewardServiceImpl struct {
	repo   sqlite.Repository
	cfg    *config.Config
	mapper *domain.Mapper
}

// NewRewardService creates a new RewardService instance
func NewRewardService(repo sqlite.Repository, cfg *config.Config) RewardService {
	return &rewardServiceImpl{
		repo:   repo,
		cfg:    cfg,
		mapper: domain.NewMapper(),
	}
}

// GetReward returns the user's reward, creating the level 1 row for users
// registered before rewards existed
func (r *rewardServiceImpl) GetReward(ctx context.Context, user domain.User) (*domain.Reward, error) {
	if user.ID <= 0 {
		return nil, errors.NewValidationError("invalid user ID", nil)
	}

	dbReward, err := r.repo.GetReward(ctx, user.ID)
	if err == nil {
		reward := r.mapper.Reward.FromDatabase(*dbReward)
		return &reward, nil
	}
	if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil, err
	}

	reward := domain.NewReward(user.ID)
	if err := r.save(ctx, reward); err != nil {
		return nil, err
	}
	return &reward, nil
}

// AddExp adds amount EXP, clamped to the level 30 ceiling
func (r *rewardServiceImpl) AddExp(ctx context.Context, user domain.User, amount int) (*RewardUpdate, error) {
	if amount < 0 {
		return nil, errors.NewInvalidInputError("exp", amount, "must not be negative")
	}

	before, err := r.GetReward(ctx, user)
	if err != nil {
		return nil, err
	}

	after := before.AddExp(amount)
	if after.Exp != before.Exp || after.Level != before.Level {
		if err := r.save(ctx, after); err != nil {
			return nil, err
		}
	}

	return newRewardUpdate(user, *before, after), nil
}

func newRewardUpdate(user domain.User, before, after domain.Reward) *RewardUpdate {
	update := &RewardUpdate{
		Reward:    after,
		ExpGained: after.Exp - before.Exp,
		LeveledUp: after.Level > before.Level,
	}
	if update.LeveledUp {
		logging.Info("level up", "username", user.Username, "level", after.Level)
	}
	return update
}

// EquipAvatar sets the avatar if it is unlocked at the user's level
func (r *rewardServiceImpl) EquipAvatar(ctx context.Context, user domain.User, name string) (*domain.Reward, error) {
	avatar, ok := domain.FindAvatar(name)
	if !ok {
		return nil, errors.NewNotFoundError("avatar", name)
	}

	reward, err := r.GetReward(ctx, user)
	if err != nil {
		return nil, err
	}
	if !avatar.Unlocked(reward.Level) {
		return nil, errors.NewValidationError(
			fmt.Sprintf("avatar %s unlocks at level %d (current level %d)", avatar.Name, avatar.UnlockLevel, reward.Level), nil)
	}

	reward.Avatar = avatar.Name
	if err := r.save(ctx, *reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// ListAvatars returns the catalog annotated for the user's level
func (r *rewardServiceImpl) ListAvatars(ctx context.Context, user domain.User) ([]AvatarStatus, error) {
	reward, err := r.GetReward(ctx, user)
	if err != nil {
		return nil, err
	}

	catalog := domain.Avatars()
	statuses := make([]AvatarStatus, len(catalog))
	for i, avatar := range catalog {
		statuses[i] = AvatarStatus{
			Avatar:   avatar,
			Unlocked: avatar.Unlocked(reward.Level),
			Equipped: avatar.Name == reward.Avatar,
		}
	}
	return statuses, nil
}

// AwardFocusSession grants ExpPerFocusMinute for every full minute focused
func (r *rewardServiceImpl) AwardFocusSession(ctx context.Context, user domain.User, elapsed time.Duration) (*FocusResult, error) {
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := int(elapsed / time.Minute)

	award := domain.MaxExp
	if rate := r.cfg.Rewards.ExpPerFocusMinute; rate == 0 || minutes <= domain.MaxExp/rate {
		award = minutes * rate
	}

	update, err := r.AddExp(ctx, user, award)
	if err != nil {
		return nil, err
	}
	return &FocusResult{Duration: elapsed, Minutes: minutes, Reward: update}, nil
}

func (r *rewardServiceImpl) save(ctx context.Context, reward domain.Reward) error {
	dbReward := r.mapper.Reward.ToDatabase(reward)
	return r.repo.UpsertReward(ctx, &dbReward)
}
