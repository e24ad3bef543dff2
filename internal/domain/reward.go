package domain

const (
	// MaxLevel is the level ceiling.
	MaxLevel = 30
	// ExpPerLevel is the EXP needed to gain one level.
	ExpPerLevel = 100
	// MaxExp is the EXP at which MaxLevel is reached. EXP never exceeds it.
	MaxExp = (MaxLevel - 1) * ExpPerLevel
	// DefaultAvatar is equipped on new rewards.
	DefaultAvatar = "default.png"
)

// LevelForExp returns min(1 + exp/100, MaxLevel). Negative exp is level 1.
func LevelForExp(exp int) int {
	if exp < 0 {
		return 1
	}
	level := 1 + exp/ExpPerLevel
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Reward is the per-user gamification state.
type Reward struct {
	UserID int64
	Exp    int
	Level  int
	Avatar string
}

// NewReward returns the level 1 state for a fresh user.
func NewReward(userID int64) Reward {
	return Reward{
		UserID: userID,
		Exp:    0,
		Level:  1,
		Avatar: DefaultAvatar,
	}
}

// AddExp returns the reward with amount added, clamped to [0, MaxExp], and
// the level recomputed.
func (r Reward) AddExp(amount int) Reward {
	exp := r.Exp
	switch {
	case amount > MaxExp-exp:
		exp = MaxExp
	case amount < -exp:
		exp = 0
	default:
		exp += amount
	}
	r.Exp = exp
	r.Level = LevelForExp(exp)
	return r
}

// ExpToNextLevel returns the EXP still needed for the next level, or 0 at
// MaxLevel.
func (r Reward) ExpToNextLevel() int {
	if r.Level >= MaxLevel {
		return 0
	}
	return r.Level*ExpPerLevel - r.Exp
}

// Avatar is a catalog entry unlocked at a level.
type Avatar struct {
	Name        string
	UnlockLevel int
}

// Unlocked reports whether the avatar is available at level.
func (a Avatar) Unlocked(level int) bool {
	return level >= a.UnlockLevel
}

var avatarCatalog = []Avatar{
	{Name: DefaultAvatar, UnlockLevel: 1},
	{Name: "fox.png", UnlockLevel: 5},
	{Name: "owl.png", UnlockLevel: 10},
	{Name: "dragon.png", UnlockLevel: 20},
	{Name: "phoenix.png", UnlockLevel: MaxLevel},
}

// Avatars returns a copy of the avatar catalog ordered by unlock level.
func Avatars() []Avatar {
	out := make([]Avatar, len(avatarCatalog))
	copy(out, avatarCatalog)
	return out
}

// FindAvatar looks an avatar up by name.
func FindAvatar(name string) (Avatar, bool) {
	for _, a := range avatarCatalog {
		if a.Name == name {
			return a, true
		}
	}
	return Avatar{}, false
}
