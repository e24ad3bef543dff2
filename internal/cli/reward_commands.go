package cli

import (
	"context"
	"fmt"
	"io"

	"work-tracker/internal/api"
	"work-tracker/internal/domain"
)

// RewardCommand shows EXP, level and avatar
type RewardCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewRewardCommand creates a new reward command handler
func NewRewardCommand(app *App) *RewardCommand {
	return &RewardCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the reward command
func (c *RewardCommand) Execute(ctx context.Context) error {
	reward, err := c.businessAPI.GetReward(ctx)
	if err != nil {
		return c.errorHandler.Handle("get reward", err)
	}

	fmt.Fprintf(c.out, "Level %d/%d\n", reward.Level, domain.MaxLevel)
	fmt.Fprintf(c.out, "EXP   %d/%d\n", reward.Exp, domain.MaxExp)
	if next := reward.ExpToNextLevel(); next > 0 {
		fmt.Fprintf(c.out, "Next level in %d EXP\n", next)
	} else {
		fmt.Fprintln(c.out, "Maximum level reached")
	}
	fmt.Fprintf(c.out, "Avatar %s\n", reward.Avatar)
	return nil
}

// AvatarListCommand lists the avatar catalog
type AvatarListCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewAvatarListCommand creates a new avatar list command handler
func NewAvatarListCommand(app *App) *AvatarListCommand {
	return &AvatarListCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the avatar list command
func (c *AvatarListCommand) Execute(ctx context.Context) error {
	avatars, err := c.businessAPI.ListAvatars(ctx)
	if err != nil {
		return c.errorHandler.Handle("list avatars", err)
	}

	theme, _ := c.businessAPI.GetTheme(ctx)
	st := stylesFor(theme)
	for _, a := range avatars {
		line := fmt.Sprintf("%-14s level %d", a.Avatar.Name, a.Avatar.UnlockLevel)
		switch {
		case a.Equipped:
			fmt.Fprintln(c.out, st.done.Render(line+" (equipped)"))
		case a.Unlocked:
			fmt.Fprintln(c.out, line)
		default:
			fmt.Fprintln(c.out, st.muted.Render(line+" (locked)"))
		}
	}
	return nil
}

// AvatarEquipCommand equips an unlocked avatar
type AvatarEquipCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewAvatarEquipCommand creates a new avatar equip command handler
func NewAvatarEquipCommand(app *App) *AvatarEquipCommand {
	return &AvatarEquipCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the avatar equip command
func (c *AvatarEquipCommand) Execute(ctx context.Context, name string) error {
	reward, err := c.businessAPI.EquipAvatar(ctx, name)
	if err != nil {
		return c.errorHandler.Handle("equip avatar", err)
	}
	fmt.Fprintf(c.out, "Equipped avatar %s\n", reward.Avatar)
	return nil
}

// ThemeCommand shows or sets the colour theme
type ThemeCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewThemeCommand creates a new theme command handler
func NewThemeCommand(app *App) *ThemeCommand {
	return &ThemeCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute shows the theme, or sets it when args names one
func (c *ThemeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		theme, err := c.businessAPI.GetTheme(ctx)
		if err != nil {
			return c.errorHandler.Handle("get theme", err)
		}
		fmt.Fprintf(c.out, "Theme: %s\n", theme)
		return nil
	}

	theme, err := c.businessAPI.SetTheme(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("set theme", err)
	}
	fmt.Fprintf(c.out, "Theme set to %s\n", theme)
	return nil
}
