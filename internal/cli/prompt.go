package cli

import (
	"strings"

	"github.com/charmbracelet/huh"

	"work-tracker/internal/errors"
)

// Prompter asks the user for values that were not given as flags
type Prompter interface {
	Input(title string) (string, error)
	Password(title string) (string, error)
	Confirm(title string) (bool, error)
}

type huhPrompter struct{}

// NewHuhPrompter returns a Prompter backed by huh terminal fields
func NewHuhPrompter() Prompter {
	return huhPrompter{}
}

func (huhPrompter) Input(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Value(&value).
		Run()
	return strings.TrimSpace(value), promptError(err)
}

func (huhPrompter) Password(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Run()
	return value, promptError(err)
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, promptError(err)
}

func promptError(err error) error {
	if err == nil {
		return nil
	}
	if err == huh.ErrUserAborted {
		return errors.NewInvalidInputError("prompt", "", "cancelled")
	}
	return err
}
