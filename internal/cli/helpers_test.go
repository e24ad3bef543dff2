package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"work-tracker/internal/api"
	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/services"
	"work-tracker/internal/session"
	"work-tracker/internal/settings"
)

// fixedNow is 2025-03-15 10:30 local time
var fixedNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.Local)

// fakePrompter answers prompts from queues
type fakePrompter struct {
	inputs    []string
	passwords []string
	confirm   bool
	asked     []string
}

func (p *fakePrompter) Input(title string) (string, error) {
	p.asked = append(p.asked, title)
	if len(p.inputs) == 0 {
		return "", nil
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *fakePrompter) Password(title string) (string, error) {
	p.asked = append(p.asked, title)
	if len(p.passwords) == 0 {
		return "", nil
	}
	v := p.passwords[0]
	p.passwords = p.passwords[1:]
	return v, nil
}

func (p *fakePrompter) Confirm(title string) (bool, error) {
	p.asked = append(p.asked, title)
	return p.confirm, nil
}

// testCLI runs commands against one in-memory database
type testCLI struct {
	t        *testing.T
	api      api.BusinessAPI
	prompter *fakePrompter
	focused  time.Duration
}

func setupTestCLI(t *testing.T) *testCLI {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := config.NewConfig()
	cfg.Security.PBKDF2Iterations = 1000

	dir := t.TempDir()
	container := services.NewServiceContainerWithTime(repo, cfg,
		services.NewTimeServiceWithClock(func() time.Time { return fixedNow }))

	return &testCLI{
		t: t,
		api: api.NewBusinessAPIWithServices(container,
			session.NewStore(filepath.Join(dir, "login_state.json")),
			settings.NewStore(filepath.Join(dir, "user_settings.json"))),
		prompter: &fakePrompter{},
	}
}

// run executes one wt invocation and returns its output
func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(
		func(cfg *config.Config) (api.BusinessAPI, io.Closer, error) {
			return c.api, nil, nil
		},
		WithOutput(&out),
		WithPrompter(c.prompter),
		WithFocusRunner(func(label string, theme domain.Theme) (time.Duration, error) {
			return c.focused, nil
		}),
	)
	err := root.Execute(context.Background(), args)
	return out.String(), err
}

// mustRun fails the test if the command fails
func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "wt %v", args)
	return out
}

// login registers and logs in username with password "secret"
func (c *testCLI) login(username string) {
	c.t.Helper()
	c.mustRun("register", "--username", username, "--password", "secret")
	c.mustRun("login", "--username", username, "--password", "secret")
}
