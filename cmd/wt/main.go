package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"work-tracker/internal/api"
	"work-tracker/internal/cli"
	"work-tracker/internal/config"
	"work-tracker/internal/logging"
)

func main() {
	env := config.GetEnvironment()

	root := cli.NewRootCommand(func(cfg *config.Config) (api.BusinessAPI, io.Closer, error) {
		return setup(env, cfg)
	})

	if err := root.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup starts logging and opens the repository picked by env
func setup(env config.Environment, cfg *config.Config) (api.BusinessAPI, io.Closer, error) {
	if err := os.MkdirAll(cfg.Database.Dir, os.FileMode(cfg.Database.DirPermissions)); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := logging.Init(logging.Config{Debug: cfg.Application.Debug, Dir: cfg.GetLogDir()}); err != nil {
		return nil, nil, err
	}
	logging.Debugf("starting in %s environment, data directory %s\n", env, cfg.Database.Dir)

	repo, err := config.CreateRepositoryForEnvironment(env, cfg)
	if err != nil {
		logging.Error("failed to open repository", "err", err)
		return nil, nil, err
	}

	return api.NewBusinessAPI(repo, cfg), repo, nil
}
