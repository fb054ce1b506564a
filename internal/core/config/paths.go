package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot  string
	StateDir     string
	DatabaseDir  string
	DBPath       string
	SessionsFile string
	ResultsFile  string
	ReportFile   string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := ResolveRelative(cwd, cfg.Paths.ProjectRoot)
	stateDir := ResolveRelative(projectRoot, cfg.Paths.StateDir)
	databaseDir := ResolveRelative(projectRoot, cfg.Paths.DatabaseDir)

	return ResolvedPaths{
		ProjectRoot:  projectRoot,
		StateDir:     stateDir,
		DatabaseDir:  databaseDir,
		DBPath:       ResolveRelative(databaseDir, cfg.DB.Path),
		SessionsFile: ResolveRelative(projectRoot, cfg.Paths.SessionsFile),
		ResultsFile:  ResolveRelative(projectRoot, cfg.Paths.ResultsFile),
		ReportFile:   ResolveRelative(projectRoot, cfg.Paths.ReportFile),
	}, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
