package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProject indicates no target project could be resolved from the
// --project flag or the persisted configuration. Fatal.
var ErrNoProject = errors.New("no project configured")

// ResolveProject returns the target project: the flag value when set,
// otherwise the configured default.
func ResolveProject(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}

	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.DefaultProject != "" {
		return cfg.DefaultProject, nil
	}
	return "", fmt.Errorf("%w: pass --project or run 'buildmedic config set default-project <project>'", ErrNoProject)
}

// ResolveRecordsDir returns the configured records directory, or
// fallback when none is set.
func ResolveRecordsDir(fallback func() (string, error)) (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.RecordsDir != "" {
		return cfg.RecordsDir, nil
	}
	return fallback()
}
