// Package config loads roam's project-level configuration, following
// onedusk-pd's internal/config.Load pattern: a best-effort YAML read that
// returns a zero-value config (not an error) when no file is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RepoDescriptor is one repository in a multi-repo workspace: a short
// alias (no "/") and its absolute root path. File paths discovered under
// this repo are persisted as "<alias>/<relpath>".
type RepoDescriptor struct {
	Alias        string `yaml:"alias"`
	AbsolutePath string `yaml:"path"`
}

// Validate checks the alias/path contract spec §6 requires.
func (r RepoDescriptor) Validate() error {
	if r.Alias == "" {
		return fmt.Errorf("config: repo descriptor alias must not be empty")
	}
	if strings.Contains(r.Alias, "/") {
		return fmt.Errorf("config: repo descriptor alias %q must not contain '/'", r.Alias)
	}
	if !filepath.IsAbs(r.AbsolutePath) {
		return fmt.Errorf("config: repo descriptor path %q must be absolute", r.AbsolutePath)
	}
	return nil
}

// ProjectConfig holds project-level settings loaded from roam.yml.
type ProjectConfig struct {
	DatabasePath string           `yaml:"databasePath,omitempty"`
	ExcludeDirs  []string         `yaml:"excludeDirs,omitempty"`
	Verbose      bool             `yaml:"verbose,omitempty"`
	Workspace    []RepoDescriptor `yaml:"workspace,omitempty"`
}

// IsWorkspace reports whether this config describes a multi-repo workspace.
func (c *ProjectConfig) IsWorkspace() bool {
	return len(c.Workspace) > 0
}

// Load attempts to read roam.yml or roam.yaml from dir. Returns a
// zero-value config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"roam.yml", "roam.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		for _, repo := range cfg.Workspace {
			if err := repo.Validate(); err != nil {
				return nil, err
			}
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
