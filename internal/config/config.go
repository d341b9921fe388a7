// Package config loads ignore rules and layered application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/woozymasta/pathrules"

	"github.com/temirov/repodump/internal/utils"
)

// LoadIgnoreRules reads the ignore-rules file at the repository root and
// returns its rules in declaration order. A missing file yields an empty rule
// set, not an error. When useGitignore is false no file is consulted at all.
func LoadIgnoreRules(repositoryRootPath string, useGitignore bool) ([]pathrules.Rule, error) {
	if !useGitignore {
		return nil, nil
	}

	ignoreFilePath := filepath.Join(repositoryRootPath, utils.GitIgnoreFileName)
	if _, statError := os.Stat(ignoreFilePath); statError != nil {
		if os.IsNotExist(statError) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", ignoreFilePath, statError)
	}

	loadedRules, loadError := pathrules.LoadRulesFile(ignoreFilePath, pathrules.ParseOptions{})
	if loadError != nil {
		return nil, fmt.Errorf("loading %s from %s: %w", utils.GitIgnoreFileName, repositoryRootPath, loadError)
	}
	return loadedRules, nil
}
