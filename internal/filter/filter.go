// Package filter decides which filesystem paths belong in a dump.
package filter

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"

	"github.com/temirov/repodump/internal/utils"
)

// Filter evaluates candidate paths against the ignore-rule-set and the
// caller-supplied include and exclude overrides. All matcher state is owned by
// the Filter instance, so concurrent dump invocations stay isolated.
type Filter struct {
	ignoreMatcher  *pathrules.Matcher
	includeMatcher *pathrules.Matcher
	excludeMatcher *pathrules.Matcher
}

// New compiles the ignore rules and override patterns into a Filter.
// Ignore rules keep their declaration order so later rules, including
// negations, override earlier ones. Override patterns use the same
// gitignore-style syntax as the rule file.
func New(ignoreRules []pathrules.Rule, includePatterns []string, excludePatterns []string) (*Filter, error) {
	ignoreMatcher, ignoreCompileError := compileRuleMatcher(ignoreRules)
	if ignoreCompileError != nil {
		return nil, fmt.Errorf("compiling ignore rules: %w", ignoreCompileError)
	}

	includeMatcher, includeCompileError := compilePatternMatcher(includePatterns)
	if includeCompileError != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", includeCompileError)
	}

	excludeMatcher, excludeCompileError := compilePatternMatcher(excludePatterns)
	if excludeCompileError != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", excludeCompileError)
	}

	return &Filter{
		ignoreMatcher:  ignoreMatcher,
		includeMatcher: includeMatcher,
		excludeMatcher: excludeMatcher,
	}, nil
}

// ShouldInclude reports whether the path at relativePath belongs in the dump.
// Precedence, highest first: the .git subtree is always excluded, then exclude
// overrides, then include overrides, then the ignore-rule-set where the last
// matching rule wins. A directory excluded here is never descended into, so an
// include override for a file inside an excluded directory takes effect only
// when the override also matches the directory itself.
func (pathFilter *Filter) ShouldInclude(relativePath string, isDirectory bool) bool {
	if isInsideGitDirectory(relativePath) {
		return false
	}
	if pathFilter.excludeMatcher != nil && pathFilter.excludeMatcher.Decide(relativePath, isDirectory).Matched {
		return false
	}
	if pathFilter.includeMatcher != nil && pathFilter.includeMatcher.Decide(relativePath, isDirectory).Matched {
		return true
	}
	if pathFilter.ignoreMatcher != nil {
		return pathFilter.ignoreMatcher.Included(relativePath, isDirectory)
	}
	return true
}

// compileRuleMatcher builds a matcher over parsed rules, or nil when there are none.
func compileRuleMatcher(rules []pathrules.Rule) (*pathrules.Matcher, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	return pathrules.NewMatcher(rules, pathrules.MatcherOptions{DefaultAction: pathrules.ActionInclude})
}

// compilePatternMatcher builds a matcher whose Matched result reports whether
// any of the provided patterns hits a candidate path.
func compilePatternMatcher(patterns []string) (*pathrules.Matcher, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	overrideRules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		overrideRules = append(overrideRules, pathrules.Rule{Pattern: trimmedPattern, Action: pathrules.ActionExclude})
	}
	if len(overrideRules) == 0 {
		return nil, nil
	}
	return pathrules.NewMatcher(overrideRules, pathrules.MatcherOptions{DefaultAction: pathrules.ActionInclude})
}

// isInsideGitDirectory reports whether any segment of relativePath is the git directory.
func isInsideGitDirectory(relativePath string) bool {
	for _, pathSegment := range strings.Split(relativePath, "/") {
		if pathSegment == utils.GitDirectoryName {
			return true
		}
	}
	return false
}
