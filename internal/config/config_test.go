package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/pathrules"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// TestLoadIgnoreRulesMissingFile verifies an absent ignore file yields an empty rule set.
func TestLoadIgnoreRulesMissingFile(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	loadedRules, loadError := LoadIgnoreRules(rootDirectory, true)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreRules failed: %v", loadError)
	}
	if len(loadedRules) != 0 {
		testingHandle.Fatalf("expected no rules, got %v", loadedRules)
	}
}

// TestLoadIgnoreRulesParsesFile verifies rules load in declaration order with
// comments dropped and negations preserved.
func TestLoadIgnoreRulesParsesFile(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "# comment\n*.log\n!keep.log\n\nbuild/\n")

	loadedRules, loadError := LoadIgnoreRules(rootDirectory, true)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreRules failed: %v", loadError)
	}

	expectedRules := []pathrules.Rule{
		{Pattern: "*.log", Action: pathrules.ActionExclude},
		{Pattern: "keep.log", Action: pathrules.ActionInclude},
		{Pattern: "build/", Action: pathrules.ActionExclude},
	}
	if len(loadedRules) != len(expectedRules) {
		testingHandle.Fatalf("expected %d rules, got %v", len(expectedRules), loadedRules)
	}
	for ruleIndex, expectedRule := range expectedRules {
		if loadedRules[ruleIndex] != expectedRule {
			testingHandle.Errorf("rule %d: expected %+v, got %+v", ruleIndex, expectedRule, loadedRules[ruleIndex])
		}
	}
}

// TestLoadIgnoreRulesDisabled verifies no file is consulted when gitignore use is off.
func TestLoadIgnoreRulesDisabled(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "*.log\n")

	loadedRules, loadError := LoadIgnoreRules(rootDirectory, false)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreRules failed: %v", loadError)
	}
	if len(loadedRules) != 0 {
		testingHandle.Fatalf("expected no rules, got %v", loadedRules)
	}
}
