package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"github.com/stretchr/testify/require"
)

// RequireValidProject asserts that a project structure is correctly initialized
func RequireValidProject(t *testing.T, projectDir string) {
	t.Helper()

	require.FileExists(t, filepath.Join(projectDir, consts.ConfigFile), "tsqlrunner.yaml should exist")
	require.DirExists(t, filepath.Join(projectDir, "tests"), "tests directory should exist")
	require.FileExists(t, filepath.Join(projectDir, "tests", "ExampleTests.sql"), "example tests should exist")
	require.DirExists(t, filepath.Join(projectDir, consts.DefaultFrameworkDir), "framework directory should exist")
}

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		contentStr := string(content)
		for _, check := range checks {
			check(contentStr)
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireFileNotContains returns a check function that verifies file doesn't contain text
func RequireFileNotContains(t *testing.T, unexpected string) func(string) {
	return func(content string) {
		require.NotContains(t, content, unexpected, "File should not contain: %s", unexpected)
	}
}
