package support

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TestContext holds the state for one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastStderr   string
	LastError    error
	LastDuration time.Duration

	// Test environment
	OriginalDir string
	Workspace   string
	HomeDir     string
	savedEnv    map[string]*string
}

// NewTestContext creates a scenario workspace and makes it the working
// directory, so relative paths and the "." config search path resolve to it.
func NewTestContext() (*TestContext, error) {
	originalDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	workspace, err := os.MkdirTemp("", "linecrop-cli-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	home := filepath.Join(workspace, ".home")
	if err := os.MkdirAll(home, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}

	testCtx := &TestContext{
		OriginalDir: originalDir,
		Workspace:   workspace,
		HomeDir:     home,
		savedEnv:    map[string]*string{},
	}
	// Keep user config files out of the scenario.
	testCtx.SetEnv("HOME", home)
	testCtx.SetEnv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	if err := os.Chdir(workspace); err != nil {
		return nil, fmt.Errorf("failed to enter workspace: %w", err)
	}
	return testCtx, nil
}

// SetEnv sets an environment variable for the rest of the scenario. The
// previous value is restored by Cleanup.
func (testCtx *TestContext) SetEnv(name, value string) {
	if _, saved := testCtx.savedEnv[name]; !saved {
		if old, ok := os.LookupEnv(name); ok {
			testCtx.savedEnv[name] = &old
		} else {
			testCtx.savedEnv[name] = nil
		}
	}
	_ = os.Setenv(name, value)
}

// Path resolves a workspace-relative path.
func (testCtx *TestContext) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(testCtx.Workspace, filepath.FromSlash(rel))
}

// Cleanup restores the environment and working directory and removes the
// workspace.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	for name, old := range testCtx.savedEnv {
		var err error
		if old == nil {
			err = os.Unsetenv(name)
		} else {
			err = os.Setenv(name, *old)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", name, err))
		}
	}

	if err := os.Chdir(testCtx.OriginalDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to restore working directory: %w", err))
	}
	if err := os.RemoveAll(testCtx.Workspace); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove workspace %s: %w", testCtx.Workspace, err))
	}

	return errors.Join(errs...)
}
