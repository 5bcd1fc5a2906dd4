// Package testutil provides a harness for running playbooks end to end in
// tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/dispatchgo/internal/app"
	"github.com/specialistvlad/dispatchgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a playbook run.
type HarnessResult struct {
	// Output is what the run wrote for the user: receiver output and the
	// report.
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunPlaybook writes files into a temporary directory and runs it as a
// playbook with cfg. An empty cfg.PlaybookPath means the whole directory;
// otherwise it is taken relative to the directory.
func RunPlaybook(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunPlaybookWithContext(context.Background(), t, files, cfg, modules...)
}

// RunPlaybookWithContext is RunPlaybook with a caller-provided context.
func RunPlaybookWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg.PlaybookPath = filepath.Join(dir, cfg.PlaybookPath)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("DISPATCHGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	var testApp *app.App
	runErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("application panicked | %v", r)
			}
		}()
		testApp = app.NewApp(out, logs, appConfig, modules...)
		return testApp.Run(ctx)
	}()

	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       testApp,
	}
}
