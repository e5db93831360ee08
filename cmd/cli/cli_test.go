package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/urlregistry/cmd"
	_ "github.com/axellelanca/urlregistry/cmd/cli"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
storage:
  type: "file"
  file_path: %q
database:
  name: %q
eventlog:
  file_path: %q
log:
  level: "error"
`, filepath.Join(dir, "short_urls.json"), filepath.Join(dir, "registry.db"), filepath.Join(dir, "event_log.json"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.RootCmd.SetOut(buf)
	cmd.RootCmd.SetErr(buf)
	cmd.RootCmd.SetArgs(args)
	err := cmd.RootCmd.Execute()
	return buf.String(), err
}

// Flags are package globals, so every invocation passes all of them explicitly.
func TestCLI_Workflow(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "create", "--url", "https://go.dev/doc", "--code", "godocs", "--validity", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Code: godocs")
	assert.Contains(t, out, "Full URL: http://localhost:8080/godocs")

	_, err = run(t, "--config", cfg, "create", "--url", "https://go.dev/blog", "--code", "godocs", "--validity", "60")
	assert.ErrorContains(t, err, "short code already taken")

	_, err = run(t, "--config", cfg, "create", "--url", "https://go.dev/blog", "--code", "goblog", "--validity", "0")
	assert.ErrorContains(t, err, "validity")

	out, err = run(t, "--config", cfg, "resolve", "godocs", "--referrer", "https://news.example")
	require.NoError(t, err)
	assert.Contains(t, out, "https://go.dev/doc")

	_, err = run(t, "--config", cfg, "resolve", "nothing", "--referrer", "")
	assert.ErrorContains(t, err, "doesn't exist")

	out, err = run(t, "--config", cfg, "stats", "godocs")
	require.NoError(t, err)
	assert.Contains(t, out, "Total clicks: 1")
	assert.Contains(t, out, "https://news.example")
	assert.Contains(t, out, "Status: Active")

	out, err = run(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "godocs")
	assert.Contains(t, out, "Active")

	out, err = run(t, "--config", cfg, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1  Active: 1  Expired: 0  Clicks: 1")
	assert.Contains(t, out, "godocs (1 clicks)")

	out, err = run(t, "--config", cfg, "logs", "--clear=false")
	require.NoError(t, err)
	assert.Contains(t, out, "URL click recorded")
	assert.Contains(t, out, "URL shortened successfully")

	out, err = run(t, "--config", cfg, "logs", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Event log cleared.")

	out, err = run(t, "--config", cfg, "logs", "--clear=false")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCLI_Migrate(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "Database migrations executed successfully.")
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg), "registry.db"))
}
