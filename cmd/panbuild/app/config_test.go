package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/sources"
	"github.com/louib/panbuild/pkg/store"
)

// isolate runs the test from an empty directory with an empty home.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.ConfigFile)
	assert.Empty(t, config.LogLevel)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
	assert.Equal(t, store.BackendFiles, config.Store.Backend)
	assert.Equal(t, "./projects", config.Store.Dir)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout)
	assert.Equal(t, "panbuild", config.UserAgent)
	assert.Empty(t, config.Sources)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PB_OUT_DIR", "/srv/out")
	t.Setenv("PB_LOG_LEVEL", "debug")
	t.Setenv("PB_STORE_BACKEND", "sqlite")
	t.Setenv("PB_STORE_CACHE_SIZE", "64")
	t.Setenv("PB_HTTP_TIMEOUT", "10s")
	t.Setenv("PB_SOURCES_ENABLED", "gitlab, Debian")
	t.Setenv("PB_SOURCES_GITLAB_INSTANCES", "gitlab.gnome.org,invent.kde.org")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/out", config.OutDir)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, store.BackendSQLite, config.Store.Backend)
	assert.Equal(t, 64, config.Store.CacheSize)
	assert.Equal(t, 10*time.Second, config.HTTPTimeout)
	assert.Equal(t, []sources.ID{sources.GitLabID, sources.DebianID}, config.Sources)
	assert.Equal(t, []string{"gitlab.gnome.org", "invent.kde.org"}, config.GitLabHosts)

	sc := config.SourceConfig()
	assert.Equal(t, config.GitLabHosts, sc.GitLabInstances)
	assert.Equal(t, 10*time.Second, sc.HTTPTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".panbuild.yaml"), []byte(`
projects_dir: ./records
store:
  backend: memory
sources:
  enabled: [homebrew]
  gitlab:
    min_forks: 5
  debian:
    indexes:
      - ./Sources.gz
`), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ".panbuild.yaml", filepath.Base(config.ConfigFile))
	assert.Equal(t, "./records", config.Store.Dir)
	assert.Equal(t, store.BackendMemory, config.Store.Backend)
	assert.Equal(t, []sources.ID{sources.HomebrewID}, config.Sources)
	assert.Equal(t, 5, config.GitLabMinForks)
	assert.Equal(t, []string{"./Sources.gz"}, config.DebianIndexes)
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := isolate(t)
	t.Cleanup(func() { _ = os.Unsetenv("PB_SOURCES_GITHUB_URL") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PB_SOURCES_GITHUB_URL=http://127.0.0.1:9999\n"), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", config.GitHubURL)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsConfigError(err))

	t.Setenv("PB_SOURCES_ENABLED", "sourceforge")
	_, err = LoadConfig("")
	assert.True(t, errors.IsConfigError(err))
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}
	config.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "warn", config.LogLevel)

	config.UpdateFromFlags(false, false, false, "json", "trace")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "trace", config.LogLevel)
}
