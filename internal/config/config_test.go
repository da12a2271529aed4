package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TASKDESK_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, int64(10*1024*1024), cfg.Storage.QuotaBytes)
	require.Equal(t, 20, cfg.Views.PageSize)
	require.Equal(t, "972", cfg.Contact.CountryCode)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport:
  mode: http
server:
  port: 9000
projects:
  save_debounce: 1s
  currencies: [ILS, USD]
quick_tasks:
  max_items: 50
views:
  page_size: 50
  cache_ttl: 90s
`), 0o644))

	t.Setenv("TASKDESK_CONFIG_PATH", path)
	t.Setenv("TASKDESK_SERVER_PORT", "9100")
	t.Setenv("TASKDESK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, time.Second, cfg.Projects.SaveDebounce)
	require.Equal(t, []string{"ILS", "USD"}, cfg.Projects.Currencies)
	require.Equal(t, 50, cfg.QuickTasks.MaxItems)
	require.Equal(t, 20, cfg.QuickTasks.KeepCompleted)
	require.Equal(t, 50, cfg.Views.PageSize)
	require.Equal(t, 90*time.Second, cfg.Views.CacheTTL)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "task_management_data", cfg.Projects.Key)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("TASKDESK_SERVER_PORT", "eighty")

	_, err := Load()
	require.ErrorContains(t, err, "TASKDESK_SERVER_PORT")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("TASKDESK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Transport.Mode = "carrier-pigeon"
	cfg.Views.PageSize = 7
	cfg.QuickTasks.KeepCompleted = 500
	cfg.Clients.Language = "not a tag!"
	cfg.Export.Timezone = "Mars/Olympus"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"transport.mode", "views.page_size", "keep_completed", "clients.language", "export.timezone"} {
		require.ErrorContains(t, err, want)
	}

	cfg = Default()
	cfg.Transport.Mode = "http"
	cfg.Server.Port = 0
	require.ErrorContains(t, cfg.Validate(), "server.port")
}

func TestTagAndLocation(t *testing.T) {
	tag, err := ClientsConfig{Language: "he"}.Tag()
	require.NoError(t, err)
	require.Equal(t, language.Hebrew, tag)

	loc, err := ExportConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)

	loc, err = ExportConfig{}.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)
}
