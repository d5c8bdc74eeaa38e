package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)

	path := filepath.Join(dir, "sources.yaml")
	_, err = os.Stat(path)
	require.NoError(t, err, "sources file not created")

	s := mgr.Get()
	assert.Equal(t, "CRM", s.Watchlist[0])
	assert.Len(t, s.Watchlist, 17)
	assert.Equal(t, "10Y Yield", s.MacroSeries[0].Name)
	assert.Equal(t, 5, s.HearingLimit)
	assert.Equal(t, 80, s.HearingTitleBudget)

	// A second manager reads back what the first one wrote.
	again, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, s, again.Get())
}

func TestManagerFillsPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	body := "watchlist: [AAPL, MSFT]\nhearing_limit: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	mgr, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)

	s := mgr.Get()
	assert.Equal(t, []string{"AAPL", "MSFT"}, s.Watchlist)
	assert.Equal(t, 3, s.HearingLimit)
	assert.Equal(t, 3, s.BillCap)
	assert.Equal(t, []string{"Referred", "Introduced"}, s.BillExcludeActions)
}

func TestManagerRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	body := "headline_feeds:\n  - name: broken\n    url: not a url\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := NewManager(WithConfigPath(path))
	require.Error(t, err)
}

func TestManagerReadOnlyDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	_, err := NewManager(WithConfigDir(dir), WithReadOnly())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "sources.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestManagerFallsBackWhenDirNotWritable(t *testing.T) {
	// a regular file where the config dir should be makes MkdirAll fail even as root
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	mgr, err := NewManager(WithConfigDir(filepath.Join(blocker, "CortexBrief")))
	require.NoError(t, err)

	assert.Error(t, mgr.SaveError())
	assert.Equal(t, DefaultSources().Watchlist, mgr.Get().Watchlist)
	assert.Equal(t, 5, mgr.Get().HearingLimit)
}

func TestManagerSavesWithoutError(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	require.NoError(t, err)
	assert.NoError(t, mgr.SaveError())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("FRED_API_KEY", "fred-key")
	t.Setenv("FETCH_TIMEOUT", "7s")
	t.Setenv("NOTIFY_CHANNELS", "stdout,webhook")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/brief")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fred-key", cfg.FredAPIKey)
	assert.Equal(t, "7s", cfg.FetchTimeout.String())
	assert.Equal(t, []string{"stdout", "webhook"}, cfg.NotifyChannels)
	assert.Equal(t, "15m0s", cfg.CacheTTL.String())
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")
	_, err := Load()
	require.Error(t, err)
}
