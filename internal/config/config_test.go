package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Viper keeps package-level state, so defaults and the file override are
// exercised in one sequence against the same directory.
func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.HTTP.Timeout)
	require.Equal(t, ".nextchamp/session.json", cfg.Session.Path)
	require.Equal(t, ".", cfg.Downloads.Dir)

	yaml := `
server:
  base_url: "http://backend.internal:9000"
http:
  timeout: "90s"
downloads:
  dir: "/tmp/nextchamp"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "http://backend.internal:9000", cfg.Server.BaseURL)
	require.Equal(t, 90*time.Second, cfg.HTTP.Timeout)
	require.Equal(t, "/tmp/nextchamp", cfg.Downloads.Dir)
	// Keys the file omits keep their defaults.
	require.Equal(t, ".nextchamp/session.json", cfg.Session.Path)
}
