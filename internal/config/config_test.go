package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://cms.uobmydigitalspace.com", cfg.Platform.BaseURL)
	assert.Equal(t, 50, cfg.Platform.PageSize)
	assert.Equal(t, 18, cfg.Platform.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.Platform.Timeout)
	assert.Equal(t, "uob-submissions", cfg.Report.FilePrefix)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platform:
  tenant: acme
  chunk_size: 10
context:
  group_serial: GRP-FILE
report:
  timezone: Asia/Jakarta
`), 0o644))

	t.Setenv("CONTEXT_STRUCTURE_SERIAL", "Node-ENV")
	t.Setenv("PLATFORM_TENANT", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Platform.Tenant)
	assert.Equal(t, 10, cfg.Platform.ChunkSize)
	assert.Equal(t, "GRP-FILE", cfg.Context.GroupSerial)
	assert.Equal(t, "Node-ENV", cfg.Context.StructureSerial)

	loc, err := cfg.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestReportLocation(t *testing.T) {
	loc, err := ReportConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = ReportConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
