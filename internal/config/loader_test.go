package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.FromFile)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 2, cfg.Enrichment.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Enrichment.JobTimeout)
	assert.Empty(t, cfg.NATS.URL)
	assert.False(t, cfg.ValidateAssessments)
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  host: db.internal
  port: 6543
enrichment:
  workers: 4
  job_timeout: 30s
assessments:
  validate: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("STANDARDS_DATABASE_HOST", "override.internal")
	t.Setenv("STANDARDS_HTTP_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.FromFile)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 4, cfg.Enrichment.Workers)
	assert.Equal(t, 30*time.Second, cfg.Enrichment.JobTimeout)
	assert.True(t, cfg.ValidateAssessments)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("STANDARDS_ENRICHMENT_WORKERS", "0")
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database: [unclosed"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
}
