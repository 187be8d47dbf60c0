package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Defense.K)
	assert.Len(t, cfg.Attack.Fractions, 11)
	assert.Len(t, cfg.Swap.Fractions, 21)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resilience.yaml")
	content := `
server:
  port: 9090
  shutdown_timeout: 10s
attack:
  strategy: betweenness_targeted_attack
  runs: 20
defense:
  k: 50
  max_distance_km: 2500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "betweenness_targeted_attack", cfg.Attack.Strategy)
	assert.Equal(t, 20, cfg.Attack.Runs)
	assert.Equal(t, 50, cfg.Defense.K)
	assert.Equal(t, 2500.0, cfg.Defense.MaxDistanceKM)
	// untouched sections keep defaults
	assert.Equal(t, 20000, cfg.Swap.MaxTrials)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"RESILIENCE_PORT":                 "7000",
		"RESILIENCE_DATA_DIR":             "/srv/openflights",
		"LOG_LEVEL":                       "debug",
		"CORS_ALLOWED_ORIGINS":            "https://a.example, https://b.example,",
		"RESILIENCE_WORKERS":              "4",
		"RESILIENCE_S3_ENDPOINT":          "http://localhost:9000",
		"RESILIENCE_S3_ACCESS_KEY_ID":     "minio",
		"RESILIENCE_S3_SECRET_ACCESS_KEY": "minio123",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/srv/openflights", cfg.Data.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 4, cfg.Attack.Workers)
	assert.Equal(t, "http://localhost:9000", cfg.Precomputed.S3Endpoint)
	assert.Equal(t, "minio", cfg.Precomputed.S3AccessKeyID)
	assert.Equal(t, "minio123", cfg.Precomputed.S3SecretAccessKey)
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{"RESILIENCE_PORT": "eighty"}))
	assert.Error(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Attack.Strategy = "closeness"
	cfg.Attack.Fractions = []float64{0.5, 0.1}
	cfg.Precomputed.S3Bucket = "bucket"
	cfg.Precomputed.S3Key = ""
	cfg.Precomputed.S3AccessKeyID = "minio"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	for _, field := range []string{"server.port", "attack.strategy", "attack.fractions", "precomputed.s3_key", "precomputed.s3_secret_access_key"} {
		assert.Contains(t, err.Error(), field)
	}
}
