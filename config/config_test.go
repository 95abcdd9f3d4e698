package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfigFile(t, `
sink:
  partitions: 8
  replicationFactor: 3
`)

	config, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, config.Sink.Partitions)
	assert.Equal(t, 3, config.Sink.ReplicationFactor)
}

func TestReadConfigDefaults(t *testing.T) {
	// Unset fields keep their defaults.
	path := writeConfigFile(t, `
sink:
  partitions: 2
`)

	config, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, config.Sink.Partitions)
	assert.Equal(t, DefaultConfig().Sink.ReplicationFactor, config.Sink.ReplicationFactor)
}

func TestReadConfigInvalid(t *testing.T) {
	path := writeConfigFile(t, `
sink:
  partitions: 0
`)

	_, err := ReadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partitions must be at least 1")
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Sink.ReplicationFactor = 0
	require.Error(t, bad.Validate())
}
