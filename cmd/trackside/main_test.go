package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigFile(t *testing.T, path string) {
	t.Helper()
	previous := configFile
	configFile = path
	t.Cleanup(func() { configFile = previous })
}

func TestPreRunValidatesDefaults(t *testing.T) {
	withConfigFile(t, "testdata/nonexistent_config.yaml")
	t.Setenv("AWS_SECRETS_ENABLED", "")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotNil(t, logger)
}

func TestPreRunRejectsInvalidConfig(t *testing.T) {
	withConfigFile(t, "testdata/invalid_config.yaml")
	t.Setenv("AWS_SECRETS_ENABLED", "")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onehorsepolicy")
}

func TestPreRunRequiresSecretsEnvironment(t *testing.T) {
	withConfigFile(t, "testdata/nonexistent_config.yaml")
	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_SECRET_NAME", "")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_REGION")
}
