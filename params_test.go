package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRunFlags(t *testing.T, args ...string) (*commandParams, *cobra.Command) {
	t.Helper()
	params := &commandParams{}
	cmd := &cobra.Command{Use: "run"}
	params.addFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return params, cmd
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "ryff.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
base_url: http://from-file/api
seed: 3
continue_on_failure: true
`), 0o600))

	params, cmd := parseRunFlags(t, "--config", configFile, "--url", "http://from-flag/api")
	cfg, err := params.resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag/api", cfg.BaseURL)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(3), *cfg.Seed)
	assert.True(t, cfg.ContinueOnFailure)
}

func TestSeedFlagIsOnlyUsedWhenGiven(t *testing.T) {
	params, cmd := parseRunFlags(t, "--url", "http://localhost/api")
	cfg, err := params.resolveConfig(cmd)
	require.NoError(t, err)
	assert.Nil(t, cfg.Seed)

	params, cmd = parseRunFlags(t, "--url", "http://localhost/api", "--seed", "0")
	cfg, err = params.resolveConfig(cmd)
	require.NoError(t, err)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(0), *cfg.Seed)
}

func TestInvalidFilterIsRejected(t *testing.T) {
	params := &commandParams{}
	cmd := &cobra.Command{Use: "run"}
	params.addFlags(cmd)
	assert.Error(t, cmd.ParseFlags([]string{"--run", "("}))
}

func TestRerunCommandQuotesArguments(t *testing.T) {
	params, cmd := parseRunFlags(t, "--url", "http://localhost/api", "--run", "add post", "--skip", "trend.*",
		"--no-teardown", "--continue-on-failure")
	cfg, err := params.resolveConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t,
		"ryff-api-tests run --url http://localhost/api --seed 42 --run 'add post' --skip 'trend.*' "+
			"--no-teardown --continue-on-failure",
		params.rerunCommand(cfg, 42))
}
