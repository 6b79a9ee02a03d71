package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DataDir  string `json:"data_dir"`
	Interval int    `json:"interval"`
	Verbose  bool   `json:"verbose"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := ReadOptional[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{}, cfg)

	err = os.WriteFile(name, []byte(`{
		// json5 allows comments and trailing commas
		data_dir: "data",
		interval: 6,
	}`), 0644)
	require.NoError(t, err)

	cfg, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{DataDir: "data", Interval: 6}, cfg)

	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{interval: 2, verbose: true}`), 0644)
	require.NoError(t, err)

	cfg, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{DataDir: "data", Interval: 2, Verbose: true}, cfg)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalPath("config.json5"))
	require.Equal(t, filepath.Join("etc", "rewards.local.json5"), LocalPath(filepath.Join("etc", "rewards.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(name, []byte(`{data_dir: `), 0644))

	_, err := ReadOptional[testConfig](name)
	require.ErrorContains(t, err, "parse")
}
