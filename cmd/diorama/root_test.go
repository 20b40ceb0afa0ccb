package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--msaa", "8", "--vsync=false", "--assets", "https://example.com/diorama"}))

	msaa, err := cmd.Flags().GetInt("msaa")
	require.NoError(t, err)
	assert.Equal(t, 8, msaa)
	assert.True(t, cmd.Flags().Changed("vsync"))
	assert.False(t, cmd.Flags().Changed("config"))
}

func TestLoadManifestDefaultsToBuiltInScene(t *testing.T) {
	cfg, err := loadManifest("")
	require.NoError(t, err)
	assert.Contains(t, cfg.Assets, "tank")
	assert.NoError(t, cfg.Validate())
}

func TestNewFetcherSelectsSource(t *testing.T) {
	dir := t.TempDir()

	_, err := newFetcher(dir)
	assert.NoError(t, err)

	_, err = newFetcher("https://example.com/diorama")
	assert.NoError(t, err)

	_, err = newFetcher(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	file := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	_, err = newFetcher(file)
	assert.Error(t, err)
}

func TestNewLoggerAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diorama.log")
	prev := log.Writer()
	defer log.SetOutput(prev)

	logger, closeLog, err := newLogger(path)
	require.NoError(t, err)
	logger.Print("[Engine] first")
	closeLog()

	logger, closeLog, err = newLogger(path)
	require.NoError(t, err)
	logger.Print("[Engine] second")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Engine] first")
	assert.Contains(t, string(data), "[Engine] second")
}
