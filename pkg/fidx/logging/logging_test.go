package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fidx/pkg/fidx/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]charmlog.Level{
		"debug":   charmlog.DebugLevel,
		"info":    charmlog.InfoLevel,
		"":        charmlog.InfoLevel,
		"warn":    charmlog.WarnLevel,
		"warning": charmlog.WarnLevel,
		"ERROR":   charmlog.ErrorLevel,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, "level %q", in)
		assert.Equal(t, want, got, "level %q", in)
	}

	_, err := logging.ParseLevel("loud")
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestInitRejectsInvalidLevels(t *testing.T) {
	err := logging.Init(logging.Config{Level: "loud"})
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)

	err = logging.Init(logging.Config{Level: "info", ConsoleLevel: "shout"})
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestGetBeforeInitDiscards(t *testing.T) {
	logger := logging.Get("orphan")
	require.NotNil(t, logger)
	logger.Info("goes nowhere")
	logger.Error("also nowhere")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidx.log")
	require.NoError(t, logging.Init(logging.Config{Level: "debug", Path: path}))
	defer logging.Close()

	logger := logging.Get("scanner")
	logger.Info("scan started", "root", "/data")
	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan started")
	assert.Contains(t, string(data), "scanner")
	assert.Contains(t, string(data), "/data")
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidx.log")
	cfg := logging.Config{
		Level:      "debug",
		Path:       path,
		Components: map[string]string{"quiet": "error"},
	}
	require.NoError(t, logging.Init(cfg))
	defer logging.Close()

	quiet := logging.Get("quiet")
	quiet.Info("suppressed line")
	quiet.Error("surfaced line")

	chatty := logging.Get("chatty")
	chatty.Debug("debug line")

	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed line")
	assert.Contains(t, string(data), "surfaced line")
	assert.Contains(t, string(data), "debug line")
}
