package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/repocat/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestNewWith_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWith(&buf, "", "info")

	log.Info("added file", "path", "README.md")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "added file", rec["msg"])
	assert.Equal(t, "README.md", rec["path"])
}

func TestNewWith_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWith(&buf, "text", "info")

	log.Info("added file", "path", "README.md")

	assert.Contains(t, buf.String(), `msg="added file"`)
	assert.Contains(t, buf.String(), "path=README.md")
}

func TestNewWith_LevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWith(&buf, "text", "warn")

	log.Info("dropped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
