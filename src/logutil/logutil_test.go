package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesComponentLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Setup(Options{Dir: dir, Enabled: true, Level: "debug"}))
	t.Cleanup(func() { _ = Setup(Options{}) })

	l := Component("capture")
	l.Info().Msg("content ready")
	l.Debug().Msg("visible at debug")

	lines, err := RecentLines(LogPath(), 10)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "content ready")
	assert.Contains(t, lines[0], "cmp=capture")
	assert.Equal(t, filepath.Join(dir, logFileName), LogPath())
}

func TestSetupLevel(t *testing.T) {
	require.NoError(t, Setup(Options{Level: "warn"}))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	require.NoError(t, Setup(Options{Level: "nonsense"}))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestRecentLinesKeepsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("line ")
		b.WriteByte(byte('a' + i))
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	lines, err := RecentLines(path, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line r", "line s", "line t"}, lines)
}

func TestFilter(t *testing.T) {
	lines := []string{"INF started", "ERR boom", "INF Boom again"}
	assert.Equal(t, []string{"ERR boom", "INF Boom again"}, Filter(lines, "boom"))
	assert.Equal(t, lines, Filter(lines, "  "))
}

func TestRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), logFileName)
	require.NoError(t, os.WriteFile(path, []byte("current"), 0o644))
	require.NoError(t, os.WriteFile(archiveName(path, 1), []byte("older"), 0o644))

	rotate(path)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	got, err := os.ReadFile(archiveName(path, 1))
	require.NoError(t, err)
	assert.Equal(t, "current", string(got))
	got, err = os.ReadFile(archiveName(path, 2))
	require.NoError(t, err)
	assert.Equal(t, "older", string(got))
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	require.NoError(t, os.WriteFile(path, []byte("data\n"), 0o644))
	require.NoError(t, Clear(path))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, st.Size())
}

func TestRedactKey(t *testing.T) {
	assert.Equal(t, "********", RedactKey("short"))
	assert.Equal(t, "sk-o...wxyz", RedactKey("sk-or-abcdefwxyz"))
}
