package log

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	b := NewWithWriter(&buf, logging.NOTICE, nil)
	l := b.GetLogger("test")

	l.Debugf("hidden %d", 1)
	l.Noticef("shown %d", 2)
	l.Errorf("shown %d", 3)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Equal(t, 2, strings.Count(out, "shown"))
	require.Contains(t, out, "test: shown 2")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("", "LOUD", false)
	require.Error(t, err)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.log")
	b, err := New(path, "debug", false)
	require.NoError(t, err)
	b.GetLogger("file").Info("to disk")
	require.NoError(t, b.Close())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, logging.DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, logging.NOTICE, lvl)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}
