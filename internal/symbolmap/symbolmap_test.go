package symbolmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadSplitsOnWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolmap")
	writeFile(t, path, "IBM.N\nMSFT.O  GOOG.O\t\nAAPL.O\n")

	symbols, err := Load(path)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"IBM.N", "MSFT.O", "GOOG.O", "AAPL.O"}, symbols)
}

func TestNewWatcherLoadsInitialSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolmap")
	writeFile(t, path, "IBM.N MSFT.O")

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.True(t, w.Allowed("IBM.N"))
	require.False(t, w.Allowed("AAPL.O"))
	require.ElementsMatch(t, []string{"IBM.N", "MSFT.O"}, w.Snapshot())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolmap")
	writeFile(t, path, "IBM.N")

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.False(t, w.Allowed("AAPL.O"))
	writeFile(t, path, "IBM.N AAPL.O")

	require.Eventually(t, func() bool {
		return w.Allowed("AAPL.O")
	}, 2*time.Second, 10*time.Millisecond)
}
