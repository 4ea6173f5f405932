package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseBinDeclLine(t *testing.T) {
	decl, err := ParseBinDeclLine("OPEN30=09:30-10:00", time.UTC, 20)
	require.NoError(t, err)
	require.Equal(t, "OPEN30", decl.Name)
	require.Equal(t, 9*time.Hour+30*time.Minute, decl.StartTime)
	require.Equal(t, 10*time.Hour, decl.EndTime)
	require.Equal(t, 20, decl.DayCount)
}

func TestParseBinDeclLineMalformed(t *testing.T) {
	_, err := ParseBinDeclLine("OPEN30", time.UTC, 20)
	require.Error(t, err)

	_, err = ParseBinDeclLine("OPEN30=0930-1000", time.UTC, 20)
	require.Error(t, err)
}

func TestLoadBinTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bins.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[bin]]
name = "OPEN30"
start = "09:30"
end = "10:00"
daycount = 15

[[bin]]
name = "CLOSE30"
start = "15:30"
end = "16:00"
`), 0o644))

	bins, err := LoadBinTable(path, time.UTC, 20)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	require.Equal(t, 15, bins["OPEN30"].DayCount)
	require.Equal(t, 20, bins["CLOSE30"].DayCount) // falls back to default
}

func TestLoadBinTableInvalidWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bins.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[bin]]
name = "BAD"
start = "10:00"
end = "09:00"
`), 0o644))

	_, err := LoadBinTable(path, time.UTC, 20)
	require.Error(t, err)
}
