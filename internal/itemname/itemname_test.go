package itemname

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steve-o/gomi/internal/binengine"
)

type fakeZones struct {
	locs map[string]*time.Location
}

func (z fakeZones) Lookup(region string) (*time.Location, bool) {
	loc, ok := z.locs[region]
	return loc, ok
}

func seedDecl(t *testing.T) binengine.BinDecl {
	t.Helper()
	decl, err := binengine.NewBinDecl("default", 9*time.Hour, 9*time.Hour+30*time.Minute, time.UTC, 10, 0)
	require.NoError(t, err)
	return decl
}

func TestParsePlainSymbol(t *testing.T) {
	symbol, decl, err := Parse("/IBM.N", seedDecl(t), nil)
	require.NoError(t, err)
	require.Equal(t, "IBM.N", symbol)
	require.Equal(t, 10, decl.DayCount)
	require.Equal(t, 0, decl.DayOffset)
}

func TestParseOverridesQueryKeys(t *testing.T) {
	symbol, decl, err := Parse("/IBM.N?open=09:00&close=10:30&offset=5&days=15", seedDecl(t), nil)
	require.NoError(t, err)
	require.Equal(t, "IBM.N", symbol)
	require.Equal(t, 9*time.Hour, decl.StartTime)
	require.Equal(t, 10*time.Hour+30*time.Minute, decl.EndTime)
	require.Equal(t, 5, decl.DayOffset)
	require.Equal(t, 15, decl.DayCount)
}

func TestParseClampsOffsetAndDays(t *testing.T) {
	_, decl, err := Parse("/IBM.N?offset=500&days=999", seedDecl(t), nil)
	require.NoError(t, err)
	require.Equal(t, 90, decl.DayOffset)
	require.Equal(t, 90, decl.DayCount)
}

func TestParseUnknownKeyIgnored(t *testing.T) {
	_, decl, err := Parse("/IBM.N?bogus=1", seedDecl(t), nil)
	require.NoError(t, err)
	require.Equal(t, seedDecl(t).DayCount, decl.DayCount)
}

func TestParseMalformedValueRetainsDefault(t *testing.T) {
	seed := seedDecl(t)
	_, decl, err := Parse("/IBM.N?open=not-a-time", seed, nil)
	require.NoError(t, err)
	require.Equal(t, seed.StartTime, decl.StartTime)
}

func TestParseTZOverride(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	zones := fakeZones{locs: map[string]*time.Location{"America/New_York": ny}}

	_, decl, err := Parse("/IBM.N?tz=America/New_York", seedDecl(t), zones)
	require.NoError(t, err)
	require.Equal(t, ny, decl.Timezone)
}

func TestParseUnknownTZRetainsDefault(t *testing.T) {
	zones := fakeZones{locs: map[string]*time.Location{}}
	seed := seedDecl(t)
	_, decl, err := Parse("/IBM.N?tz=Nowhere/Place", seed, zones)
	require.NoError(t, err)
	require.Equal(t, seed.Timezone, decl.Timezone)
}

func TestParseEmptySymbolErrors(t *testing.T) {
	_, _, err := Parse("/", seedDecl(t), nil)
	require.Error(t, err)
}

func TestStdZonesLookup(t *testing.T) {
	var z StdZones
	loc, ok := z.Lookup("America/New_York")
	require.True(t, ok)
	require.Equal(t, "America/New_York", loc.String())

	_, ok = z.Lookup("Nowhere/Place")
	require.False(t, ok)
}
