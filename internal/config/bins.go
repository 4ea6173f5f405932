package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/steve-o/gomi/internal/binengine"
)

// binRow is one row of a BurntSushi/toml-decoded bin-declaration table,
// e.g.:
//
//	[[bin]]
//	name = "OPEN30"
//	start = "09:30"
//	end = "10:00"
//	daycount = 20
type binRow struct {
	Name     string
	Start    string
	End      string
	DayCount int `toml:"daycount"`
}

type binTable struct {
	Bin []binRow
}

// LoadBinTable decodes a bin-declaration table from a TOML file at path
// into a set of BinDecl values, seeded with tz and dayCount defaults for
// rows that omit DayCount. spec.md §6's "bin declarations NAME=HH:MM-HH:MM".
func LoadBinTable(path string, tz *time.Location, defaultDayCount int) (map[string]binengine.BinDecl, error) {
	var table binTable
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, errors.Wrapf(err, "config: decode bin table %s", path)
	}

	out := make(map[string]binengine.BinDecl, len(table.Bin))
	for _, row := range table.Bin {
		start, err := parseHHMM(row.Start)
		if err != nil {
			return nil, errors.Wrapf(err, "config: bin %q start", row.Name)
		}
		end, err := parseHHMM(row.End)
		if err != nil {
			return nil, errors.Wrapf(err, "config: bin %q end", row.Name)
		}
		dayCount := row.DayCount
		if dayCount <= 0 {
			dayCount = defaultDayCount
		}
		decl, err := binengine.NewBinDecl(row.Name, start, end, tz, dayCount, 0)
		if err != nil {
			return nil, err
		}
		out[row.Name] = decl
	}
	return out, nil
}

// ParseBinDeclLine parses the shorthand "NAME=HH:MM-HH:MM" form named
// directly in spec.md §6, for configuration sources (e.g. a single
// viper-loaded string list) that don't warrant a full TOML table.
func ParseBinDeclLine(line string, tz *time.Location, dayCount int) (binengine.BinDecl, error) {
	name, window, ok := strings.Cut(line, "=")
	if !ok {
		return binengine.BinDecl{}, errors.Newf("config: malformed bin declaration %q", line)
	}
	startStr, endStr, ok := strings.Cut(window, "-")
	if !ok {
		return binengine.BinDecl{}, errors.Newf("config: malformed bin window %q", line)
	}
	start, err := parseHHMM(startStr)
	if err != nil {
		return binengine.BinDecl{}, errors.Wrapf(err, "config: bin %q start", name)
	}
	end, err := parseHHMM(endStr)
	if err != nil {
		return binengine.BinDecl{}, errors.Wrapf(err, "config: bin %q end", name)
	}
	return binengine.NewBinDecl(name, start, end, tz, dayCount, 0)
}

func parseHHMM(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, errors.Newf("config: expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errors.Newf("config: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errors.Newf("config: invalid minute in %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
