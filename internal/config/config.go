// Package config loads the typed configuration of spec.md §6. The bulk
// of the configuration (service/session naming, capacities, paths) is
// loaded via spf13/viper from YAML with environment-variable overrides,
// grounded on teranos-QNTX's am/load.go pattern (a package-level Viper
// instance, SetDefault calls, then Unmarshal into a typed struct). The
// bin-declaration table is a separate, more structured document decoded
// directly with BurntSushi/toml — see bins.go.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/steve-o/gomi/internal/cool"
	"github.com/steve-o/gomi/internal/fields"
	"github.com/steve-o/gomi/internal/transport"
)

// Config is the fully-typed configuration of spec.md §6.
type Config struct {
	Service struct {
		Name string
	}
	Session struct {
		Name           string
		ConnectionName string
		PublisherName  string
	}
	RSSL struct {
		Servers     []string
		DefaultPort int
	}

	MaximumDataSize int
	SessionCapacity int
	WorkerCount     int

	SymbolmapPath string

	TZ       string
	TZDBPath string
	DayCount int

	BinsPath string // path to a BurntSushi/toml bin-declaration table, see bins.go

	Archive  fields.ArchiveFIDs
	Realtime fields.RealtimeFIDs

	Transport struct {
		Codec    string
		QueueCap int
	}

	COOL struct {
		HistoryTableSize int
		Names            []string
	}
}

// Codec resolves the configured transport codec string to a CodecKind.
func (c *Config) Codec() (transport.CodecKind, error) {
	return transport.ParseCodecKind(c.Transport.Codec)
}

// Location resolves the configured default time zone, per spec.md §6's
// "tz, tzdb path".
func (c *Config) Location() (*time.Location, error) {
	if c.TZ == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, errors.Wrapf(err, "config: load tz %q", c.TZ)
	}
	return loc, nil
}

// SetDefaults installs this module's defaults onto v, mirroring
// teranos-QNTX's am.SetDefaults shape (one v.SetDefault call per leaf,
// grouped by section).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "GOMI")
	v.SetDefault("session.name", "gomi-session")
	v.SetDefault("session.connectionname", "gomi-connection")
	v.SetDefault("session.publishername", "gomi-publisher")

	v.SetDefault("rssl.defaultport", 14002)

	v.SetDefault("maximumdatasize", 65536)
	v.SetDefault("sessioncapacity", 1000)
	v.SetDefault("workercount", 4)

	v.SetDefault("tz", "UTC")
	v.SetDefault("daycount", 20)

	v.SetDefault("transport.codec", "none")
	v.SetDefault("transport.queuecap", 1024)

	v.SetDefault("cool.historytablesize", cool.DefaultCapacity)
}

// Load reads configuration from path (YAML, TOML, or JSON — inferred by
// viper from the extension) with environment overrides under the GOMI_
// prefix, applying SetDefaults first.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("GOMI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}
