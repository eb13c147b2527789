// Package mapcode converts coordinates to short, territory-scoped codes and
// back.
//
// A mapcode is a code body such as "49.4V" qualified by a territory, for
// example "NLD 49.4V". The same body is reused in other territories, so a
// body alone is only meaningful with a territory context, except for the
// ten-symbol international codes, which cover the whole globe.
//
// Codes are laid out on per-territory grids read from a versioned territory
// table. The bundled table is embedded in the binary; another can be loaded
// with WithTableFile.
package mapcode

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds codec settings.
type Config struct {
	TableFile string    // territory table to load instead of the embedded one
	Registry  *Registry // already loaded table; takes precedence over TableFile
	Logger    *slog.Logger
}

// Option configures a Codec.
type Option func(*Config)

// WithTableFile loads the territory table from path.
func WithTableFile(path string) Option {
	return func(c *Config) {
		c.TableFile = path
	}
}

// WithRegistry uses an already loaded territory table.
func WithRegistry(r *Registry) Option {
	return func(c *Config) {
		c.Registry = r
	}
}

// WithLogger sets the logger used by the codec.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func defaultConfig() *Config {
	return &Config{Logger: slog.Default()}
}

// Codec encodes and decodes mapcodes over one territory table. It is safe
// for concurrent use.
type Codec struct {
	reg    *Registry
	config *Config
}

// embeddedRegistry is parsed once and shared by all codecs using the
// embedded table.
var embeddedRegistry = sync.OnceValues(func() (*Registry, error) {
	return LoadRegistry(strings.NewReader(embeddedTable))
})

var (
	defaultCodec     *Codec
	defaultCodecErr  error
	defaultCodecOnce sync.Once
)

// Default returns a process-wide codec over the embedded table.
func Default() (*Codec, error) {
	defaultCodecOnce.Do(func() {
		defaultCodec, defaultCodecErr = NewCodec()
	})
	return defaultCodec, defaultCodecErr
}

// NewCodec creates a codec with the given options.
func NewCodec(opts ...Option) (*Codec, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	reg := cfg.Registry
	source := "registry"
	switch {
	case reg != nil:
	case cfg.TableFile != "":
		source = cfg.TableFile
		f, err := os.Open(cfg.TableFile)
		if err != nil {
			return nil, fmt.Errorf("opening territory table: %w", err)
		}
		defer f.Close()
		reg, err = LoadRegistry(f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.TableFile, err)
		}
	default:
		source = "embedded"
		var err error
		reg, err = embeddedRegistry()
		if err != nil {
			return nil, fmt.Errorf("loading embedded territory table: %w", err)
		}
	}

	cfg.Logger.Debug("territory table loaded",
		"source", source,
		"version", reg.Version(),
		"territories", len(reg.territories))
	return &Codec{reg: reg, config: cfg}, nil
}

// Registry returns the territory table of c.
func (c *Codec) Registry() *Registry { return c.reg }

// Territories returns every territory in table order.
func (c *Codec) Territories() []*Territory { return c.reg.All() }

// TerritoryByCode returns the territory with the given numeric code.
func (c *Codec) TerritoryByCode(code int) (*Territory, error) { return c.reg.ByCode(code) }

// ResolveTerritory resolves an abbreviation, using parent to choose among
// territories that share it.
func (c *Codec) ResolveTerritory(abbr string, parent *Territory) (*Territory, error) {
	return c.reg.Resolve(abbr, parent)
}

// Encode returns every mapcode of (lat, lon); see Codec.Encode.
func Encode(lat, lon float64, restrictTo *Territory, includeWorld bool, opts ...EncodeOption) ([]Mapcode, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Encode(lat, lon, restrictTo, includeWorld, opts...)
}

// Decode decodes a mapcode with the default codec; see Codec.Decode.
func Decode(text string, context *Territory) (Point, error) {
	c, err := Default()
	if err != nil {
		return Undefined, err
	}
	return c.Decode(text, context)
}

// ResolveTerritory resolves an abbreviation with the default codec.
func ResolveTerritory(abbr string, parent *Territory) (*Territory, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.ResolveTerritory(abbr, parent)
}
