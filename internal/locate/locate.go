// Package locate resolves client IP addresses to coordinates with a
// MaxMind GeoIP2 or GeoLite2 city database.
package locate

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// ErrNotFound means the database has no location for the address.
var ErrNotFound = errors.New("locate: no location for address")

// Locator maps an IP address to a coordinate.
type Locator interface {
	Locate(ip net.IP) (lat, lon float64, err error)
}

// GeoIP is a Locator over a city database.
type GeoIP struct {
	db *geoip2.Reader
}

// Open opens the database at path.
func Open(path string) (*GeoIP, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database: %w", err)
	}
	return &GeoIP{db: db}, nil
}

// Locate returns the city-level location of ip.
func (g *GeoIP) Locate(ip net.IP) (float64, float64, error) {
	if ip == nil {
		return 0, 0, fmt.Errorf("%w: invalid address", ErrNotFound)
	}
	rec, err := g.db.City(ip)
	if err != nil {
		return 0, 0, fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotFound, ip)
	}
	return rec.Location.Latitude, rec.Location.Longitude, nil
}

// Close closes the database.
func (g *GeoIP) Close() error { return g.db.Close() }

// Static is a Locator backed by a fixed table, for tests and overrides.
type Static map[string][2]float64

// Locate returns the entry for ip.
func (s Static) Locate(ip net.IP) (float64, float64, error) {
	if ip == nil {
		return 0, 0, fmt.Errorf("%w: invalid address", ErrNotFound)
	}
	v, ok := s[ip.String()]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotFound, ip)
	}
	return v[0], v[1], nil
}
