package mapcode

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// earthRadiusMeters is the mean earth radius used for all distances.
const earthRadiusMeters = 6371010.0

// Point is a WGS84 coordinate in degrees. The zero value is Undefined.
type Point struct {
	lat, lon float64
	defined  bool
}

// Undefined is the point returned alongside errors.
var Undefined = Point{}

// NewPoint validates a coordinate. Longitude is wrapped into [-180, 180);
// a latitude outside [-90, 90] or a non-finite value is ErrInvalidPoint.
func NewPoint(lat, lon float64) (Point, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return Undefined, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidPoint, lat, lon)
	}
	if lat < -90 || lat > 90 {
		return Undefined, fmt.Errorf("%w: latitude %v out of range", ErrInvalidPoint, lat)
	}
	return Point{lat: lat, lon: wrapLon(lon), defined: true}, nil
}

func wrapLon(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// IsDefined reports whether p holds a coordinate.
func (p Point) IsDefined() bool { return p.defined }

// LatDeg returns the latitude in degrees.
func (p Point) LatDeg() float64 { return p.lat }

// LonDeg returns the longitude in degrees.
func (p Point) LonDeg() float64 { return p.lon }

// DistanceMeters returns the great-circle distance between p and q.
func (p Point) DistanceMeters(q Point) float64 {
	a := s2.LatLngFromDegrees(p.lat, p.lon)
	b := s2.LatLngFromDegrees(q.lat, q.lon)
	return float64(a.Distance(b)) * earthRadiusMeters
}

func (p Point) String() string {
	if !p.defined {
		return "undefined"
	}
	return fmt.Sprintf("(%.6f, %.6f)", p.lat, p.lon)
}

func (p Point) orb() orb.Point { return orb.Point{p.lon, p.lat} }
