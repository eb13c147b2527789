package mapcode

import (
	"slices"

	"github.com/paulmach/orb"
)

// Mapcode is one code of a point.
type Mapcode struct {
	Body      string     // code body in Latin script, e.g. "49.4V" or "49.4V-K2"
	Territory *Territory // territory the body is valid in
	Format    Format     // body format without precision extension
	Tier      int        // index of Format in Territory.Formats()
	Precision int        // number of precision extension symbols

	maxError float64
}

// TerritoryCode returns the numeric code of the owning territory.
func (m Mapcode) TerritoryCode() int { return m.Territory.code }

// MaxErrorMeters bounds the distance between the encoded point and the
// point Body decodes to.
func (m Mapcode) MaxErrorMeters() float64 { return m.maxError }

// Text renders the mapcode with its territory name in the given format.
// International codes carry no territory name.
func (m Mapcode) Text(f NameFormat) string {
	if m.Territory.IsWorld() {
		return m.Body
	}
	return m.Territory.Name(f) + " " + m.Body
}

// In renders the mapcode with the body in script a.
func (m Mapcode) In(a Alphabet) string { return m.TextIn(NameInternational, a) }

// TextIn renders the mapcode with its territory name in format f and the
// body in script a. Territory names stay in Latin.
func (m Mapcode) TextIn(f NameFormat, a Alphabet) string {
	if m.Territory.IsWorld() {
		return a.transliterate(m.Body)
	}
	return m.Territory.Name(f) + " " + a.transliterate(m.Body)
}

func (m Mapcode) String() string { return m.Text(NameInternational) }

// EncodeOption tunes Encode.
type EncodeOption struct {
	// Precision adds up to MaxPrecision extension symbols; each one makes
	// the code at least five times more precise.
	Precision int
}

// Encode returns every mapcode of (lat, lon).
//
// Without restrictTo, every territory containing the point contributes its
// codes. With restrictTo, only that territory and its ancestors are tried.
// The international code is appended when includeWorld is set or restrictTo
// is the world territory.
//
// Results run from the most specific territory (deepest, then smallest) to
// the least, international last; within a territory, shortest body first.
// A point no territory claims yields an empty result, not an error. The only
// error is ErrInvalidPoint.
func (c *Codec) Encode(lat, lon float64, restrictTo *Territory, includeWorld bool, opts ...EncodeOption) ([]Mapcode, error) {
	p, err := NewPoint(lat, lon)
	if err != nil {
		return nil, err
	}
	precision := 0
	for _, o := range opts {
		precision = o.Precision
	}
	precision = min(max(precision, 0), MaxPrecision)
	return c.reg.encode(p, restrictTo, includeWorld, precision), nil
}

func (r *Registry) encode(p Point, restrictTo *Territory, includeWorld bool, precision int) []Mapcode {
	pts := antimeridianTwins(p.orb())
	world := includeWorld
	var candidates []*Territory
	if restrictTo == nil {
		for _, pt := range pts {
			for _, t := range r.index.containing(pt) {
				if !slices.Contains(candidates, t) {
					candidates = append(candidates, t)
				}
			}
		}
	} else {
		for t := restrictTo; t != nil; t = t.parent {
			if t.IsWorld() {
				world = true
				continue
			}
			if slices.ContainsFunc(pts, t.contains) {
				candidates = append(candidates, t)
			}
		}
	}
	slices.SortStableFunc(candidates, moreSpecific)

	var out []Mapcode
	for _, t := range candidates {
		out = r.encodeIn(out, t, pts, precision)
	}
	if world {
		out = r.encodeIn(out, r.world, pts[:1], precision)
	}
	return out
}

// antimeridianTwins returns p and, when p lies on the antimeridian, the same
// point at longitude 180, which table rectangles may end on.
func antimeridianTwins(p orb.Point) []orb.Point {
	if p[0] == -180 {
		return []orb.Point{p, {180, p[1]}}
	}
	return []orb.Point{p}
}

// encodeIn appends the codes of pts in t, taking for each zone the first
// point it holds. Each body is decoded again and dropped if it does not
// come back to t.
func (r *Registry) encodeIn(out []Mapcode, t *Territory, pts []orb.Point, precision int) []Mapcode {
	for i := range t.zones {
		z := &t.zones[i]
		j := slices.IndexFunc(pts, z.contains)
		if j < 0 {
			continue
		}
		b := z.encode(pts[j], precision)
		if _, err := r.decodeIn(t, b); err != nil {
			continue
		}
		out = append(out, Mapcode{
			Body:      b.String(),
			Territory: t,
			Format:    z.format,
			Tier:      t.tier(z.format),
			Precision: precision,
			maxError:  z.errorFor(precision),
		})
	}
	return out
}
