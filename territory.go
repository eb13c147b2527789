package mapcode

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// worldAbbreviation names the territory that covers the globe.
const worldAbbreviation = "AAA"

// NameFormat selects how a territory name is rendered.
type NameFormat int

const (
	// NameInternational is unambiguous anywhere: "NLD", "US-MN".
	NameInternational NameFormat = iota
	// NameMinimal is the shortest name that resolves without context:
	// "NL", "RJ", or the international name when every alias is shared.
	NameMinimal
	// NameLocal is the primary abbreviation alone: "MN".
	NameLocal
)

// Territory is a country, a subdivision of a country, or the world. A
// Territory is immutable once its registry is loaded.
type Territory struct {
	code          int
	abbreviations []string
	parent        *Territory
	priority      int
	alphabet      Alphabet
	name          string

	boundary orb.MultiPolygon
	bound    orb.Bound
	area     float64
	zones    []zone
	formats  []Format
	depth    int

	international string
	minimal       string
}

// Code returns the numeric territory code.
func (t *Territory) Code() int { return t.code }

// Abbreviations returns the territory's abbreviations, primary first.
func (t *Territory) Abbreviations() []string { return slices.Clone(t.abbreviations) }

// Parent returns the containing country, or nil.
func (t *Territory) Parent() *Territory { return t.parent }

// Priority ranks territories sharing an abbreviation when no context is given.
func (t *Territory) Priority() int { return t.priority }

// Alphabet is the script codes in this territory are displayed in.
func (t *Territory) Alphabet() Alphabet { return t.alphabet }

// FullName returns the display name, e.g. "Minnesota".
func (t *Territory) FullName() string { return t.name }

// IsWorld reports whether t is the international territory.
func (t *Territory) IsWorld() bool { return t.abbreviations[0] == worldAbbreviation }

// Boundary returns a copy of the territory boundary (longitude first).
func (t *Territory) Boundary() orb.MultiPolygon { return t.boundary.Clone() }

// Bound returns the extent of the boundary.
func (t *Territory) Bound() orb.Bound { return t.bound }

// Formats lists the distinct body formats of t, shortest first. The index of
// a format is its precision tier.
func (t *Territory) Formats() []Format { return slices.Clone(t.formats) }

// Name renders the territory name.
func (t *Territory) Name(f NameFormat) string {
	switch f {
	case NameMinimal:
		return t.minimal
	case NameLocal:
		return t.abbreviations[0]
	default:
		return t.international
	}
}

func (t *Territory) String() string { return t.international }

// Contains reports whether the coordinate lies in the territory boundary.
func (t *Territory) Contains(lat, lon float64) bool {
	p, err := NewPoint(lat, lon)
	if err != nil {
		return false
	}
	return t.contains(p.orb())
}

func (t *Territory) contains(p orb.Point) bool {
	if !t.bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(t.boundary, p)
}

// accepts reports whether a decoded cell belongs to t: its centre or one of
// its corners must lie in the boundary.
func (t *Territory) accepts(cell orb.Bound) bool {
	if t.contains(cell.Center()) {
		return true
	}
	for _, c := range [...]orb.Point{
		cell.Min,
		cell.Max,
		{cell.Min[0], cell.Max[1]},
		{cell.Max[0], cell.Min[1]},
	} {
		if t.contains(c) {
			return true
		}
	}
	return false
}

// isAncestorOf reports whether t is a strict ancestor of o.
func (t *Territory) isAncestorOf(o *Territory) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}
	return false
}

// tier returns the precision tier of f in t, or -1.
func (t *Territory) tier(f Format) int {
	return slices.Index(t.formats, f)
}

// zoneFor returns the zone addressed by b, or nil.
func (t *Territory) zoneFor(b body) *zone {
	for i := range t.zones {
		if t.zones[i].owns(b) {
			return &t.zones[i]
		}
	}
	return nil
}

// moreSpecific orders territories for encode results: deeper first, then
// smaller, then by code.
func moreSpecific(a, b *Territory) int {
	if a.depth != b.depth {
		return b.depth - a.depth
	}
	if a.area != b.area {
		if a.area < b.area {
			return -1
		}
		return 1
	}
	return a.code - b.code
}

func rectPolygon(b orb.Bound) orb.Polygon {
	return orb.Polygon{orb.Ring{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
		b.Min,
	}}
}
