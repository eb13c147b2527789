package mapcode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// MaxErrorMeters is the largest distance between a point and the decoded
// centre of its code that any zone in a table may allow.
const MaxErrorMeters = 10.0

// MaxPrecision is the largest number of precision extension symbols.
const MaxPrecision = 2

const (
	minPrefixLen = 2
	maxPrefixLen = 5
	minSuffixLen = 2
	maxSuffixLen = 4

	// each extension symbol splits a cell into extCols x extRows.
	extCols = 5
	extRows = 6
)

// Format is the shape of a code body: Prefix symbols, '.', Suffix symbols.
type Format struct {
	Prefix, Suffix int
}

// worldFormat is the format of international codes.
var worldFormat = Format{Prefix: 5, Suffix: 4}

// ParseFormat parses "P.S", e.g. "2.3".
func ParseFormat(s string) (Format, error) {
	p, q, ok := strings.Cut(s, ".")
	if !ok {
		return Format{}, fmt.Errorf("format %q: missing '.'", s)
	}
	pre, err := strconv.Atoi(p)
	if err != nil {
		return Format{}, fmt.Errorf("format %q: %w", s, err)
	}
	suf, err := strconv.Atoi(q)
	if err != nil {
		return Format{}, fmt.Errorf("format %q: %w", s, err)
	}
	f := Format{Prefix: pre, Suffix: suf}
	if !f.valid() {
		return Format{}, fmt.Errorf("format %q: group lengths out of range", s)
	}
	return f, nil
}

func (f Format) valid() bool {
	return f.Prefix >= minPrefixLen && f.Prefix <= maxPrefixLen &&
		f.Suffix >= minSuffixLen && f.Suffix <= maxSuffixLen
}

// Len is the number of symbols in a body of this format.
func (f Format) Len() int { return f.Prefix + f.Suffix }

func (f Format) String() string { return fmt.Sprintf("%d.%d", f.Prefix, f.Suffix) }

func pow30(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= int64(radix)
	}
	return v
}

// body is a parsed code body in canonical form.
type body struct {
	format Format
	digits []int // format.Len() values
	ext    []int // precision extension values
}

// parseBody validates the grammar of a body written in any supported script.
func parseBody(s string) (body, error) {
	main, ext, hasExt := strings.Cut(s, string(precisionSeparator))
	pre, suf, ok := strings.Cut(main, string(groupSeparator))
	if !ok {
		return body{}, fmt.Errorf("missing %q separator", groupSeparator)
	}
	var b body
	b.format = Format{Prefix: len([]rune(pre)), Suffix: len([]rune(suf))}
	if !b.format.valid() {
		return body{}, fmt.Errorf("groups of %d and %d symbols are not a valid format", b.format.Prefix, b.format.Suffix)
	}
	b.digits = make([]int, 0, b.format.Len())
	for _, r := range pre + suf {
		v, ok := symbolValue(r)
		if !ok {
			return body{}, fmt.Errorf("invalid symbol %q", r)
		}
		b.digits = append(b.digits, v)
	}
	if hasExt {
		n := len([]rune(ext))
		if n == 0 || n > MaxPrecision {
			return body{}, fmt.Errorf("precision extension must have 1 to %d symbols", MaxPrecision)
		}
		for _, r := range ext {
			v, ok := symbolValue(r)
			if !ok {
				return body{}, fmt.Errorf("invalid symbol %q", r)
			}
			b.ext = append(b.ext, v)
		}
	}
	return b, nil
}

func (b body) value() int64 {
	var v int64
	for _, d := range b.digits {
		v = v*int64(radix) + int64(d)
	}
	return v
}

// String renders b in Latin script.
func (b body) String() string {
	var sb strings.Builder
	for i, d := range b.digits {
		if i == b.format.Prefix {
			sb.WriteByte(groupSeparator)
		}
		sb.WriteByte(symbols[d])
	}
	if len(b.ext) > 0 {
		sb.WriteByte(precisionSeparator)
		for _, d := range b.ext {
			sb.WriteByte(symbols[d])
		}
	}
	return sb.String()
}

// zone is a rectangular grid of one format inside a territory. Zones that
// share a format split the range of leading symbols, first..first+share-1.
type zone struct {
	format   Format
	bound    orb.Bound
	first    int
	share    int
	rows     int64
	cols     int64
	maxError float64 // meters, without precision extension
}

func newZone(f Format, b orb.Bound, first, share int) zone {
	z := zone{format: f, bound: b, first: first, share: share}
	capacity := int64(share) * pow30(f.Len()-1)
	dLon := b.Max[0] - b.Min[0]
	dLat := b.Max[1] - b.Min[1]
	mid := (b.Min[1] + b.Max[1]) / 2
	ratio := dLat / (dLon * math.Cos(mid*(math.Pi/180)))
	rows := int64(math.Floor(math.Sqrt(float64(capacity) * ratio)))
	z.rows = min(max(rows, 1), capacity)
	z.cols = capacity / z.rows
	z.maxError = z.cellError()
	return z
}

// cellError is the distance from a cell centre to its farthest corner,
// measured on the cell row nearest the equator.
func (z *zone) cellError() float64 {
	cellLat := (z.bound.Max[1] - z.bound.Min[1]) / float64(z.rows)
	cellLon := (z.bound.Max[0] - z.bound.Min[0]) / float64(z.cols)
	lat := min(max(0, z.bound.Min[1]+cellLat/2), z.bound.Max[1]-cellLat/2)
	c := s2.LatLngFromDegrees(lat, 0)
	n := s2.LatLngFromDegrees(lat+cellLat/2, cellLon/2)
	s := s2.LatLngFromDegrees(lat-cellLat/2, cellLon/2)
	return math.Max(float64(c.Distance(n)), float64(c.Distance(s))) * earthRadiusMeters
}

// errorFor is the error bound for codes with the given extension length.
func (z *zone) errorFor(precision int) float64 {
	e := z.maxError
	for i := 0; i < precision; i++ {
		e /= extCols
	}
	return e
}

func (z *zone) contains(p orb.Point) bool { return z.bound.Contains(p) }

// owns reports whether b addresses this zone.
func (z *zone) owns(b body) bool {
	return b.format == z.format && b.digits[0] >= z.first && b.digits[0] < z.first+z.share
}

// encode returns the body of the cell holding p. Points on the outer edge
// land in the last row or column.
func (z *zone) encode(p orb.Point, precision int) body {
	fx := (p[0] - z.bound.Min[0]) / (z.bound.Max[0] - z.bound.Min[0]) * float64(z.cols)
	fy := (p[1] - z.bound.Min[1]) / (z.bound.Max[1] - z.bound.Min[1]) * float64(z.rows)
	col := min(max(int64(math.Floor(fx)), 0), z.cols-1)
	row := min(max(int64(math.Floor(fy)), 0), z.rows-1)

	n := z.format.Len()
	v := int64(z.first)*pow30(n-1) + row*z.cols + col
	b := body{format: z.format, digits: make([]int, n)}
	for i := n - 1; i >= 0; i-- {
		b.digits[i] = int(v % int64(radix))
		v /= int64(radix)
	}

	ux := clampUnit(fx - float64(col))
	uy := clampUnit(fy - float64(row))
	for i := 0; i < precision; i++ {
		c := min(int(ux*extCols), extCols-1)
		r := min(int(uy*extRows), extRows-1)
		b.ext = append(b.ext, r*extCols+c)
		ux = clampUnit(ux*extCols - float64(c))
		uy = clampUnit(uy*extRows - float64(r))
	}
	return b
}

func clampUnit(f float64) float64 {
	return min(max(f, 0), math.Nextafter(1, 0))
}

// decode returns the area addressed by b. ok is false when b points past
// the last cell of the zone.
func (z *zone) decode(b body) (cell orb.Bound, ok bool) {
	v := b.value() - int64(z.first)*pow30(z.format.Len()-1)
	if v < 0 || v >= z.rows*z.cols {
		return orb.Bound{}, false
	}
	row, col := v/z.cols, v%z.cols
	x, y := float64(col), float64(row)
	w, h := 1.0, 1.0
	for _, e := range b.ext {
		w /= extCols
		h /= extRows
		x += float64(e%extCols) * w
		y += float64(e/extCols) * h
	}
	cellLon := (z.bound.Max[0] - z.bound.Min[0]) / float64(z.cols)
	cellLat := (z.bound.Max[1] - z.bound.Min[1]) / float64(z.rows)
	minX := z.bound.Min[0] + x*cellLon
	minY := z.bound.Min[1] + y*cellLat
	return orb.Bound{
		Min: orb.Point{minX, minY},
		Max: orb.Point{minX + w*cellLon, minY + h*cellLat},
	}, true
}
