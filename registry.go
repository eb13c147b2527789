package mapcode

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

//go:embed mapcode-data/territories.txt
var embeddedTable string

// Registry is a loaded territory table. It is read-only and safe for
// concurrent use.
type Registry struct {
	version     string
	territories []*Territory
	byCode      map[int]*Territory
	// byAbbr lists the territories per upper-case abbreviation, highest
	// priority first.
	byAbbr map[string][]*Territory
	world  *Territory
	index  *spatialIndex
}

// Version returns the version line of the table.
func (r *Registry) Version() string { return r.version }

// All returns every territory in table order.
func (r *Registry) All() []*Territory { return slices.Clone(r.territories) }

// World returns the international territory.
func (r *Registry) World() *Territory { return r.world }

// ByCode returns the territory with the given numeric code.
func (r *Registry) ByCode(code int) (*Territory, error) {
	t, ok := r.byCode[code]
	if !ok {
		return nil, &TerritoryError{Input: strconv.Itoa(code), Err: ErrUnknownTerritory}
	}
	return t, nil
}

// ByAbbreviation returns every territory using the abbreviation, highest
// priority first. Matching ignores case and surrounding space.
func (r *Registry) ByAbbreviation(text string) []*Territory {
	return slices.Clone(r.byAbbr[normalizeName(text)])
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// tableError reports a problem in a territory table.
func tableError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidTable, line, fmt.Sprintf(format, args...))
}

type zoneRecord struct {
	format Format
	bound  *orb.Bound
	line   int
}

// LoadRegistry parses and validates a territory table.
func LoadRegistry(rd io.Reader) (*Registry, error) {
	r := &Registry{
		byCode: make(map[int]*Territory),
		byAbbr: make(map[string][]*Territory),
	}
	zoneRecords := make(map[*Territory][]zoneRecord)
	defined := make(map[*Territory]int)

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "V":
			if len(fields) != 2 || r.version != "" {
				return nil, tableError(lineNo, "bad version record")
			}
			r.version = fields[1]
		case "T":
			t, err := r.parseTerritory(fields, lineNo)
			if err != nil {
				return nil, err
			}
			r.territories = append(r.territories, t)
			r.byCode[t.code] = t
			defined[t] = lineNo
		case "R", "P", "Z":
			if len(fields) < 3 {
				return nil, tableError(lineNo, "short %s record", fields[0])
			}
			t, err := r.recordTerritory(fields[1], lineNo)
			if err != nil {
				return nil, err
			}
			switch fields[0] {
			case "R":
				b, err := parseBound(fields[2:])
				if err != nil {
					return nil, tableError(lineNo, "%v", err)
				}
				t.boundary = append(t.boundary, rectPolygon(b))
			case "P":
				ring, err := parseRing(fields[2:])
				if err != nil {
					return nil, tableError(lineNo, "%v", err)
				}
				t.boundary = append(t.boundary, orb.Polygon{ring})
			case "Z":
				zr, err := parseZone(fields[2:])
				if err != nil {
					return nil, tableError(lineNo, "%v", err)
				}
				zr.line = lineNo
				zoneRecords[t] = append(zoneRecords[t], zr)
			}
		default:
			return nil, tableError(lineNo, "unknown record type %q", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading territory table: %w", err)
	}
	if r.version == "" {
		return nil, fmt.Errorf("%w: missing version record", ErrInvalidTable)
	}

	for _, t := range r.territories {
		if err := t.finish(zoneRecords[t], defined[t]); err != nil {
			return nil, err
		}
		if t.parent != nil {
			if err := checkInside(t, t.parent, defined[t]); err != nil {
				return nil, err
			}
		}
	}
	if err := r.indexNames(); err != nil {
		return nil, err
	}
	r.index = newSpatialIndex(r.territories)
	return r, nil
}

func (r *Registry) recordTerritory(field string, line int) (*Territory, error) {
	code, err := strconv.Atoi(field)
	if err != nil {
		return nil, tableError(line, "bad territory code %q", field)
	}
	t, ok := r.byCode[code]
	if !ok {
		return nil, tableError(line, "territory %d not declared", code)
	}
	return t, nil
}

// parseTerritory reads: T code abbreviations parent priority alphabet name.
func (r *Registry) parseTerritory(fields []string, line int) (*Territory, error) {
	if len(fields) != 7 {
		return nil, tableError(line, "territory record needs 7 fields, has %d", len(fields))
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 0 {
		return nil, tableError(line, "bad territory code %q", fields[1])
	}
	if _, dup := r.byCode[code]; dup {
		return nil, tableError(line, "duplicate territory code %d", code)
	}
	t := &Territory{code: code, name: fields[6]}
	for _, a := range strings.Split(fields[2], ",") {
		if !validAbbreviation(a) {
			return nil, tableError(line, "bad abbreviation %q", a)
		}
		if slices.Contains(t.abbreviations, a) {
			return nil, tableError(line, "abbreviation %q repeated", a)
		}
		t.abbreviations = append(t.abbreviations, a)
	}
	if fields[3] != "-" {
		t.parent, err = r.recordTerritory(fields[3], line)
		if err != nil {
			return nil, err
		}
		if t.parent.parent != nil || t.parent.IsWorld() {
			return nil, tableError(line, "parent %d is not a country", t.parent.code)
		}
		t.depth = t.parent.depth + 1
	}
	t.priority, err = strconv.Atoi(fields[4])
	if err != nil {
		return nil, tableError(line, "bad priority %q", fields[4])
	}
	t.alphabet, err = ParseAlphabet(fields[5])
	if err != nil {
		return nil, tableError(line, "%v", err)
	}
	if t.IsWorld() {
		if r.world != nil {
			return nil, tableError(line, "second world territory")
		}
		if t.parent != nil {
			return nil, tableError(line, "world territory cannot have a parent")
		}
		r.world = t
	}
	return t, nil
}

func validAbbreviation(a string) bool {
	if len(a) < 2 || len(a) > 3 {
		return false
	}
	for _, c := range a {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func parseBound(fields []string) (orb.Bound, error) {
	if len(fields) != 4 {
		return orb.Bound{}, fmt.Errorf("rectangle needs 4 numbers, has %d", len(fields))
	}
	v, err := parseFloats(fields)
	if err != nil {
		return orb.Bound{}, err
	}
	b := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	if b.Min[0] >= b.Max[0] || b.Min[1] >= b.Max[1] ||
		b.Min[0] < -180 || b.Max[0] > 180 || b.Min[1] < -90 || b.Max[1] > 90 {
		return orb.Bound{}, fmt.Errorf("rectangle %v is empty or off the globe", v)
	}
	return b, nil
}

func parseRing(fields []string) (orb.Ring, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("ring needs at least 3 vertices")
	}
	ring := make(orb.Ring, 0, len(fields)+1)
	for _, f := range fields {
		lon, lat, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("bad vertex %q", f)
		}
		v, err := parseFloats([]string{lon, lat})
		if err != nil {
			return nil, err
		}
		if v[0] < -180 || v[0] > 180 || v[1] < -90 || v[1] > 90 {
			return nil, fmt.Errorf("vertex %q off the globe", f)
		}
		ring = append(ring, orb.Point{v[0], v[1]})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

func parseZone(fields []string) (zoneRecord, error) {
	f, err := ParseFormat(fields[0])
	if err != nil {
		return zoneRecord{}, err
	}
	zr := zoneRecord{format: f}
	switch len(fields) {
	case 1:
	case 5:
		b, err := parseBound(fields[1:])
		if err != nil {
			return zoneRecord{}, err
		}
		zr.bound = &b
	default:
		return zoneRecord{}, fmt.Errorf("zone needs a format and an optional rectangle")
	}
	return zr, nil
}

// finish builds the zones of t once all its records are read.
func (t *Territory) finish(records []zoneRecord, line int) error {
	if len(t.boundary) == 0 {
		return tableError(line, "territory %d has no boundary", t.code)
	}
	if len(records) == 0 {
		return tableError(line, "territory %d has no zones", t.code)
	}
	t.bound = t.boundary.Bound()
	for _, p := range t.boundary {
		t.area += math.Abs(planar.Area(p))
	}

	if t.IsWorld() {
		globe := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
		if len(records) != 1 || records[0].format != worldFormat || t.bound != globe ||
			(records[0].bound != nil && *records[0].bound != globe) {
			return tableError(line, "world territory must have one %v zone over the globe", worldFormat)
		}
	} else if slices.ContainsFunc(records, func(zr zoneRecord) bool { return zr.format == worldFormat }) {
		return tableError(line, "territory %d has a %v zone, which is reserved for the world", t.code, worldFormat)
	}

	counts := make(map[Format]int)
	for _, zr := range records {
		counts[zr.format]++
	}
	seen := make(map[Format]int)
	next := make(map[Format]int)
	for _, zr := range records {
		k := counts[zr.format]
		share := radix / k
		if seen[zr.format] < radix%k {
			share++
		}
		if share == 0 {
			return tableError(zr.line, "too many %v zones in territory %d", zr.format, t.code)
		}
		seen[zr.format]++
		b := t.bound
		if zr.bound != nil {
			b = *zr.bound
		}
		z := newZone(zr.format, b, next[zr.format], share)
		next[zr.format] += share
		if z.maxError > MaxErrorMeters {
			return tableError(zr.line, "%v zone of territory %d has a %.1fm error, above %.0fm",
				zr.format, t.code, z.maxError, MaxErrorMeters)
		}
		t.zones = append(t.zones, z)
		if !slices.Contains(t.formats, zr.format) {
			t.formats = append(t.formats, zr.format)
		}
	}
	slices.SortStableFunc(t.formats, func(a, b Format) int { return a.Len() - b.Len() })
	slices.SortStableFunc(t.zones, func(a, b zone) int { return a.format.Len() - b.format.Len() })
	return nil
}

// checkInside verifies every boundary vertex of child lies in parent.
func checkInside(child, parent *Territory, line int) error {
	for _, poly := range child.boundary {
		for _, ring := range poly {
			for _, p := range ring {
				if !parent.contains(p) {
					return tableError(line, "territory %d reaches outside parent %d at %v",
						child.code, parent.code, p)
				}
			}
		}
	}
	return nil
}

// indexNames builds the abbreviation index and the display names.
func (r *Registry) indexNames() error {
	if r.world == nil {
		return fmt.Errorf("%w: no world territory", ErrInvalidTable)
	}
	type scope struct {
		parent *Territory
		abbr   string
	}
	local := make(map[scope]*Territory)
	for _, t := range r.territories {
		for _, a := range t.abbreviations {
			key := scope{t.parent, a}
			if other, dup := local[key]; dup {
				return fmt.Errorf("%w: territories %d and %d share %q under one parent",
					ErrInvalidTable, other.code, t.code, a)
			}
			local[key] = t
			r.byAbbr[a] = append(r.byAbbr[a], t)
		}
	}
	for a, ts := range r.byAbbr {
		slices.SortStableFunc(ts, func(x, y *Territory) int { return y.priority - x.priority })
		if len(ts) > 1 && ts[0].priority == ts[1].priority {
			return fmt.Errorf("%w: %q is shared by %d and %d with equal priority %d",
				ErrInvalidTable, a, ts[0].code, ts[1].code, ts[0].priority)
		}
	}

	for _, t := range r.territories {
		if t.parent == nil {
			t.international = t.abbreviations[0]
		}
	}
	for _, t := range r.territories {
		if t.parent != nil {
			prefix := r.shortestOwnName(t.parent)
			if prefix == "" {
				prefix = t.parent.abbreviations[0]
			}
			t.international = prefix + "-" + t.abbreviations[0]
		}
	}
	for _, t := range r.territories {
		t.minimal = r.shortestOwnName(t)
		if t.minimal == "" {
			t.minimal = t.international
		}
	}
	return nil
}

// shortestOwnName returns the shortest abbreviation of t that resolves to t
// without context, or "".
func (r *Registry) shortestOwnName(t *Territory) string {
	best := ""
	for _, a := range t.abbreviations {
		if r.byAbbr[a][0] != t {
			continue
		}
		if best == "" || len(a) < len(best) {
			best = a
		}
	}
	return best
}
