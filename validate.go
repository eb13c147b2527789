package mapcode

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Validation thresholds for a territory table.
const (
	minTerritoryCount = 50
	minCountryCount   = 30
)

type validationDecode struct {
	code     string
	context  string
	lat, lon float64
	within   float64 // degrees
}

type validationEncode struct {
	lat, lon  float64
	wantFirst string // first code, international name format
	wantCount int
}

var knownDecodes = []validationDecode{
	{code: "NLD 49.4V", lat: 52.3344, lon: 4.8256, within: 0.001},
	{code: "49.4V", context: "NLD", lat: 52.3344, lon: 4.8256, within: 0.001},
	{code: "PQ0PF.5M1H", lat: 40.4048, lon: -69.0962, within: 0.001},
}

var knownEncodes = []validationEncode{
	{lat: 52.376514, lon: 4.908542, wantFirst: "NLD JX.8T", wantCount: 3},
	{lat: 26.87016, lon: 75.847, wantFirst: "IN-RJ GK.GG0", wantCount: 4},
	{lat: 44.9778, lon: -93.265, wantFirst: "US-MN", wantCount: 4},
}

// ValidateTable checks a loaded table against known encodes and decodes and
// writes a progress report to w. It returns the first failure.
func (c *Codec) ValidateTable(w io.Writer) error {
	reg := c.reg

	count := len(reg.territories)
	if count < minTerritoryCount {
		return fmt.Errorf("territory count too low: got %d, want >= %d", count, minTerritoryCount)
	}
	fmt.Fprintf(w, "      Territory count: %d (OK)\n", count)

	countries := 0
	for _, t := range reg.territories {
		if t.parent == nil && !t.IsWorld() {
			countries++
		}
	}
	if countries < minCountryCount {
		return fmt.Errorf("country count too low: got %d, want >= %d", countries, minCountryCount)
	}
	fmt.Fprintf(w, "      Country count: %d (OK)\n", countries)

	worst := 0.0
	for _, t := range reg.territories {
		for _, z := range t.zones {
			worst = math.Max(worst, z.maxError)
		}
	}
	fmt.Fprintf(w, "      Largest zone error: %.2fm (OK)\n", worst)

	fmt.Fprintf(w, "      Decoding: ")
	for _, tc := range knownDecodes {
		var context *Territory
		if tc.context != "" {
			var err error
			if context, err = reg.Resolve(tc.context, nil); err != nil {
				return fmt.Errorf("resolve(%q): %w", tc.context, err)
			}
		}
		p, err := reg.decode(tc.code, context)
		if err != nil {
			return fmt.Errorf("decode(%q): %w", tc.code, err)
		}
		if math.Abs(p.lat-tc.lat) > tc.within || math.Abs(p.lon-tc.lon) > tc.within {
			return fmt.Errorf("decode(%q) = %v, want (%v, %v)", tc.code, p, tc.lat, tc.lon)
		}
	}
	fmt.Fprintf(w, "%d codes OK\n", len(knownDecodes))

	fmt.Fprintf(w, "      Encoding: ")
	for _, tc := range knownEncodes {
		codes, err := c.Encode(tc.lat, tc.lon, nil, true)
		if err != nil {
			return fmt.Errorf("encode(%v, %v): %w", tc.lat, tc.lon, err)
		}
		if len(codes) != tc.wantCount {
			return fmt.Errorf("encode(%v, %v) gave %d codes, want %d", tc.lat, tc.lon, len(codes), tc.wantCount)
		}
		if got := codes[0].String(); !strings.HasPrefix(got, tc.wantFirst) {
			return fmt.Errorf("encode(%v, %v) first code = %q, want %q", tc.lat, tc.lon, got, tc.wantFirst)
		}
		for _, m := range codes {
			p, err := reg.decode(m.Body, m.Territory)
			if err != nil {
				return fmt.Errorf("round trip of %v: %w", m, err)
			}
			want := Point{lat: tc.lat, lon: tc.lon, defined: true}
			if d := p.DistanceMeters(want); d > m.maxError+0.01 {
				return fmt.Errorf("round trip of %v is %.2fm off, limit %.2fm", m, d, m.maxError)
			}
		}
	}
	fmt.Fprintf(w, "%d points OK\n", len(knownEncodes))
	return nil
}
