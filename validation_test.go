package mapcode

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// TestValidation runs all validation checks on the embedded table.
// This is the same validation used by the validate-table tool.
func TestValidation(t *testing.T) {
	c := testCodec(t)
	var report bytes.Buffer
	if err := c.ValidateTable(&report); err != nil {
		t.Fatalf("Validation failed: %v\n%s", err, report.String())
	}
	for _, want := range []string{"Territory count", "Country count", "Decoding", "Encoding"} {
		if !strings.Contains(report.String(), want) {
			t.Errorf("report lacks %q:\n%s", want, report.String())
		}
	}
}

// TestValidationRejectsSmallTable checks the thresholds apply to other tables.
func TestValidationRejectsSmallTable(t *testing.T) {
	c, err := NewCodec(WithRegistry(loadTestRegistry(t)))
	if err != nil {
		t.Fatal(err)
	}
	err = c.ValidateTable(io.Discard)
	if err == nil || !strings.Contains(err.Error(), "territory count too low") {
		t.Errorf("ValidateTable = %v, want a territory count failure", err)
	}
}

// TestDataIntegrity checks that the embedded table meets minimum thresholds.
func TestDataIntegrity(t *testing.T) {
	c := testCodec(t)
	reg := c.Registry()

	if n := len(reg.All()); n < minTerritoryCount {
		t.Errorf("Territory count %d is below minimum %d", n, minTerritoryCount)
	}
	if reg.Version() == "" {
		t.Error("table has no version")
	}

	// a territory on every inhabited continent
	continents := map[string][2]float64{
		"North America": {40.7128, -74.0060},
		"South America": {-23.5505, -46.6333},
		"Europe":        {51.5074, -0.1278},
		"Asia":          {35.6762, 139.6503},
		"Africa":        {30.0444, 31.2357},
		"Oceania":       {-36.8485, 174.7633},
	}
	for continent, p := range continents {
		codes, err := c.Encode(p[0], p[1], nil, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(codes) == 0 {
			t.Errorf("no territory covers %s at %v", continent, p)
		}
	}

	for _, ter := range reg.All() {
		for _, z := range ter.zones {
			if z.maxError > MaxErrorMeters {
				t.Errorf("%v zone of %v has error %.2fm", z.format, ter, z.maxError)
			}
		}
		if ter.Name(NameMinimal) == "" || ter.Name(NameInternational) == "" {
			t.Errorf("territory %d has no display name", ter.Code())
		}
	}
}

// TestKnownCodes validates the reference encodes used by ValidateTable.
func TestKnownCodes(t *testing.T) {
	c := testCodec(t)
	for _, tc := range knownEncodes {
		codes, err := c.Encode(tc.lat, tc.lon, nil, true)
		if err != nil {
			t.Fatalf("Encode(%v, %v): %v", tc.lat, tc.lon, err)
		}
		if len(codes) != tc.wantCount || !strings.HasPrefix(codes[0].String(), tc.wantFirst) {
			t.Errorf("Encode(%v, %v) = %v, want %d codes starting with %q",
				tc.lat, tc.lon, codeTexts(codes), tc.wantCount, tc.wantFirst)
		}
	}
}
