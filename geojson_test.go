package mapcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestTerritoryFeature(t *testing.T) {
	c := testCodec(t)
	tests := []struct {
		name     string
		geometry string
		parent   any
	}{
		{"NLD", "Polygon", nil},
		{"RUS", "MultiPolygon", nil},
		{"US-MN", "Polygon", 840},
	}
	for _, tt := range tests {
		ter := mustResolve(t, c, tt.name)
		f := TerritoryFeature(ter)
		if got := f.Geometry.GeoJSONType(); got != tt.geometry {
			t.Errorf("%s geometry = %s, want %s", tt.name, got, tt.geometry)
		}
		if f.Properties["international"] != tt.name || f.Properties["code"] != ter.Code() {
			t.Errorf("%s properties = %v", tt.name, f.Properties)
		}
		if f.Properties["parent"] != tt.parent {
			t.Errorf("%s parent = %v, want %v", tt.name, f.Properties["parent"], tt.parent)
		}
	}
}

func TestZoneFeatures(t *testing.T) {
	c := testCodec(t)
	nld := mustResolve(t, c, "NLD")
	fc := ZoneFeatures(nld)
	if len(fc.Features) != 4 {
		t.Fatalf("got %d zone features, want 4", len(fc.Features))
	}
	if got := fc.Features[0].Properties["format"]; got != "2.2" {
		t.Errorf("first zone format = %v, want 2.2", got)
	}
	last := fc.Features[3].Geometry.Bound()
	if last != nld.Bound() {
		t.Errorf("3.3 zone covers %v, want the territory extent %v", last, nld.Bound())
	}
}

func TestRegistryFeatures(t *testing.T) {
	c := testCodec(t)
	fc := c.Registry().Features()
	if want := len(c.Territories()) - 1; len(fc.Features) != want {
		t.Errorf("got %d features, want %d", len(fc.Features), want)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	back, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Features) != len(fc.Features) || !strings.Contains(string(data), `"Minnesota"`) {
		t.Error("feature collection did not survive JSON")
	}
}

func TestCellFeature(t *testing.T) {
	c := testCodec(t)
	f, err := c.CellFeature("NLD 49.4V", nil)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := c.Decode("NLD 49.4V", nil)
	if f.Properties["lat"] != p.LatDeg() || f.Properties["lon"] != p.LonDeg() {
		t.Errorf("cell centre = %v, %v, want %v", f.Properties["lat"], f.Properties["lon"], p)
	}
	if !f.Geometry.Bound().Contains(orb.Point{p.LonDeg(), p.LatDeg()}) {
		t.Error("cell does not contain its centre")
	}
	if f.Properties["territory"] != "NLD" {
		t.Errorf("territory = %v", f.Properties["territory"])
	}

	if _, err := c.CellFeature("49.4A", nil); !errors.Is(err, ErrUnknownMapcode) {
		t.Errorf("CellFeature(49.4A) error = %v", err)
	}
}
