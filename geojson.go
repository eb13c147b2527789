package mapcode

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TerritoryFeature returns the boundary of t as a GeoJSON feature.
func TerritoryFeature(t *Territory) *geojson.Feature {
	var g orb.Geometry = t.boundary.Clone()
	if len(t.boundary) == 1 {
		g = t.boundary[0].Clone()
	}
	f := geojson.NewFeature(g)
	f.ID = t.code
	f.Properties["code"] = t.code
	f.Properties["name"] = t.name
	f.Properties["international"] = t.international
	f.Properties["minimal"] = t.minimal
	f.Properties["abbreviations"] = t.Abbreviations()
	f.Properties["alphabet"] = t.alphabet.String()
	f.Properties["priority"] = t.priority
	formats := make([]string, len(t.formats))
	for i, fm := range t.formats {
		formats[i] = fm.String()
	}
	f.Properties["formats"] = formats
	if t.parent != nil {
		f.Properties["parent"] = t.parent.code
	}
	return f
}

// ZoneFeatures returns the grid zones of t, one rectangle feature each.
func ZoneFeatures(t *Territory) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range t.zones {
		f := geojson.NewFeature(z.bound.ToPolygon())
		f.Properties["territory"] = t.code
		f.Properties["format"] = z.format.String()
		f.Properties["rows"] = z.rows
		f.Properties["cols"] = z.cols
		f.Properties["maxErrorMeters"] = z.maxError
		fc.Append(f)
	}
	return fc
}

// Features returns every territory of r except the world as a collection.
func (r *Registry) Features() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range r.territories {
		if t.IsWorld() {
			continue
		}
		fc.Append(TerritoryFeature(t))
	}
	return fc
}

// CellFeature returns the area a mapcode stands for, with its centre and
// territory as properties.
func (c *Codec) CellFeature(text string, context *Territory) (*geojson.Feature, error) {
	cell, t, err := c.reg.decodeCell(text, context)
	if err != nil {
		return nil, err
	}
	center := cell.Center()
	f := geojson.NewFeature(cell.ToPolygon())
	f.Properties["mapcode"] = text
	f.Properties["territory"] = t.international
	f.Properties["lat"] = center[1]
	f.Properties["lon"] = center[0]
	return f, nil
}
