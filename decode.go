package mapcode

import (
	"errors"
	"strings"

	"github.com/paulmach/orb"
)

var (
	errNoZone      = errors.New("no grid of this format in the territory")
	errPastGrid    = errors.New("body lies past the end of the grid")
	errOutside     = errors.New("decoded point lies outside the territory")
	errNeedContext = errors.New("a territory is required for a code of this format")
)

// Decode converts a mapcode to a point. text is either a body ("49.4V") or
// a territory name and a body separated by space ("NLD 49.4V"). A name is
// resolved with context as parent; a bare body is read in context, or as an
// international code when context is nil.
//
// Every failure is a *DecodeError matching ErrUnknownMapcode. When the
// territory name fails to resolve, the error also matches
// ErrUnknownTerritory or ErrAmbiguousTerritory.
func (c *Codec) Decode(text string, context *Territory) (Point, error) {
	return c.reg.decode(text, context)
}

// DecodeCell returns the area a mapcode stands for and the territory it
// was read in. Decode returns the centre of this area.
func (c *Codec) DecodeCell(text string, context *Territory) (orb.Bound, *Territory, error) {
	return c.reg.decodeCell(text, context)
}

func (r *Registry) decode(text string, context *Territory) (Point, error) {
	cell, _, err := r.decodeCell(text, context)
	if err != nil {
		return Undefined, err
	}
	c := cell.Center()
	return Point{lat: c[1], lon: wrapLon(c[0]), defined: true}, nil
}

func (r *Registry) decodeCell(text string, context *Territory) (orb.Bound, *Territory, error) {
	fields := strings.Fields(text)
	var (
		t    *Territory
		code string
	)
	switch len(fields) {
	case 0:
		return orb.Bound{}, nil, decodeErr(text, "empty mapcode", nil)
	case 1:
		code = fields[0]
		t = context
		if t == nil {
			t = r.world
		}
	case 2:
		var err error
		t, err = r.Resolve(fields[0], context)
		if err != nil {
			return orb.Bound{}, nil, decodeErr(text, "cannot resolve territory", err)
		}
		code = fields[1]
	default:
		return orb.Bound{}, nil, decodeErr(text, "expected a territory and a code", nil)
	}

	b, err := parseBody(code)
	if err != nil {
		return orb.Bound{}, nil, decodeErr(text, "malformed code", err)
	}
	if t.IsWorld() && b.format != worldFormat {
		return orb.Bound{}, nil, decodeErr(text, "cannot decode", errNeedContext)
	}
	cell, err := r.decodeIn(t, b)
	if err != nil {
		return orb.Bound{}, nil, decodeErr(text, "cannot decode in "+t.Name(NameInternational), err)
	}
	return cell, t, nil
}

// decodeIn returns the cell b addresses in t. International bodies are
// accepted in every territory but must still land inside it.
func (r *Registry) decodeIn(t *Territory, b body) (orb.Bound, error) {
	z := t.zoneFor(b)
	if z == nil && b.format == worldFormat {
		z = &r.world.zones[0]
	}
	if z == nil {
		return orb.Bound{}, errNoZone
	}
	cell, ok := z.decode(b)
	if !ok {
		return orb.Bound{}, errPastGrid
	}
	if !t.IsWorld() && !t.accepts(cell) {
		return orb.Bound{}, errOutside
	}
	return cell, nil
}
