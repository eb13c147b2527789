package mapcode

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	. "gopkg.in/check.v1"
)

type DecodeSuite struct {
	codec *Codec
	nld   *Territory
	usa   *Territory
	rus   *Territory
	grc   *Territory
}

var _ = Suite(&DecodeSuite{})

func (s *DecodeSuite) SetUpSuite(c *C) {
	var err error
	s.codec, err = Default()
	c.Assert(err, IsNil)
	for name, dst := range map[string]**Territory{"NLD": &s.nld, "USA": &s.usa, "RUS": &s.rus, "GRC": &s.grc} {
		*dst, err = s.codec.ResolveTerritory(name, nil)
		c.Assert(err, IsNil)
	}
}

func (s *DecodeSuite) TestKnownCodes(c *C) {
	for _, tc := range []struct {
		text     string
		lat, lon float64
	}{
		{"NLD 49.4V", 52.33439, 4.82565},
		{"nld 49.4v", 52.33439, 4.82565},
		{"  NL   49.4V ", 52.33439, 4.82565},
		{"PQ0PF.5M1H", 40.404776, -69.096164},
	} {
		p, err := s.codec.Decode(tc.text, nil)
		c.Assert(err, IsNil, Commentf("%q", tc.text))
		c.Check(math.Abs(p.LatDeg()-tc.lat) < 1e-5, Equals, true, Commentf("%q: %v", tc.text, p))
		c.Check(math.Abs(p.LonDeg()-tc.lon) < 1e-5, Equals, true, Commentf("%q: %v", tc.text, p))
	}
}

func (s *DecodeSuite) TestPrefixMatchesContext(c *C) {
	bare, err := s.codec.Decode("49.4V", s.nld)
	c.Assert(err, IsNil)
	prefixed, err := s.codec.Decode("NLD 49.4V", s.usa)
	c.Assert(err, IsNil)
	c.Assert(prefixed, Equals, bare)
}

func (s *DecodeSuite) TestScripts(c *C) {
	codes, err := s.codec.Encode(52.376514, 4.908542, s.nld, false)
	c.Assert(err, IsNil)
	c.Assert(codes, Not(HasLen), 0)
	want, err := s.codec.Decode(codes[0].String(), nil)
	c.Assert(err, IsNil)

	c.Assert(codes[0].In(Greek), Equals, "NLD ΘΧ.8Τ")
	for _, a := range []Alphabet{Greek, Cyrillic} {
		p, err := s.codec.Decode(codes[0].In(a), nil)
		c.Assert(err, IsNil, Commentf("%v", a))
		c.Check(p, Equals, want)
	}
	p, err := s.codec.Decode("ΘΧ.8τ", s.nld)
	c.Assert(err, IsNil)
	c.Check(p, Equals, want)
}

func (s *DecodeSuite) TestInternationalInTerritory(c *C) {
	world, err := s.codec.Decode("RPVGF.7337", nil)
	c.Assert(err, IsNil)

	inNLD, err := s.codec.Decode("RPVGF.7337", s.nld)
	c.Assert(err, IsNil)
	c.Check(inNLD, Equals, world)

	inNLD, err = s.codec.Decode("NLD RPVGF.7337", nil)
	c.Assert(err, IsNil)
	c.Check(inNLD, Equals, world)

	_, err = s.codec.Decode("RPVGF.7337", s.usa)
	c.Assert(errors.Is(err, ErrUnknownMapcode), Equals, true)
	var de *DecodeError
	c.Assert(errors.As(err, &de), Equals, true)
	c.Check(errors.Is(de.Cause, errOutside), Equals, true)
}

// A point in the North Sea lies in the bounding box of the Netherlands, so
// its grid has a body for it, but that body must not decode.
func (s *DecodeSuite) TestOutsideBoundary(c *C) {
	sea := orb.Point{3.4, 53.5}
	c.Assert(s.nld.Bound().Contains(sea), Equals, true)
	c.Assert(s.nld.Contains(sea[1], sea[0]), Equals, false)

	var z *zone
	for i := range s.nld.zones {
		if s.nld.zones[i].format == (Format{3, 3}) {
			z = &s.nld.zones[i]
		}
	}
	c.Assert(z, NotNil)
	b := z.encode(sea, 0)

	_, err := s.codec.Decode("NLD "+b.String(), nil)
	c.Assert(errors.Is(err, ErrUnknownMapcode), Equals, true, Commentf("%v", b))
	var de *DecodeError
	c.Assert(errors.As(err, &de), Equals, true)
	c.Check(errors.Is(de.Cause, errOutside), Equals, true)

	codes, err := s.codec.Encode(sea[1], sea[0], s.nld, false)
	c.Assert(err, IsNil)
	c.Check(codes, HasLen, 0)
}

func (s *DecodeSuite) TestErrors(c *C) {
	for _, tc := range []struct {
		text    string
		context *Territory
		also    error
		cause   error
	}{
		{"", nil, nil, nil},
		{"NLD 49.4V X", nil, nil, nil},
		{"49.4A", s.nld, nil, nil},
		{"494V", s.nld, nil, nil},
		{"49.4V-", s.nld, nil, nil},
		{"49.4V", nil, nil, errNeedContext},
		{"ZZ.ZZ", s.nld, nil, errPastGrid},
		{"BBB.BBBB", s.nld, nil, errNoZone},
		{"XQZ 49.4V", nil, ErrUnknownTerritory, nil},
		{"MN 49.4V", s.rus, ErrAmbiguousTerritory, nil},
	} {
		p, err := s.codec.Decode(tc.text, tc.context)
		comment := Commentf("%q in %v", tc.text, tc.context)
		c.Assert(err, NotNil, comment)
		c.Check(p.IsDefined(), Equals, false, comment)
		c.Check(errors.Is(err, ErrUnknownMapcode), Equals, true, comment)
		if tc.also != nil {
			c.Check(errors.Is(err, tc.also), Equals, true, comment)
		}
		var de *DecodeError
		c.Assert(errors.As(err, &de), Equals, true, comment)
		c.Check(de.Input, Equals, tc.text)
		if tc.cause != nil {
			c.Check(errors.Is(de.Cause, tc.cause), Equals, true, comment)
		}
	}
}

func (s *DecodeSuite) TestDecodeCell(c *C) {
	cell, t, err := s.codec.DecodeCell("NLD 49.4V", nil)
	c.Assert(err, IsNil)
	c.Check(t, Equals, s.nld)
	p, err := s.codec.Decode("NLD 49.4V", nil)
	c.Assert(err, IsNil)
	c.Check(cell.Contains(orb.Point{p.LonDeg(), p.LatDeg()}), Equals, true)

	fine, _, err := s.codec.DecodeCell("NLD 49.4V-K2", nil)
	c.Assert(err, IsNil)
	c.Check(cell.Contains(fine.Min) && cell.Contains(fine.Max), Equals, true)
	c.Check(fine.Max[0]-fine.Min[0] < (cell.Max[0]-cell.Min[0])/20, Equals, true)
}

func (s *DecodeSuite) TestGreekTerritory(c *C) {
	codes, err := s.codec.Encode(37.9838, 23.7275, s.grc, false)
	c.Assert(err, IsNil)
	c.Assert(codes, Not(HasLen), 0)
	for _, m := range codes {
		p, err := s.codec.Decode(m.In(m.Territory.Alphabet()), nil)
		c.Assert(err, IsNil, Commentf("%v", m))
		want, _ := NewPoint(37.9838, 23.7275)
		c.Check(p.DistanceMeters(want) <= m.MaxErrorMeters()+0.001, Equals, true)
	}
}
