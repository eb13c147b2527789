// Package server exposes a mapcode codec over HTTP with JSON responses.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/paulmach/orb/geojson"

	"github.com/andreiashu/mapcode"
	"github.com/andreiashu/mapcode/internal/cache"
	"github.com/andreiashu/mapcode/internal/locate"
	"github.com/andreiashu/mapcode/internal/logger"
	"github.com/andreiashu/mapcode/internal/metrics"
)

// Server handles the mapcode API.
type Server struct {
	codec   *mapcode.Codec
	cache   *cache.Cache
	locator locate.Locator
	log     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCache caches encode and decode responses.
func WithCache(c *cache.Cache) Option { return func(s *Server) { s.cache = c } }

// WithLocator enables encoding by client address.
func WithLocator(l locate.Locator) Option { return func(s *Server) { s.locator = l } }

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// New creates a server over codec.
func New(codec *mapcode.Codec, opts ...Option) *Server {
	s := &Server{codec: codec, log: logger.L()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the API handler, access logging included.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/encode", s.handleEncode)
	mux.HandleFunc("GET /api/decode", s.handleDecode)
	mux.HandleFunc("GET /api/territories", s.handleTerritories)
	mux.HandleFunc("GET /api/territories/{name}", s.handleTerritory)
	mux.HandleFunc("GET /api/territories/{name}/geojson", s.handleTerritoryGeoJSON)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"table":  s.codec.Registry().Version(),
		})
	})
	mux.Handle("GET /metrics", metrics.Handler())
	return logger.AccessMiddleware(s.log)(mux)
}

type mapcodeJSON struct {
	Mapcode       string  `json:"mapcode"`
	Body          string  `json:"body"`
	Territory     string  `json:"territory"`
	TerritoryCode int     `json:"territoryCode"`
	Minimal       string  `json:"minimal"`
	Local         string  `json:"local,omitempty"`
	Format        string  `json:"format"`
	Tier          int     `json:"tier"`
	MaxErrorM     float64 `json:"maxErrorMeters"`
}

type encodeResponse struct {
	Lat      float64       `json:"lat"`
	Lon      float64       `json:"lon"`
	Geohash  string        `json:"geohash"`
	Mapcodes []mapcodeJSON `json:"mapcodes"`
}

type decodeResponse struct {
	Mapcode   string  `json:"mapcode"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Geohash   string  `json:"geohash"`
	Territory string  `json:"territory"`
}

type territoryJSON struct {
	Code          int      `json:"code"`
	Name          string   `json:"name"`
	International string   `json:"international"`
	Minimal       string   `json:"minimal"`
	Abbreviations []string `json:"abbreviations"`
	Parent        string   `json:"parent,omitempty"`
	Alphabet      string   `json:"alphabet"`
	Formats       []string `json:"formats"`
	Priority      int      `json:"priority"`
}

type errorResponse struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("encode", start)
	q := r.URL.Query()

	lat, lon, err := s.encodeTarget(r)
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	var restrict *mapcode.Territory
	if name := q.Get("territory"); name != "" {
		if restrict, err = s.resolveParam(name, q.Get("parent")); err != nil {
			s.fail(w, "encode", err)
			return
		}
	}
	world := q.Get("world") != "false"
	precision := 0
	if v := q.Get("precision"); v != "" {
		if precision, err = strconv.Atoi(v); err != nil || precision < 0 || precision > mapcode.MaxPrecision {
			s.fail(w, "encode", fmt.Errorf("%w: precision must be 0..%d", errBadRequest, mapcode.MaxPrecision))
			return
		}
	}
	alphabet := mapcode.Latin
	if v := q.Get("alphabet"); v != "" {
		if alphabet, err = mapcode.ParseAlphabet(v); err != nil {
			s.fail(w, "encode", fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	key := fmt.Sprintf("enc:%.7f:%.7f:%s:%t:%d:%s", lat, lon, q.Get("territory")+"/"+q.Get("parent"), world, precision, alphabet)
	var resp encodeResponse
	if s.cache.Get(r.Context(), key, &resp) {
		metrics.RequestsTotal.WithLabelValues("encode", "cached").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	codes, err := s.codec.Encode(lat, lon, restrict, world, mapcode.EncodeOption{Precision: precision})
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	resp = encodeResponse{Lat: lat, Lon: lon, Geohash: geohash.Encode(lat, lon), Mapcodes: []mapcodeJSON{}}
	for _, m := range codes {
		resp.Mapcodes = append(resp.Mapcodes, toJSON(m, alphabet))
	}
	metrics.CodesPerEncode.Observe(float64(len(codes)))
	metrics.RequestsTotal.WithLabelValues("encode", "ok").Inc()
	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// encodeTarget reads lat/lon, or locates ip= (or the client address when
// ip=me) through the GeoIP database.
func (s *Server) encodeTarget(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()
	if ipText := q.Get("ip"); ipText != "" {
		if s.locator == nil {
			return 0, 0, fmt.Errorf("%w: address lookup is not configured", errBadRequest)
		}
		if ipText == "me" {
			ipText = clientIP(r)
		}
		lat, lon, err := s.locator.Locate(net.ParseIP(ipText))
		if err != nil {
			metrics.GeoIPLookupsTotal.WithLabelValues("miss").Inc()
			return 0, 0, err
		}
		metrics.GeoIPLookupsTotal.WithLabelValues("hit").Inc()
		return lat, lon, nil
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lat: %v", errBadRequest, err)
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lon: %v", errBadRequest, err)
	}
	return lat, lon, nil
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("decode", start)
	q := r.URL.Query()
	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		s.fail(w, "decode", fmt.Errorf("%w: code is required", errBadRequest))
		return
	}
	var context *mapcode.Territory
	if name := q.Get("context"); name != "" {
		var err error
		if context, err = s.resolveParam(name, ""); err != nil {
			s.fail(w, "decode", err)
			return
		}
	}

	key := "dec:" + code + ":" + q.Get("context")
	var resp decodeResponse
	if s.cache.Get(r.Context(), key, &resp) {
		metrics.RequestsTotal.WithLabelValues("decode", "cached").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	cell, t, err := s.codec.DecodeCell(code, context)
	if err != nil {
		s.fail(w, "decode", err)
		return
	}
	c := cell.Center()
	resp = decodeResponse{
		Mapcode:   code,
		Lat:       c[1],
		Lon:       c[0],
		Geohash:   geohash.Encode(c[1], c[0]),
		Territory: t.Name(mapcode.NameInternational),
	}
	metrics.RequestsTotal.WithLabelValues("decode", "ok").Inc()
	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTerritories(w http.ResponseWriter, r *http.Request) {
	var out []territoryJSON
	for _, t := range s.codec.Territories() {
		out = append(out, territoryToJSON(t))
	}
	metrics.RequestsTotal.WithLabelValues("territories", "ok").Inc()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTerritory(w http.ResponseWriter, r *http.Request) {
	t, err := s.resolveParam(r.PathValue("name"), r.URL.Query().Get("parent"))
	if err != nil {
		s.fail(w, "territory", err)
		return
	}
	metrics.RequestsTotal.WithLabelValues("territory", "ok").Inc()
	writeJSON(w, http.StatusOK, territoryToJSON(t))
}

func (s *Server) handleTerritoryGeoJSON(w http.ResponseWriter, r *http.Request) {
	t, err := s.resolveParam(r.PathValue("name"), r.URL.Query().Get("parent"))
	if err != nil {
		s.fail(w, "geojson", err)
		return
	}
	fc := mapcode.ZoneFeatures(t)
	fc.Features = append([]*geojson.Feature{mapcode.TerritoryFeature(t)}, fc.Features...)
	w.Header().Set("content-type", "application/geo+json")
	metrics.RequestsTotal.WithLabelValues("geojson", "ok").Inc()
	_ = json.NewEncoder(w).Encode(fc)
}

// resolveParam resolves name, with parent (a name too) as context.
func (s *Server) resolveParam(name, parent string) (*mapcode.Territory, error) {
	var p *mapcode.Territory
	if parent != "" {
		var err error
		if p, err = s.codec.ResolveTerritory(parent, nil); err != nil {
			return nil, err
		}
	}
	return s.codec.ResolveTerritory(name, p)
}

var errBadRequest = errors.New("bad request")

// fail maps codec errors to status codes so callers can tell an unknown
// territory from a bad code from a bad point. A code with an unknown or
// ambiguous territory name reports the territory error, as the CLI does.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, mapcode.ErrUnknownTerritory):
		status, kind = http.StatusNotFound, "unknown_territory"
	case errors.Is(err, mapcode.ErrAmbiguousTerritory):
		status, kind = http.StatusConflict, "ambiguous_territory"
	case errors.Is(err, mapcode.ErrUnknownMapcode):
		status, kind = http.StatusUnprocessableEntity, "unknown_mapcode"
	case errors.Is(err, mapcode.ErrInvalidPoint):
		status, kind = http.StatusBadRequest, "invalid_point"
	case errors.Is(err, locate.ErrNotFound):
		status, kind = http.StatusNotFound, "unknown_location"
	case errors.Is(err, errBadRequest):
		status, kind = http.StatusBadRequest, "bad_request"
	}
	resp := errorResponse{Error: kind, Message: err.Error()}
	var te *mapcode.TerritoryError
	if errors.As(err, &te) {
		resp.Suggestions = te.Suggestions
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request_failed", "op", op, "err", err)
	}
	metrics.RequestsTotal.WithLabelValues(op, kind).Inc()
	writeJSON(w, status, resp)
}

func observe(op string, start time.Time) {
	metrics.RequestDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

func toJSON(m mapcode.Mapcode, a mapcode.Alphabet) mapcodeJSON {
	out := mapcodeJSON{
		Mapcode:       m.In(a),
		Body:          m.Body,
		Territory:     m.Territory.Name(mapcode.NameInternational),
		TerritoryCode: m.TerritoryCode(),
		Minimal:       m.Text(mapcode.NameMinimal),
		Format:        m.Format.String(),
		Tier:          m.Tier,
		MaxErrorM:     m.MaxErrorMeters(),
	}
	if !m.Territory.IsWorld() {
		out.Local = m.Text(mapcode.NameLocal)
	}
	return out
}

func territoryToJSON(t *mapcode.Territory) territoryJSON {
	out := territoryJSON{
		Code:          t.Code(),
		Name:          t.FullName(),
		International: t.Name(mapcode.NameInternational),
		Minimal:       t.Name(mapcode.NameMinimal),
		Abbreviations: t.Abbreviations(),
		Alphabet:      t.Alphabet().String(),
		Priority:      t.Priority(),
	}
	if p := t.Parent(); p != nil {
		out.Parent = p.Name(mapcode.NameInternational)
	}
	for _, f := range t.Formats() {
		out.Formats = append(out.Formats, f.String())
	}
	return out
}

// clientIP prefers the first X-Forwarded-For hop over the peer address.
func clientIP(r *http.Request) string {
	if x := r.Header.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	if x := r.Header.Get("x-real-ip"); x != "" {
		return x
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
