// Command mapcode encodes coordinates to mapcodes and decodes them back.
//
// Usage:
//
//	mapcode encode [-territory NLD] [-world=false] [-precision 1] [-alphabet greek] <lat> <lon>
//	mapcode decode [-context USA] <mapcode>
//	mapcode resolve [-parent USA] <name>
//	mapcode territories
//
// Exit status tells failures apart: 2 unknown territory, 3 unknown or
// malformed mapcode, 4 invalid coordinate, 5 ambiguous territory, 64 usage.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/joho/godotenv"

	"github.com/andreiashu/mapcode"
	"github.com/andreiashu/mapcode/internal/logger"
)

const (
	exitOK               = 0
	exitFailure          = 1
	exitUnknownTerritory = 2
	exitUnknownMapcode   = 3
	exitInvalidPoint     = 4
	exitAmbiguous        = 5
	exitUsage            = 64
)

func main() {
	_ = godotenv.Load(".env")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	opts := []mapcode.Option{mapcode.WithLogger(logger.SetupTo(stderr))}
	if table := os.Getenv("MAPCODE_TABLE"); table != "" {
		opts = append(opts, mapcode.WithTableFile(table))
	}
	codec, err := mapcode.NewCodec(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode":
		err = encode(codec, rest, stdout, stderr)
	case "decode":
		err = decode(codec, rest, stdout, stderr)
	case "resolve":
		err = resolve(codec, rest, stdout, stderr)
	case "territories":
		err = territories(codec, stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		usage(stderr)
		return exitUsage
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

var errUsage = errors.New("usage")

// exitCode checks territory errors first so "XYZ 49.4V" reports the unknown
// territory rather than a bad code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	case errors.Is(err, mapcode.ErrUnknownTerritory):
		return exitUnknownTerritory
	case errors.Is(err, mapcode.ErrAmbiguousTerritory):
		return exitAmbiguous
	case errors.Is(err, mapcode.ErrUnknownMapcode):
		return exitUnknownMapcode
	case errors.Is(err, mapcode.ErrInvalidPoint):
		return exitInvalidPoint
	}
	return exitFailure
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage:
  mapcode encode [-territory NAME] [-parent NAME] [-world=false] [-precision N] [-alphabet latin|greek|cyrillic] [-names international|minimal|local] LAT LON
  mapcode decode [-context NAME] MAPCODE
  mapcode resolve [-parent NAME] NAME
  mapcode territories
`)
}

func resolveOptional(codec *mapcode.Codec, name, parent string) (*mapcode.Territory, error) {
	if name == "" {
		return nil, nil
	}
	var p *mapcode.Territory
	if parent != "" {
		var err error
		if p, err = codec.ResolveTerritory(parent, nil); err != nil {
			return nil, err
		}
	}
	return codec.ResolveTerritory(name, p)
}

func parseNameFormat(s string) (mapcode.NameFormat, error) {
	switch strings.ToLower(s) {
	case "international", "":
		return mapcode.NameInternational, nil
	case "minimal":
		return mapcode.NameMinimal, nil
	case "local":
		return mapcode.NameLocal, nil
	}
	return 0, fmt.Errorf("%w: unknown name format %q", errUsage, s)
}

func encode(codec *mapcode.Codec, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	territory := fs.String("territory", "", "only encode in this territory and its parents")
	parent := fs.String("parent", "", "parent used to resolve -territory")
	world := fs.Bool("world", true, "include the international code")
	precision := fs.Int("precision", 0, fmt.Sprintf("extra precision symbols (0..%d)", mapcode.MaxPrecision))
	alphabet := fs.String("alphabet", "latin", "script for code bodies")
	names := fs.String("names", "international", "territory name format")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: encode needs LAT and LON", errUsage)
	}
	lat, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		return fmt.Errorf("%w: latitude %q", mapcode.ErrInvalidPoint, fs.Arg(0))
	}
	lon, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return fmt.Errorf("%w: longitude %q", mapcode.ErrInvalidPoint, fs.Arg(1))
	}
	a, err := mapcode.ParseAlphabet(*alphabet)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	nf, err := parseNameFormat(*names)
	if err != nil {
		return err
	}
	restrict, err := resolveOptional(codec, *territory, *parent)
	if err != nil {
		return err
	}

	codes, err := codec.Encode(lat, lon, restrict, *world, mapcode.EncodeOption{Precision: *precision})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "geohash %s\n", geohash.Encode(lat, lon))
	if len(codes) == 0 {
		fmt.Fprintln(stdout, "no mapcodes")
		return nil
	}
	for _, m := range codes {
		fmt.Fprintf(stdout, "%s/%d\n", m.TextIn(nf, a), m.TerritoryCode())
	}
	return nil
}

func decode(codec *mapcode.Codec, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	context := fs.String("context", "", "territory for codes without a territory name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: decode needs a MAPCODE", errUsage)
	}
	ctx, err := resolveOptional(codec, *context, "")
	if err != nil {
		return err
	}
	p, err := codec.Decode(strings.Join(fs.Args(), " "), ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%.6f %.6f\n", p.LatDeg(), p.LonDeg())
	return nil
}

func resolve(codec *mapcode.Codec, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	parent := fs.String("parent", "", "parent territory used to disambiguate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: resolve needs a NAME", errUsage)
	}
	t, err := resolveOptional(codec, fs.Arg(0), *parent)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d %s %s\n", t.Code(), t.Name(mapcode.NameInternational), t.FullName())
	return nil
}

func territories(codec *mapcode.Codec, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tMINIMAL\tFORMATS\tFULL NAME")
	for _, t := range codec.Territories() {
		formats := make([]string, 0, len(t.Formats()))
		for _, f := range t.Formats() {
			formats = append(formats, f.String())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.Code(), t.Name(mapcode.NameInternational), t.Name(mapcode.NameMinimal),
			strings.Join(formats, ","), t.FullName())
	}
	return tw.Flush()
}
