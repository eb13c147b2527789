// Command validate-table loads a territory table, runs the built-in encode
// and decode checks against it and optionally exports it as GeoJSON.
//
// Usage:
//
//	go run ./cmd/validate-table [-table mapcode-data/territories.txt] [-geojson out.json]
//
// Without -table the embedded table is checked.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/andreiashu/mapcode"
	"github.com/andreiashu/mapcode/internal/logger"
)

func main() {
	_ = godotenv.Load(".env")
	table := flag.String("table", os.Getenv("MAPCODE_TABLE"), "territory table to validate (default: embedded)")
	out := flag.String("geojson", "", "write all territories as a GeoJSON FeatureCollection to this file")
	flag.Parse()

	l := logger.Setup()
	var opts []mapcode.Option
	opts = append(opts, mapcode.WithLogger(l))
	source := "embedded table"
	if *table != "" {
		opts = append(opts, mapcode.WithTableFile(*table))
		source = *table
	}

	fmt.Printf("Validating %s...\n", source)
	codec, err := mapcode.NewCodec(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("      Table version: %s\n", codec.Registry().Version())
	if err := codec.ValidateTable(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		b, err := json.MarshalIndent(codec.Registry().Features(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, b, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s.\n", *out)
	}
	fmt.Println("Table is valid.")
}
