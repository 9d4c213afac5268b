// Command deckconv converts an ATCF deck between output formats: raw
// ATCF (.dat/.atcf) and the ADCIRC fort.22 variant (.22). The output
// format is inferred from the -out suffix.
//
// Usage:
//
//	go run ./cmd/deckconv -in bal092023.dat -out fort.22
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/couchcryptid/vortex-track/internal/atcf"
	"github.com/couchcryptid/vortex-track/internal/track"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	inPath := flag.String("in", "", "input ATCF deck file")
	outPath := flag.String("out", "", "output file; suffix selects the format (.dat, .atcf, .22)")
	advisoriesFlag := flag.String("advisories", "", "comma-separated advisory filter, e.g. BEST or OFCL,CARQ")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	var advisories []track.AdvisoryCode
	if *advisoriesFlag != "" {
		for _, part := range strings.Split(*advisoriesFlag, ",") {
			code, err := track.ParseAdvisoryCode(part)
			if err != nil {
				return err
			}
			advisories = append(advisories, code)
		}
	}

	body, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read deck: %w", err)
	}

	table, err := atcf.ParseDeck(bytes.NewReader(body), advisories)
	if err != nil {
		return err
	}
	if len(table) == 0 {
		return fmt.Errorf("no records in %s match the filter", *inPath)
	}

	table = track.Canonicalize(table)

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if err := atcf.WriteDeck(out, table, *outPath); err != nil {
		return err
	}

	fmt.Printf("wrote %d records to %s\n", len(table), *outPath)
	return nil
}
