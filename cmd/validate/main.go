// Command validate performs integrity checks on an ATCF deck file: it
// parses every line, canonicalizes the table, derives velocity, and
// reports per-advisory record counts, time coverage and missing-field
// totals. Exit code 1 means the deck failed validation.
//
// Usage:
//
//	go run ./cmd/validate -deck bal092023.dat
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/vortex-track/internal/atcf"
	"github.com/couchcryptid/vortex-track/internal/track"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	deckPath := flag.String("deck", "", "path to an ATCF deck file (.dat)")
	flag.Parse()

	if *deckPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*deckPath); code != 0 {
		os.Exit(code)
	}
}

func run(deckPath string) int {
	body, err := os.ReadFile(deckPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read deck: %v\n", err)
		return 1
	}

	table, err := atcf.ParseDeck(bytes.NewReader(body), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse deck: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkRecords(table),
		checkTracks(table),
		checkVelocity(table),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL  %s\n", p.name)
		for _, msg := range p.errors {
			fmt.Printf("      %s\n", msg)
		}
	}
	if failed {
		return 1
	}
	return 0
}

func checkRecords(table track.Table) *phase {
	p := &phase{name: "records"}
	if len(table) == 0 {
		p.errorf("deck contains no parseable records")
		return p
	}

	counts := map[track.AdvisoryCode]int{}
	missingIntensity := 0
	for _, r := range table {
		counts[r.Advisory]++
		if math.IsNaN(r.MaxSustainedWindSpeed) {
			missingIntensity++
		}
	}
	for _, advisory := range table.Advisories() {
		fmt.Printf("      %s: %d records\n", advisory, counts[advisory])
	}
	if missingIntensity == len(table) {
		p.errorf("every record is missing max sustained wind speed")
	}
	return p
}

func checkTracks(table track.Table) *phase {
	p := &phase{name: "tracks"}
	tracks := track.SeparateTracks(track.Canonicalize(table))
	if len(tracks) == 0 {
		p.errorf("no tracks after partitioning")
		return p
	}

	for advisory, byCycle := range tracks {
		for cycleKey, tr := range byCycle {
			if len(tr) == 0 {
				p.errorf("%s/%s: empty track", advisory, cycleKey)
				continue
			}
			for i := 1; i < len(tr); i++ {
				if advisory == track.AdvisoryBEST && tr[i].Datetime.Before(tr[i-1].Datetime) {
					p.errorf("%s/%s: records out of time order", advisory, cycleKey)
					break
				}
				if advisory != track.AdvisoryBEST && tr[i].ForecastHours < tr[i-1].ForecastHours {
					p.errorf("%s/%s: records out of lead-hour order", advisory, cycleKey)
					break
				}
			}
		}
	}
	return p
}

func checkVelocity(table track.Table) *phase {
	p := &phase{name: "velocity"}
	derived := track.EstimateVelocity(track.Canonicalize(table))
	for _, r := range derived {
		if math.IsNaN(r.Speed) || r.Speed < 0 {
			p.errorf("%s at %s: unusable speed %v", r.Advisory, r.Datetime, r.Speed)
		}
		if math.IsNaN(r.Direction) || r.Direction < 0 || r.Direction >= 360 {
			p.errorf("%s at %s: bearing %v outside [0,360)", r.Advisory, r.Datetime, r.Direction)
		}
	}
	return p
}
