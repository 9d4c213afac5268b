package track

import (
	"fmt"
	"strings"
)

// AdvisoryCode identifies the source of a track record within an ATCF
// deck. The set is closed: TrackPartitioner and ForecastCorrector match
// on it exhaustively.
type AdvisoryCode string

const (
	AdvisoryBEST AdvisoryCode = "BEST" // best-track hindcast analysis
	AdvisoryOFCL AdvisoryCode = "OFCL" // official NHC forecast
	AdvisoryOFCP AdvisoryCode = "OFCP"
	AdvisoryHMON AdvisoryCode = "HMON"
	AdvisoryCARQ AdvisoryCode = "CARQ" // combined automated request (consensus reference)
	AdvisoryHWRF AdvisoryCode = "HWRF"
)

// AllAdvisories lists every modeled advisory code.
func AllAdvisories() []AdvisoryCode {
	return []AdvisoryCode{AdvisoryBEST, AdvisoryOFCL, AdvisoryOFCP, AdvisoryHMON, AdvisoryCARQ, AdvisoryHWRF}
}

// ParseAdvisoryCode normalizes and validates an advisory string.
func ParseAdvisoryCode(s string) (AdvisoryCode, error) {
	code := AdvisoryCode(strings.ToUpper(strings.TrimSpace(s)))
	switch code {
	case AdvisoryBEST, AdvisoryOFCL, AdvisoryOFCP, AdvisoryHMON, AdvisoryCARQ, AdvisoryHWRF:
		return code, nil
	}
	return "", fmt.Errorf("%w: advisory %q", ErrInvalidArgument, s)
}

// FileDeck is the ATCF deck type: "a" (advisory aids), "b" (best track)
// or "f" (fixes).
type FileDeck string

const (
	DeckAdvisory FileDeck = "a"
	DeckBest     FileDeck = "b"
	DeckFixed    FileDeck = "f"
)

// ParseFileDeck validates a file deck letter.
func ParseFileDeck(s string) (FileDeck, error) {
	deck := FileDeck(strings.ToLower(strings.TrimSpace(s)))
	switch deck {
	case DeckAdvisory, DeckBest, DeckFixed:
		return deck, nil
	}
	return "", fmt.Errorf("%w: file deck %q", ErrInvalidArgument, s)
}

// ValidAdvisories returns the advisory codes a deck can carry. The
// advisory deck excludes BEST; the fixed deck is not modeled beyond
// passing every code through.
func ValidAdvisories(deck FileDeck) ([]AdvisoryCode, error) {
	switch deck {
	case DeckBest:
		return []AdvisoryCode{AdvisoryBEST}, nil
	case DeckAdvisory:
		var out []AdvisoryCode
		for _, code := range AllAdvisories() {
			if code != AdvisoryBEST {
				out = append(out, code)
			}
		}
		return out, nil
	case DeckFixed:
		return AllAdvisories(), nil
	}
	return nil, fmt.Errorf("%w: file deck %q", ErrUnimplemented, deck)
}

// Mode selects historical archive retrieval or the realtime feed.
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeRealtime   Mode = "realtime"
)

// ParseMode validates a retrieval mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ModeHistorical, ModeRealtime:
		return mode, nil
	}
	return "", fmt.Errorf("%w: mode %q", ErrInvalidArgument, s)
}
