package atcf

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/vortex-track/internal/track"
)

const nhcBaseURL = "https://ftp.nhc.noaa.gov/atcf"

// URL builds the NHC location of a storm's deck file. Historical decks
// live in the year-partitioned archive as gzip; realtime advisory decks
// under aid_public and realtime best tracks under btk.
func URL(stormID string, fileDeck track.FileDeck, mode track.Mode) (string, error) {
	id := strings.ToLower(strings.TrimSpace(stormID))
	if len(id) != 8 {
		return "", fmt.Errorf("%w: storm id %q", track.ErrInvalidArgument, stormID)
	}
	year := id[4:]

	switch mode {
	case track.ModeHistorical:
		return fmt.Sprintf("%s/archive/%s/%s%s.dat.gz", nhcBaseURL, year, fileDeck, id), nil
	case track.ModeRealtime:
		switch fileDeck {
		case track.DeckAdvisory:
			return fmt.Sprintf("%s/aid_public/a%s.dat.gz", nhcBaseURL, id), nil
		case track.DeckBest:
			return fmt.Sprintf("%s/btk/b%s.dat", nhcBaseURL, id), nil
		case track.DeckFixed:
			return fmt.Sprintf("%s/fix/f%s.dat", nhcBaseURL, id), nil
		}
	}
	return "", fmt.Errorf("%w: no source for deck %q in mode %q", track.ErrUnimplemented, fileDeck, mode)
}
