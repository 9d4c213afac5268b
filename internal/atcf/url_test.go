package atcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/vortex-track/internal/track"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name     string
		deck     track.FileDeck
		mode     track.Mode
		expected string
	}{
		{"historical best track", track.DeckBest, track.ModeHistorical,
			"https://ftp.nhc.noaa.gov/atcf/archive/2023/bal092023.dat.gz"},
		{"historical advisory deck", track.DeckAdvisory, track.ModeHistorical,
			"https://ftp.nhc.noaa.gov/atcf/archive/2023/aal092023.dat.gz"},
		{"realtime best track", track.DeckBest, track.ModeRealtime,
			"https://ftp.nhc.noaa.gov/atcf/btk/bal092023.dat"},
		{"realtime advisory deck", track.DeckAdvisory, track.ModeRealtime,
			"https://ftp.nhc.noaa.gov/atcf/aid_public/aal092023.dat.gz"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			url, err := URL("AL092023", tc.deck, tc.mode)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, url)
		})
	}
}

func TestURLRejectsMalformedID(t *testing.T) {
	_, err := URL("idalia", track.DeckBest, track.ModeRealtime)
	assert.ErrorIs(t, err, track.ErrInvalidArgument)
}

func TestURLUnimplementedCombination(t *testing.T) {
	_, err := URL("al092023", "q", track.ModeRealtime)
	assert.ErrorIs(t, err, track.ErrUnimplemented)
}
