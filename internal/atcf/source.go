package atcf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/vortex-track/internal/observability"
	"github.com/couchcryptid/vortex-track/internal/track"
)

// DeckSource resolves a store configuration to records: a local file
// when the configuration names one, the NHC feed otherwise. It is the
// production track.DeckReader.
type DeckSource struct {
	fetcher *Fetcher
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewDeckSource(fetcher *Fetcher, metrics *observability.Metrics, logger *slog.Logger) *DeckSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckSource{fetcher: fetcher, metrics: metrics, logger: logger}
}

// ReadDeck implements track.DeckReader.
func (s *DeckSource) ReadDeck(ctx context.Context, cfg track.StoreConfig, advisories []track.AdvisoryCode) (track.Table, error) {
	body, err := s.read(ctx, cfg)
	if err != nil {
		s.metrics.FetchErrors.Inc()
		return nil, err
	}
	s.metrics.DecksFetched.Inc()

	table, err := ParseDeck(bytes.NewReader(body), advisories)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordsParsed.Add(float64(len(table)))

	s.logger.Debug("deck read",
		"storm_id", cfg.StormID,
		"file_deck", cfg.FileDeck,
		"advisories", len(advisories),
		"records", len(table))
	return table, nil
}

func (s *DeckSource) read(ctx context.Context, cfg track.StoreConfig) ([]byte, error) {
	if cfg.Filename != "" {
		body, err := os.ReadFile(cfg.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", track.ErrNotFound, cfg.Filename, err)
		}
		return maybeGunzip(body)
	}

	url, err := URL(cfg.StormID, cfg.FileDeck, cfg.Mode)
	if err != nil {
		return nil, err
	}
	return s.fetcher.Fetch(ctx, url)
}
