package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/vortex-track/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/vortex-track/internal/adapter/kafka"
	"github.com/couchcryptid/vortex-track/internal/atcf"
	"github.com/couchcryptid/vortex-track/internal/config"
	"github.com/couchcryptid/vortex-track/internal/observability"
	"github.com/couchcryptid/vortex-track/internal/track"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := atcf.NewFetcher(cfg.FetchTimeout, logger)

	stormID, catalogMode, err := resolveStormID(ctx, cfg, fetcher)
	if err != nil {
		logger.Error("failed to resolve storm id", "storm_id", cfg.StormID, "error", err)
		os.Exit(1)
	}

	mode := cfg.Mode
	if catalogMode != "" && !cfg.ModeSet {
		mode = catalogMode
		logger.Info("deck mode chosen from storm catalog", "mode", mode)
	}

	source := atcf.NewDeckSource(fetcher, metrics, logger)
	store, err := track.NewStore(track.StoreConfig{
		StormID:    stormID,
		FileDeck:   cfg.FileDeck,
		Mode:       mode,
		Advisories: cfg.Advisories,
		Filename:   cfg.SourceFile,
		RMWFill:    cfg.RMWFill,
	}, source, logger)
	if err != nil {
		logger.Error("failed to build track store", "error", err)
		os.Exit(1)
	}

	// Load the deck up front so /readyz flips as soon as data is in.
	if _, err := store.RawData(ctx); err != nil {
		logger.Error("initial deck load failed", "error", err)
		os.Exit(1)
	}
	metrics.StoreLoaded.Set(1)

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		logger.Info("kafka product sink enabled", "topic", cfg.KafkaSinkTopic)

		products, err := kafkaadapter.BuildProducts(ctx, store, time.Now().UTC())
		if err != nil {
			logger.Error("product build failed", "error", err)
		} else if err := writer.PublishBatch(ctx, products); err != nil {
			logger.Error("product publish failed", "error", err)
		}
	} else {
		logger.Info("kafka product sink disabled")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, store, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// resolveStormID normalizes STORM_ID, fetching the NHC storm list only
// when the identifier is a name that needs catalog lookup. When the
// catalog was consulted the returned mode says whether the storm's deck
// has moved to the historical archive; it is empty otherwise.
func resolveStormID(ctx context.Context, cfg *config.Config, fetcher *atcf.Fetcher) (string, track.Mode, error) {
	if cfg.StormID == "" {
		return "", "", nil // local file source
	}

	id, err := atcf.ParseStormID(cfg.StormID, nil)
	if err == nil {
		return id, "", nil
	}
	if !errors.Is(err, track.ErrInvalidArgument) {
		return "", "", err
	}

	body, err := fetcher.Fetch(ctx, atcf.StormListURL)
	if err != nil {
		return "", "", err
	}
	catalog, err := atcf.ParseStormList(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	id, err = atcf.ParseStormID(cfg.StormID, catalog)
	if err != nil {
		return "", "", err
	}

	mode := track.ModeRealtime
	if entry, err := catalog.FindByCode(id); err == nil && catalog.InArchive(entry, time.Now()) {
		mode = track.ModeHistorical
	}
	return id, mode, nil
}
